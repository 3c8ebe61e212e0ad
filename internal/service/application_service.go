package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/billing"
	"github.com/noah-isme/hkd-portal-api/internal/dto"
	"github.com/noah-isme/hkd-portal-api/internal/events"
	"github.com/noah-isme/hkd-portal-api/internal/models"
	"github.com/noah-isme/hkd-portal-api/internal/observability"
	"github.com/noah-isme/hkd-portal-api/internal/repository"
)

// ApplicationService owns the enrollment application lifecycle. Every
// status change goes through one of its transition methods; nothing else
// writes application rows.
type ApplicationService interface {
	Create(ctx context.Context, principalID uint, payload dto.ApplicationCreateRequest) (dto.ApplicationResponse, error)
	Get(ctx context.Context, principalID, id uint) (dto.ApplicationResponse, error)
	List(ctx context.Context, principalID uint, filter dto.ApplicationFilterRequest) (dto.ApplicationListResponse, error)
	UpdateInfo(ctx context.Context, principalID, id uint, payload dto.ApplicationUpdateRequest) (dto.ApplicationResponse, error)
	SubmitPayment(ctx context.Context, principalID, id uint, payload dto.PaymentSubmitRequest) (dto.ApplicationResponse, error)
	VerifyPayment(ctx context.Context, verifierID, id uint, payload dto.PaymentVerifyRequest) (dto.ApplicationResponse, error)
	Approve(ctx context.Context, reviewerID, id uint, payload dto.ApplicationApproveRequest) (dto.ApplicationResponse, error)
	Reject(ctx context.Context, reviewerID, id uint, payload dto.ApplicationRejectRequest) (dto.ApplicationResponse, error)
	Cancel(ctx context.Context, principalID, id uint) (dto.ApplicationResponse, error)
}

type applicationService struct {
	store     repository.Store
	authz     AuthzService
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	events    *events.Publisher
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewApplicationService constructs an ApplicationService instance.
func NewApplicationService(store repository.Store, authz AuthzService, validate *validator.Validate, publisher *events.Publisher, logger zerolog.Logger) ApplicationService {
	return &applicationService{
		store:     store,
		authz:     authz,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		events:    publisher,
		logger:    logger.With().Str("component", "application_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/hkd-portal-api/internal/service/application"),
		now:       time.Now,
	}
}

func (s *applicationService) Create(ctx context.Context, principalID uint, payload dto.ApplicationCreateRequest) (dto.ApplicationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ApplicationResponse{}, err
	}
	if err := validateIntake(payload.Intake); err != nil {
		return dto.ApplicationResponse{}, err
	}

	var created models.EnrollmentApplication
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		course, err := tx.Courses().GetByID(ctx, payload.CourseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}
		if !course.AcceptsApplications() {
			return ErrCourseClosed
		}

		open, err := tx.Applications().HasNonTerminal(ctx, principalID, course.ID)
		if err != nil {
			return err
		}
		if open {
			return ErrDuplicateApplication
		}

		year := s.now().UTC().Year()
		seq, err := tx.Sequences().Next(ctx, repository.SequenceApplicationNumber, year)
		if err != nil {
			return err
		}

		created = models.EnrollmentApplication{
			ApplicationNumber: fmt.Sprintf("HKD-A-%d-%04d", year, seq),
			UserID:            principalID,
			CourseID:          course.ID,
			Intake:            datatypes.JSON(payload.Intake),
			Status:            models.ApplicationStatusPendingPayment,
		}
		if err := tx.Applications().Create(ctx, &created); err != nil {
			// Lost the open-application index race against a concurrent Create.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateApplication
			}
			return err
		}
		return nil
	})
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	observability.ApplicationTransitions().WithLabelValues(string(models.ApplicationStatusPendingPayment)).Inc()
	s.logger.Info().Uint("application_id", created.ID).Str("number", created.ApplicationNumber).Msg("application created")

	return s.reload(ctx, created.ID)
}

func (s *applicationService) Get(ctx context.Context, principalID, id uint) (dto.ApplicationResponse, error) {
	application, err := s.load(ctx, id)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	if !s.canAct(ctx, principalID, application.UserID, models.ActionRead) {
		return dto.ApplicationResponse{}, ErrForbidden
	}
	return dto.NewApplicationResponse(application), nil
}

func (s *applicationService) List(ctx context.Context, principalID uint, filter dto.ApplicationFilterRequest) (dto.ApplicationListResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return dto.ApplicationListResponse{}, err
	}

	repoFilter := repository.ApplicationFilter{
		CourseID: filter.CourseID,
		Status:   filter.Status,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	// Non-privileged principals only ever see their own applications.
	if !s.authz.Authorize(ctx, principalID, models.ResourceEnrollment, models.ActionManage) {
		repoFilter.UserID = principalID
	}

	applications, total, err := s.store.Applications().List(ctx, repoFilter)
	if err != nil {
		return dto.ApplicationListResponse{}, err
	}
	return dto.ApplicationListResponse{Items: dto.NewApplicationResponseSlice(applications), Total: total}, nil
}

func (s *applicationService) UpdateInfo(ctx context.Context, principalID, id uint, payload dto.ApplicationUpdateRequest) (dto.ApplicationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ApplicationResponse{}, err
	}
	if err := validateIntake(payload.Intake); err != nil {
		return dto.ApplicationResponse{}, err
	}

	application, err := s.load(ctx, id)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	if !s.canAct(ctx, principalID, application.UserID, models.ActionManage) {
		return dto.ApplicationResponse{}, ErrForbidden
	}
	// Payment submission freezes the intake record.
	if application.Status != models.ApplicationStatusPendingPayment {
		return dto.ApplicationResponse{}, ErrInvalidTransition
	}

	application.Intake = datatypes.JSON(payload.Intake)
	if err := s.store.Applications().Update(ctx, &application); err != nil {
		return dto.ApplicationResponse{}, err
	}
	return s.reload(ctx, id)
}

func (s *applicationService) SubmitPayment(ctx context.Context, principalID, id uint, payload dto.PaymentSubmitRequest) (dto.ApplicationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ApplicationResponse{}, err
	}

	application, err := s.load(ctx, id)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	if !s.canAct(ctx, principalID, application.UserID, models.ActionManage) {
		return dto.ApplicationResponse{}, ErrForbidden
	}
	// Exactly pending_payment: re-submitting an already submitted payment is
	// rejected so one transaction id cannot be spent twice on an application.
	if application.Status != models.ApplicationStatusPendingPayment {
		return dto.ApplicationResponse{}, ErrInvalidTransition
	}

	submittedAt := s.now().UTC()
	application.Status = models.ApplicationStatusPaymentSubmitted
	application.PaymentTransactionID = payload.TransactionID
	application.PaymentProofURL = payload.ProofURL
	application.PaymentSubmittedAt = &submittedAt

	if err := s.store.Applications().Update(ctx, &application); err != nil {
		return dto.ApplicationResponse{}, err
	}

	observability.ApplicationTransitions().WithLabelValues(string(models.ApplicationStatusPaymentSubmitted)).Inc()
	s.logger.Info().Uint("application_id", id).Msg("payment submitted")
	return s.reload(ctx, id)
}

func (s *applicationService) VerifyPayment(ctx context.Context, verifierID, id uint, payload dto.PaymentVerifyRequest) (dto.ApplicationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ApplicationResponse{}, err
	}

	application, err := s.load(ctx, id)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	if application.Status != models.ApplicationStatusPaymentSubmitted {
		return dto.ApplicationResponse{}, ErrInvalidTransition
	}

	verifiedAt := s.now().UTC()
	application.Status = models.ApplicationStatusPaymentVerified
	application.PaymentVerifiedAt = &verifiedAt
	application.PaymentVerifiedBy = &verifierID
	if payload.Notes != "" {
		application.ReviewNotes = s.sanitizer.Sanitize(payload.Notes)
	}

	if err := s.store.Applications().Update(ctx, &application); err != nil {
		return dto.ApplicationResponse{}, err
	}

	observability.ApplicationTransitions().WithLabelValues(string(models.ApplicationStatusPaymentVerified)).Inc()
	s.logger.Info().Uint("application_id", id).Uint("verifier_id", verifierID).Msg("payment verified")
	return s.reload(ctx, id)
}

// Approve runs the five side effects of approval as one transaction:
// profile synthesis, enrollment creation, first monthly fee, course counter
// increment and the status flip. A failure anywhere rolls back everything,
// so an approved application without an enrollment cannot exist.
func (s *applicationService) Approve(ctx context.Context, reviewerID, id uint, payload dto.ApplicationApproveRequest) (dto.ApplicationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ApplicationResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "application.approve", trace.WithAttributes(
		attribute.Int("application.id", int(id)),
	))
	defer span.End()

	var approved models.EnrollmentApplication
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		application, err := tx.Applications().GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApplicationNotFound
			}
			return err
		}
		if application.Status != models.ApplicationStatusPaymentVerified {
			return ErrInvalidTransition
		}

		course, err := tx.Courses().GetByID(ctx, application.CourseID)
		if err != nil {
			return err
		}

		profile, err := tx.Profiles().GetByUserID(ctx, application.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile, err = s.synthesizeProfile(ctx, tx, application)
		}
		if err != nil {
			return err
		}

		now := s.now().UTC()
		startDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		enrollment := models.CourseEnrollment{
			ApplicationID:    application.ID,
			MemberProfileID:  profile.ID,
			CourseID:         course.ID,
			StartDate:        startDate,
			ExpectedEndDate:  startDate.AddDate(0, course.DurationMonths, 0),
			MonthlyFeeAmount: course.MonthlyFeeAmount,
			Currency:         course.Currency,
			Active:           true,
		}
		if err := tx.Enrollments().Create(ctx, &enrollment); err != nil {
			return err
		}

		period := billing.PeriodOf(now)
		fee := models.MonthlyFee{
			EnrollmentID:    enrollment.ID,
			MemberProfileID: profile.ID,
			Period:          period.Key(),
			BillingYear:     period.Year,
			Amount:          enrollment.MonthlyFeeAmount,
			Currency:        enrollment.Currency,
			DueDate:         period.DueDate(),
			Status:          models.FeeStatusPending,
		}
		if err := tx.Fees().Create(ctx, &fee); err != nil {
			return err
		}

		if err := tx.Courses().IncrementStudents(ctx, course.ID); err != nil {
			if errors.Is(err, repository.ErrNoCapacity) {
				return ErrCourseFull
			}
			return err
		}

		application.Status = models.ApplicationStatusApproved
		application.ReviewedBy = &reviewerID
		application.ReviewedAt = &now
		if payload.Notes != "" {
			application.ReviewNotes = s.sanitizer.Sanitize(payload.Notes)
		}
		if err := tx.Applications().Update(ctx, &application); err != nil {
			return err
		}

		approved = application
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "approval aborted")
		return dto.ApplicationResponse{}, err
	}

	observability.ApplicationTransitions().WithLabelValues(string(models.ApplicationStatusApproved)).Inc()
	s.logger.Info().
		Uint("application_id", approved.ID).
		Uint("reviewer_id", reviewerID).
		Msg("application approved")
	s.events.Publish(ctx, events.SubjectApplicationApproved, events.ApplicationEvent{
		ApplicationID: approved.ID,
		UserID:        approved.UserID,
		CourseID:      approved.CourseID,
		Status:        string(models.ApplicationStatusApproved),
		OccurredAt:    s.now().UTC(),
	})

	return s.reload(ctx, id)
}

func (s *applicationService) Reject(ctx context.Context, reviewerID, id uint, payload dto.ApplicationRejectRequest) (dto.ApplicationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ApplicationResponse{}, err
	}

	application, err := s.load(ctx, id)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	if application.Status.IsTerminal() {
		return dto.ApplicationResponse{}, ErrInvalidTransition
	}

	now := s.now().UTC()
	application.Status = models.ApplicationStatusRejected
	application.RejectionReason = s.sanitizer.Sanitize(payload.Reason)
	application.ReviewedBy = &reviewerID
	application.ReviewedAt = &now

	if err := s.store.Applications().Update(ctx, &application); err != nil {
		return dto.ApplicationResponse{}, err
	}

	observability.ApplicationTransitions().WithLabelValues(string(models.ApplicationStatusRejected)).Inc()
	s.logger.Info().Uint("application_id", id).Uint("reviewer_id", reviewerID).Msg("application rejected")
	s.events.Publish(ctx, events.SubjectApplicationRejected, events.ApplicationEvent{
		ApplicationID: application.ID,
		UserID:        application.UserID,
		CourseID:      application.CourseID,
		Status:        string(models.ApplicationStatusRejected),
		OccurredAt:    now,
	})

	return s.reload(ctx, id)
}

func (s *applicationService) Cancel(ctx context.Context, principalID, id uint) (dto.ApplicationResponse, error) {
	application, err := s.load(ctx, id)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	if !s.canAct(ctx, principalID, application.UserID, models.ActionManage) {
		return dto.ApplicationResponse{}, ErrForbidden
	}
	// An approved application cannot be unwound by cancellation.
	if application.Status.IsTerminal() {
		return dto.ApplicationResponse{}, ErrInvalidTransition
	}

	application.Status = models.ApplicationStatusCancelled
	if err := s.store.Applications().Update(ctx, &application); err != nil {
		return dto.ApplicationResponse{}, err
	}

	observability.ApplicationTransitions().WithLabelValues(string(models.ApplicationStatusCancelled)).Inc()
	s.logger.Info().Uint("application_id", id).Msg("application cancelled")
	return s.reload(ctx, id)
}

func (s *applicationService) synthesizeProfile(ctx context.Context, tx repository.Store, application models.EnrollmentApplication) (models.MemberProfile, error) {
	doc, err := parseIntake(application.Intake)
	if err != nil {
		return models.MemberProfile{}, err
	}

	year := s.now().UTC().Year()
	seq, err := tx.Sequences().Next(ctx, repository.SequenceMemberNumber, year)
	if err != nil {
		return models.MemberProfile{}, err
	}

	profile := models.MemberProfile{
		UserID:                application.UserID,
		MemberNumber:          fmt.Sprintf("HKD-M-%d-%04d", year, seq),
		FullName:              doc.FullName,
		Phone:                 doc.Phone,
		Address:               doc.Address,
		EmergencyContactName:  doc.EmergencyContactName,
		EmergencyContactPhone: doc.EmergencyContactPhone,
		BeltRank:              "white",
	}
	if doc.DateOfBirth != "" {
		if dob, parseErr := time.Parse("2006-01-02", doc.DateOfBirth); parseErr == nil {
			profile.DateOfBirth = &dob
		}
	}

	if err := tx.Profiles().Create(ctx, &profile); err != nil {
		return models.MemberProfile{}, err
	}
	return profile, nil
}

// canAct allows the owner of the record, or anyone holding the given action
// on the ENROLLMENT resource.
func (s *applicationService) canAct(ctx context.Context, principalID, ownerID uint, action models.Action) bool {
	if principalID != 0 && principalID == ownerID {
		return true
	}
	return s.authz.Authorize(ctx, principalID, models.ResourceEnrollment, action)
}

func (s *applicationService) load(ctx context.Context, id uint) (models.EnrollmentApplication, error) {
	application, err := s.store.Applications().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.EnrollmentApplication{}, ErrApplicationNotFound
		}
		return models.EnrollmentApplication{}, err
	}
	return application, nil
}

func (s *applicationService) reload(ctx context.Context, id uint) (dto.ApplicationResponse, error) {
	application, err := s.load(ctx, id)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	return dto.NewApplicationResponse(application), nil
}
