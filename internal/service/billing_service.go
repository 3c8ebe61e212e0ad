package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/billing"
	"github.com/noah-isme/hkd-portal-api/internal/dto"
	"github.com/noah-isme/hkd-portal-api/internal/events"
	"github.com/noah-isme/hkd-portal-api/internal/models"
	"github.com/noah-isme/hkd-portal-api/internal/observability"
	"github.com/noah-isme/hkd-portal-api/internal/repository"
)

// BillingService generates recurring monthly fees and advances each fee's
// lifecycle. Generation is idempotent per (enrollment, period); a failure on
// one enrollment never aborts the batch.
type BillingService interface {
	Generate(ctx context.Context, payload dto.FeeGenerateRequest) (dto.FeeGenerationResult, error)
	Get(ctx context.Context, principalID, id uint) (dto.FeeResponse, error)
	List(ctx context.Context, principalID uint, filter dto.FeeFilterRequest) (dto.FeeListResponse, error)
	SubmitPayment(ctx context.Context, principalID, id uint, payload dto.FeePaymentSubmitRequest) (dto.FeeResponse, error)
	VerifyPayment(ctx context.Context, verifierID, id uint, payload dto.FeePaymentVerifyRequest) (dto.FeeResponse, error)
	Waive(ctx context.Context, adminID, id uint, payload dto.FeeWaiveRequest) (dto.FeeResponse, error)
	MarkOverdue(ctx context.Context, adminID, id uint) (dto.FeeResponse, error)
	Summary(ctx context.Context, principalID uint) (dto.FeeSummaryResponse, error)
}

const feeSummaryCachePrefix = "hkd:fees:summary:"

type billingService struct {
	store      repository.Store
	authz      AuthzService
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	events     *events.Publisher
	redis      *redis.Client
	summaryTTL time.Duration
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewBillingService constructs a BillingService instance.
func NewBillingService(store repository.Store, authz AuthzService, validate *validator.Validate, publisher *events.Publisher, redisClient *redis.Client, summaryTTL time.Duration, logger zerolog.Logger) BillingService {
	if summaryTTL <= 0 {
		summaryTTL = 5 * time.Minute
	}
	return &billingService{
		store:      store,
		authz:      authz,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		events:     publisher,
		redis:      redisClient,
		summaryTTL: summaryTTL,
		logger:     logger.With().Str("component", "billing_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/hkd-portal-api/internal/service/billing"),
		now:        time.Now,
	}
}

// Generate creates one pending fee per active enrollment for the requested
// period, skipping enrollments already billed. The due date comes from the
// period key, not from when this runs.
func (s *billingService) Generate(ctx context.Context, payload dto.FeeGenerateRequest) (dto.FeeGenerationResult, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FeeGenerationResult{}, err
	}

	period, err := billing.ParsePeriod(payload.Period)
	if err != nil {
		return dto.FeeGenerationResult{}, err
	}

	ctx, span := s.tracer.Start(ctx, "billing.generate", trace.WithAttributes(
		attribute.String("billing.period", period.Key()),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		observability.BillingRunDuration().Observe(time.Since(start).Seconds())
	}()

	var enrollments []models.CourseEnrollment
	if payload.EnrollmentID != nil {
		enrollment, err := s.store.Enrollments().GetByID(ctx, *payload.EnrollmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.FeeGenerationResult{}, ErrEnrollmentNotFound
			}
			return dto.FeeGenerationResult{}, err
		}
		if enrollment.Active {
			enrollments = append(enrollments, enrollment)
		}
	} else {
		enrollments, err = s.store.Enrollments().List(ctx, repository.EnrollmentFilter{ActiveOnly: true})
		if err != nil {
			return dto.FeeGenerationResult{}, err
		}
	}

	result := dto.FeeGenerationResult{Period: period.Key()}
	for _, enrollment := range enrollments {
		outcome, err := s.generateOne(ctx, enrollment, period)
		switch {
		case err != nil:
			result.Errored++
			observability.FeesGenerated().WithLabelValues("error").Inc()
			s.logger.Error().Err(err).
				Uint("enrollment_id", enrollment.ID).
				Str("period", period.Key()).
				Msg("fee generation failed for enrollment")
		case outcome:
			result.Created++
			observability.FeesGenerated().WithLabelValues("created").Inc()
		default:
			result.Skipped++
			observability.FeesGenerated().WithLabelValues("skipped").Inc()
		}
	}

	s.logger.Info().
		Str("period", period.Key()).
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Int("errored", result.Errored).
		Msg("fee generation run finished")
	s.events.Publish(ctx, events.SubjectFeesGenerated, events.FeeBatchEvent{
		Period:     period.Key(),
		Created:    result.Created,
		Skipped:    result.Skipped,
		Errored:    result.Errored,
		OccurredAt: s.now().UTC(),
	})

	return result, nil
}

// generateOne reports true when a fee was created, false when one already
// existed. A concurrent creation losing the unique-index race counts as a
// skip, which keeps double-triggered runs idempotent.
func (s *billingService) generateOne(ctx context.Context, enrollment models.CourseEnrollment, period billing.Period) (bool, error) {
	exists, err := s.store.Fees().ExistsForPeriod(ctx, enrollment.ID, period.Key())
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	fee := models.MonthlyFee{
		EnrollmentID:    enrollment.ID,
		MemberProfileID: enrollment.MemberProfileID,
		Period:          period.Key(),
		BillingYear:     period.Year,
		Amount:          enrollment.MonthlyFeeAmount,
		Currency:        enrollment.Currency,
		DueDate:         period.DueDate(),
		Status:          models.FeeStatusPending,
	}
	if err := s.store.Fees().Create(ctx, &fee); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}

	s.invalidateSummary(ctx, enrollment.MemberProfileID)
	return true, nil
}

func (s *billingService) Get(ctx context.Context, principalID, id uint) (dto.FeeResponse, error) {
	fee, err := s.load(ctx, id)
	if err != nil {
		return dto.FeeResponse{}, err
	}
	if !s.canAct(ctx, principalID, fee.MemberProfileID, models.ActionRead) {
		return dto.FeeResponse{}, ErrForbidden
	}
	return dto.NewFeeResponse(fee), nil
}

func (s *billingService) List(ctx context.Context, principalID uint, filter dto.FeeFilterRequest) (dto.FeeListResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return dto.FeeListResponse{}, err
	}

	repoFilter := repository.FeeFilter{
		EnrollmentID: filter.EnrollmentID,
		Period:       filter.Period,
		Status:       filter.Status,
		Page:         filter.Page,
		PageSize:     filter.PageSize,
	}
	if !s.authz.Authorize(ctx, principalID, models.ResourceMonthlyFee, models.ActionManage) {
		profile, err := s.store.Profiles().GetByUserID(ctx, principalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.FeeListResponse{Items: []dto.FeeResponse{}}, nil
			}
			return dto.FeeListResponse{}, err
		}
		repoFilter.MemberProfileID = profile.ID
	}

	fees, total, err := s.store.Fees().List(ctx, repoFilter)
	if err != nil {
		return dto.FeeListResponse{}, err
	}
	return dto.FeeListResponse{Items: dto.NewFeeResponseSlice(fees), Total: total}, nil
}

func (s *billingService) SubmitPayment(ctx context.Context, principalID, id uint, payload dto.FeePaymentSubmitRequest) (dto.FeeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FeeResponse{}, err
	}

	fee, err := s.load(ctx, id)
	if err != nil {
		return dto.FeeResponse{}, err
	}
	if !s.canAct(ctx, principalID, fee.MemberProfileID, models.ActionManage) {
		return dto.FeeResponse{}, ErrForbidden
	}
	// Payment may be reported while pending or already overdue, never twice.
	if fee.Status != models.FeeStatusPending && fee.Status != models.FeeStatusOverdue {
		return dto.FeeResponse{}, ErrInvalidTransition
	}

	submittedAt := s.now().UTC()
	fee.Status = models.FeeStatusPaymentSubmitted
	fee.PaymentTransactionID = payload.TransactionID
	fee.PaymentProofURL = payload.ProofURL
	fee.PaymentSubmittedAt = &submittedAt

	if err := s.store.Fees().Update(ctx, &fee); err != nil {
		return dto.FeeResponse{}, err
	}

	observability.FeeTransitions().WithLabelValues(string(models.FeeStatusPaymentSubmitted)).Inc()
	s.invalidateSummary(ctx, fee.MemberProfileID)
	s.logger.Info().Uint("fee_id", id).Msg("fee payment submitted")
	return dto.NewFeeResponse(fee), nil
}

// VerifyPayment settles the period: paid when the verified amount covers
// what is owed, partial otherwise. An underpaid fee never becomes paid.
func (s *billingService) VerifyPayment(ctx context.Context, verifierID, id uint, payload dto.FeePaymentVerifyRequest) (dto.FeeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FeeResponse{}, err
	}

	fee, err := s.load(ctx, id)
	if err != nil {
		return dto.FeeResponse{}, err
	}
	if fee.Status != models.FeeStatusPaymentSubmitted {
		return dto.FeeResponse{}, ErrInvalidTransition
	}

	verifiedAt := s.now().UTC()
	fee.AmountPaid = payload.AmountPaid
	fee.VerifiedBy = &verifierID
	fee.VerifiedAt = &verifiedAt
	if fee.AmountPaid >= fee.Amount {
		fee.Status = models.FeeStatusPaid
	} else {
		fee.Status = models.FeeStatusPartial
	}

	if err := s.store.Fees().Update(ctx, &fee); err != nil {
		return dto.FeeResponse{}, err
	}

	observability.FeeTransitions().WithLabelValues(string(fee.Status)).Inc()
	s.invalidateSummary(ctx, fee.MemberProfileID)
	s.logger.Info().
		Uint("fee_id", id).
		Uint("verifier_id", verifierID).
		Str("status", string(fee.Status)).
		Msg("fee payment verified")
	return dto.NewFeeResponse(fee), nil
}

func (s *billingService) Waive(ctx context.Context, adminID, id uint, payload dto.FeeWaiveRequest) (dto.FeeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FeeResponse{}, err
	}

	fee, err := s.load(ctx, id)
	if err != nil {
		return dto.FeeResponse{}, err
	}
	if fee.Status.IsTerminal() {
		return dto.FeeResponse{}, ErrInvalidTransition
	}

	waivedAt := s.now().UTC()
	fee.Status = models.FeeStatusWaived
	fee.WaivedReason = s.sanitizer.Sanitize(payload.Reason)
	fee.VerifiedBy = &adminID
	fee.VerifiedAt = &waivedAt

	if err := s.store.Fees().Update(ctx, &fee); err != nil {
		return dto.FeeResponse{}, err
	}

	observability.FeeTransitions().WithLabelValues(string(models.FeeStatusWaived)).Inc()
	s.invalidateSummary(ctx, fee.MemberProfileID)
	s.logger.Info().Uint("fee_id", id).Uint("admin_id", adminID).Msg("fee waived")
	return dto.NewFeeResponse(fee), nil
}

func (s *billingService) MarkOverdue(ctx context.Context, adminID, id uint) (dto.FeeResponse, error) {
	fee, err := s.load(ctx, id)
	if err != nil {
		return dto.FeeResponse{}, err
	}
	if fee.Status.IsTerminal() || fee.Status == models.FeeStatusOverdue {
		return dto.FeeResponse{}, ErrInvalidTransition
	}

	fee.Status = models.FeeStatusOverdue
	if err := s.store.Fees().Update(ctx, &fee); err != nil {
		return dto.FeeResponse{}, err
	}

	observability.FeeTransitions().WithLabelValues(string(models.FeeStatusOverdue)).Inc()
	s.invalidateSummary(ctx, fee.MemberProfileID)
	s.logger.Info().Uint("fee_id", id).Uint("admin_id", adminID).Msg("fee marked overdue")
	s.events.Publish(ctx, events.SubjectFeeOverdue, events.FeeEvent{
		FeeID:           fee.ID,
		MemberProfileID: fee.MemberProfileID,
		Period:          fee.Period,
		Status:          string(models.FeeStatusOverdue),
		OccurredAt:      s.now().UTC(),
	})
	return dto.NewFeeResponse(fee), nil
}

// Summary aggregates the caller's billing position, cached briefly in Redis.
func (s *billingService) Summary(ctx context.Context, principalID uint) (dto.FeeSummaryResponse, error) {
	profile, err := s.store.Profiles().GetByUserID(ctx, principalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FeeSummaryResponse{}, ErrProfileNotFound
		}
		return dto.FeeSummaryResponse{}, err
	}

	if cached, ok := s.cachedSummary(ctx, profile.ID); ok {
		return cached, nil
	}

	fees, _, err := s.store.Fees().List(ctx, repository.FeeFilter{MemberProfileID: profile.ID})
	if err != nil {
		return dto.FeeSummaryResponse{}, err
	}

	summary := dto.FeeSummaryResponse{MemberProfileID: profile.ID}
	for _, fee := range fees {
		summary.TotalBilled += fee.Amount
		summary.TotalPaid += fee.AmountPaid
		switch fee.Status {
		case models.FeeStatusOverdue:
			summary.OverdueFees++
			summary.OpenFees++
		case models.FeeStatusPending, models.FeeStatusPaymentSubmitted:
			summary.OpenFees++
		}
	}

	s.cacheSummary(ctx, summary)
	return summary, nil
}

func (s *billingService) canAct(ctx context.Context, principalID, ownerProfileID uint, action models.Action) bool {
	if principalID != 0 {
		profile, err := s.store.Profiles().GetByUserID(ctx, principalID)
		if err == nil && profile.ID == ownerProfileID {
			return true
		}
	}
	return s.authz.Authorize(ctx, principalID, models.ResourceMonthlyFee, action)
}

func (s *billingService) load(ctx context.Context, id uint) (models.MonthlyFee, error) {
	fee, err := s.store.Fees().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.MonthlyFee{}, ErrFeeNotFound
		}
		return models.MonthlyFee{}, err
	}
	return fee, nil
}

func (s *billingService) cachedSummary(ctx context.Context, profileID uint) (dto.FeeSummaryResponse, bool) {
	if s.redis == nil {
		return dto.FeeSummaryResponse{}, false
	}
	raw, err := s.redis.Get(ctx, summaryCacheKey(profileID)).Result()
	if err != nil {
		return dto.FeeSummaryResponse{}, false
	}
	var summary dto.FeeSummaryResponse
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return dto.FeeSummaryResponse{}, false
	}
	return summary, true
}

func (s *billingService) cacheSummary(ctx context.Context, summary dto.FeeSummaryResponse) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, summaryCacheKey(summary.MemberProfileID), payload, s.summaryTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("fee summary cache write failed")
	}
}

func (s *billingService) invalidateSummary(ctx context.Context, profileID uint) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, summaryCacheKey(profileID)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("fee summary cache invalidation failed")
	}
}

func summaryCacheKey(profileID uint) string {
	return fmt.Sprintf("%s%d", feeSummaryCachePrefix, profileID)
}
