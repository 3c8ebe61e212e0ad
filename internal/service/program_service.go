package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/dto"
	"github.com/noah-isme/hkd-portal-api/internal/events"
	"github.com/noah-isme/hkd-portal-api/internal/models"
	"github.com/noah-isme/hkd-portal-api/internal/repository"
)

// ProgramService handles one-off programs and their capacity-checked
// registrations. Structurally the simpler sibling of the enrollment
// workflow: same payment fields, no downstream profile or enrollment
// creation on approval.
type ProgramService interface {
	CreateProgram(ctx context.Context, payload dto.ProgramCreateRequest) (dto.ProgramResponse, error)
	UpdateProgram(ctx context.Context, id uint, payload dto.ProgramUpdateRequest) (dto.ProgramResponse, error)
	ListPrograms(ctx context.Context, openOnly bool) ([]dto.ProgramResponse, error)

	Register(ctx context.Context, principalID, programID uint, payload dto.RegistrationCreateRequest) (dto.RegistrationResponse, error)
	UpdateRegistrationStatus(ctx context.Context, reviewerID, id uint, payload dto.RegistrationStatusRequest) (dto.RegistrationResponse, error)
	ListRegistrations(ctx context.Context, principalID uint, filter repository.RegistrationFilter) (dto.RegistrationListResponse, error)
	DeleteRegistration(ctx context.Context, principalID, id uint) error
}

type programService struct {
	store     repository.Store
	authz     AuthzService
	validator *validator.Validate
	events    *events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewProgramService constructs a ProgramService instance.
func NewProgramService(store repository.Store, authz AuthzService, validate *validator.Validate, publisher *events.Publisher, logger zerolog.Logger) ProgramService {
	return &programService{
		store:     store,
		authz:     authz,
		validator: validate,
		events:    publisher,
		logger:    logger.With().Str("component", "program_service").Logger(),
		now:       time.Now,
	}
}

func (s *programService) CreateProgram(ctx context.Context, payload dto.ProgramCreateRequest) (dto.ProgramResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProgramResponse{}, err
	}

	startsAt, err := time.Parse(time.RFC3339, payload.StartsAt)
	if err != nil {
		return dto.ProgramResponse{}, err
	}

	currency := payload.Currency
	if currency == "" {
		currency = "USD"
	}

	program := models.Program{
		Name:            payload.Name,
		Description:     payload.Description,
		Type:            models.ProgramType(payload.Type),
		FeeAmount:       payload.FeeAmount,
		Currency:        currency,
		StartsAt:        startsAt,
		MaxParticipants: payload.MaxParticipants,
		Open:            true,
	}
	if err := s.store.Programs().Create(ctx, &program); err != nil {
		return dto.ProgramResponse{}, err
	}

	s.logger.Info().Uint("program_id", program.ID).Str("type", payload.Type).Msg("program created")
	return dto.NewProgramResponse(program), nil
}

func (s *programService) UpdateProgram(ctx context.Context, id uint, payload dto.ProgramUpdateRequest) (dto.ProgramResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProgramResponse{}, err
	}

	program, err := s.store.Programs().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgramResponse{}, ErrProgramNotFound
		}
		return dto.ProgramResponse{}, err
	}

	if payload.Name != nil {
		program.Name = *payload.Name
	}
	if payload.Description != nil {
		program.Description = *payload.Description
	}
	if payload.FeeAmount != nil {
		program.FeeAmount = *payload.FeeAmount
	}
	if payload.MaxParticipants != nil {
		program.MaxParticipants = *payload.MaxParticipants
	}
	if payload.Open != nil {
		program.Open = *payload.Open
	}

	if err := s.store.Programs().Update(ctx, &program); err != nil {
		return dto.ProgramResponse{}, err
	}
	return dto.NewProgramResponse(program), nil
}

func (s *programService) ListPrograms(ctx context.Context, openOnly bool) ([]dto.ProgramResponse, error) {
	programs, err := s.store.Programs().List(ctx, openOnly)
	if err != nil {
		return nil, err
	}
	return dto.NewProgramResponseSlice(programs), nil
}

// Register creates a pending_payment registration and claims a capacity
// slot atomically, so two racing registrations cannot both take the last
// place.
func (s *programService) Register(ctx context.Context, principalID, programID uint, payload dto.RegistrationCreateRequest) (dto.RegistrationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RegistrationResponse{}, err
	}

	profile, err := s.store.Profiles().GetByUserID(ctx, principalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RegistrationResponse{}, ErrProfileNotFound
		}
		return dto.RegistrationResponse{}, err
	}
	if !profile.IsComplete() {
		return dto.RegistrationResponse{}, ErrProfileIncomplete
	}

	var created models.ProgramRegistration
	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		program, err := tx.Programs().GetByID(ctx, programID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProgramNotFound
			}
			return err
		}
		if !program.Open {
			return ErrProgramClosed
		}

		open, err := tx.Registrations().HasNonTerminal(ctx, principalID, programID)
		if err != nil {
			return err
		}
		if open {
			return ErrDuplicateRegistration
		}

		if err := tx.Programs().IncrementParticipants(ctx, programID); err != nil {
			if errors.Is(err, repository.ErrNoCapacity) {
				return ErrProgramFull
			}
			return err
		}

		created = models.ProgramRegistration{
			UserID:               principalID,
			ProgramID:            programID,
			MemberProfileID:      profile.ID,
			Status:               models.RegistrationStatusPendingPayment,
			PaymentTransactionID: payload.TransactionID,
			PaymentProofURL:      payload.ProofURL,
		}
		if payload.TransactionID != "" {
			submittedAt := s.now().UTC()
			created.PaymentSubmittedAt = &submittedAt
		}
		if err := tx.Registrations().Create(ctx, &created); err != nil {
			// Lost the open-registration index race; the rollback also
			// returns the claimed capacity slot.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateRegistration
			}
			return err
		}
		return nil
	})
	if err != nil {
		return dto.RegistrationResponse{}, err
	}

	s.logger.Info().Uint("registration_id", created.ID).Uint("program_id", programID).Msg("program registration created")
	return s.reload(ctx, created.ID)
}

func (s *programService) UpdateRegistrationStatus(ctx context.Context, reviewerID, id uint, payload dto.RegistrationStatusRequest) (dto.RegistrationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RegistrationResponse{}, err
	}

	registration, err := s.loadRegistration(ctx, id)
	if err != nil {
		return dto.RegistrationResponse{}, err
	}
	if registration.Status.IsTerminal() {
		return dto.RegistrationResponse{}, ErrInvalidTransition
	}

	now := s.now().UTC()
	registration.Status = payload.Status
	registration.ReviewedBy = &reviewerID
	registration.ReviewedAt = &now

	if err := s.store.Registrations().Update(ctx, &registration); err != nil {
		return dto.RegistrationResponse{}, err
	}

	s.logger.Info().
		Uint("registration_id", id).
		Str("status", string(payload.Status)).
		Msg("registration reviewed")
	s.events.Publish(ctx, events.SubjectRegistrationReviewed, events.RegistrationEvent{
		RegistrationID: registration.ID,
		UserID:         registration.UserID,
		ProgramID:      registration.ProgramID,
		Status:         string(payload.Status),
		OccurredAt:     now,
	})

	return s.reload(ctx, id)
}

func (s *programService) ListRegistrations(ctx context.Context, principalID uint, filter repository.RegistrationFilter) (dto.RegistrationListResponse, error) {
	if !s.authz.Authorize(ctx, principalID, models.ResourceProgramRegistration, models.ActionManage) {
		filter.UserID = principalID
	}

	registrations, total, err := s.store.Registrations().List(ctx, filter)
	if err != nil {
		return dto.RegistrationListResponse{}, err
	}
	return dto.RegistrationListResponse{Items: dto.NewRegistrationResponseSlice(registrations), Total: total}, nil
}

// DeleteRegistration removes a registration and returns its capacity slot.
func (s *programService) DeleteRegistration(ctx context.Context, principalID, id uint) error {
	registration, err := s.loadRegistration(ctx, id)
	if err != nil {
		return err
	}
	if registration.UserID != principalID &&
		!s.authz.Authorize(ctx, principalID, models.ResourceProgramRegistration, models.ActionDelete) {
		return ErrForbidden
	}

	return s.store.Atomic(ctx, func(tx repository.Store) error {
		if err := tx.Registrations().Delete(ctx, id); err != nil {
			return err
		}
		return tx.Programs().DecrementParticipants(ctx, registration.ProgramID)
	})
}

func (s *programService) loadRegistration(ctx context.Context, id uint) (models.ProgramRegistration, error) {
	registration, err := s.store.Registrations().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ProgramRegistration{}, ErrRegistrationNotFound
		}
		return models.ProgramRegistration{}, err
	}
	return registration, nil
}

func (s *programService) reload(ctx context.Context, id uint) (dto.RegistrationResponse, error) {
	registration, err := s.loadRegistration(ctx, id)
	if err != nil {
		return dto.RegistrationResponse{}, err
	}
	return dto.NewRegistrationResponse(registration), nil
}
