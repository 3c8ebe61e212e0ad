package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/dto"
	"github.com/noah-isme/hkd-portal-api/internal/repository"
)

// MemberService exposes member profile reads and administrative updates.
// Profiles are created only by the enrollment approval path.
type MemberService interface {
	GetOwn(ctx context.Context, principalID uint) (dto.MemberProfileResponse, error)
	List(ctx context.Context, filter repository.MemberProfileFilter) (dto.MemberProfileListResponse, error)
	Update(ctx context.Context, id uint, payload dto.MemberProfileUpdateRequest) (dto.MemberProfileResponse, error)
}

type memberService struct {
	profiles  repository.MemberProfileRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewMemberService constructs a MemberService instance.
func NewMemberService(profiles repository.MemberProfileRepository, validate *validator.Validate, logger zerolog.Logger) MemberService {
	return &memberService{
		profiles:  profiles,
		validator: validate,
		logger:    logger.With().Str("component", "member_service").Logger(),
	}
}

func (s *memberService) GetOwn(ctx context.Context, principalID uint) (dto.MemberProfileResponse, error) {
	profile, err := s.profiles.GetByUserID(ctx, principalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MemberProfileResponse{}, ErrProfileNotFound
		}
		return dto.MemberProfileResponse{}, err
	}
	return dto.NewMemberProfileResponse(profile), nil
}

func (s *memberService) List(ctx context.Context, filter repository.MemberProfileFilter) (dto.MemberProfileListResponse, error) {
	profiles, total, err := s.profiles.List(ctx, filter)
	if err != nil {
		return dto.MemberProfileListResponse{}, err
	}
	return dto.MemberProfileListResponse{Items: dto.NewMemberProfileResponseSlice(profiles), Total: total}, nil
}

func (s *memberService) Update(ctx context.Context, id uint, payload dto.MemberProfileUpdateRequest) (dto.MemberProfileResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MemberProfileResponse{}, err
	}

	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MemberProfileResponse{}, ErrProfileNotFound
		}
		return dto.MemberProfileResponse{}, err
	}

	if payload.FullName != nil {
		profile.FullName = *payload.FullName
	}
	if payload.Phone != nil {
		profile.Phone = *payload.Phone
	}
	if payload.Address != nil {
		profile.Address = *payload.Address
	}
	if payload.EmergencyContactName != nil {
		profile.EmergencyContactName = *payload.EmergencyContactName
	}
	if payload.EmergencyContactPhone != nil {
		profile.EmergencyContactPhone = *payload.EmergencyContactPhone
	}
	if payload.BeltRank != nil {
		profile.BeltRank = *payload.BeltRank
	}

	if err := s.profiles.Update(ctx, &profile); err != nil {
		return dto.MemberProfileResponse{}, err
	}

	s.logger.Info().Uint("profile_id", id).Msg("member profile updated")
	return dto.NewMemberProfileResponse(profile), nil
}
