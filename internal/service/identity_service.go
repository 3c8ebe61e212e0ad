package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/models"
	"github.com/noah-isme/hkd-portal-api/internal/repository"
)

// IdentityService turns a verified external subject into a local principal.
// A User row is provisioned on first sight, with the member role attached so
// new principals can immediately apply for courses.
type IdentityService interface {
	Ensure(ctx context.Context, externalID, email, name string) (models.User, error)
}

type identityService struct {
	users  repository.UserRepository
	rbac   repository.RBACRepository
	logger zerolog.Logger
}

// NewIdentityService constructs an IdentityService instance.
func NewIdentityService(users repository.UserRepository, rbac repository.RBACRepository, logger zerolog.Logger) IdentityService {
	return &identityService{
		users:  users,
		rbac:   rbac,
		logger: logger.With().Str("component", "identity_service").Logger(),
	}
}

func (s *identityService) Ensure(ctx context.Context, externalID, email, name string) (models.User, error) {
	user, err := s.users.GetByExternalID(ctx, externalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	user = models.User{ExternalID: externalID, Email: email, Name: name, Active: true}
	if err := s.users.Create(ctx, &user); err != nil {
		// A concurrent request may have provisioned the same subject.
		existing, lookupErr := s.users.GetByExternalID(ctx, externalID)
		if lookupErr == nil {
			return existing, nil
		}
		return models.User{}, err
	}

	role, err := s.rbac.GetRoleByName(ctx, RoleMember)
	if err != nil {
		s.logger.Warn().Err(err).Msg("member role missing; new user provisioned without it")
		return user, nil
	}
	if err := s.rbac.AssignRole(ctx, user.ID, role.ID, user.ID); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to attach member role")
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("principal provisioned")
	return user, nil
}
