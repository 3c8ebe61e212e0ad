package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/dto"
	"github.com/noah-isme/hkd-portal-api/internal/models"
	"github.com/noah-isme/hkd-portal-api/internal/repository"
)

// Built-in role names. The owner role holds every permission; nothing in the
// resolver special-cases it.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// RBACAdminService manages roles, grants and assignments. All mutations are
// idempotent and invalidate the resolver's cache for affected principals.
type RBACAdminService interface {
	CreateRole(ctx context.Context, payload dto.RoleCreateRequest) (dto.RoleResponse, error)
	ListRoles(ctx context.Context) ([]dto.RoleResponse, error)
	Grant(ctx context.Context, payload dto.PermissionGrantRequest) error
	Revoke(ctx context.Context, payload dto.PermissionGrantRequest) error
	AssignRole(ctx context.Context, assignedBy uint, payload dto.RoleAssignRequest) error
	RevokeRole(ctx context.Context, payload dto.RoleAssignRequest) error
	EnsureDefaults(ctx context.Context) error
}

type rbacAdminService struct {
	rbac      repository.RBACRepository
	authz     AuthzService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewRBACAdminService constructs an RBACAdminService instance.
func NewRBACAdminService(rbac repository.RBACRepository, authz AuthzService, validate *validator.Validate, logger zerolog.Logger) RBACAdminService {
	return &rbacAdminService{
		rbac:      rbac,
		authz:     authz,
		validator: validate,
		logger:    logger.With().Str("component", "rbac_admin_service").Logger(),
	}
}

func (s *rbacAdminService) CreateRole(ctx context.Context, payload dto.RoleCreateRequest) (dto.RoleResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RoleResponse{}, err
	}

	role := models.Role{Name: strings.ToLower(strings.TrimSpace(payload.Name)), Active: true}
	if err := s.rbac.CreateRole(ctx, &role); err != nil {
		return dto.RoleResponse{}, err
	}

	s.logger.Info().Str("role", role.Name).Msg("role created")
	return dto.NewRoleResponse(role, nil), nil
}

func (s *rbacAdminService) ListRoles(ctx context.Context) ([]dto.RoleResponse, error) {
	roles, err := s.rbac.ListRoles(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.RoleResponse, 0, len(roles))
	for _, role := range roles {
		permissions, err := s.rbac.ListRolePermissions(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, dto.NewRoleResponse(role, permissions))
	}
	return responses, nil
}

func (s *rbacAdminService) Grant(ctx context.Context, payload dto.PermissionGrantRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	role, err := s.loadRole(ctx, payload.Role)
	if err != nil {
		return err
	}
	permission, err := s.rbac.EnsurePermission(ctx, payload.Resource, payload.Action)
	if err != nil {
		return err
	}
	if err := s.rbac.GrantPermission(ctx, role.ID, permission.ID); err != nil {
		return err
	}

	s.logger.Info().
		Str("role", role.Name).
		Str("resource", string(payload.Resource)).
		Str("action", string(payload.Action)).
		Msg("permission granted")
	return nil
}

func (s *rbacAdminService) Revoke(ctx context.Context, payload dto.PermissionGrantRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	role, err := s.loadRole(ctx, payload.Role)
	if err != nil {
		return err
	}
	permission, err := s.rbac.EnsurePermission(ctx, payload.Resource, payload.Action)
	if err != nil {
		return err
	}
	return s.rbac.RevokePermission(ctx, role.ID, permission.ID)
}

func (s *rbacAdminService) AssignRole(ctx context.Context, assignedBy uint, payload dto.RoleAssignRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	role, err := s.loadRole(ctx, payload.Role)
	if err != nil {
		return err
	}
	if err := s.rbac.AssignRole(ctx, payload.UserID, role.ID, assignedBy); err != nil {
		return err
	}

	s.authz.Invalidate(ctx, payload.UserID)
	s.logger.Info().Uint("user_id", payload.UserID).Str("role", role.Name).Msg("role assigned")
	return nil
}

func (s *rbacAdminService) RevokeRole(ctx context.Context, payload dto.RoleAssignRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	role, err := s.loadRole(ctx, payload.Role)
	if err != nil {
		return err
	}
	if err := s.rbac.RevokeRole(ctx, payload.UserID, role.ID); err != nil {
		return err
	}

	s.authz.Invalidate(ctx, payload.UserID)
	s.logger.Info().Uint("user_id", payload.UserID).Str("role", role.Name).Msg("role revoked")
	return nil
}

// EnsureDefaults seeds the built-in roles and their grants at boot. Every
// operation below is idempotent, so re-running on each start is safe.
func (s *rbacAdminService) EnsureDefaults(ctx context.Context) error {
	grants := map[string][]models.Permission{
		RoleOwner:  allPermissions(),
		RoleAdmin:  adminPermissions(),
		RoleMember: memberPermissions(),
	}

	for _, name := range []string{RoleOwner, RoleAdmin, RoleMember} {
		role, err := s.rbac.GetRoleByName(ctx, name)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role = models.Role{Name: name, Active: true}
			if err := s.rbac.CreateRole(ctx, &role); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		for _, grant := range grants[name] {
			permission, err := s.rbac.EnsurePermission(ctx, grant.Resource, grant.Action)
			if err != nil {
				return err
			}
			if err := s.rbac.GrantPermission(ctx, role.ID, permission.ID); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *rbacAdminService) loadRole(ctx context.Context, name string) (models.Role, error) {
	role, err := s.rbac.GetRoleByName(ctx, strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Role{}, ErrRoleNotFound
		}
		return models.Role{}, err
	}
	return role, nil
}

func allPermissions() []models.Permission {
	resources := []models.Resource{
		models.ResourceUser,
		models.ResourceCourse,
		models.ResourceEnrollment,
		models.ResourceMonthlyFee,
		models.ResourceProgram,
		models.ResourceProgramRegistration,
		models.ResourceGallery,
	}
	actions := []models.Action{
		models.ActionCreate,
		models.ActionRead,
		models.ActionUpdate,
		models.ActionDelete,
		models.ActionManage,
		models.ActionApprove,
		models.ActionVerify,
	}

	var permissions []models.Permission
	for _, resource := range resources {
		for _, action := range actions {
			permissions = append(permissions, models.Permission{Resource: resource, Action: action})
		}
	}
	return permissions
}

func adminPermissions() []models.Permission {
	return []models.Permission{
		{Resource: models.ResourceCourse, Action: models.ActionManage},
		{Resource: models.ResourceEnrollment, Action: models.ActionRead},
		{Resource: models.ResourceEnrollment, Action: models.ActionManage},
		{Resource: models.ResourceEnrollment, Action: models.ActionVerify},
		{Resource: models.ResourceEnrollment, Action: models.ActionApprove},
		{Resource: models.ResourceMonthlyFee, Action: models.ActionManage},
		{Resource: models.ResourceMonthlyFee, Action: models.ActionVerify},
		{Resource: models.ResourceProgram, Action: models.ActionManage},
		{Resource: models.ResourceProgramRegistration, Action: models.ActionManage},
		{Resource: models.ResourceProgramRegistration, Action: models.ActionApprove},
		{Resource: models.ResourceProgramRegistration, Action: models.ActionDelete},
		{Resource: models.ResourceUser, Action: models.ActionRead},
	}
}

func memberPermissions() []models.Permission {
	return []models.Permission{
		{Resource: models.ResourceEnrollment, Action: models.ActionCreate},
		{Resource: models.ResourceProgramRegistration, Action: models.ActionCreate},
	}
}
