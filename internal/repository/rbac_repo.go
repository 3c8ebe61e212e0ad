package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

// RBACRepository persists roles, permissions, grants and assignments.
// Grant/assign operations are idempotent; revocations are soft where an
// audit trail matters (role assignments) and hard where it does not
// (role→permission grants).
type RBACRepository interface {
	CreateRole(ctx context.Context, role *models.Role) error
	GetRoleByName(ctx context.Context, name string) (models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	SetRoleActive(ctx context.Context, roleID uint, active bool) error

	EnsurePermission(ctx context.Context, resource models.Resource, action models.Action) (models.Permission, error)
	ListPermissions(ctx context.Context) ([]models.Permission, error)

	GrantPermission(ctx context.Context, roleID, permissionID uint) error
	RevokePermission(ctx context.Context, roleID, permissionID uint) error
	ListRolePermissions(ctx context.Context, roleID uint) ([]models.Permission, error)

	AssignRole(ctx context.Context, userID, roleID, assignedBy uint) error
	RevokeRole(ctx context.Context, userID, roleID uint) error
	ListAssignments(ctx context.Context, userID uint) ([]models.RoleAssignment, error)

	PermissionsForUser(ctx context.Context, userID uint) ([]models.Permission, error)
}

type rbacRepository struct {
	db *gorm.DB
}

// NewRBACRepository instantiates a GORM-backed repository.
func NewRBACRepository(db *gorm.DB) RBACRepository {
	return &rbacRepository{db: db}
}

func (r *rbacRepository) CreateRole(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *rbacRepository) GetRoleByName(ctx context.Context, name string) (models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return models.Role{}, err
	}
	return role, nil
}

func (r *rbacRepository) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *rbacRepository) SetRoleActive(ctx context.Context, roleID uint, active bool) error {
	result := r.db.WithContext(ctx).Model(&models.Role{}).Where("id = ?", roleID).Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *rbacRepository) EnsurePermission(ctx context.Context, resource models.Resource, action models.Action) (models.Permission, error) {
	perm := models.Permission{Resource: resource, Action: action}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&perm).Error
	if err != nil {
		return models.Permission{}, err
	}

	// The insert is skipped when the pair already exists; reload either way
	// so the caller always gets the persisted row.
	var existing models.Permission
	if err := r.db.WithContext(ctx).
		Where("resource = ? AND action = ?", resource, action).
		First(&existing).Error; err != nil {
		return models.Permission{}, err
	}
	return existing, nil
}

func (r *rbacRepository) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var permissions []models.Permission
	if err := r.db.WithContext(ctx).Order("resource ASC, action ASC").Find(&permissions).Error; err != nil {
		return nil, err
	}
	return permissions, nil
}

func (r *rbacRepository) GrantPermission(ctx context.Context, roleID, permissionID uint) error {
	grant := models.RolePermission{RoleID: roleID, PermissionID: permissionID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&grant).Error
}

func (r *rbacRepository) RevokePermission(ctx context.Context, roleID, permissionID uint) error {
	return r.db.WithContext(ctx).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&models.RolePermission{}).Error
}

func (r *rbacRepository) ListRolePermissions(ctx context.Context, roleID uint) ([]models.Permission, error) {
	var permissions []models.Permission
	err := r.db.WithContext(ctx).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Find(&permissions).Error
	if err != nil {
		return nil, err
	}
	return permissions, nil
}

func (r *rbacRepository) AssignRole(ctx context.Context, userID, roleID, assignedBy uint) error {
	var existing models.RoleAssignment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		First(&existing).Error
	switch {
	case err == nil:
		if existing.Active {
			return nil
		}
		return r.db.WithContext(ctx).Model(&existing).
			Updates(map[string]interface{}{"active": true, "assigned_by": assignedBy}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		assignment := models.RoleAssignment{UserID: userID, RoleID: roleID, AssignedBy: assignedBy, Active: true}
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&assignment).Error
	default:
		return err
	}
}

func (r *rbacRepository) RevokeRole(ctx context.Context, userID, roleID uint) error {
	return r.db.WithContext(ctx).Model(&models.RoleAssignment{}).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Update("active", false).Error
}

func (r *rbacRepository) ListAssignments(ctx context.Context, userID uint) ([]models.RoleAssignment, error) {
	var assignments []models.RoleAssignment
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *rbacRepository) PermissionsForUser(ctx context.Context, userID uint) ([]models.Permission, error) {
	var permissions []models.Permission
	err := r.db.WithContext(ctx).
		Distinct("permissions.*").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN roles ON roles.id = role_permissions.role_id AND roles.active = ?", true).
		Joins("JOIN role_assignments ON role_assignments.role_id = roles.id AND role_assignments.active = ?", true).
		Where("role_assignments.user_id = ?", userID).
		Find(&permissions).Error
	if err != nil {
		return nil, err
	}
	return permissions, nil
}
