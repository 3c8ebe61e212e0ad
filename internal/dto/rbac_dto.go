package dto

import (
	"github.com/noah-isme/hkd-portal-api/internal/models"
)

// RoleCreateRequest defines a new role.
type RoleCreateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=64,lowercase"`
}

// PermissionGrantRequest grants or revokes a (resource, action) pair on a role.
type PermissionGrantRequest struct {
	Role     string          `json:"role" validate:"required"`
	Resource models.Resource `json:"resource" validate:"required,oneof=USER COURSE ENROLLMENT MONTHLY_FEE PROGRAM PROGRAM_REGISTRATION GALLERY"`
	Action   models.Action   `json:"action" validate:"required,oneof=CREATE READ UPDATE DELETE MANAGE APPROVE VERIFY"`
}

// RoleAssignRequest attaches or detaches a role for a principal.
type RoleAssignRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required"`
}

// RoleResponse is the serialized representation of a role and its grants.
type RoleResponse struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Active      bool                 `json:"active"`
	Permissions []PermissionResponse `json:"permissions,omitempty"`
}

// PermissionResponse is the serialized representation of a permission.
type PermissionResponse struct {
	Resource models.Resource `json:"resource"`
	Action   models.Action   `json:"action"`
}

// NewRoleResponse converts a role and its permissions into a DTO.
func NewRoleResponse(role models.Role, permissions []models.Permission) RoleResponse {
	resp := RoleResponse{
		ID:     role.ID,
		Name:   role.Name,
		Active: role.Active,
	}
	for _, permission := range permissions {
		resp.Permissions = append(resp.Permissions, PermissionResponse{
			Resource: permission.Resource,
			Action:   permission.Action,
		})
	}
	return resp
}
