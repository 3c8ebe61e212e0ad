package models

import "time"

// Resource enumerates the domain nouns permissions can be granted on.
type Resource string

// Action enumerates the operations permissions can be granted for.
type Action string

// The resource and action vocabularies are closed. Authorization call sites
// must use these constants; free-form strings never cross a package boundary.
const (
	ResourceUser                Resource = "USER"
	ResourceCourse              Resource = "COURSE"
	ResourceEnrollment          Resource = "ENROLLMENT"
	ResourceMonthlyFee          Resource = "MONTHLY_FEE"
	ResourceProgram             Resource = "PROGRAM"
	ResourceProgramRegistration Resource = "PROGRAM_REGISTRATION"
	ResourceGallery             Resource = "GALLERY"
)

const (
	ActionCreate  Action = "CREATE"
	ActionRead    Action = "READ"
	ActionUpdate  Action = "UPDATE"
	ActionDelete  Action = "DELETE"
	ActionManage  Action = "MANAGE"
	ActionApprove Action = "APPROVE"
	ActionVerify  Action = "VERIFY"
)

// Role groups permissions under a name; deactivating a role withdraws every
// grant it carries without losing history.
type Role struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Permission is a (resource, action) pair, unique together.
type Permission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Resource  Resource  `gorm:"size:64;not null;uniqueIndex:idx_permission_resource_action" json:"resource"`
	Action    Action    `gorm:"size:32;not null;uniqueIndex:idx_permission_resource_action" json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// RolePermission grants a permission to a role.
type RolePermission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RoleID       uint      `gorm:"not null;uniqueIndex:idx_role_permission" json:"role_id"`
	PermissionID uint      `gorm:"not null;uniqueIndex:idx_role_permission" json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// RoleAssignment attaches a role to a principal. Assignments are soft
// deactivated rather than deleted so the audit trail survives revocation.
type RoleAssignment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_role_assignment" json:"user_id"`
	RoleID     uint      `gorm:"not null;uniqueIndex:idx_role_assignment" json:"role_id"`
	AssignedBy uint      `gorm:"not null" json:"assigned_by"`
	Active     bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
