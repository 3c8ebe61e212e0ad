package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

func TestRBACRepositoryPermissionsForUserUnionsRoles(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRBACRepository(db)
	ctx := context.Background()

	coach := models.Role{Name: "coach", Active: true}
	treasurer := models.Role{Name: "treasurer", Active: true}
	require.NoError(t, repo.CreateRole(ctx, &coach))
	require.NoError(t, repo.CreateRole(ctx, &treasurer))

	readEnrollment, err := repo.EnsurePermission(ctx, models.ResourceEnrollment, models.ActionRead)
	require.NoError(t, err)
	verifyFee, err := repo.EnsurePermission(ctx, models.ResourceMonthlyFee, models.ActionVerify)
	require.NoError(t, err)

	require.NoError(t, repo.GrantPermission(ctx, coach.ID, readEnrollment.ID))
	require.NoError(t, repo.GrantPermission(ctx, treasurer.ID, verifyFee.ID))

	require.NoError(t, repo.AssignRole(ctx, 42, coach.ID, 1))
	require.NoError(t, repo.AssignRole(ctx, 42, treasurer.ID, 1))

	permissions, err := repo.PermissionsForUser(ctx, 42)
	require.NoError(t, err)
	require.Len(t, permissions, 2, "a principal's effective set is the union across roles")
}

func TestRBACRepositoryGrantAndAssignAreIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRBACRepository(db)
	ctx := context.Background()

	role := models.Role{Name: "coach", Active: true}
	require.NoError(t, repo.CreateRole(ctx, &role))

	permission, err := repo.EnsurePermission(ctx, models.ResourceCourse, models.ActionManage)
	require.NoError(t, err)
	again, err := repo.EnsurePermission(ctx, models.ResourceCourse, models.ActionManage)
	require.NoError(t, err)
	require.Equal(t, permission.ID, again.ID)

	require.NoError(t, repo.GrantPermission(ctx, role.ID, permission.ID))
	require.NoError(t, repo.GrantPermission(ctx, role.ID, permission.ID))
	granted, err := repo.ListRolePermissions(ctx, role.ID)
	require.NoError(t, err)
	require.Len(t, granted, 1)

	require.NoError(t, repo.AssignRole(ctx, 7, role.ID, 1))
	require.NoError(t, repo.AssignRole(ctx, 7, role.ID, 1))
	assignments, err := repo.ListAssignments(ctx, 7)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
}

func TestRBACRepositoryRevokeRoleKeepsAuditRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRBACRepository(db)
	ctx := context.Background()

	role := models.Role{Name: "coach", Active: true}
	require.NoError(t, repo.CreateRole(ctx, &role))
	permission, err := repo.EnsurePermission(ctx, models.ResourceCourse, models.ActionManage)
	require.NoError(t, err)
	require.NoError(t, repo.GrantPermission(ctx, role.ID, permission.ID))
	require.NoError(t, repo.AssignRole(ctx, 7, role.ID, 1))

	require.NoError(t, repo.RevokeRole(ctx, 7, role.ID))

	permissions, err := repo.PermissionsForUser(ctx, 7)
	require.NoError(t, err)
	require.Empty(t, permissions, "a revoked role must not contribute permissions")

	assignments, err := repo.ListAssignments(ctx, 7)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.False(t, assignments[0].Active)

	// Re-assignment reactivates the existing row instead of duplicating it.
	require.NoError(t, repo.AssignRole(ctx, 7, role.ID, 2))
	permissions, err = repo.PermissionsForUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, permissions, 1)
}

func TestRBACRepositoryInactiveRoleContributesNothing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRBACRepository(db)
	ctx := context.Background()

	role := models.Role{Name: "coach", Active: true}
	require.NoError(t, repo.CreateRole(ctx, &role))
	permission, err := repo.EnsurePermission(ctx, models.ResourceCourse, models.ActionManage)
	require.NoError(t, err)
	require.NoError(t, repo.GrantPermission(ctx, role.ID, permission.ID))
	require.NoError(t, repo.AssignRole(ctx, 7, role.ID, 1))

	require.NoError(t, repo.SetRoleActive(ctx, role.ID, false))

	permissions, err := repo.PermissionsForUser(ctx, 7)
	require.NoError(t, err)
	require.Empty(t, permissions)
}
