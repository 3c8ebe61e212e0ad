package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hkd-portal-api/internal/dto"
	"github.com/noah-isme/hkd-portal-api/internal/models"
	"github.com/noah-isme/hkd-portal-api/internal/repository"
)

func TestEnsureDefaultsSeedsBuiltInRoles(t *testing.T) {
	_, db := setupStore(t)
	rbac := repository.NewRBACRepository(db)
	authz := newTestAuthz(db)
	svc := NewRBACAdminService(rbac, authz, testValidator(), testLogger())
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaults(ctx))
	// Re-running must be a no-op, not an error.
	require.NoError(t, svc.EnsureDefaults(ctx))

	owner, err := rbac.GetRoleByName(ctx, RoleOwner)
	require.NoError(t, err)
	ownerGrants, err := rbac.ListRolePermissions(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, ownerGrants, 49, "owner holds the full resource/action matrix")

	member, err := rbac.GetRoleByName(ctx, RoleMember)
	require.NoError(t, err)
	memberGrants, err := rbac.ListRolePermissions(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, memberGrants, 2)
}

func TestOwnerResolvesEveryPermissionWithoutSpecialCasing(t *testing.T) {
	_, db := setupStore(t)
	rbac := repository.NewRBACRepository(db)
	authz := newTestAuthz(db)
	svc := NewRBACAdminService(rbac, authz, testValidator(), testLogger())
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaults(ctx))
	require.NoError(t, svc.AssignRole(ctx, 1, dto.RoleAssignRequest{UserID: 10, Role: RoleOwner}))

	require.True(t, authz.Authorize(ctx, 10, models.ResourceEnrollment, models.ActionApprove))
	require.True(t, authz.Authorize(ctx, 10, models.ResourceMonthlyFee, models.ActionManage))
	require.True(t, authz.Authorize(ctx, 10, models.ResourceUser, models.ActionManage))
}

func TestGrantAndRevokeChangeResolution(t *testing.T) {
	_, db := setupStore(t)
	rbac := repository.NewRBACRepository(db)
	authz := newTestAuthz(db)
	svc := NewRBACAdminService(rbac, authz, testValidator(), testLogger())
	ctx := context.Background()

	created, err := svc.CreateRole(ctx, dto.RoleCreateRequest{Name: "Treasurer"})
	require.NoError(t, err)
	require.Equal(t, "treasurer", created.Name)

	grant := dto.PermissionGrantRequest{Role: "treasurer", Resource: models.ResourceMonthlyFee, Action: models.ActionVerify}
	require.NoError(t, svc.Grant(ctx, grant))
	require.NoError(t, svc.AssignRole(ctx, 1, dto.RoleAssignRequest{UserID: 20, Role: "treasurer"}))
	require.True(t, authz.Authorize(ctx, 20, models.ResourceMonthlyFee, models.ActionVerify))

	require.NoError(t, svc.Revoke(ctx, grant))
	require.False(t, authz.Authorize(ctx, 20, models.ResourceMonthlyFee, models.ActionVerify))

	require.NoError(t, svc.RevokeRole(ctx, dto.RoleAssignRequest{UserID: 20, Role: "treasurer"}))
	_, err = svc.CreateRole(ctx, dto.RoleCreateRequest{Name: ""})
	require.Error(t, err)
}

func TestGrantUnknownRoleFails(t *testing.T) {
	_, db := setupStore(t)
	svc := NewRBACAdminService(repository.NewRBACRepository(db), newTestAuthz(db), testValidator(), testLogger())

	err := svc.Grant(context.Background(), dto.PermissionGrantRequest{Role: "ghost", Resource: models.ResourceCourse, Action: models.ActionManage})
	require.ErrorIs(t, err, ErrRoleNotFound)
}
