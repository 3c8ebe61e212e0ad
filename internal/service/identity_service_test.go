package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hkd-portal-api/internal/models"
	"github.com/noah-isme/hkd-portal-api/internal/repository"
)

func TestIdentityEnsureProvisionsOnFirstSight(t *testing.T) {
	_, db := setupStore(t)
	users := repository.NewUserRepository(db)
	rbac := repository.NewRBACRepository(db)
	svc := NewIdentityService(users, rbac, testLogger())
	ctx := context.Background()

	admin := NewRBACAdminService(rbac, newTestAuthz(db), testValidator(), testLogger())
	require.NoError(t, admin.EnsureDefaults(ctx))

	user, err := svc.Ensure(ctx, "auth0|abc123", "jin@example.com", "Jin Seo")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.True(t, user.Active)

	assignments, err := rbac.ListAssignments(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.True(t, assignments[0].Active)

	member, err := rbac.GetRoleByName(ctx, RoleMember)
	require.NoError(t, err)
	require.Equal(t, member.ID, assignments[0].RoleID)
}

func TestIdentityEnsureIsIdempotent(t *testing.T) {
	_, db := setupStore(t)
	svc := NewIdentityService(repository.NewUserRepository(db), repository.NewRBACRepository(db), testLogger())
	ctx := context.Background()

	first, err := svc.Ensure(ctx, "auth0|abc123", "jin@example.com", "Jin Seo")
	require.NoError(t, err)

	second, err := svc.Ensure(ctx, "auth0|abc123", "stale@example.com", "Stale Name")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "jin@example.com", second.Email)
}

func TestIdentityEnsureSurvivesMissingMemberRole(t *testing.T) {
	_, db := setupStore(t)
	svc := NewIdentityService(repository.NewUserRepository(db), repository.NewRBACRepository(db), testLogger())

	user, err := svc.Ensure(context.Background(), "auth0|nobody", "new@example.com", "New Student")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
}
