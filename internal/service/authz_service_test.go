package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hkd-portal-api/internal/models"
	"github.com/noah-isme/hkd-portal-api/internal/repository"
)

func TestAuthzDeniesWithoutGrants(t *testing.T) {
	_, db := setupStore(t)
	authz := newTestAuthz(db)

	require.False(t, authz.Authorize(context.Background(), 0, models.ResourceCourse, models.ActionManage))
	require.False(t, authz.Authorize(context.Background(), 42, models.ResourceCourse, models.ActionManage))
}

func TestAuthzAllowsGrantedAction(t *testing.T) {
	_, db := setupStore(t)
	authz := newTestAuthz(db)

	grantPermission(t, db, 42, models.ResourceCourse, models.ActionManage)

	require.True(t, authz.Authorize(context.Background(), 42, models.ResourceCourse, models.ActionManage))
	require.False(t, authz.Authorize(context.Background(), 42, models.ResourceCourse, models.ActionDelete),
		"a grant covers exactly one resource/action pair")
	require.False(t, authz.Authorize(context.Background(), 43, models.ResourceCourse, models.ActionManage))
}

func TestAuthzMemoizesAndInvalidates(t *testing.T) {
	_, db := setupStore(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rbac := repository.NewRBACRepository(db)
	authz := NewAuthzService(rbac, client, time.Minute, testLogger())
	ctx := context.Background()

	grantPermission(t, db, 42, models.ResourceMonthlyFee, models.ActionVerify)
	require.True(t, authz.Authorize(ctx, 42, models.ResourceMonthlyFee, models.ActionVerify))
	require.True(t, mr.Exists("hkd:authz:42"), "resolution should be memoized")

	// The cached set keeps answering until invalidated.
	role, err := rbac.GetRoleByName(ctx, "test-42-MONTHLY_FEE-VERIFY")
	require.NoError(t, err)
	require.NoError(t, rbac.RevokeRole(ctx, 42, role.ID))
	require.True(t, authz.Authorize(ctx, 42, models.ResourceMonthlyFee, models.ActionVerify))

	authz.Invalidate(ctx, 42)
	require.False(t, authz.Authorize(ctx, 42, models.ResourceMonthlyFee, models.ActionVerify))
}
