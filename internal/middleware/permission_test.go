package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

type stubAuthz struct {
	allowed map[string]bool
}

func (s stubAuthz) Authorize(_ context.Context, principalID uint, resource models.Resource, action models.Action) bool {
	return principalID != 0 && s.allowed[string(resource)+":"+string(action)]
}

func (s stubAuthz) Invalidate(context.Context, uint) {}

func permissionTestApp(authz stubAuthz, userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals("user_id", userID)
		}
		return c.Next()
	})
	app.Get("/admin", RequirePermission(authz, models.ResourceCourse, models.ActionManage), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequirePermissionAllowsGrantedPrincipal(t *testing.T) {
	app := permissionTestApp(stubAuthz{allowed: map[string]bool{"COURSE:MANAGE": true}}, 7)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequirePermissionRejectsMissingGrant(t *testing.T) {
	app := permissionTestApp(stubAuthz{}, 7)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequirePermissionRejectsAnonymous(t *testing.T) {
	app := permissionTestApp(stubAuthz{allowed: map[string]bool{"COURSE:MANAGE": true}}, 0)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
