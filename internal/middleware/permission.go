package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/hkd-portal-api/internal/models"
	"github.com/noah-isme/hkd-portal-api/internal/service"
	"github.com/noah-isme/hkd-portal-api/internal/utils"
)

// RequirePermission ensures the authenticated principal holds the given
// resource/action permission. Resolution errors deny access.
func RequirePermission(authz service.AuthzService, resource models.Resource, action models.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(uint)
		if !ok || userID == 0 {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		if !authz.Authorize(c.UserContext(), userID, resource, action) {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
