package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/hkd-portal-api/internal/service"
	"github.com/noah-isme/hkd-portal-api/internal/utils"
)

// JWTProtected validates bearer tokens and resolves the external subject to a
// local principal, provisioning one on first sight. The local user id is
// stored under the "user_id" request local.
func JWTProtected(secret string, identity service.IdentityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		subject, _ := claims["sub"].(string)
		if strings.TrimSpace(subject) == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "token subject missing")
		}

		user, err := identity.Ensure(c.UserContext(), subject, claimString(claims, "email"), claimString(claims, "name"))
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "failed to resolve principal")
		}
		if !user.Active {
			return utils.SendError(c, fiber.StatusForbidden, "account disabled")
		}

		c.Locals("user_id", user.ID)
		return c.Next()
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	if value, ok := claims[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}
