// Package middleware provides HTTP middleware components for the
// application, used with the fiber web framework.
package middleware

import (
	"strings"

	"astromart/internal/models"
	"astromart/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// Auth validates the bearer token and stores the claims in the request
// context under "claims".
func Auth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.Unauthorized(c, "missing authorization header")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return utils.Unauthorized(c, "invalid authorization format")
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		_, claims, err := utils.ParseToken(tokenString)
		if err != nil {
			return utils.Unauthorized(c, "invalid token")
		}

		c.Locals("claims", claims)
		return c.Next()
	}
}

// RequirePermission rejects requests whose claims lack the permission.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.UserClaims)
		if !ok || claims == nil {
			return utils.Unauthorized(c, "invalid claims")
		}
		if !claims.HasPermission(permission) {
			return utils.Forbidden(c, "insufficient permissions")
		}
		return c.Next()
	}
}

// RequireRole rejects requests whose claims carry a different role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.UserClaims)
		if !ok || claims == nil {
			return utils.Unauthorized(c, "invalid claims")
		}
		if claims.Role != role {
			return utils.Forbidden(c, "insufficient role")
		}
		return c.Next()
	}
}
