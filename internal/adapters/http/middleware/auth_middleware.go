package middleware

import (
	"strings"

	"altn-timeclock/internal/config"
	"altn-timeclock/internal/core/domain"
	"altn-timeclock/internal/pkg/jwt"
	"altn-timeclock/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware guards the admin section. The access token is read
// from the cookie first, then the Authorization header.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Set admin info in context
		c.Locals("employeeID", claims.EmployeeID)
		c.Locals("name", claims.Name)
		c.Locals("userLevel", claims.UserLevel)

		return c.Next()
	}
}

// AdminOnly allows only access levels 1 and 2
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		level, ok := c.Locals("userLevel").(int)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if level < 1 || level > domain.MaxAdminLevel {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}
		return c.Next()
	}
}

// OwnerOnly allows only access level 1
func OwnerOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		level, ok := c.Locals("userLevel").(int)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if level != 1 {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}
		return c.Next()
	}
}
