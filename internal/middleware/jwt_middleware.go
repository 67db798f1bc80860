package middleware

import (
	"strings"

	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserIDKey is the fiber.Locals key holding the authenticated customer id.
const UserIDKey = "user_id"

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required", "")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'", "")
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			return unauthorized(c, "Invalid or expired token", err.Error())
		}

		userID, _ := claims["user_id"].(string)
		if userID == "" {
			return unauthorized(c, "Token carries no user", "")
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// UserID returns the customer id stored by AuthRequired.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

func unauthorized(c *fiber.Ctx, message, detail string) error {
	body := fiber.Map{
		"message":  message,
		"redirect": "/api/v1/auth/login",
	}
	if detail != "" {
		body["error"] = detail
	}
	return c.Status(fiber.StatusUnauthorized).JSON(body)
}
