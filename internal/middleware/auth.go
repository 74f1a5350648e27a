package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/turbonotes/backend/internal/config"
	"github.com/turbonotes/backend/internal/services"
	"github.com/turbonotes/backend/internal/types"
)

// UserIDKey is the context key under which RequireAuth stores the caller id.
const UserIDKey = "userID"

// RequireAuth validates the bearer access token before any handler runs.
// A request without a valid credential is rejected with a uniform 401.
func RequireAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized()
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return unauthorized()
		}

		userID, err := services.ParseToken(cfg, tokenStr, services.TokenTypeAccess)
		if err != nil {
			return unauthorized()
		}

		c.Locals(UserIDKey, userID)

		return c.Next()
	}
}

// CallerID extracts the authenticated user id set by RequireAuth
func CallerID(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals(UserIDKey).(string)
	if !ok || userID == "" {
		return "", unauthorized()
	}
	return userID, nil
}

func unauthorized() error {
	return &types.CustomError{
		Code:    fiber.StatusUnauthorized,
		Message: "Authentication credentials were not provided or are invalid",
		Type:    "authentication",
	}
}
