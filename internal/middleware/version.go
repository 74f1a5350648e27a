package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// APIVersion is the current API contract version advertised on every response.
const APIVersion = "1.0.0"

// VersionMiddleware records the client's requested X-Api-Version and stamps
// the served version on the response
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requested := c.Get("X-Api-Version", APIVersion)
		c.Locals("apiVersion", requested)
		c.Set("X-Api-Version", APIVersion)
		return c.Next()
	}
}
