package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/turbonotes/backend/internal/types"
)

// GlobalErrorHandler handles errors escaping the handlers. Unhandled faults
// are surfaced as a generic server error with no user-actionable detail.
func GlobalErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	errorType := "unknown"

	var customErr *types.CustomError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &customErr):
		code = customErr.Code
		message = customErr.Message
		errorType = customErr.Type
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	default:
		log.Error().Err(err).Str("url", c.OriginalURL()).Msg("Unhandled error")
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
