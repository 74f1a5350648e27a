package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/turbonotes/backend/internal/services"
	"github.com/turbonotes/backend/internal/types"
	"github.com/turbonotes/backend/internal/utils"
)

var validate = validator.New()

// validateStruct runs tag validation and converts failures into the
// field-keyed message map used by validation responses.
func validateStruct(s interface{}) *types.ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return types.NewValidationError("non_field_errors", "Invalid input.")
	}

	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		fields[field] = append(fields[field], validationMessage(fe))
	}
	return &types.ValidationError{Fields: fields}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return "Ensure this field has at least " + fe.Param() + " characters."
	default:
		return "Invalid value."
	}
}

// serviceError maps service-layer errors onto the response taxonomy. Anything
// unrecognized bubbles up to the global error handler as a generic 500.
func serviceError(c *fiber.Ctx, err error) error {
	var vErr *types.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFoundResponse(c, "Not found.")
	case errors.As(err, &vErr):
		log.Warn().
			Str("url", c.OriginalURL()).
			Interface("errors", vErr.Fields).
			Msg("Validation failed")
		return utils.ValidationErrorResponse(c, vErr.Fields)
	default:
		return err
	}
}
