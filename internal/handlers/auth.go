package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/turbonotes/backend/internal/config"
	"github.com/turbonotes/backend/internal/middleware"
	"github.com/turbonotes/backend/internal/services"
	"github.com/turbonotes/backend/internal/types"
	"github.com/turbonotes/backend/internal/utils"
	"gorm.io/gorm"
)

// AuthHandler handles registration, token and current-user routes
type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Register handles POST /api/auth/register/
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return serviceError(c, types.NewValidationError("non_field_errors", "Malformed request body."))
	}

	if vErr := validateStruct(&req); vErr != nil {
		return serviceError(c, vErr)
	}

	user, err := services.RegisterUser(h.DB, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			log.Warn().
				Str("email", services.NormalizeEmail(req.Email)).
				Msg("Registration rejected: email already registered")
			return utils.ValidationErrorResponse(c, map[string][]string{
				"email": {"A user with this email already exists."},
			})
		}
		return serviceError(c, err)
	}

	pair, err := services.IssueTokenPair(h.Cfg, user.ID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(pair)
}

// Login handles POST /api/auth/token/
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.UnauthorizedResponse(c)
	}

	user, err := services.AuthenticateUser(h.DB, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return utils.UnauthorizedResponse(c)
		}
		return err
	}

	pair, err := services.IssueTokenPair(h.Cfg, user.ID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(pair)
}

// Refresh handles POST /api/auth/token/refresh/
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.Refresh == "" {
		return utils.UnauthorizedResponse(c)
	}

	access, err := services.RefreshAccessToken(h.Cfg, req.Refresh)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return utils.UnauthorizedResponse(c)
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"access": access})
}

// Me handles GET /api/auth/me/
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}

	// A token outliving its account (deleted or deactivated) is rejected
	// the same way as any other bad credential.
	user, err := services.GetUserByID(h.DB, userID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return utils.UnauthorizedResponse(c)
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"email": user.Email})
}
