package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"audiotable/internal/logging"
	"audiotable/internal/middleware"
	"audiotable/internal/services"
	"audiotable/internal/utils"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login handles user login requests. Credentials come as form fields or JSON.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}

	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequestError(c, "Invalid request body")
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return utils.SendBadRequestError(c, "Username and password are required")
	}

	authToken, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return utils.SendError(c, http.StatusUnauthorized, "Invalid credentials")
		}
		logging.WithModuleContext(c.UserContext(), "auth").Error().Err(err).Msg("login failed")
		return utils.SendInternalServerError(c, "Login failed")
	}

	return c.JSON(authToken)
}

// Me reports the authenticated user
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ok":       true,
		"username": middleware.GetUsername(c),
	})
}
