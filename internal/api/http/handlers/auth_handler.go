package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/supportdesk/support-portal/internal/api/dto"
	"github.com/supportdesk/support-portal/internal/auth"
	"github.com/supportdesk/support-portal/internal/service"
	"github.com/supportdesk/support-portal/pkg/errorutil"
)

// AuthHandler exposes registration, login and session endpoints.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *auth.Sessions
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, sessions *auth.Sessions) *AuthHandler {
	return &AuthHandler{auth: authService, sessions: sessions}
}

// Register handles POST /api/register and logs the new user in.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.auth.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	if err := h.sessions.Start(c, user.ID); err != nil {
		return errorutil.NewInternalError(err)
	}
	return data(c, http.StatusCreated, dto.NewUserResponse(user))
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Username == "" || req.Password == "" {
		return errorutil.NewValidationError("username and password required", nil)
	}
	user, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		return errorutil.NewUnauthorized("invalid username or password")
	}
	if err != nil {
		return err
	}
	if err := h.sessions.Start(c, user.ID); err != nil {
		return errorutil.NewInternalError(err)
	}
	return data(c, http.StatusOK, dto.NewUserResponse(user))
}

// Logout handles POST /api/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.End(c); err != nil {
		return errorutil.NewInternalError(err)
	}
	return c.SendStatus(http.StatusOK)
}

// CurrentUser handles GET /api/user.
func (h *AuthHandler) CurrentUser(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserResponse(user))
}

// ChangePassword handles POST /api/user/password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req service.ChangePasswordInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangePassword(c.UserContext(), user.ID, req); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
