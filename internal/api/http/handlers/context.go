package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/supportdesk/support-portal/internal/auth"
	"github.com/supportdesk/support-portal/internal/domain"
	"github.com/supportdesk/support-portal/pkg/errorutil"
)

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, errorutil.NewUnauthorized("authentication required")
	}
	return principal.User, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	return nil
}

func data(c *fiber.Ctx, status int, payload any) error {
	return c.Status(status).JSON(fiber.Map{"data": payload})
}
