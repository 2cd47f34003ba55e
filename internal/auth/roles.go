package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/supportdesk/support-portal/pkg/errorutil"
)

// RequireAuthenticated rejects anonymous callers.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return errorutil.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireAgent rejects callers without the agent role.
func RequireAgent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return errorutil.NewUnauthorized("authentication required")
		}
		if !principal.IsAgent() {
			return errorutil.NewForbidden("agent role required")
		}
		return c.Next()
	}
}
