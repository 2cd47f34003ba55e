package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/supportdesk/support-portal/internal/domain"
	"github.com/supportdesk/support-portal/internal/storage"
	"github.com/supportdesk/support-portal/pkg/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	SessionID string
	User      *domain.User
}

// IsAgent reports whether the caller holds the agent role.
func (p *Principal) IsAgent() bool {
	return p != nil && p.User != nil && p.User.IsAgent
}

// AuthMiddleware resolves the session cookie into a Principal.
type AuthMiddleware struct {
	sessions *Sessions
	users    storage.Storage
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(sessions *Sessions, users storage.Storage) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, users: users}
}

// Handle attaches the principal when a valid session exists. Anonymous
// requests pass through; guards decide whether they may proceed.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	id, data, err := m.sessions.Load(c)
	if err != nil {
		return errorutil.NewInternalError(err)
	}
	if data == nil {
		return c.Next()
	}

	user, err := m.users.GetUser(c.UserContext(), data.UserID)
	if err != nil {
		return errorutil.NewInternalError(err)
	}
	if user == nil {
		return c.Next()
	}

	c.Locals(principalKey, &Principal{SessionID: id, User: user})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
