package auth

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/supportdesk/support-portal/internal/config"
	"github.com/supportdesk/support-portal/internal/session"
)

// Sessions issues and revokes login sessions backed by a session.Store.
type Sessions struct {
	store  session.Store
	signer *CookieSigner
	cfg    config.SessionConfig
	now    func() time.Time
}

// NewSessions wires the session store handle exposed by the storage engine.
func NewSessions(store session.Store, cfg config.SessionConfig) *Sessions {
	return &Sessions{
		store:  store,
		signer: NewCookieSigner(cfg.Secret),
		cfg:    cfg,
		now:    time.Now,
	}
}

// Start creates a session for userID and sets the cookie.
func (s *Sessions) Start(c *fiber.Ctx, userID int64) error {
	now := s.now()
	ttl := s.cfg.TTL()
	id := uuid.NewString()

	if err := s.store.Put(c.UserContext(), id, session.Data{UserID: userID, CreatedAt: now}, ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	value, err := s.signer.Sign(id, now.Add(ttl))
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     s.cfg.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  now.Add(ttl),
		HTTPOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// Load returns the session behind the request cookie, or nil.
func (s *Sessions) Load(c *fiber.Ctx) (string, *session.Data, error) {
	value := c.Cookies(s.cfg.CookieName)
	if value == "" {
		return "", nil, nil
	}
	id, err := s.signer.Parse(value)
	if err != nil {
		return "", nil, nil
	}
	data, err := s.store.Get(c.UserContext(), id)
	if err != nil {
		return "", nil, err
	}
	return id, data, nil
}

// End deletes the current session and clears the cookie.
func (s *Sessions) End(c *fiber.Ctx) error {
	id, _, err := s.Load(c)
	if err != nil {
		return err
	}
	if id != "" {
		if err := s.store.Delete(c.UserContext(), id); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  s.now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}
