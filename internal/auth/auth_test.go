package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/supportdesk/support-portal/internal/config"
	"github.com/supportdesk/support-portal/internal/domain"
	"github.com/supportdesk/support-portal/internal/storage/memory"
	"github.com/supportdesk/support-portal/pkg/errorutil"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, ComparePassword(hash, "correct horse"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}

func TestHashPasswordClampsCost(t *testing.T) {
	hash, err := HashPassword("pw", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestCookieSignerRoundTrip(t *testing.T) {
	signer := NewCookieSigner("secret")
	value, err := signer.Sign("session-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	id, err := signer.Parse(value)
	require.NoError(t, err)
	assert.Equal(t, "session-1", id)
}

func TestCookieSignerRejects(t *testing.T) {
	signer := NewCookieSigner("secret")

	expired, err := signer.Sign("session-1", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = signer.Parse(expired)
	assert.Error(t, err)

	foreign, err := NewCookieSigner("other").Sign("session-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = signer.Parse(foreign)
	assert.Error(t, err)

	_, err = signer.Parse("not-a-token")
	assert.Error(t, err)
}

func newGuardedApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store, err := memory.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	sessions := NewSessions(store.SessionStore(), config.SessionConfig{CookieName: "sid", TTLMinutes: 5, Secret: "test"})
	mw := NewAuthMiddleware(sessions, store)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := errorutil.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	app.Use(mw.Handle)
	app.Post("/login/:id", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return err
		}
		return sessions.Start(c, int64(id))
	})
	app.Post("/logout", func(c *fiber.Ctx) error { return sessions.End(c) })
	app.Get("/me", RequireAuthenticated(), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.User.Username)
	})
	app.Get("/agent", RequireAgent(), func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app, store
}

func sessionCookie(t *testing.T, app *fiber.App, userID string) *http.Cookie {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login/"+userID, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			assert.True(t, c.HttpOnly)
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func get(t *testing.T, app *fiber.App, path string, cookie *http.Cookie) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestGuards(t *testing.T) {
	app, store := newGuardedApp(t)
	ctx := context.Background()
	customer, err := store.CreateUser(ctx, domain.NewUser{Username: "cust", Email: "c@example.com"})
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, domain.NewUser{Username: "agent", Email: "a@example.com"})
	require.NoError(t, err)
	_, err = store.PromoteAgent(ctx, "agent")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/agent", nil))

	custCookie := sessionCookie(t, app, "1")
	assert.Equal(t, customer.ID, int64(1))
	assert.Equal(t, http.StatusOK, get(t, app, "/me", custCookie))
	assert.Equal(t, http.StatusForbidden, get(t, app, "/agent", custCookie))

	agentCookie := sessionCookie(t, app, "2")
	assert.Equal(t, http.StatusOK, get(t, app, "/agent", agentCookie))
}

func TestSessionForUnknownUserIsAnonymous(t *testing.T) {
	app, _ := newGuardedApp(t)
	cookie := sessionCookie(t, app, "42")
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", cookie))
}

func TestLogoutRevokesSession(t *testing.T) {
	app, store := newGuardedApp(t)
	_, err := store.CreateUser(context.Background(), domain.NewUser{Username: "cust", Email: "c@example.com"})
	require.NoError(t, err)
	cookie := sessionCookie(t, app, "1")

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", cookie))
}
