package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/supportdesk/support-portal/internal/auth"
	"github.com/supportdesk/support-portal/internal/config"
	"github.com/supportdesk/support-portal/internal/domain"
	"github.com/supportdesk/support-portal/internal/events"
	"github.com/supportdesk/support-portal/internal/notify"
	"github.com/supportdesk/support-portal/internal/storage/memory"
	"github.com/supportdesk/support-portal/internal/upload"
	"github.com/supportdesk/support-portal/pkg/errorutil"
)

type fakeQueue struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (q *fakeQueue) Enqueue(msg notify.Message) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, msg)
	return true
}

func (q *fakeQueue) subjects() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.msgs))
	for _, m := range q.msgs {
		out = append(out, m.Subject)
	}
	return out
}

type fixture struct {
	store    *memory.Store
	queue    *fakeQueue
	auth     *AuthService
	tickets  *TicketService
	articles *ArticleService
	profile  *ProfileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := memory.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	uploads, err := upload.NewStore(config.UploadConfig{Dir: filepath.Join(t.TempDir(), "uploads"), MaxBytes: 64})
	require.NoError(t, err)

	logger := zap.NewNop()
	dispatcher := events.NewInMemoryDispatcher()
	queue := &fakeQueue{}
	NewNotificationService(dispatcher, queue, logger).RegisterHandlers()

	return &fixture{
		store:    store,
		queue:    queue,
		auth:     NewAuthService(config.AuthConfig{BcryptCost: 4}, store, dispatcher, logger),
		tickets:  NewTicketService(store, dispatcher, logger),
		articles: NewArticleService(store, dispatcher, logger),
		profile:  NewProfileService(store, uploads, dispatcher, logger),
	}
}

func (f *fixture) register(t *testing.T, username string) *domain.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), RegisterInput{
		Username:    username,
		Password:    "secret-password",
		Email:       username + "@example.com",
		DisplayName: "User " + username,
	})
	require.NoError(t, err)
	return user
}

func requireValidation(t *testing.T, err error, field string) {
	t.Helper()
	var de *errorutil.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	assert.Equal(t, errorutil.CodeValidation, de.Code)
	assert.Contains(t, de.Details, field)
}

func TestRegisterHashesPasswordAndSendsWelcome(t *testing.T) {
	f := newFixture(t)

	user := f.register(t, "alice")
	assert.Equal(t, int64(1), user.ID)
	assert.False(t, user.IsAgent)
	assert.NotEqual(t, "secret-password", user.Password)
	assert.NoError(t, auth.ComparePassword(user.Password, "secret-password"))
	assert.Equal(t, []string{"Welcome to Customer Service Portal"}, f.queue.subjects())
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Register(context.Background(), RegisterInput{Username: "bob", Password: "x", Email: "nope", DisplayName: "Bob"})
	requireValidation(t, err, "email")

	_, err = f.auth.Register(context.Background(), RegisterInput{Password: "x", Email: "bob@example.com", DisplayName: "Bob"})
	requireValidation(t, err, "username")
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")

	_, err := f.auth.Register(context.Background(), RegisterInput{
		Username: "alice", Password: "x", Email: "other@example.com", DisplayName: "Other",
	})
	requireValidation(t, err, "username")

	_, err = f.auth.Register(context.Background(), RegisterInput{
		Username: "other", Password: "x", Email: "alice@example.com", DisplayName: "Other",
	})
	requireValidation(t, err, "email")

	next := f.register(t, "carol")
	assert.Equal(t, int64(2), next.ID)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")
	ctx := context.Background()

	user, err := f.auth.Login(ctx, "alice", "secret-password")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = f.auth.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, "nobody", "secret-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice")
	ctx := context.Background()

	err := f.auth.ChangePassword(ctx, user.ID, ChangePasswordInput{CurrentPassword: "secret-password", NewPassword: "short"})
	requireValidation(t, err, "newPassword")

	err = f.auth.ChangePassword(ctx, user.ID, ChangePasswordInput{CurrentPassword: "wrong", NewPassword: "long-enough-pass"})
	requireValidation(t, err, "currentPassword")

	require.NoError(t, f.auth.ChangePassword(ctx, user.ID, ChangePasswordInput{CurrentPassword: "secret-password", NewPassword: "long-enough-pass"}))
	_, err = f.auth.Login(ctx, "alice", "long-enough-pass")
	assert.NoError(t, err)

	err = f.auth.ChangePassword(ctx, 99, ChangePasswordInput{CurrentPassword: "x", NewPassword: "long-enough-pass"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTicketsVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	_, err := f.tickets.Create(ctx, alice.ID, TicketCreateInput{Title: "A", Description: "a"})
	require.NoError(t, err)
	_, err = f.tickets.Create(ctx, bob.ID, TicketCreateInput{Title: "B", Description: "b"})
	require.NoError(t, err)

	own, err := f.tickets.List(ctx, *alice)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "A", own[0].Title)
	assert.Equal(t, domain.TicketStatusOpen, own[0].Status)
	assert.False(t, own[0].CreatedAt.IsZero())

	agent := *bob
	agent.IsAgent = true
	all, err := f.tickets.List(ctx, agent)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTicketCreateValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.tickets.Create(context.Background(), 1, TicketCreateInput{Title: "  ", Description: "d"})
	requireValidation(t, err, "title")
}

func TestTicketUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	ticket, err := f.tickets.Create(ctx, alice.ID, TicketCreateInput{Title: "A", Description: "a"})
	require.NoError(t, err)

	updated, err := f.tickets.UpdateStatus(ctx, 7, ticket.ID, TicketStatusInput{Status: domain.TicketStatusResolved})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
	assert.Equal(t, ticket.Title, updated.Title)

	_, err = f.tickets.UpdateStatus(ctx, 7, ticket.ID, TicketStatusInput{Status: "closed"})
	requireValidation(t, err, "status")
	var de *errorutil.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "must be one of: open in-progress resolved", de.Details["status"])

	_, err = f.tickets.UpdateStatus(ctx, 7, 42, TicketStatusInput{Status: domain.TicketStatusOpen})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "ticket not found", de.Message)
	assert.Equal(t, int64(42), de.Details["id"])
}

func TestArticles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seeded, err := f.articles.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, seeded, 3)

	article, err := f.articles.Create(ctx, 5, ArticleCreateInput{Title: "Resetting 2FA", Content: "Use backup codes."})
	require.NoError(t, err)
	assert.Equal(t, int64(4), article.ID)
	assert.Equal(t, int64(5), article.CreatedByID)

	found, err := f.articles.Search(ctx, "BACKUP")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, article.ID, found[0].ID)

	_, err = f.articles.Create(ctx, 5, ArticleCreateInput{Title: "x"})
	requireValidation(t, err, "content")
}

func TestProfileUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	f.register(t, "bob")

	phone := "555-0100"
	user, err := f.profile.Update(ctx, alice.ID, ProfileUpdateInput{DisplayName: "Alice A", Email: "alice2@example.com", PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Alice A", user.DisplayName)
	assert.Equal(t, "alice2@example.com", user.Email)
	require.NotNil(t, user.PhoneNumber)
	assert.Equal(t, phone, *user.PhoneNumber)
	assert.Contains(t, f.queue.subjects(), "Profile Updated")

	_, err = f.profile.Update(ctx, alice.ID, ProfileUpdateInput{DisplayName: "A", Email: "alice2@example.com"})
	requireValidation(t, err, "displayName")

	_, err = f.profile.Update(ctx, alice.ID, ProfileUpdateInput{DisplayName: "Alice", Email: "bob@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	var de *errorutil.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, errorutil.CodeConflict, de.Code)
	assert.Equal(t, "already exists", de.Details["email"])
}

func photoHeader(t *testing.T, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("photo", "me.gif")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["photo"][0]
}

func TestUploadPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
	user, err := f.profile.UploadPhoto(ctx, alice.ID, photoHeader(t, gif))
	require.NoError(t, err)
	require.NotNil(t, user.ProfilePhotoURL)
	assert.Regexp(t, `^/uploads/photo-[0-9a-f-]{36}\.gif$`, *user.ProfilePhotoURL)

	_, err = f.profile.UploadPhoto(ctx, alice.ID, photoHeader(t, []byte("plain text")))
	requireValidation(t, err, "photo")

	_, err = f.profile.UploadPhoto(ctx, alice.ID, photoHeader(t, bytes.Repeat([]byte("G"), 100)))
	var de *errorutil.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, http.StatusRequestEntityTooLarge, de.HTTPStatus)

	_, err = f.profile.UploadPhoto(ctx, 99, photoHeader(t, gif))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNotificationServiceRejectsBadPayload(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	queue := &fakeQueue{}
	NewNotificationService(dispatcher, queue, zap.NewNop()).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventUserRegistered, Payload: "oops"})
	assert.Error(t, err)
	assert.Empty(t, queue.subjects())
}
