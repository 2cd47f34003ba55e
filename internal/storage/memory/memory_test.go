package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supportdesk/support-portal/internal/domain"
	"github.com/supportdesk/support-portal/internal/session"
	"github.com/supportdesk/support-portal/internal/storage"
	"github.com/supportdesk/support-portal/internal/storage/storagetest"
)

func newStore(t *testing.T) storage.Storage {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestContract(t *testing.T) {
	storagetest.Run(t, newStore)
}

func TestSeedUsesClock(t *testing.T) {
	fixed := time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC)
	s, err := New(WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	articles, err := s.GetArticles(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, articles, storagetest.SeedArticleCount)
	for _, a := range articles {
		assert.Equal(t, fixed, a.CreatedAt)
	}

	next, err := s.CreateArticle(context.Background(), domain.NewArticle{Title: "x", Content: "y", CreatedByID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(storagetest.SeedArticleCount+1), next.ID)
}

func TestWithSessionStore(t *testing.T) {
	sessions := session.NewMemoryStore(time.Hour, nil)
	s, err := New(WithSessionStore(sessions))
	require.NoError(t, err)

	assert.Same(t, sessions, s.SessionStore())
	require.NoError(t, s.Close())
}

func TestStoresAreIsolated(t *testing.T) {
	ctx := context.Background()
	a := newStore(t)
	b := newStore(t)

	_, err := a.CreateUser(ctx, domain.NewUser{Username: "alice", Email: "a@example.com"})
	require.NoError(t, err)

	got, err := b.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreateTicketDefaultsStatus(t *testing.T) {
	s := newStore(t)
	ticket, err := s.CreateTicket(context.Background(), domain.NewTicket{Title: "t", Description: "d", UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
}

func TestEmptyPhoneNumberStoredAsNil(t *testing.T) {
	s := newStore(t)
	empty := ""
	u, err := s.CreateUser(context.Background(), domain.NewUser{Username: "a", Email: "a@example.com", PhoneNumber: &empty})
	require.NoError(t, err)
	assert.Nil(t, u.PhoneNumber)
}

func TestPromoteAgent(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	created, err := s.CreateUser(ctx, domain.NewUser{Username: "agent", Email: "agent@example.com"})
	require.NoError(t, err)

	promoted, err := s.PromoteAgent(ctx, "agent")
	require.NoError(t, err)
	assert.True(t, promoted.IsAgent)

	got, err := s.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAgent)

	_, err = s.PromoteAgent(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetUserByEmailNeverReturnsStaleRow(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	created, err := s.CreateUser(ctx, domain.NewUser{Username: "flip", Email: "a@example.com"})
	require.NoError(t, err)

	emails := []string{"a@example.com", "b@example.com"}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			email := emails[(i+1)%2]
			_, err := s.UpdateUser(ctx, created.ID, domain.UserPatch{Email: &email})
			assert.NoError(t, err)
		}
	}()

	for i := 0; i < 500; i++ {
		email := emails[i%2]
		u, err := s.GetUserByEmail(ctx, email)
		require.NoError(t, err)
		if u != nil {
			assert.Equal(t, email, u.Email)
		}
	}
	wg.Wait()
}
