// Package storagetest exercises any storage.Storage against the behaviour the
// route and auth layers rely on.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supportdesk/support-portal/internal/domain"
	"github.com/supportdesk/support-portal/internal/session"
	"github.com/supportdesk/support-portal/internal/storage"
)

// Factory returns a fresh store holding only the seed articles.
type Factory func(t *testing.T) storage.Storage

// SeedArticleCount is the number of articles a fresh store starts with.
const SeedArticleCount = 3

// Run executes the contract suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(*testing.T, storage.Storage)
	}{
		{"UserLifecycle", testUserLifecycle},
		{"UserUniqueness", testUserUniqueness},
		{"UpdateUser", testUpdateUser},
		{"UpdateUserNotFound", testUpdateUserNotFound},
		{"UpdateUserEmailConflict", testUpdateUserEmailConflict},
		{"GetUserIdempotent", testGetUserIdempotent},
		{"ReturnedValuesAreCopies", testReturnedValuesAreCopies},
		{"TicketIDsIncrease", testTicketIDsIncrease},
		{"GetTicketsFilter", testGetTicketsFilter},
		{"UpdateTicketStatusOnly", testUpdateTicketStatusOnly},
		{"UpdateTicketNotFound", testUpdateTicketNotFound},
		{"UpdateTicketUncheckedStatus", testUpdateTicketUncheckedStatus},
		{"SeedArticles", testSeedArticles},
		{"SearchArticles", testSearchArticles},
		{"CreateArticleRoundTrip", testCreateArticleRoundTrip},
		{"ConcurrentCreateUser", testConcurrentCreateUser},
		{"ConcurrentCreateTicket", testConcurrentCreateTicket},
		{"SessionStore", testSessionStore},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newStore(t))
		})
	}
}

func newUser(name string) domain.NewUser {
	return domain.NewUser{
		Username:    name,
		Password:    "hash-" + name,
		Email:       name + "@example.com",
		DisplayName: "User " + name,
	}
}

func newTicket(userID int64, title string) domain.NewTicket {
	return domain.NewTicket{
		Title:       title,
		Description: "description of " + title,
		UserID:      userID,
		Status:      domain.TicketStatusOpen,
		CreatedAt:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func testUserLifecycle(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	missing, err := s.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, missing)

	phone := "555-0100"
	in := newUser("alice")
	in.PhoneNumber = &phone
	alice, err := s.CreateUser(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice.ID)
	assert.False(t, alice.IsAgent)
	assert.Nil(t, alice.ProfilePhotoURL)
	require.NotNil(t, alice.PhoneNumber)
	assert.Equal(t, phone, *alice.PhoneNumber)

	bob, err := s.CreateUser(ctx, newUser("bob"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), bob.ID)
	assert.Nil(t, bob.PhoneNumber)

	got, err := s.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	byName, err := s.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, bob, byName)

	byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice, byEmail)

	none, err := s.GetUserByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Nil(t, none)

	none, err = s.GetUserByEmail(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func testUserUniqueness(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	_, err := s.CreateUser(ctx, newUser("alice"))
	require.NoError(t, err)

	dupName := newUser("alice")
	dupName.Email = "other@example.com"
	_, err = s.CreateUser(ctx, dupName)
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	dupEmail := newUser("alice2")
	dupEmail.Email = "alice@example.com"
	_, err = s.CreateUser(ctx, dupEmail)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	next, err := s.CreateUser(ctx, newUser("bob"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.ID, "rejected creates must not consume ids")
}

func testUpdateUser(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	phone := "555-0100"
	in := newUser("alice")
	in.PhoneNumber = &phone
	alice, err := s.CreateUser(ctx, in)
	require.NoError(t, err)

	photo := "/uploads/photo-1.png"
	updated, err := s.UpdateUser(ctx, alice.ID, domain.UserPatch{ProfilePhotoURL: &photo})
	require.NoError(t, err)
	require.NotNil(t, updated.ProfilePhotoURL)
	assert.Equal(t, photo, *updated.ProfilePhotoURL)
	assert.Equal(t, alice.Username, updated.Username)
	assert.Equal(t, alice.Email, updated.Email)
	assert.Equal(t, alice.DisplayName, updated.DisplayName)
	assert.Equal(t, alice.PhoneNumber, updated.PhoneNumber)

	email := "alice@new.example.com"
	name := "Alice A."
	cleared := ""
	updated, err = s.UpdateUser(ctx, alice.ID, domain.UserPatch{Email: &email, DisplayName: &name, PhoneNumber: &cleared})
	require.NoError(t, err)
	assert.Equal(t, email, updated.Email)
	assert.Equal(t, name, updated.DisplayName)
	assert.Nil(t, updated.PhoneNumber)
	require.NotNil(t, updated.ProfilePhotoURL)

	old, err := s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Nil(t, old)

	fresh, err := s.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, updated, fresh)

	// the released address can be registered again
	reuse := newUser("bob")
	reuse.Email = "alice@example.com"
	_, err = s.CreateUser(ctx, reuse)
	require.NoError(t, err)
}

func testUpdateUserNotFound(t *testing.T, s storage.Storage) {
	name := "ghost"
	_, err := s.UpdateUser(context.Background(), 99, domain.UserPatch{DisplayName: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testUpdateUserEmailConflict(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	alice, err := s.CreateUser(ctx, newUser("alice"))
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, newUser("bob"))
	require.NoError(t, err)

	email := "bob@example.com"
	name := "Changed"
	_, err = s.UpdateUser(ctx, alice.ID, domain.UserPatch{Email: &email, DisplayName: &name})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	after, err := s.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, after, "failed update must not partially apply")

	same := "alice@example.com"
	_, err = s.UpdateUser(ctx, alice.ID, domain.UserPatch{Email: &same})
	require.NoError(t, err, "keeping one's own email is not a conflict")
}

func testGetUserIdempotent(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	alice, err := s.CreateUser(ctx, newUser("alice"))
	require.NoError(t, err)

	first, err := s.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	second, err := s.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func testReturnedValuesAreCopies(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	alice, err := s.CreateUser(ctx, newUser("alice"))
	require.NoError(t, err)
	alice.DisplayName = "mutated"

	got, err := s.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "User alice", got.DisplayName)

	_, err = s.CreateTicket(ctx, newTicket(alice.ID, "first"))
	require.NoError(t, err)
	tickets, err := s.GetTickets(ctx, nil)
	require.NoError(t, err)
	tickets[0].Title = "mutated"

	tickets, err = s.GetTickets(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "first", tickets[0].Title)
}

func testTicketIDsIncrease(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	var last int64
	for i := 0; i < 5; i++ {
		ticket, err := s.CreateTicket(ctx, newTicket(1, fmt.Sprintf("t%d", i)))
		require.NoError(t, err)
		assert.Greater(t, ticket.ID, last)
		last = ticket.ID

		// interleave writes to the other collections
		_, err = s.CreateUser(ctx, newUser(fmt.Sprintf("u%d", i)))
		require.NoError(t, err)
		_, err = s.CreateArticle(ctx, domain.NewArticle{Title: "a", Content: "c", CreatedByID: 1, CreatedAt: time.Now()})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(5), last)
}

func testGetTicketsFilter(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	all, err := s.GetTickets(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)

	created := map[int64][]int64{}
	for i, owner := range []int64{1, 2, 1, 3, 1} {
		ticket, err := s.CreateTicket(ctx, newTicket(owner, fmt.Sprintf("t%d", i)))
		require.NoError(t, err)
		created[owner] = append(created[owner], ticket.ID)
	}

	all, err = s.GetTickets(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}

	for owner, ids := range created {
		owner := owner
		mine, err := s.GetTickets(ctx, &owner)
		require.NoError(t, err)
		got := make([]int64, 0, len(mine))
		for _, ticket := range mine {
			assert.Equal(t, owner, ticket.UserID)
			got = append(got, ticket.ID)
		}
		assert.Equal(t, ids, got)
	}

	nobody := int64(42)
	none, err := s.GetTickets(ctx, &nobody)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testUpdateTicketStatusOnly(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	original, err := s.CreateTicket(ctx, newTicket(1, "printer"))
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, original.Status)
	assert.Nil(t, original.AssignedToID)

	resolved := domain.TicketStatusResolved
	updated, err := s.UpdateTicket(ctx, original.ID, domain.TicketPatch{Status: &resolved})
	require.NoError(t, err)

	expected := *original
	expected.Status = domain.TicketStatusResolved
	assert.Equal(t, expected.ID, updated.ID)
	assert.Equal(t, expected.Title, updated.Title)
	assert.Equal(t, expected.Description, updated.Description)
	assert.Equal(t, expected.Status, updated.Status)
	assert.Equal(t, expected.UserID, updated.UserID)
	assert.Equal(t, expected.AssignedToID, updated.AssignedToID)
	assert.True(t, expected.CreatedAt.Equal(updated.CreatedAt))

	all, err := s.GetTickets(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.TicketStatusResolved, all[0].Status)
}

func testUpdateTicketNotFound(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	_, err := s.CreateTicket(ctx, newTicket(1, "only"))
	require.NoError(t, err)
	before, err := s.GetTickets(ctx, nil)
	require.NoError(t, err)

	resolved := domain.TicketStatusResolved
	_, err = s.UpdateTicket(ctx, 999, domain.TicketPatch{Status: &resolved})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	after, err := s.GetTickets(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func testUpdateTicketUncheckedStatus(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	ticket, err := s.CreateTicket(ctx, newTicket(1, "odd"))
	require.NoError(t, err)

	odd := domain.TicketStatus("escalated")
	updated, err := s.UpdateTicket(ctx, ticket.ID, domain.TicketPatch{Status: &odd})
	require.NoError(t, err)
	assert.Equal(t, odd, updated.Status)
}

func testSeedArticles(t *testing.T, s storage.Storage) {
	articles, err := s.GetArticles(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, articles, SeedArticleCount)
	for i, a := range articles {
		assert.Equal(t, int64(i+1), a.ID)
		assert.Equal(t, int64(1), a.CreatedByID)
	}
	assert.Equal(t, "Getting Started with Customer Support", articles[0].Title)
}

func testSearchArticles(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	matches, err := s.GetArticles(ctx, "PASSWORD")
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	for _, a := range matches {
		assert.NotEqual(t, "Getting Started with Customer Support", a.Title)
	}
	assert.Equal(t, "Common Account Issues & Solutions", matches[0].Title)

	none, err := s.GetArticles(ctx, "zzz-no-match")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.CreateArticle(ctx, domain.NewArticle{Title: "VPN Setup", Content: "Install the client", CreatedByID: 2, CreatedAt: time.Now()})
	require.NoError(t, err)
	byTitle, err := s.GetArticles(ctx, "vpn")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "VPN Setup", byTitle[0].Title)

	// a percent sign is matched literally
	pct, err := s.GetArticles(ctx, "100%")
	require.NoError(t, err)
	assert.Empty(t, pct)

	_, err = s.CreateArticle(ctx, domain.NewArticle{Title: "Straße closures", Content: "Office access", CreatedByID: 2, CreatedAt: time.Now()})
	require.NoError(t, err)
	folded, err := s.GetArticles(ctx, "STRASSE")
	require.NoError(t, err)
	require.Len(t, folded, 1)
	assert.Equal(t, "Straße closures", folded[0].Title)
}

func testCreateArticleRoundTrip(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	before, err := s.GetArticles(ctx, "")
	require.NoError(t, err)

	createdAt := time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC)
	article, err := s.CreateArticle(ctx, domain.NewArticle{Title: "T", Content: "C", CreatedByID: 1, CreatedAt: createdAt})
	require.NoError(t, err)
	for _, a := range before {
		assert.NotEqual(t, a.ID, article.ID)
	}

	after, err := s.GetArticles(ctx, "")
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)
	last := after[len(after)-1]
	assert.Equal(t, article.ID, last.ID)
	assert.Equal(t, "T", last.Title)
	assert.Equal(t, "C", last.Content)
	assert.True(t, createdAt.Equal(last.CreatedAt))
}

func testConcurrentCreateUser(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	const n = 50

	var wg sync.WaitGroup
	ids := make([]int64, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := s.CreateUser(ctx, newUser(fmt.Sprintf("user%d", i)))
			errs[i] = err
			if err == nil {
				ids[i] = u.ID
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[ids[i]], "duplicate id %d", ids[i])
		seen[ids[i]] = true
	}
	for i := 0; i < n; i++ {
		u, err := s.GetUserByUsername(ctx, fmt.Sprintf("user%d", i))
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, ids[i], u.ID)
	}
}

func testConcurrentCreateTicket(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	const n = 50

	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ticket, err := s.CreateTicket(ctx, newTicket(int64(i%3+1), fmt.Sprintf("t%d", i)))
			if assert.NoError(t, err) {
				ids <- ticket.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, seen, n)

	all, err := s.GetTickets(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, n)
}

func testSessionStore(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	sessions := s.SessionStore()
	require.NotNil(t, sessions)

	id := fmt.Sprintf("contract-%d", time.Now().UnixNano())
	require.NoError(t, sessions.Put(ctx, id, sessionData(7), time.Minute))
	got, err := sessions.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.UserID)

	require.NoError(t, sessions.Delete(ctx, id))
	got, err = sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func sessionData(userID int64) session.Data {
	return session.Data{UserID: userID, CreatedAt: time.Now().UTC()}
}
