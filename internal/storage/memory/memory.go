// Package memory implements storage.Storage in process memory. State lives
// for the lifetime of the Store; nothing is persisted across restarts.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/supportdesk/support-portal/internal/domain"
	"github.com/supportdesk/support-portal/internal/session"
	"github.com/supportdesk/support-portal/internal/storage"
	"github.com/supportdesk/support-portal/internal/storage/seed"
)

// table holds one collection. Rows are never removed, so the row for id n
// sits at index n-1 and nextID is always len(rows)+1.
type table[T any] struct {
	mu     sync.RWMutex
	nextID int64
	rows   []T
}

func newTable[T any]() *table[T] {
	return &table[T]{nextID: 1}
}

// allocate reserves the next id. Caller holds mu for writing.
func (t *table[T]) allocate() int64 {
	id := t.nextID
	t.nextID++
	return id
}

// row returns a pointer to the stored row. Caller holds mu.
func (t *table[T]) row(id int64) (*T, bool) {
	if id < 1 || id > int64(len(t.rows)) {
		return nil, false
	}
	return &t.rows[id-1], true
}

type userTable struct {
	*table[domain.User]
	byUsername map[string]int64
	byEmail    map[string]int64
}

// Store is the in-memory engine. Each collection is guarded by its own lock.
type Store struct {
	users    userTable
	tickets  *table[domain.Ticket]
	articles *table[domain.Article]
	sessions session.Store
	now      func() time.Time
}

var (
	_ storage.Storage       = (*Store)(nil)
	_ storage.AgentPromoter = (*Store)(nil)
)

// Option customises a Store.
type Option func(*Store)

// WithSessionStore replaces the default in-memory session store.
func WithSessionStore(s session.Store) Option {
	return func(st *Store) { st.sessions = s }
}

// WithClock sets the clock used to stamp seeded articles.
func WithClock(now func() time.Time) Option {
	return func(st *Store) { st.now = now }
}

// New builds a Store pre-populated with the onboarding articles.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		users: userTable{
			table:      newTable[domain.User](),
			byUsername: make(map[string]int64),
			byEmail:    make(map[string]int64),
		},
		tickets:  newTable[domain.Ticket](),
		articles: newTable[domain.Article](),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessions == nil {
		s.sessions = session.NewMemoryStore(session.DefaultCheckPeriod, nil)
	}

	articles, err := seed.Articles(s.now())
	if err != nil {
		return nil, fmt.Errorf("seed articles: %w", err)
	}
	for _, a := range articles {
		if _, err := s.CreateArticle(context.Background(), a); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) SessionStore() session.Store {
	return s.sessions
}

// Close stops the session store's sweeper.
func (s *Store) Close() error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Close()
}
