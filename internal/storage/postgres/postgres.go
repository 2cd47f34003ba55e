// Package postgres implements storage.Storage on a pgx connection pool.
// Identifiers come from BIGSERIAL sequences, so they increase monotonically
// and are never reused.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supportdesk/support-portal/internal/domain"
	"github.com/supportdesk/support-portal/internal/session"
	"github.com/supportdesk/support-portal/internal/storage"
	"github.com/supportdesk/support-portal/internal/storage/seed"
)

const uniqueViolation = "23505"

// Store is the Postgres engine. The pool is owned by the caller.
type Store struct {
	pool     *pgxpool.Pool
	sessions session.Store
}

var (
	_ storage.Storage       = (*Store)(nil)
	_ storage.AgentPromoter = (*Store)(nil)
)

// New returns a store over pool and seeds the onboarding articles when the
// article table is empty. Migrations must already be applied.
func New(ctx context.Context, pool *pgxpool.Pool, sessions session.Store) (*Store, error) {
	if pool == nil {
		return nil, errors.New("postgres pool not configured")
	}
	s := &Store{pool: pool, sessions: sessions}
	if err := s.seedArticles(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) SessionStore() session.Store {
	return s.sessions
}

// Close releases the session store; the pool stays open.
func (s *Store) Close() error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Close()
}

func (s *Store) seedArticles(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// serialise concurrent starters so the seed is inserted once
	if _, err := tx.Exec(ctx, `LOCK TABLE articles IN EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("lock articles: %w", err)
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		return fmt.Errorf("count articles: %w", err)
	}
	if count > 0 {
		return tx.Commit(ctx)
	}

	articles, err := seed.Articles(time.Now())
	if err != nil {
		return err
	}
	for _, a := range articles {
		if _, err := tx.Exec(ctx, `
            INSERT INTO articles (title, content, created_by_id, created_at)
            VALUES ($1, $2, $3, $4)`,
			a.Title, a.Content, a.CreatedByID, a.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert seed article: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// PromoteAgent grants the agent role to username.
func (s *Store) PromoteAgent(ctx context.Context, username string) (*domain.User, error) {
	const query = `
        UPDATE users SET is_agent=TRUE WHERE username=$1
        RETURNING ` + userColumns
	user, err := scanUser(s.pool.QueryRow(ctx, query, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return user, err
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}
