package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/supportdesk/support-portal/internal/domain"
	"github.com/supportdesk/support-portal/internal/persistence"
	"github.com/supportdesk/support-portal/internal/session"
	"github.com/supportdesk/support-portal/internal/storage"
	"github.com/supportdesk/support-portal/internal/storage/storagetest"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, persistence.RunMigrations(ctx, pool, zap.NewNop()))
	return pool
}

func freshStore(t *testing.T, pool *pgxpool.Pool) *Store {
	t.Helper()
	ctx := context.Background()
	_, err := pool.Exec(ctx, `TRUNCATE users, tickets, articles RESTART IDENTITY`)
	require.NoError(t, err)
	s, err := New(ctx, pool, session.NewMemoryStore(time.Hour, nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestContract(t *testing.T) {
	pool := testPool(t)
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return freshStore(t, pool)
	})
}

func TestSeedRunsOnce(t *testing.T) {
	pool := testPool(t)
	freshStore(t, pool)

	again, err := New(context.Background(), pool, nil)
	require.NoError(t, err)

	articles, err := again.GetArticles(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, articles, storagetest.SeedArticleCount)
}

func TestPromoteAgent(t *testing.T) {
	pool := testPool(t)
	s := freshStore(t, pool)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, domain.NewUser{Username: "agent", Password: "x", Email: "agent@example.com", DisplayName: "Agent"})
	require.NoError(t, err)

	promoted, err := s.PromoteAgent(ctx, "agent")
	require.NoError(t, err)
	assert.True(t, promoted.IsAgent)

	_, err = s.PromoteAgent(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNewRequiresPool(t *testing.T) {
	_, err := New(context.Background(), nil, nil)
	assert.Error(t, err)
}
