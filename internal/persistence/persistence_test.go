package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/supportdesk/support-portal/internal/config"
)

func TestPingWithRetryRecovers(t *testing.T) {
	calls := 0
	err := pingWithRetry(context.Background(), "test", 3, zap.NewNop(), func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestPingWithRetryGivesUp(t *testing.T) {
	calls := 0
	boom := errors.New("down")
	err := pingWithRetry(context.Background(), "test", 1, zap.NewNop(), func(context.Context) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestPingWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pingWithRetry(ctx, "test", 10, zap.NewNop(), func(context.Context) error {
		return errors.New("down")
	})
	assert.Error(t, err)
}

func TestDisabledHandles(t *testing.T) {
	var pg *Postgres
	assert.False(t, pg.Enabled())
	assert.Nil(t, pg.PoolHandle())
	assert.Error(t, pg.Ping(context.Background()))
	pg.Close()

	r, err := NewRedis(context.Background(), config.RedisConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, r.Enabled())
	assert.Error(t, r.Ping(context.Background()))
	r.Close()
}

func TestNewPostgresRequiresDSN(t *testing.T) {
	_, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	assert.Error(t, err)
}

func TestMigrationNamesSorted(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "0001_init.sql", names[0])
}
