package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())

	store := NewRedisStore(client)
	id := uuid.NewString()
	data := Data{UserID: 42, CreatedAt: time.Now().UTC().Truncate(time.Second)}

	require.NoError(t, store.Put(ctx, id, data, time.Minute))
	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, data.UserID, got.UserID)
	assert.True(t, data.CreatedAt.Equal(got.CreatedAt))

	ttl, err := client.TTL(ctx, redisKeyPrefix+id).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Delete(ctx, id))
	got, err = store.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
