package tokenstore

import (
	"context"
	"testing"
	"time"

	"mentorship-service/pkg/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Revoke(ctx, "a", time.Minute))
	require.NoError(t, store.Revoke(ctx, "ignored", 0))

	revoked, err := store.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "ignored")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)

	store, err := New(ctx, config.RedisConfig{Addr: srv.Addr()})
	require.NoError(t, err)
	require.IsType(t, &RedisStore{}, store)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Minute))

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	srv.FastForward(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestNewWithoutRedisUsesMemory(t *testing.T) {
	store, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
}
