package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisTokenStore(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewTokenStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "refresh-token")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "refresh-token", time.Hour))

	revoked, err = store.IsRevoked(ctx, "refresh-token")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Raw tokens are never stored as keys.
	for _, k := range mr.Keys() {
		assert.NotContains(t, k, "refresh-token")
	}

	mr.FastForward(time.Hour + time.Second)
	revoked, err = store.IsRevoked(ctx, "refresh-token")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisTokenStore_ExpiredTokenNotStored(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewTokenStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	require.NoError(t, store.Revoke(context.Background(), "stale", -time.Minute))
	assert.Empty(t, mr.Keys())
}

func TestNoopTokenStore(t *testing.T) {
	store := NewTokenStore(nil)

	require.NoError(t, store.Revoke(context.Background(), "t", time.Hour))
	revoked, err := store.IsRevoked(context.Background(), "t")
	require.NoError(t, err)
	assert.False(t, revoked)
}
