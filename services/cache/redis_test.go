package cachesvc

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/carnet/core"
)

type payload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func setup(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	srv := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), core.CacheConfig{RedisAddr: srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, ttl), srv
}

func TestRedisCache_GetSet(t *testing.T) {
	cache, srv := setup(t, time.Minute)
	ctx := context.Background()

	var got payload
	found, err := cache.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, "k", payload{Name: "moyenne", Value: 8.35}))
	assert.True(t, srv.Exists(keyPrefix+"k"))
	assert.Equal(t, time.Minute, srv.TTL(keyPrefix+"k"))

	found, err = cache.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "moyenne", Value: 8.35}, got)
}

func TestRedisCache_Expiry(t *testing.T) {
	cache, srv := setup(t, time.Second)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", payload{Name: "x"}))
	srv.FastForward(2 * time.Second)

	var got payload
	found, err := cache.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	cache, srv := setup(t, time.Minute)
	require.NoError(t, srv.Set(keyPrefix+"k", "{not json"))

	var got payload
	found, err := cache.Get(context.Background(), "k", &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	_, err := NewRedisClient(context.Background(), core.CacheConfig{RedisAddr: addr})
	assert.Error(t, err)
}
