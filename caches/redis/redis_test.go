package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := DefaultConfig()
	cfg.Addr = mr.Addr()
	cfg.Namespace = "test"
	c, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, c.Set(ctx, "k", []byte("payload"), 0))
	assert.True(t, mr.Exists("test:k"), "key should be namespaced")

	val, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(val))

	require.NoError(t, c.Delete(ctx, "k"))
	assert.False(t, mr.Exists("test:k"))

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, 0.5, stats.HitRate)
}

func TestCache_DefaultTTLApplied(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	assert.Equal(t, DefaultConfig().DefaultTTL, mr.TTL("test:k"))

	require.NoError(t, c.Set(ctx, "short", []byte("v"), 2*time.Second))
	ttl, err := c.TTL(ctx, "short")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, ttl)

	mr.FastForward(3 * time.Second)
	val, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestCache_ErrorsCounted(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	mr.SetError("server down")
	_, err := c.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, c.Set(ctx, "k", []byte("v"), 0))
	assert.Equal(t, int64(2), c.Stats().Errors)
}

func TestNew_PingFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:1"
	cfg.DialTimeout = 100 * time.Millisecond
	cfg.MaxRetries = -1

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNewWithClient_NoNamespace(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	c := NewWithClient(client, Config{})
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), "raw", []byte("v"), 0))
	assert.True(t, mr.Exists("raw"))
}
