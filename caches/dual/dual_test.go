package dual

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueberrycongee/evaldash/caches/memory"
	"github.com/blueberrycongee/evaldash/caches/redis"
)

func newTiers(t *testing.T) (*memory.Cache, *redis.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := redis.DefaultConfig()
	cfg.Addr = mr.Addr()
	remote, err := redis.New(cfg)
	require.NoError(t, err)
	return memory.New(memory.DefaultConfig()), remote, mr
}

func TestCache_BackfillsLocalFromRemote(t *testing.T) {
	ctx := context.Background()
	local, remote, _ := newTiers(t)
	c := New(local, remote, DefaultConfig())
	defer c.Close()

	require.NoError(t, remote.Set(ctx, "k", []byte("from-redis"), 0))

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "from-redis", string(val))

	val, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "from-redis", string(val))

	stats := c.GetDetailedStats()
	assert.Equal(t, int64(1), stats.RemoteHits)
	assert.Equal(t, int64(1), stats.LocalHits)
	assert.Equal(t, int64(1), stats.Backfills)
}

func TestCache_SetWritesBothTiers(t *testing.T) {
	ctx := context.Background()
	local, remote, mr := newTiers(t)
	c := New(local, remote, Config{LocalTTL: time.Hour, RemoteTTL: time.Minute})

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	assert.Equal(t, 1, local.Len())
	assert.Equal(t, time.Minute, mr.TTL("evaldash:k"))

	require.NoError(t, c.Delete(ctx, "k"))
	assert.False(t, mr.Exists("evaldash:k"))
	val, _ := local.Get(ctx, "k")
	assert.Nil(t, val)
}

func TestCache_LocalOnly(t *testing.T) {
	ctx := context.Background()
	c := New(memory.New(memory.DefaultConfig()), nil, Config{})

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	val, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(val))
	assert.NoError(t, c.Ping(ctx))
	assert.Equal(t, 0.5, c.Stats().HitRate)
}
