package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := New(DefaultConfig())
	defer c.Close()

	val, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, c.Set(ctx, "k", []byte(`{"success":true}`), 0))
	val, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"success":true}`, string(val))

	require.NoError(t, c.Delete(ctx, "k"))
	val, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, val)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Deletes)
}

func TestCache_ValueIsCopied(t *testing.T) {
	ctx := context.Background()
	c := New(DefaultConfig())

	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, 0))
	buf[0] = 'x'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := New(Config{DefaultTTL: time.Minute})

	require.NoError(t, c.Set(ctx, "short", []byte("v"), 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)

	val, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestCache_Flush(t *testing.T) {
	ctx := context.Background()
	c := New(DefaultConfig())
	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	assert.Equal(t, 2, c.Len())

	c.Flush()
	assert.Equal(t, 0, c.Len())
	assert.NoError(t, c.Ping(ctx))
}
