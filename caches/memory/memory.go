// Package memory provides an in-process cache backed by go-cache.
package memory

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/blueberrycongee/evaldash/pkg/cache"
)

// Config holds configuration for the in-memory cache.
type Config struct {
	DefaultTTL      time.Duration `yaml:"default_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:      5 * time.Minute,
		CleanupInterval: 10 * time.Minute,
	}
}

// Cache implements cache.Cache in process memory.
type Cache struct {
	store *gocache.Cache

	hits    atomic.Int64
	misses  atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64
}

var _ cache.Cache = (*Cache)(nil)

// New creates an in-memory cache.
func New(cfg Config) *Cache {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultConfig().DefaultTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = cfg.DefaultTTL * 2
	}
	return &Cache{store: gocache.New(cfg.DefaultTTL, cfg.CleanupInterval)}
}

// Get returns a copy of the stored value, or nil when absent or expired.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	val, found := c.store.Get(key)
	if !found {
		c.misses.Add(1)
		return nil, nil
	}
	data, ok := val.([]byte)
	if !ok {
		c.misses.Add(1)
		return nil, nil
	}
	c.hits.Add(1)
	return append([]byte(nil), data...), nil
}

// Set stores a copy of value. A non-positive ttl uses the default TTL.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.store.Set(key, append([]byte(nil), value...), ttl)
	c.sets.Add(1)
	return nil
}

// Delete removes a key.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	c.deletes.Add(1)
	return nil
}

// Ping always succeeds.
func (c *Cache) Ping(context.Context) error { return nil }

// Close drops every entry.
func (c *Cache) Close() error {
	c.store.Flush()
	return nil
}

// Flush drops every entry but keeps the cache usable.
func (c *Cache) Flush() {
	c.store.Flush()
}

// Len returns the number of stored entries, expired ones included until cleanup.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

// Stats returns cache statistics.
func (c *Cache) Stats() cache.Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	return cache.Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Deletes: c.deletes.Load(),
		HitRate: cache.HitRateOf(hits, misses),
	}
}
