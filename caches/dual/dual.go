// Package dual provides a two-tier cache with in-memory (L1) and Redis (L2).
package dual

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/blueberrycongee/evaldash/pkg/cache"
)

// Cache reads L1 first, then L2 with backfill. Writes go to both tiers.
// L1 holds entries for a shorter TTL so that a shared L2 stays authoritative.
type Cache struct {
	local  cache.Cache
	remote cache.Cache
	config Config

	localHits atomic.Int64
	remoteHit atomic.Int64
	misses    atomic.Int64
	backfills atomic.Int64
}

var _ cache.Cache = (*Cache)(nil)

// Config holds configuration for dual Cache.
type Config struct {
	LocalTTL  time.Duration `yaml:"local_ttl"`  // TTL for local cache (default: 1 minute)
	RemoteTTL time.Duration `yaml:"remote_ttl"` // TTL for Redis cache (default: 5 minutes)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		LocalTTL:  time.Minute,
		RemoteTTL: 5 * time.Minute,
	}
}

// New creates a two-tier cache. remote may be nil, which degrades to local only.
func New(local, remote cache.Cache, cfg Config) *Cache {
	def := DefaultConfig()
	if cfg.LocalTTL <= 0 {
		cfg.LocalTTL = def.LocalTTL
	}
	if cfg.RemoteTTL <= 0 {
		cfg.RemoteTTL = def.RemoteTTL
	}
	return &Cache{local: local, remote: remote, config: cfg}
}

// Get retrieves a value, checking local cache first, then Redis.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if val, err := c.local.Get(ctx, key); err == nil && val != nil {
		c.localHits.Add(1)
		return val, nil
	}

	if c.remote != nil {
		val, err := c.remote.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if val != nil {
			c.remoteHit.Add(1)
			_ = c.local.Set(ctx, key, val, c.config.LocalTTL) //nolint:errcheck // backfill is best-effort
			c.backfills.Add(1)
			return val, nil
		}
	}

	c.misses.Add(1)
	return nil, nil
}

// Set stores a value in both caches. The local copy never outlives ttl.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	remoteTTL := ttl
	if remoteTTL <= 0 {
		remoteTTL = c.config.RemoteTTL
	}
	localTTL := c.config.LocalTTL
	if localTTL > remoteTTL {
		localTTL = remoteTTL
	}

	if err := c.local.Set(ctx, key, value, localTTL); err != nil {
		return err
	}
	if c.remote != nil {
		return c.remote.Set(ctx, key, value, remoteTTL)
	}
	return nil
}

// Delete removes a key from both caches.
func (c *Cache) Delete(ctx context.Context, key string) error {
	_ = c.local.Delete(ctx, key) //nolint:errcheck // best-effort local delete
	if c.remote != nil {
		return c.remote.Delete(ctx, key)
	}
	return nil
}

// Ping checks both cache backends.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.local.Ping(ctx); err != nil {
		return err
	}
	if c.remote != nil {
		return c.remote.Ping(ctx)
	}
	return nil
}

// Close closes both cache backends.
func (c *Cache) Close() error {
	_ = c.local.Close()
	if c.remote != nil {
		return c.remote.Close()
	}
	return nil
}

// Stats returns combined cache statistics.
func (c *Cache) Stats() cache.Stats {
	localStats := c.local.Stats()
	var remoteStats cache.Stats
	if c.remote != nil {
		remoteStats = c.remote.Stats()
	}

	hits := c.localHits.Load() + c.remoteHit.Load()
	misses := c.misses.Load()
	return cache.Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    localStats.Sets + remoteStats.Sets,
		Deletes: localStats.Deletes + remoteStats.Deletes,
		Errors:  remoteStats.Errors,
		HitRate: cache.HitRateOf(hits, misses),
	}
}

// DetailedStats holds detailed statistics for both tiers.
type DetailedStats struct {
	LocalHits  int64 `json:"local_hits"`
	RemoteHits int64 `json:"remote_hits"`
	Misses     int64 `json:"misses"`
	Backfills  int64 `json:"backfills"`
}

// GetDetailedStats returns per-tier counters.
func (c *Cache) GetDetailedStats() DetailedStats {
	return DetailedStats{
		LocalHits:  c.localHits.Load(),
		RemoteHits: c.remoteHit.Load(),
		Misses:     c.misses.Load(),
		Backfills:  c.backfills.Load(),
	}
}
