// Package redis provides a Redis-backed response cache, so several dashboard
// processes can share backend replies.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/blueberrycongee/evaldash/pkg/cache"
)

// Cache implements cache.Cache interface using Redis as backend.
type Cache struct {
	client     goredis.UniversalClient
	namespace  string
	defaultTTL time.Duration

	hits    atomic.Int64
	misses  atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64
	errors  atomic.Int64
}

var _ cache.Cache = (*Cache)(nil)

// Config holds configuration for Redis Cache.
type Config struct {
	// Single node configuration
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// Cluster configuration
	ClusterAddrs []string `yaml:"cluster_addrs"`

	// Sentinel configuration
	SentinelAddrs  []string `yaml:"sentinel_addrs"`
	SentinelMaster string   `yaml:"sentinel_master"`

	Namespace    string        `yaml:"namespace"`
	DefaultTTL   time.Duration `yaml:"default_ttl"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	PoolSize     int           `yaml:"pool_size"`
	MaxRetries   int           `yaml:"max_retries"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		Namespace:    "evaldash",
		DefaultTTL:   5 * time.Minute,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MaxRetries:   3,
	}
}

// New connects to Redis and verifies the connection with a PING.
func New(cfg Config) (*Cache, error) {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultConfig().DialTimeout
	}

	var client goredis.UniversalClient
	switch {
	case len(cfg.ClusterAddrs) > 0:
		client = goredis.NewClusterClient(&goredis.ClusterOptions{
			Addrs:        cfg.ClusterAddrs,
			Password:     cfg.Password,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			PoolSize:     cfg.PoolSize,
			MaxRetries:   cfg.MaxRetries,
		})
	case len(cfg.SentinelAddrs) > 0:
		client = goredis.NewFailoverClient(&goredis.FailoverOptions{
			MasterName:    cfg.SentinelMaster,
			SentinelAddrs: cfg.SentinelAddrs,
			Password:      cfg.Password,
			DB:            cfg.DB,
			DialTimeout:   cfg.DialTimeout,
			ReadTimeout:   cfg.ReadTimeout,
			WriteTimeout:  cfg.WriteTimeout,
			PoolSize:      cfg.PoolSize,
			MaxRetries:    cfg.MaxRetries,
		})
	default:
		client = goredis.NewClient(&goredis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			PoolSize:     cfg.PoolSize,
			MaxRetries:   cfg.MaxRetries,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient wraps an existing client. Only Namespace and DefaultTTL of cfg are used.
func NewWithClient(client goredis.UniversalClient, cfg Config) *Cache {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultConfig().DefaultTTL
	}
	return &Cache{
		client:     client,
		namespace:  cfg.Namespace,
		defaultTTL: cfg.DefaultTTL,
	}
}

func (c *Cache) prefixKey(key string) string {
	if c.namespace == "" {
		return key
	}
	return c.namespace + ":" + key
}

// Get retrieves a value from Redis.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefixKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			c.misses.Add(1)
			return nil, nil
		}
		c.errors.Add(1)
		return nil, fmt.Errorf("redis get: %w", err)
	}

	c.hits.Add(1)
	return val, nil
}

// Set stores a value in Redis with TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	if err := c.client.Set(ctx, c.prefixKey(key), value, ttl).Err(); err != nil {
		c.errors.Add(1)
		return fmt.Errorf("redis set: %w", err)
	}

	c.sets.Add(1)
	return nil
}

// Delete removes a key from Redis.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefixKey(key)).Err(); err != nil {
		c.errors.Add(1)
		return fmt.Errorf("redis del: %w", err)
	}
	c.deletes.Add(1)
	return nil
}

// TTL returns the remaining lifetime of key, or a negative duration when absent.
func (c *Cache) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := c.client.TTL(ctx, c.prefixKey(key)).Result()
	if err != nil {
		c.errors.Add(1)
		return 0, fmt.Errorf("redis ttl: %w", err)
	}
	return ttl, nil
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Stats returns cache statistics.
func (c *Cache) Stats() cache.Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	return cache.Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Deletes: c.deletes.Load(),
		Errors:  c.errors.Load(),
		HitRate: cache.HitRateOf(hits, misses),
	}
}
