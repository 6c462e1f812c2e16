// Package cache defines the response cache used by the client for idempotent reads.
// Backends live under caches/: in-memory, Redis, and a two-tier combination of both.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Type represents the type of cache backend.
type Type string

const (
	TypeLocal Type = "local" // In-memory cache
	TypeRedis Type = "redis" // Redis cache
	TypeDual  Type = "dual"  // In-memory + Redis two-tier cache
)

// Cache defines the interface for all cache implementations.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the given TTL.
	// If TTL is 0, the default TTL is used.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key from the cache.
	Delete(ctx context.Context, key string) error

	// Ping checks if the cache is healthy.
	Ping(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error

	// Stats returns cache statistics.
	Stats() Stats
}

// Stats holds cache statistics for monitoring.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Sets    int64   `json:"sets"`
	Deletes int64   `json:"deletes"`
	Errors  int64   `json:"errors"`
	HitRate float64 `json:"hit_rate"`
}

// HitRateOf returns hits / (hits + misses), or 0 when nothing was looked up.
func HitRateOf(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Control allows per-call cache behavior customization.
type Control struct {
	TTL     time.Duration // Custom TTL for this call
	NoCache bool          // Skip cache read (force fresh)
	NoStore bool          // Skip cache write
}

// Key derives a stable cache key from a call. Method is case-insensitive;
// the body is hashed as sent, so equal payloads map to the same key.
func Key(baseURL, method, endpoint string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(strings.TrimRight(baseURL, "/")))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToUpper(method)))
	h.Write([]byte{0})
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	h.Write(body)
	return "resp:" + hex.EncodeToString(h.Sum(nil))
}
