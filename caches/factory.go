// Package caches builds response cache backends from configuration.
package caches

import (
	"fmt"

	"github.com/blueberrycongee/evaldash/caches/dual"
	"github.com/blueberrycongee/evaldash/caches/memory"
	"github.com/blueberrycongee/evaldash/caches/redis"
	"github.com/blueberrycongee/evaldash/pkg/cache"
)

// Type re-exports cache types for convenience.
type Type = cache.Type

// Cache type constants.
const (
	TypeLocal = cache.TypeLocal
	TypeRedis = cache.TypeRedis
	TypeDual  = cache.TypeDual
)

// Config selects and configures a backend.
type Config struct {
	Type   Type          `yaml:"type"`
	Memory memory.Config `yaml:"memory"`
	Redis  redis.Config  `yaml:"redis"`
	Dual   dual.Config   `yaml:"dual"`
}

// DefaultConfig returns a local cache configuration.
func DefaultConfig() Config {
	return Config{
		Type:   TypeLocal,
		Memory: memory.DefaultConfig(),
		Redis:  redis.DefaultConfig(),
		Dual:   dual.DefaultConfig(),
	}
}

// New creates the backend named by cfg.Type. An empty type means local.
func New(cfg Config) (cache.Cache, error) {
	switch cfg.Type {
	case "", TypeLocal:
		return memory.New(cfg.Memory), nil
	case TypeRedis:
		return redis.New(cfg.Redis)
	case TypeDual:
		remote, err := redis.New(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return dual.New(memory.New(cfg.Memory), remote, cfg.Dual), nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}
