package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
)

// Strategy defines the eviction strategy for the cache.
type Strategy string

const (
	// StrategySimple keeps entries until deleted.
	StrategySimple Strategy = "simple"

	// StrategyLRU evicts the least recently used entry beyond MaxSize.
	StrategyLRU Strategy = "lru"

	// StrategySliding expires entries TTL after their last access.
	StrategySliding Strategy = "sliding"
)

// Config contains configuration for cache creation.
type Config struct {
	Enabled         bool          `json:"enabled" yaml:"enabled"`
	Strategy        Strategy      `json:"strategy" yaml:"strategy"`
	MaxSize         int           `json:"max_size" yaml:"max_size"`
	TTL             time.Duration `json:"ttl" yaml:"ttl"`
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval"`
}

// DefaultConfig returns the identifier cache configuration: sliding
// expiry of thirty minutes.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		Strategy:        StrategySliding,
		TTL:             30 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	switch c.Strategy {
	case StrategySimple:
	case StrategyLRU:
		if c.MaxSize <= 0 {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "Validate",
				fmt.Sprintf("max_size must be positive for LRU cache, got %d", c.MaxSize))
		}
	case StrategySliding:
		if c.TTL <= 0 {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "Validate",
				fmt.Sprintf("ttl must be positive for sliding cache, got %v", c.TTL))
		}
		if c.CleanupInterval < 0 {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "Validate",
				fmt.Sprintf("cleanup_interval cannot be negative, got %v", c.CleanupInterval))
		}
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "Validate",
			fmt.Sprintf("unknown cache strategy: %s", c.Strategy))
	}
	return nil
}

// NewFromConfig creates a cache based on the provided configuration.
// A disabled config yields a cache that never hits.
func NewFromConfig[V any](ctx context.Context, config Config, options ...Option[V]) (Cache[V], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if !config.Enabled {
		return NewNoop[V](), nil
	}

	switch config.Strategy {
	case StrategySimple:
		return NewSimple[V](options...)
	case StrategyLRU:
		return NewLRU[V](config.MaxSize, options...)
	default:
		return NewSliding[V](ctx, config.TTL, config.CleanupInterval, options...)
	}
}

// NewSliding creates a cache whose entries expire ttl after last access.
// A positive cleanupInterval starts a sweeper that stops on ctx or Close.
func NewSliding[V any](ctx context.Context, ttl, cleanupInterval time.Duration, options ...Option[V]) (Cache[V], error) {
	return newSlidingCache[V](ctx, ttl, cleanupInterval, applyOptions(options...))
}

// NewLRU creates a cache holding at most maxSize entries.
func NewLRU[V any](maxSize int, options ...Option[V]) (Cache[V], error) {
	return newLRUCache[V](maxSize, applyOptions(options...))
}

// NewSimple creates a cache with no eviction policy.
func NewSimple[V any](options ...Option[V]) (Cache[V], error) {
	return newSimpleCache[V](applyOptions(options...))
}

// NewNoop creates a cache that stores nothing.
func NewNoop[V any]() Cache[V] {
	return noopCache[V]{}
}

type noopCache[V any] struct{}

func (noopCache[V]) Get(string) (V, bool) {
	var zero V
	return zero, false
}
func (noopCache[V]) Set(string, V) (bool, error) { return false, nil }
func (noopCache[V]) Delete(string) (bool, error) { return false, nil }
func (noopCache[V]) Clear() error                { return nil }
func (noopCache[V]) Size() int                   { return 0 }
func (noopCache[V]) Keys() []string              { return nil }
func (noopCache[V]) Stats() *Statistics          { return nil }
func (noopCache[V]) Close() error                { return nil }

// rawConfig mirrors Config with durations as text.
type rawConfig struct {
	Enabled         *bool    `json:"enabled" yaml:"enabled"`
	Strategy        Strategy `json:"strategy" yaml:"strategy"`
	MaxSize         int      `json:"max_size" yaml:"max_size"`
	TTL             string   `json:"ttl" yaml:"ttl"`
	CleanupInterval string   `json:"cleanup_interval" yaml:"cleanup_interval"`
}

func (c *Config) fromRaw(raw rawConfig) error {
	if raw.Enabled != nil {
		c.Enabled = *raw.Enabled
	}
	if raw.Strategy != "" {
		c.Strategy = raw.Strategy
	}
	if raw.MaxSize != 0 {
		c.MaxSize = raw.MaxSize
	}
	if raw.TTL != "" {
		d, err := time.ParseDuration(raw.TTL)
		if err != nil {
			return fmt.Errorf("invalid duration string for ttl: %w", err)
		}
		c.TTL = d
	}
	if raw.CleanupInterval != "" {
		d, err := time.ParseDuration(raw.CleanupInterval)
		if err != nil {
			return fmt.Errorf("invalid duration string for cleanup_interval: %w", err)
		}
		c.CleanupInterval = d
	}
	return nil
}

// UnmarshalJSON accepts duration strings such as "30m" for ttl and
// cleanup_interval. Absent fields keep their current values.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return c.fromRaw(raw)
}

// UnmarshalYAML is the YAML counterpart of UnmarshalJSON.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var raw rawConfig
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return c.fromRaw(raw)
}
