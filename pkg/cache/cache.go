// Package cache provides generic, thread-safe caches used by the entity
// resolver: a sliding-expiry cache for resolved identifiers, and simple or
// size-bounded caches for memoized lookup values.
//
// Every cache keeps Statistics. Prometheus export is optional via WithMetrics.
package cache

import (
	"time"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
)

// Cache represents a generic cache interface that all cache implementations must satisfy.
type Cache[V any] interface {
	// Get retrieves a value by key. Returns the value and true if found.
	Get(key string) (V, bool)

	// Set stores a value. Returns true if a new entry was created, false if updated.
	Set(key string, value V) (bool, error)

	// Delete removes an entry by key. Returns true if the key existed.
	Delete(key string) (bool, error)

	// Clear removes all entries from the cache.
	Clear() error

	// Size returns the current number of entries in the cache.
	Size() int

	// Keys returns the keys currently in the cache.
	Keys() []string

	// Stats returns cache statistics, nil for the noop cache.
	Stats() *Statistics

	// Close releases background resources.
	Close() error
}

// EvictCallback is called when an entry is evicted from the cache.
type EvictCallback[V any] func(key string, value V)

// Clock returns the current time. Tests substitute it to drive expiry.
type Clock func() time.Time

func validateKey(key string) error {
	if key == "" {
		return errors.WrapInvalid(errors.ErrInvalidKey, "cache", "validateKey", "key cannot be empty")
	}
	return nil
}

// recorder fans every cache event out to the always-on Statistics and the
// optional Prometheus metrics.
type recorder struct {
	stats   *Statistics
	metrics *cacheMetrics
}

func newRecorder[V any](opts *cacheOptions[V], constructor string) (recorder, error) {
	r := recorder{stats: NewStatistics()}
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		m, err := newCacheMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return r, errors.WrapTransient(err, "cache", constructor, "metrics registration")
		}
		r.metrics = m
	}
	return r, nil
}

func (r recorder) hit() {
	r.stats.Hit()
	if r.metrics != nil {
		r.metrics.hits.Inc()
	}
}

func (r recorder) miss() {
	r.stats.Miss()
	if r.metrics != nil {
		r.metrics.misses.Inc()
	}
}

func (r recorder) set(size int) {
	r.stats.Set()
	r.size(size)
	if r.metrics != nil {
		r.metrics.sets.Inc()
	}
}

func (r recorder) deleted(size int) {
	r.stats.Delete()
	r.size(size)
	if r.metrics != nil {
		r.metrics.deletes.Inc()
	}
}

func (r recorder) evicted(n, size int) {
	for i := 0; i < n; i++ {
		r.stats.Eviction()
		if r.metrics != nil {
			r.metrics.evictions.Inc()
		}
	}
	r.size(size)
}

func (r recorder) size(size int) {
	r.stats.UpdateSize(int64(size))
	if r.metrics != nil {
		r.metrics.size.Set(float64(size))
	}
}
