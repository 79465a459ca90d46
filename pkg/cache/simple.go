package cache

import (
	"sync"
)

// simpleCache keeps entries until they are deleted or cleared.
type simpleCache[V any] struct {
	mu      sync.RWMutex
	items   map[string]V
	rec     recorder
	evictFn EvictCallback[V]
}

func newSimpleCache[V any](opts *cacheOptions[V]) (*simpleCache[V], error) {
	rec, err := newRecorder(opts, "newSimpleCache")
	if err != nil {
		return nil, err
	}
	return &simpleCache[V]{
		items:   make(map[string]V),
		rec:     rec,
		evictFn: opts.evictCallback,
	}, nil
}

// Get retrieves a value by key.
func (c *simpleCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	value, exists := c.items[key]
	c.mu.RUnlock()

	if exists {
		c.rec.hit()
	} else {
		c.rec.miss()
	}
	return value, exists
}

// Set stores a value with the given key.
func (c *simpleCache[V]) Set(key string, value V) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	c.mu.Lock()
	_, exists := c.items[key]
	c.items[key] = value
	size := len(c.items)
	c.mu.Unlock()

	c.rec.set(size)
	return !exists, nil
}

// Delete removes an entry by key.
func (c *simpleCache[V]) Delete(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	c.mu.Lock()
	value, exists := c.items[key]
	delete(c.items, key)
	size := len(c.items)
	c.mu.Unlock()

	if exists {
		c.rec.deleted(size)
		if c.evictFn != nil {
			c.evictFn(key, value)
		}
	}
	return exists, nil
}

// Clear removes all entries from the cache.
func (c *simpleCache[V]) Clear() error {
	c.mu.Lock()
	items := c.items
	c.items = make(map[string]V)
	c.mu.Unlock()

	c.rec.size(0)
	if c.evictFn != nil {
		for key, value := range items {
			c.evictFn(key, value)
		}
	}
	return nil
}

// Size returns the current number of entries in the cache.
func (c *simpleCache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Keys returns all keys currently in the cache.
func (c *simpleCache[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}
	return keys
}

// Stats returns cache statistics.
func (c *simpleCache[V]) Stats() *Statistics {
	return c.rec.stats
}

// Close is a no-op.
func (c *simpleCache[V]) Close() error {
	return nil
}
