package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type slidingEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// slidingCache expires entries a fixed time after their last Set or Get.
// A hit pushes the expiry forward, so frequently resolved keys stay cached
// while idle ones fall back to the backing store.
type slidingCache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     Clock
	items   map[string]*slidingEntry[V]
	rec     recorder
	evictFn EvictCallback[V]

	shutdown chan struct{}
	done     chan struct{}
	once     sync.Once
}

func newSlidingCache[V any](
	ctx context.Context, ttl, cleanupInterval time.Duration, opts *cacheOptions[V],
) (*slidingCache[V], error) {
	rec, err := newRecorder(opts, "newSlidingCache")
	if err != nil {
		return nil, err
	}

	c := &slidingCache[V]{
		ttl:      ttl,
		now:      opts.clock,
		items:    make(map[string]*slidingEntry[V]),
		rec:      rec,
		evictFn:  opts.evictCallback,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go c.cleanup(ctx, cleanupInterval)
	} else {
		close(c.done)
	}
	return c, nil
}

// Get returns the value and refreshes its expiry. Expired entries are
// removed and reported as misses.
func (c *slidingCache[V]) Get(key string) (V, bool) {
	now := c.now()

	c.mu.Lock()
	entry, exists := c.items[key]
	if exists && now.After(entry.expiresAt) {
		delete(c.items, key)
		size := len(c.items)
		c.mu.Unlock()

		c.rec.evicted(1, size)
		c.rec.miss()
		if c.evictFn != nil {
			c.evictFn(key, entry.value)
		}
		var zero V
		return zero, false
	}
	if !exists {
		c.mu.Unlock()
		c.rec.miss()
		var zero V
		return zero, false
	}
	entry.expiresAt = now.Add(c.ttl)
	value := entry.value
	c.mu.Unlock()

	c.rec.hit()
	return value, true
}

// Set stores a value with a fresh expiry.
func (c *slidingCache[V]) Set(key string, value V) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	c.mu.Lock()
	_, exists := c.items[key]
	c.items[key] = &slidingEntry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
	size := len(c.items)
	c.mu.Unlock()

	c.rec.set(size)
	return !exists, nil
}

// Delete removes an entry by key.
func (c *slidingCache[V]) Delete(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	c.mu.Lock()
	entry, exists := c.items[key]
	delete(c.items, key)
	size := len(c.items)
	c.mu.Unlock()

	if exists {
		c.rec.deleted(size)
		if c.evictFn != nil {
			c.evictFn(key, entry.value)
		}
	}
	return exists, nil
}

// Clear removes all entries from the cache.
func (c *slidingCache[V]) Clear() error {
	c.mu.Lock()
	items := c.items
	c.items = make(map[string]*slidingEntry[V])
	c.mu.Unlock()

	c.rec.size(0)
	if c.evictFn != nil {
		for key, entry := range items {
			c.evictFn(key, entry.value)
		}
	}
	return nil
}

// Size returns the number of stored entries, including expired entries not yet swept.
func (c *slidingCache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Keys returns the keys of unexpired entries.
func (c *slidingCache[V]) Keys() []string {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for key, entry := range c.items {
		if !now.After(entry.expiresAt) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Stats returns cache statistics.
func (c *slidingCache[V]) Stats() *Statistics {
	return c.rec.stats
}

// Close stops the background sweeper.
func (c *slidingCache[V]) Close() error {
	c.once.Do(func() { close(c.shutdown) })

	select {
	case <-c.done:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout waiting for cleanup goroutine to finish")
	}
}

func (c *slidingCache[V]) cleanup(ctx context.Context, interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.shutdown:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *slidingCache[V]) removeExpired() {
	now := c.now()
	expired := make(map[string]V)

	c.mu.Lock()
	for key, entry := range c.items {
		if now.After(entry.expiresAt) {
			expired[key] = entry.value
			delete(c.items, key)
		}
	}
	size := len(c.items)
	c.mu.Unlock()

	if len(expired) == 0 {
		return
	}
	c.rec.evicted(len(expired), size)
	if c.evictFn != nil {
		for key, value := range expired {
			c.evictFn(key, value)
		}
	}
}
