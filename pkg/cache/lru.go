package cache

import (
	"container/list"
	"sync"
)

type lruEntry[V any] struct {
	key   string
	value V
}

// lruCache evicts the least recently used entry once maxSize is exceeded.
type lruCache[V any] struct {
	mu      sync.Mutex
	maxSize int
	items   map[string]*list.Element
	order   *list.List
	rec     recorder
	evictFn EvictCallback[V]
}

func newLRUCache[V any](maxSize int, opts *cacheOptions[V]) (*lruCache[V], error) {
	rec, err := newRecorder(opts, "newLRUCache")
	if err != nil {
		return nil, err
	}
	return &lruCache[V]{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		rec:     rec,
		evictFn: opts.evictCallback,
	}, nil
}

// Get retrieves a value by key and marks it as recently used.
func (c *lruCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	element, exists := c.items[key]
	if !exists {
		c.mu.Unlock()
		c.rec.miss()
		var zero V
		return zero, false
	}
	c.order.MoveToFront(element)
	value := element.Value.(*lruEntry[V]).value
	c.mu.Unlock()

	c.rec.hit()
	return value, true
}

// Set stores a value and marks it as recently used, evicting the oldest
// entry when the cache is full.
func (c *lruCache[V]) Set(key string, value V) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	c.mu.Lock()
	if element, exists := c.items[key]; exists {
		element.Value.(*lruEntry[V]).value = value
		c.order.MoveToFront(element)
		size := len(c.items)
		c.mu.Unlock()
		c.rec.set(size)
		return false, nil
	}

	c.items[key] = c.order.PushFront(&lruEntry[V]{key: key, value: value})

	var evicted []*lruEntry[V]
	for len(c.items) > c.maxSize {
		oldest := c.order.Back()
		entry := oldest.Value.(*lruEntry[V])
		c.order.Remove(oldest)
		delete(c.items, entry.key)
		evicted = append(evicted, entry)
	}
	size := len(c.items)
	c.mu.Unlock()

	c.rec.set(size)
	if len(evicted) > 0 {
		c.rec.evicted(len(evicted), size)
		if c.evictFn != nil {
			for _, entry := range evicted {
				c.evictFn(entry.key, entry.value)
			}
		}
	}
	return true, nil
}

// Delete removes an entry by key.
func (c *lruCache[V]) Delete(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	c.mu.Lock()
	element, exists := c.items[key]
	if !exists {
		c.mu.Unlock()
		return false, nil
	}
	entry := element.Value.(*lruEntry[V])
	c.order.Remove(element)
	delete(c.items, key)
	size := len(c.items)
	c.mu.Unlock()

	c.rec.deleted(size)
	if c.evictFn != nil {
		c.evictFn(entry.key, entry.value)
	}
	return true, nil
}

// Clear removes all entries from the cache.
func (c *lruCache[V]) Clear() error {
	c.mu.Lock()
	var entries []*lruEntry[V]
	for element := c.order.Back(); element != nil; element = element.Prev() {
		entries = append(entries, element.Value.(*lruEntry[V]))
	}
	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.mu.Unlock()

	c.rec.size(0)
	if c.evictFn != nil {
		for _, entry := range entries {
			c.evictFn(entry.key, entry.value)
		}
	}
	return nil
}

// Size returns the current number of entries in the cache.
func (c *lruCache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Keys returns keys in most-recently-used order.
func (c *lruCache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for element := c.order.Front(); element != nil; element = element.Next() {
		keys = append(keys, element.Value.(*lruEntry[V]).key)
	}
	return keys
}

// Stats returns cache statistics.
func (c *lruCache[V]) Stats() *Statistics {
	return c.rec.stats
}

// Close is a no-op.
func (c *lruCache[V]) Close() error {
	return nil
}
