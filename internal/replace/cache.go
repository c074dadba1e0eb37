package replace

import (
	"container/list"
	"sync"
)

// DefaultCacheSize is the cache limit used when none is configured.
const DefaultCacheSize = 1000

// Cache is a bounded, insertion-ordered map from an observed line
// prefix to its corrected form. Eviction is FIFO: when the cache is
// full, the oldest inserted entry is removed before a new one goes in.
// Neither Get nor a re-Put of an existing key changes eviction order.
// A hit on an unchanged key means the prefix was already processed and
// needs no further work this keystroke.
//
// It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	items   map[string]*list.Element
	order   *list.List
}

// cacheEntry holds one prefix and its corrected form.
type cacheEntry struct {
	key   string
	value string
}

// NewCache creates a cache with the given maximum size.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &Cache{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get retrieves the corrected form for a prefix.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return "", false
	}
	return elem.Value.(*cacheEntry).value, true
}

// Contains reports whether the prefix is present without touching it.
func (c *Cache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]
	return ok
}

// Put stores the corrected form for a prefix. If the key exists its
// value is updated in place, keeping its position in eviction order.
// Otherwise the oldest entry is evicted first when the cache is full.
func (c *Cache) Put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*cacheEntry).value = value
		return
	}

	if c.order.Len() >= c.maxSize {
		c.evictOldest()
	}

	elem := c.order.PushBack(&cacheEntry{key: key, value: value})
	c.items[key] = elem
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// evictOldest removes the first-inserted entry.
// Must be called with the lock held.
func (c *Cache) evictOldest() {
	elem := c.order.Front()
	if elem == nil {
		return
	}
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*cacheEntry).key)
}
