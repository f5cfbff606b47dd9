package querycache

import "sync"

// Cache is a small in-memory read-through cache whose entries are grouped
// under tags. Invalidating a tag drops every entry stored under it. Services
// cache expensive list queries under a tag and the POS checkout invalidates
// the "products" tag after a sale changes stock levels.
type Cache struct {
	mu   sync.RWMutex
	tags map[string]map[string]interface{}
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		tags: make(map[string]map[string]interface{}),
	}
}

// Get returns the value stored under (tag, key) and whether it was present.
func (c *Cache) Get(tag, key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries, ok := c.tags[tag]
	if !ok {
		return nil, false
	}
	value, ok := entries[key]
	return value, ok
}

// Set stores value under (tag, key), replacing any previous value.
func (c *Cache) Set(tag, key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, ok := c.tags[tag]
	if !ok {
		entries = make(map[string]interface{})
		c.tags[tag] = entries
	}
	entries[key] = value
}

// Invalidate drops every entry stored under tag. Unknown tags are a no-op.
func (c *Cache) Invalidate(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tags, tag)
}
