package querycache_test

import (
	"testing"

	"umkmcore/pkg/querycache"

	"github.com/stretchr/testify/assert"
)

func TestCache_SetAndGet(t *testing.T) {
	cache := querycache.New()

	_, ok := cache.Get("products", "all")
	assert.False(t, ok)

	cache.Set("products", "all", []string{"a", "b"})

	value, ok := cache.Get("products", "all")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, value)
}

func TestCache_Invalidate(t *testing.T) {
	cache := querycache.New()
	cache.Set("products", "all", 1)
	cache.Set("products", "by-id:prod-1", 2)
	cache.Set("materials", "all", 3)

	cache.Invalidate("products")

	_, ok := cache.Get("products", "all")
	assert.False(t, ok)
	_, ok = cache.Get("products", "by-id:prod-1")
	assert.False(t, ok)

	// Other tags are untouched.
	value, ok := cache.Get("materials", "all")
	assert.True(t, ok)
	assert.Equal(t, 3, value)

	// Invalidating an unknown tag is a no-op.
	cache.Invalidate("nonexistent")
}
