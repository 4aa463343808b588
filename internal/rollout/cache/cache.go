package cache

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cache is a TTL cache with lazy expiry: an expired entry is reported absent and evicted by the
// Get that observes it. There is no background sweeper.
type Cache[K comparable, V any] struct {
	mu    sync.Mutex
	items *ttlcache.Cache[K, V]
}

func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: ttlcache.New[K, V](
			ttlcache.WithDisableTouchOnHit[K, V](),
		),
	}
}

// Get returns the value for key if present and not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := c.items.Get(key)
	if item == nil || item.IsExpired() {
		// Expired items stay in ttlcache until deleted.
		c.items.Delete(key)
		var zero V
		return zero, false
	}
	return item.Value(), true
}

// Set stores value under key for ttl. A non-positive ttl is a no-op.
func (c *Cache[K, V]) Set(key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Set(key, value, ttl)
}

// Clear removes every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.DeleteAll()
}

// Len returns the number of stored entries, including expired entries not yet observed by Get.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Len()
}
