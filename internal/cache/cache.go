// v1
// internal/cache/cache.go
package cache

import (
	"sync"
	"time"
)

// Observer receives hit/miss notifications so the metrics layer can track
// cache effectiveness without the cache importing it.
type Observer interface {
	CacheHit()
	CacheMiss()
}

type entry[T any] struct {
	val T
	exp time.Time
}

// Cache is a small TTL cache fronting the read-only store endpoints.
type Cache[T any] struct {
	mu  sync.RWMutex
	m   map[string]entry[T]
	ttl time.Duration
	obs Observer
}

// New builds a cache with the supplied TTL. obs may be nil.
func New[T any](ttl time.Duration, obs Observer) *Cache[T] {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache[T]{m: make(map[string]entry[T]), ttl: ttl, obs: obs}
}

func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.exp) {
		if c.obs != nil {
			c.obs.CacheMiss()
		}
		return zero, false
	}
	if c.obs != nil {
		c.obs.CacheHit()
	}
	return e.val, true
}

func (c *Cache[T]) Set(key string, v T) {
	c.mu.Lock()
	c.m[key] = entry[T]{val: v, exp: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops a key; used after a run rewrites the backing collection.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}
