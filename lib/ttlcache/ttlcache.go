// Package ttlcache holds a single value together with an expiry instant.
// The snapshot and category-summary caches are the only cross-run shared
// state in the system, so a narrow Get/Set/Invalidate surface with an
// injected clock is all that is needed.
package ttlcache

import (
	"sync"
	"time"
)

type Clock func() time.Time

type Cache[T any] struct {
	mu     sync.RWMutex
	value  T
	expiry time.Time
	filled bool

	ttl time.Duration
	now Clock
}

func New[T any](ttl time.Duration) *Cache[T] {
	return NewWithClock[T](ttl, time.Now)
}

// NewWithClock is meant for tests that need to move time without sleeping.
func NewWithClock[T any](ttl time.Duration, now Clock) *Cache[T] {
	return &Cache[T]{ttl: ttl, now: now}
}

// Get returns the cached value only while it is unexpired.
func (c *Cache[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.filled || !c.now().Before(c.expiry) {
		var zero T
		return zero, false
	}
	return c.value, true
}

// Set atomically replaces the cached value and restarts the TTL window.
func (c *Cache[T]) Set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
	c.expiry = c.now().Add(c.ttl)
	c.filled = true
}

func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.value = zero
	c.filled = false
}
