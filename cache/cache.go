// Package cache is a small in-process TTL cache with an injectable clock.
package cache

import (
	"sync"
	"time"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type item[V any] struct {
	value   V
	expires time.Time
}

// TTL holds values for a fixed duration after they are set.
type TTL[K comparable, V any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	clock Clock
	items map[K]item[V]
}

// New returns a cache; a nil clock uses the system clock. A non-positive
// ttl disables caching.
func New[K comparable, V any](ttl time.Duration, clock Clock) *TTL[K, V] {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TTL[K, V]{ttl: ttl, clock: clock, items: make(map[K]item[V])}
}

// Get returns a live value.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.clock.Now().Before(it.expires) {
		delete(c.items, key)
		var zero V
		return zero, false
	}
	return it.value, true
}

// Set stores value until now+ttl.
func (c *TTL[K, V]) Set(key K, value V) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = item[V]{value: value, expires: c.clock.Now().Add(c.ttl)}
}

// Delete drops key.
func (c *TTL[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len counts stored entries, including expired ones not yet evicted.
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
