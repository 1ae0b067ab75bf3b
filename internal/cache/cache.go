// Package cache provides short-TTL memoization for expensive aggregate
// queries, keyed by logical query identity.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value    any
	storedAt time.Time
}

// Cache is a TTL memoization map. The check-then-compute sequence is not
// atomic: two concurrent misses for the same key both invoke compute and the
// second store wins. There is no negative caching; a failed compute leaves
// the cache untouched.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func New() *Cache {
	return NewWithClock(time.Now)
}

// NewWithClock injects the clock used for expiry checks, so tests can advance
// time without sleeping.
func NewWithClock(now func() time.Time) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     now,
	}
}

// GetOrCompute returns the cached value for key when it is no older than ttl,
// reporting a cache hit. Otherwise it invokes compute, stores the result with
// a fresh expiry, and reports a miss.
func (c *Cache) GetOrCompute(key string, ttl time.Duration, compute func() (any, error)) (any, bool, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Sub(e.storedAt) <= ttl {
		c.mu.Unlock()
		return e.value, true, nil
	}
	c.mu.Unlock()

	value, err := compute()
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	c.entries[key] = entry{value: value, storedAt: c.now()}
	c.mu.Unlock()
	return value, false, nil
}

// Set stores a value directly, bypassing compute. Test use only.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, storedAt: c.now()}
	c.mu.Unlock()
}

// Clear drops every entry. Test use only.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// GetOrCompute is the typed wrapper around Cache.GetOrCompute.
func GetOrCompute[T any](c *Cache, key string, ttl time.Duration, compute func() (T, error)) (T, bool, error) {
	v, hit, err := c.GetOrCompute(key, ttl, func() (any, error) {
		return compute()
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return v.(T), hit, nil
}
