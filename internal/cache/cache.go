// Package cache provides a TTL cache service object for computed responses.
// It is passed to callers by reference (dependency injection) rather than
// living behind a package-level singleton, and collapses concurrent lookups
// for the same key into a single computation.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value      any
	insertedAt time.Time
}

// TTLCache stores computed values for a fixed time-to-live. An entry is valid
// while now < insertedAt + ttl. Concurrent GetOrCompute calls with the same
// key share one in-flight computation.
type TTLCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
	group   singleflight.Group

	// now is swappable for tests.
	now func() time.Time
}

// New creates a TTLCache with the given time-to-live.
func New(ttl time.Duration) *TTLCache {
	return &TTLCache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(e.insertedAt) >= c.ttl {
		return nil, false
	}
	return e.value, true
}

// Set stores a value under key, resetting its TTL.
func (c *TTLCache) Set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, insertedAt: c.now()}
	c.mu.Unlock()
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss. Identical concurrent misses run compute once and share the result;
// a failed compute is not cached.
func (c *TTLCache) GetOrCompute(key string, compute func() (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have filled the entry while this caller
		// was queued on the flight group.
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})
	return v, err
}

// Invalidate removes the entry for key, if any.
func (c *TTLCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll drops every entry.
func (c *TTLCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Size returns the number of stored entries, expired ones included.
func (c *TTLCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
