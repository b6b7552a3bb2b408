package cache

import (
	"context"
	"sync"
	"time"
)

// Clock supplies the current time. Tests inject a fake; nil means time.Now.
type Clock func() time.Time

// Memory is a bounded-staleness in-memory cache. One shared refreshed-at
// timestamp governs the whole cache, not each entry: once the TTL elapses
// every key misses until the next PutMany, which also resets the timestamp.
type Memory[K comparable, V any] struct {
	mu          sync.RWMutex
	entries     map[K]V
	refreshedAt time.Time
	ttl         time.Duration
	now         Clock
}

// NewMemory creates an in-memory cache with the given whole-cache TTL.
func NewMemory[K comparable, V any](ttl time.Duration, now Clock) *Memory[K, V] {
	if now == nil {
		now = time.Now
	}
	return &Memory[K, V]{
		entries: make(map[K]V),
		ttl:     ttl,
		now:     now,
	}
}

// Get returns the cached value for key, or a miss when the key is absent or
// the whole cache has gone stale.
func (c *Memory[K, V]) Get(ctx context.Context, key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.stale() {
		var zero V
		return zero, false
	}

	value, ok := c.entries[key]
	return value, ok
}

// GetMany resolves keys against the cache, returning the hits and the keys
// that must be fetched from the store. A stale cache misses on every key.
func (c *Memory[K, V]) GetMany(ctx context.Context, keys []K) (map[K]V, []K) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.stale() {
		return nil, keys
	}

	hits := make(map[K]V, len(keys))
	var missing []K
	for _, key := range keys {
		if value, ok := c.entries[key]; ok {
			hits[key] = value
		} else {
			missing = append(missing, key)
		}
	}

	return hits, missing
}

// PutMany merges entries into the cache and resets the shared refreshed-at
// timestamp, making every retained entry fresh again.
func (c *Memory[K, V]) PutMany(ctx context.Context, entries map[K]V) {
	if len(entries) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, value := range entries {
		c.entries[key] = value
	}
	c.refreshedAt = c.now()
}

// Clear drops every entry. Callers holding no lock observe the cleared state
// as soon as Clear returns.
func (c *Memory[K, V]) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]V)
	c.refreshedAt = time.Time{}
}

func (c *Memory[K, V]) stale() bool {
	return c.refreshedAt.IsZero() || c.now().Sub(c.refreshedAt) > c.ttl
}

// Value is a single-entry TTL cache, used for the statistics aggregate.
type Value[V any] struct {
	mu       sync.RWMutex
	value    V
	present  bool
	storedAt time.Time
	ttl      time.Duration
	now      Clock
}

// NewValue creates a single-value cache with its own TTL.
func NewValue[V any](ttl time.Duration, now Clock) *Value[V] {
	if now == nil {
		now = time.Now
	}
	return &Value[V]{
		ttl: ttl,
		now: now,
	}
}

// Get returns the cached value unless it is absent or stale.
func (c *Value[V]) Get(ctx context.Context) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.present || c.now().Sub(c.storedAt) > c.ttl {
		var zero V
		return zero, false
	}

	return c.value, true
}

// Set stores the value and restarts its TTL.
func (c *Value[V]) Set(ctx context.Context, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
	c.present = true
	c.storedAt = c.now()
}

// Clear drops the value.
func (c *Value[V]) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	c.value = zero
	c.present = false
	c.storedAt = time.Time{}
}
