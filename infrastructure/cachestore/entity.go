package cachestore

import (
	"fmt"
	"sync"
	"time"

	pkgError "github.com/crossforge/xcodemcp/pkg/error"
)

// MinMaxAge is the floor for entity-cache max-age configuration.
const MinMaxAge = time.Second

type entityEntry[V any] struct {
	value      V
	observedAt time.Time
}

// EntityCache memoizes the result of an expensive enumeration query per key.
// Freshness is evaluated lazily: a stale entry stays in the map and only
// stops being returned. Refreshing is the caller's responsibility, the cache
// itself never performs I/O.
type EntityCache[K comparable, V any] struct {
	mu              sync.RWMutex
	name            string
	entries         map[K]entityEntry[V]
	preferred       map[string]K
	maxAge          time.Duration
	lastBulkRefresh time.Time
	onChange        func()
	now             func() time.Time
}

func NewEntityCache[K comparable, V any](name string, maxAge time.Duration) *EntityCache[K, V] {
	if maxAge < MinMaxAge {
		maxAge = MinMaxAge
	}
	return &EntityCache[K, V]{
		name:      name,
		entries:   make(map[K]entityEntry[V]),
		preferred: make(map[string]K),
		maxAge:    maxAge,
		now:       time.Now,
	}
}

// SetOnChange registers a hook fired after every mutating operation. Used by
// the persistence manager to schedule snapshot writes.
func (c *EntityCache[K, V]) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *EntityCache[K, V]) notify() {
	c.mu.RLock()
	fn := c.onChange
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// GetFresh returns the value for key only if it is present and fresh.
func (c *EntityCache[K, V]) GetFresh(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.observedAt) >= c.maxAge {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// UpsertMany replaces or inserts entries from a bulk refresh and stamps the
// bulk-refresh time.
func (c *EntityCache[K, V]) UpsertMany(records map[K]V) {
	c.mu.Lock()
	now := c.now()
	for key, value := range records {
		c.entries[key] = entityEntry[V]{value: value, observedAt: now}
	}
	c.lastBulkRefresh = now
	c.mu.Unlock()
	c.notify()
}

// UpsertOne records an incremental fact about a single key without touching
// the bulk-refresh time. A key not yet present is inserted.
func (c *EntityCache[K, V]) UpsertOne(key K, value V) {
	c.mu.Lock()
	c.entries[key] = entityEntry[V]{value: value, observedAt: c.now()}
	c.mu.Unlock()
	c.notify()
}

// FreshValues returns the values of every fresh entry. Order is undefined.
func (c *EntityCache[K, V]) FreshValues() []V {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	values := make([]V, 0, len(c.entries))
	for _, entry := range c.entries {
		if now.Sub(entry.observedAt) < c.maxAge {
			values = append(values, entry.value)
		}
	}
	return values
}

// BulkFresh reports whether the last bulk refresh is still within max-age.
func (c *EntityCache[K, V]) BulkFresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.lastBulkRefresh.IsZero() && c.now().Sub(c.lastBulkRefresh) < c.maxAge
}

func (c *EntityCache[K, V]) LastBulkRefresh() (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastBulkRefresh, !c.lastBulkRefresh.IsZero()
}

func (c *EntityCache[K, V]) SetMaxAge(maxAge time.Duration) error {
	if maxAge < MinMaxAge {
		return pkgError.InvalidConfigurationError(
			fmt.Sprintf("%s cache max age must be at least %s, got %s", c.name, MinMaxAge, maxAge))
	}
	c.mu.Lock()
	c.maxAge = maxAge
	c.mu.Unlock()
	return nil
}

func (c *EntityCache[K, V]) MaxAge() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxAge
}

func (c *EntityCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear empties the entries and the preferred-key relation. Idempotent.
func (c *EntityCache[K, V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[K]entityEntry[V])
	c.preferred = make(map[string]K)
	c.lastBulkRefresh = time.Time{}
	c.mu.Unlock()
	c.notify()
}

// SetPreferred records a weak association from a scope (for example a
// project path) to a key. It does not extend the key's lifetime.
func (c *EntityCache[K, V]) SetPreferred(scope string, key K) {
	c.mu.Lock()
	c.preferred[scope] = key
	c.mu.Unlock()
	c.notify()
}

// Preferred returns the key associated with scope. An association pointing
// at an absent entry is pruned and reported as missing.
func (c *EntityCache[K, V]) Preferred(scope string) (K, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key, ok := c.preferred[scope]
	if !ok {
		var zero K
		return zero, false
	}
	if _, exists := c.entries[key]; !exists {
		delete(c.preferred, scope)
		var zero K
		return zero, false
	}
	return key, true
}
