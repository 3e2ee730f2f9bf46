// Package cache coordinates the read views served to the front end. The key
// space is the small fixed set of query shapes, so there is no eviction
// policy beyond TTL expiry and write-triggered invalidation.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache keys for the known query shapes. Mutation paths invalidate the keys
// their writes can affect.
const (
	KeyAllProducts     = "products:all"
	KeyLowStock        = "products:lowstock"
	KeyAllCategories   = "categories:all"
	KeyRecentMovements = "movements:recent"
	KeyMovementStats   = "movements:stats"
	KeyMetrics         = "metrics"
)

// ProductKey returns the cache key of a single product lookup.
func ProductKey(id int) string {
	return fmt.Sprintf("product:%d", id)
}

// LoadError wraps a loader failure. The key is left unpopulated; every
// waiter of the coalesced load observes the same error.
type LoadError struct {
	Key string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cache load for %q failed: %v", e.Key, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

func (e entry) fresh(now time.Time) bool {
	return now.Sub(e.storedAt) < e.ttl
}

// Coordinator serves repeated read queries without re-scanning the store on
// every call. Concurrent misses on the same key share one underlying load.
// The store stays the single source of truth; uniqueness and stock checks
// never read through here.
type Coordinator struct {
	mu      sync.Mutex
	entries map[string]entry
	gens    map[string]uint64
	epoch   uint64
	group   singleflight.Group

	now func() time.Time
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		entries: make(map[string]entry),
		gens:    make(map[string]uint64),
		now:     time.Now,
	}
}

// Get returns the cached value for key if it is younger than ttl, otherwise
// runs loader and stores its result. If a load for key is already in flight
// the call awaits that load instead of starting a duplicate one. A loader
// failure is propagated to every waiter and leaves the key unpopulated.
func (c *Coordinator) Get(ctx context.Context, key string, ttl time.Duration, loader func(ctx context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.fresh(c.now()) {
		c.mu.Unlock()
		return e.value, nil
	}
	gen, epoch := c.gens[key], c.epoch
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		// An invalidation since the miss means this result may predate the
		// invalidating write. Waiters still receive it, but it is not stored.
		if c.gens[key] == gen && c.epoch == epoch {
			c.entries[key] = entry{value: value, storedAt: c.now(), ttl: ttl}
		}
		c.mu.Unlock()
		return value, nil
	})
	if err != nil {
		return nil, &LoadError{Key: key, Err: err}
	}
	return v, nil
}

// Invalidate drops the given keys and bumps their generation, so a load
// already in flight at the time of the call cannot store its result as
// fresh. In-flight loads are also forgotten, so the next Get starts a new
// load instead of joining the superseded one.
func (c *Coordinator) Invalidate(keys ...string) {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
		c.gens[key]++
	}
	c.mu.Unlock()
	for _, key := range keys {
		c.group.Forget(key)
	}
}

// InvalidateAll drops every cached entry and discards the results of all
// in-flight loads.
func (c *Coordinator) InvalidateAll() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	c.entries = make(map[string]entry)
	c.epoch++
	c.mu.Unlock()
	for _, key := range keys {
		c.group.Forget(key)
	}
}

// Get is the typed convenience wrapper around Coordinator.Get.
func Get[T any](ctx context.Context, c *Coordinator, key string, ttl time.Duration, loader func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Get(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return loader(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
