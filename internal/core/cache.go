package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes values for a fixed time-to-live.
//
// The entry map is guarded by a single mutex. Concurrent misses for the same
// key share one producer call. A non-positive TTL disables storage and every
// call runs the producer.
type Cache[V any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry[V]
	gen     uint64 // bumped by Purge; part of the flight key, and stale results are dropped

	group singleflight.Group
}

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// NewCache creates a cache whose entries live for ttl.
func NewCache[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry[V]),
	}
}

// Enabled reports whether values are retained between calls.
func (c *Cache[V]) Enabled() bool {
	return c.ttl > 0
}

// GetOrCompute returns the cached value for key, or calls producer and caches
// its result. Producer errors are returned and never cached.
//
// Concurrent misses share one producer call. The producer runs under a
// context detached from ctx's cancellation, so one caller going away does
// not fail the others; each caller still stops waiting when its own ctx ends.
// Calls made after a Purge never join a load that started before it.
func (c *Cache[V]) GetOrCompute(ctx context.Context, key string, producer func(context.Context) (V, error)) (V, error) {
	if !c.Enabled() {
		return producer(ctx)
	}

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Before(e.expiresAt) {
		c.mu.Unlock()
		return e.value, nil
	}
	gen := c.gen
	c.mu.Unlock()

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		value, err := producer(loadCtx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gen == gen {
			c.entries[key] = cacheEntry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
		}
		c.mu.Unlock()
		return value, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry[V])
	c.gen++
}

// Sweep drops expired entries and returns how many were removed.
func (c *Cache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
