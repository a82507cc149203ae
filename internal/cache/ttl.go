// Package cache holds in-memory snapshots keyed by organization.
package cache

import (
	"sync"
	"time"
)

const DefaultTTL = time.Minute

type entry[V any] struct {
	value    V
	cachedAt time.Time
}

// TTL is a concurrency-safe map whose entries expire ttl after they were stored.
// Each key carries a generation that Invalidate advances, so a value built from reads
// that raced a write can be refused with SetIfUnchanged.
// A nil *TTL is a valid, always-empty cache.
type TTL[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry[V]
	gens    map[string]uint64
}

func NewTTL[V any](ttl time.Duration) *TTL[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTL[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[V]),
		gens:    make(map[string]uint64),
	}
}

// WithClock replaces the time source.
func (c *TTL[V]) WithClock(now func() time.Time) *TTL[V] {
	c.now = now
	return c
}

func (c *TTL[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	age := c.now().Sub(e.cachedAt)
	if age < 0 || age > c.ttl {
		return zero, false
	}
	return e.value, true
}

func (c *TTL[V]) Set(key string, value V) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, cachedAt: c.now()}
	c.mu.Unlock()
}

// Generation returns the current generation of key. Capture it before reading the
// data a value is built from.
func (c *TTL[V]) Generation(key string) uint64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[key]
}

// SetIfUnchanged stores value only if key has not been invalidated since gen was taken.
func (c *TTL[V]) SetIfUnchanged(key string, gen uint64, value V) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] != gen {
		return false
	}
	c.entries[key] = entry[V]{value: value, cachedAt: c.now()}
	return true
}

// Invalidate drops the entry for key and advances its generation. Writes for an
// organization call this.
func (c *TTL[V]) Invalidate(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, key)
	c.gens[key]++
	c.mu.Unlock()
}

// Purge removes expired entries and returns how many were dropped.
func (c *TTL[V]) Purge() int {
	if c == nil {
		return 0
	}
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if now.Sub(e.cachedAt) > c.ttl {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

func (c *TTL[V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
