// Package cache provides the TTL memoization store fronting plan and
// question generation.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the maximum age of an entry before it is regenerated.
const DefaultTTL = time.Hour

// Cache is a mutex-guarded key→payload store with per-entry timestamps.
// Safe for concurrent use by multiple interview sessions; no reader ever
// observes a half-written entry.
type Cache struct {
	name string
	ttl  time.Duration
	log  *zap.Logger

	mu      sync.Mutex
	entries map[string]entry
	group   singleflight.Group

	// now is replaced in tests to control expiry.
	now func() time.Time
}

type entry struct {
	payload   any
	createdAt time.Time
}

// New creates a named cache with the given TTL. A non-positive TTL falls
// back to DefaultTTL.
func New(name string, ttl time.Duration, log *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		name:    name,
		ttl:     ttl,
		log:     log,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Key builds a cache key from content parts via an md5 digest, so keys stay
// fixed-length regardless of job-text size.
func Key(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

// Get returns the payload for key if present and fresh. Expired entries are
// evicted on read.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.createdAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.payload, true
}

// Set stores the payload under key, stamping it with the current time.
func (c *Cache) Set(key string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{payload: payload, createdAt: c.now()}
}

// GetOrCompute returns the cached payload for key, computing and storing it
// on a miss. Concurrent misses for the same key are collapsed into a single
// compute call. compute must always return a usable payload.
func (c *Cache) GetOrCompute(key string, compute func() any) any {
	if v, ok := c.Get(key); ok {
		c.log.Debug("cache hit", zap.String("cache", c.name), zap.String("key", key[:8]))
		return v
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		// Another waiter may have filled the entry while we queued.
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v := compute()
		c.Set(key, v)
		c.log.Debug("cache fill", zap.String("cache", c.name), zap.String("key", key[:8]))
		return v, nil
	})
	return v
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Stats describes cache occupancy for operator introspection.
type Stats struct {
	Name         string
	TotalEntries int
	FreshEntries int
	TTL          time.Duration
}

// Stats returns a snapshot of cache occupancy.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := 0
	for _, e := range c.entries {
		if c.now().Sub(e.createdAt) <= c.ttl {
			fresh++
		}
	}
	return Stats{
		Name:         c.name,
		TotalEntries: len(c.entries),
		FreshEntries: fresh,
		TTL:          c.ttl,
	}
}
