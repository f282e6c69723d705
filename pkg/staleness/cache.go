// Package staleness implements the TTL and request-coalescing cache that
// gates every remote read. A key is fetched at most once per freshness
// window, and concurrent callers for the same key share one in-flight fetch.
package staleness

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Threshold is the process-wide freshness window. It is deliberately not
// configurable per key.
const Threshold = 15 * time.Second

// FetchFunc performs the underlying remote read for a key.
type FetchFunc func(ctx context.Context) error

// Cache tracks last-fetched timestamps per key and coalesces concurrent
// fetches. Construct one per process and share it; tests inject a clock.
type Cache struct {
	mu      sync.Mutex
	fetched map[string]time.Time
	flights singleflight.Group
	now     func() time.Time
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock injects the time source so tests control freshness directly.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New constructs an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		fetched: make(map[string]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsFresh reports whether key was fetched within the freshness window.
func (c *Cache) IsFresh(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	at, ok := c.fetched[key]
	if !ok {
		return false
	}
	return c.now().Sub(at) < Threshold
}

// FetchIfStale runs fn unless the key is fresh. Concurrent callers for the
// same key join the in-flight fetch instead of starting another. On success
// the key is stamped fresh; on failure the stamp is left untouched so the
// next trigger retries. The in-flight slot clears either way.
func (c *Cache) FetchIfStale(ctx context.Context, key string, fn FetchFunc) error {
	if c.IsFresh(key) {
		return nil
	}
	_, err, _ := c.flights.Do(key, func() (interface{}, error) {
		// A flight that completed while we waited may have stamped the key.
		if c.IsFresh(key) {
			return nil, nil
		}
		if err := fn(ctx); err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.fetched[key] = c.now()
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

// Invalidate clears the freshness stamp for key. In-flight fetches are not
// cancelled; a result already under way still lands and counts as fresh.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.fetched, key)
}

// InvalidatePrefix clears every key sharing the prefix.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.fetched {
		if strings.HasPrefix(key, prefix) {
			delete(c.fetched, key)
		}
	}
}
