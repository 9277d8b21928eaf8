// Package cache holds the site-keyed stratifier cache: a thread-safe
// map with per-entry creation time and TTL-based freshness, never
// mutated by a read.
package cache

import (
	"sync"
	"time"

	"github.com/samply/prism/internal/clock"
	"github.com/samply/prism/internal/stratum"
)

// entry pairs a site's stratifiers with the instant they were written.
type entry struct {
	value     stratum.Stratifiers
	createdAt time.Time
}

// CriteriaCache is a site -> stratifiers map with TTL expiry. A site
// appears at most once; createdAt never rewinds for a given key since Put
// always stamps the current instant. Unlike a plain lazy-expiry cache,
// GetFresh never deletes an expired entry — it only reports it absent, so
// the caller can record the site as pending (spec's freshness contract).
type CriteriaCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	clock   clock.Clock
}

// New creates an empty CriteriaCache with the given TTL and time source.
func New(ttl time.Duration, c clock.Clock) *CriteriaCache {
	return &CriteriaCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		clock:   c,
	}
}

// GetFresh returns the cached value for site iff it exists and
// now - createdAt < TTL. An expired or absent entry returns (nil, false)
// without modifying the cache.
func (c *CriteriaCache) GetFresh(site string) (stratum.Stratifiers, bool) {
	c.mu.RLock()
	e, ok := c.entries[site]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.clock.Now().Sub(e.createdAt) >= c.ttl {
		return nil, false
	}
	return e.value, true
}

// Put unconditionally replaces the entry for site, stamping createdAt with
// the current instant.
func (c *CriteriaCache) Put(site string, value stratum.Stratifiers) {
	c.mu.Lock()
	c.entries[site] = entry{value: value, createdAt: c.clock.Now()}
	c.mu.Unlock()
}
