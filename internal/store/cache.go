// Package store holds the in-memory, process-lifetime observation cache.
package store

import (
	"sync"
	"time"

	"github.com/rainward/rainward/internal/weather"
)

// DefaultTTL is how long a cached observation stays valid.
const DefaultTTL = 300 * time.Second

type entry struct {
	obs        weather.AggregatedObservation
	insertedAt time.Time
}

// Cache is a TTL-bounded cache of the most recent aggregated observation per
// location key. Entries are immutable once inserted; an update is a
// replacement, never an in-place edit.
type Cache struct {
	mu   sync.RWMutex
	data map[string]entry
	ttl  time.Duration

	now func() time.Time
}

// NewCache creates a Cache with the given TTL; ttl <= 0 falls back to
// DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		data: make(map[string]entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns the cached observation for key if it has not expired.
func (c *Cache) Get(key string) (weather.AggregatedObservation, bool) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.insertedAt) > c.ttl {
		return weather.AggregatedObservation{}, false
	}
	return e.obs, true
}

// Put stores an observation under key, replacing any previous entry.
func (c *Cache) Put(key string, obs weather.AggregatedObservation) {
	c.mu.Lock()
	c.data[key] = entry{obs: obs, insertedAt: c.now()}
	c.mu.Unlock()
}

// Purge drops expired entries. The refresh loop calls this periodically so a
// long-running process does not accumulate stale keys.
func (c *Cache) Purge() int {
	cutoff := c.now().Add(-c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.data {
		if e.insertedAt.Before(cutoff) {
			delete(c.data, k)
			removed++
		}
	}
	return removed
}
