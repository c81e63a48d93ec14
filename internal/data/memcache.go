// Package data layers the series caches in front of the provider chain.
package data

import (
	"context"
	"sync"
	"time"

	"github.com/Olshansk/eth-vs-bitcoin-price/internal/domain"
)

// SeriesCache stores fetched price series keyed by symbol.
type SeriesCache interface {
	Get(ctx context.Context, key string) (domain.PriceSeries, bool)
	Set(ctx context.Context, key string, series domain.PriceSeries, ttl time.Duration) error
}

// CacheStats tracks hit/miss counts per cache tier.
type CacheStats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

type memEntry struct {
	series   domain.PriceSeries
	expires  time.Time
	accessed time.Time
}

// MemoryCache is an in-process TTL cache with LRU eviction once maxEntries is
// reached. It is the hot tier and always runs, Redis configured or not.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]*memEntry
	maxEntries int
	stats      CacheStats
	now        func() time.Time
}

// NewMemoryCache creates a memory cache bounded to maxEntries.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 64
	}
	return &MemoryCache{
		entries:    make(map[string]*memEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the cached series if present and not expired.
func (c *MemoryCache) Get(_ context.Context, key string) (domain.PriceSeries, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expires) {
		c.stats.Misses++
		return domain.PriceSeries{}, false
	}
	entry.accessed = c.now()
	c.stats.Hits++
	return entry.series, true
}

// Set stores series under key for ttl, evicting the least recently used entry
// when full.
func (c *MemoryCache) Set(_ context.Context, key string, series domain.PriceSeries, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[key] = &memEntry{
		series:   series,
		expires:  c.now().Add(ttl),
		accessed: c.now(),
	}
	return nil
}

// evictOldest removes the least recently accessed entry. Caller holds the lock.
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.accessed.Before(oldest) {
			oldestKey = key
			oldest = entry.accessed
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.stats.Evictions++
	}
}

// Stats returns a snapshot of hit/miss counters.
func (c *MemoryCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}
