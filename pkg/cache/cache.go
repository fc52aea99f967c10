package cache

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/contentcompass/compass/pkg/models"
)

// Cache stores fetch results keyed by normalized fetch key. Entries live for
// the whole session; they only leave through InvalidateAll or Restore.
type Cache struct {
	mu      sync.RWMutex
	entries map[models.FetchKey]models.CacheEntry

	hits   atomic.Int64
	misses atomic.Int64
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[models.FetchKey]models.CacheEntry)}
}

// Get returns the entry for key and whether it was present, counting the
// lookup as a hit or a miss.
func (c *Cache) Get(key models.FetchKey) (models.CacheEntry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return entry, ok
}

// Peek returns the entry for key without touching the hit and miss counters.
// Used for stale-data fallback lookups that are not cache reads.
func (c *Cache) Peek(key models.FetchKey) (models.CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	return entry, ok
}

// Put stores payload under key, overwriting any previous entry and stamping
// the fetch time.
func (c *Cache) Put(key models.FetchKey, payload models.Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = models.CacheEntry{
		Key:       key,
		Payload:   payload,
		FetchedAt: time.Now().UTC(),
	}
}

// InvalidateAll drops every entry. The hit and miss counters are kept.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[models.FetchKey]models.CacheEntry)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries returns every entry sorted by key for stable listings.
func (c *Cache) Entries() []models.CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]models.CacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key.String() < entries[j].Key.String()
	})
	return entries
}

// Restore replaces the cache contents with previously saved entries.
func (c *Cache) Restore(entries []models.CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[models.FetchKey]models.CacheEntry, len(entries))
	for _, e := range entries {
		c.entries[e.Key] = e
	}
}

// Stats returns the entry count and hit and miss totals.
func (c *Cache) Stats() models.CacheStats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()

	return models.CacheStats{
		Entries: int64(n),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
