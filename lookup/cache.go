// Package lookup coordinates browser-driven lookups: it caches results,
// deduplicates concurrent requests for the same query, serializes work per
// browser session and correlates asynchronous suggestion events with the
// clients waiting on them.
package lookup

import (
	"sync"

	"github.com/fwojciec/tabrelay"
)

type cacheKey struct {
	kind  tabrelay.LookupKind
	query string
}

// Cache maps (kind, query) to the definitive result of a lookup.
// Entries are never replaced or evicted. Cache is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]*tabrelay.Result
	counts  map[tabrelay.LookupKind]int
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[cacheKey]*tabrelay.Result),
		counts:  make(map[tabrelay.LookupKind]int),
	}
}

// Lookup returns the cached result for query. The bool result is false if
// the query has not been resolved yet.
func (c *Cache) Lookup(kind tabrelay.LookupKind, query string) (*tabrelay.Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.entries[cacheKey{kind, query}]
	return res, ok
}

// Store records result for query unless an entry already exists.
// It returns the entry that is authoritative after the call and whether
// result was the one stored.
func (c *Cache) Store(kind tabrelay.LookupKind, query string, result *tabrelay.Result) (*tabrelay.Result, bool) {
	if result == nil {
		result = &tabrelay.Result{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	k := cacheKey{kind, query}
	if existing, ok := c.entries[k]; ok {
		return existing, false
	}
	c.entries[k] = result
	c.counts[kind]++
	return result, true
}

// Len returns the number of cached entries for kind.
func (c *Cache) Len(kind tabrelay.LookupKind) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counts[kind]
}
