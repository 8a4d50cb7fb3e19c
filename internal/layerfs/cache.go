package layerfs

import (
	"sync"
	"time"
)

const defaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// Cache is a thread-safe in-memory cache of remote documents keyed by path.
// Entries expire after the configured TTL.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

// NewCache creates a Cache. A zero or negative ttl uses five minutes.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns a copy of the cached document and true on a fresh hit.
func (c *Cache) Get(path string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[path]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}

	return append([]byte(nil), entry.data...), true
}

// Set stores a copy of data under path.
func (c *Cache) Set(path string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = cacheEntry{
		data:      append([]byte(nil), data...),
		expiresAt: time.Now().Add(c.ttl),
	}
}
