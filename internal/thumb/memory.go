package thumb

import "sync"

// MemoryCache is an in-memory thumbnail cache. It is safe for
// concurrent use and lives for the session.
type MemoryCache struct {
	cache map[string][]byte
	mu    sync.RWMutex
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: make(map[string][]byte),
	}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.cache[key]
	return data, ok
}

func (c *MemoryCache) Put(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = data
}

// Compile-time check
var _ Cache = (*MemoryCache)(nil)
