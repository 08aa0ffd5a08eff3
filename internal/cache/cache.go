package cache

import (
	"sync"
)

// Document is a file already stored on the platform, reusable without a
// new upload until its file reference expires.
type Document struct {
	ID            int64
	AccessHash    int64
	FileReference []byte
}

// Cache maps local media identities to uploaded documents. When full, an
// arbitrary entry is evicted.
type Cache struct {
	data map[string]Document
	max  int
	mu   sync.RWMutex
}

func New(max int) *Cache {
	if max <= 0 {
		max = 256
	}
	return &Cache{data: make(map[string]Document), max: max}
}

func (c *Cache) Get(key string) (Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.data[key]
	return d, ok
}

func (c *Cache) Set(key string, d Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; !ok && len(c.data) >= c.max {
		for k := range c.data {
			delete(c.data, k)
			break
		}
	}
	c.data[key] = d
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
