package language

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Cache memoizes detection results for the lifetime of the process
type Cache struct {
	mu     sync.RWMutex
	items  map[string]string
	hits   int64
	misses int64
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{items: make(map[string]string)}
}

// Key returns the cache key for text: sha256 of the trimmed, NFC-normalized,
// case-folded text
func Key(text string) string {
	folded := cases.Fold().String(strings.TrimSpace(text))
	sum := sha256.Sum256([]byte(norm.NFC.String(folded)))
	return hex.EncodeToString(sum[:])
}

// Get looks up a key and records a hit or miss
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lang, ok := c.items[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return lang, ok
}

// Set stores a result; a concurrent duplicate insert just overwrites
func (c *Cache) Set(key, lang string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = lang
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns hit and miss counters
func (c *Cache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
