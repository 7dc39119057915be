// Package cache holds recently scraped records so repeat requests for the
// same resolved URL can skip the browser entirely.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/clipvault/webclip/models"
)

// entry holds a cached record with its creation timestamp.
type entry struct {
	content   *models.WebContent
	createdAt time.Time
}

// Cache is a simple in-memory cache for scraped records.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Cache with the given maximum number of entries.
// A background goroutine runs every 5 minutes to evict entries older
// than 1 hour; Close stops it.
func New(maxEntries int) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		done:       make(chan struct{}),
	}

	go c.cleanupLoop()
	return c
}

// Close stops the background eviction goroutine. Safe to call more than
// once; the cache itself remains usable.
func (c *Cache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Key generates a cache key from the resolved URL.
func Key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

// Get retrieves a cached record if it exists and is younger than maxAge.
// If maxAge <= 0, no lookup is performed.
func (c *Cache) Get(key string, maxAge time.Duration) (*models.WebContent, bool) {
	if maxAge <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Since(e.createdAt) > maxAge {
		return nil, false
	}
	return e.content, true
}

// Set stores a record. If the cache is at capacity, a random entry is
// evicted to make room (map iteration order is random in Go).
func (c *Cache) Set(key string, content *models.WebContent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		content:   content,
		createdAt: time.Now(),
	}
}

// cleanupLoop evicts entries older than 1 hour every 5 minutes until
// Close is called.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-1 * time.Hour)
			c.mu.Lock()
			for k, e := range c.store {
				if e.createdAt.Before(cutoff) {
					delete(c.store, k)
				}
			}
			c.mu.Unlock()
		case <-c.done:
			return
		}
	}
}
