package cache

import (
	"context"
	"sync"
	"time"

	"github.com/handycook/foodscan/internal/domain"
)

// cacheItem holds one classification with its expiration
type cacheItem struct {
	Classification domain.WordClassification
	Expiration     time.Time
}

// MemoryCache is a thread-safe in-memory classification cache with TTL
// support. It fronts the word repository so repeated classification of
// the same word skips the database entirely.
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory classification cache
func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{
		data: make(map[string]cacheItem),
	}

	// Cleanup goroutine removes expired entries every 10 minutes
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached classification. Words are normalized before
// lookup, so "Apple" and "apple " hit the same entry.
func (c *MemoryCache) Get(ctx context.Context, word string) (*domain.WordClassification, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[domain.NormalizeWord(word)]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if time.Now().After(item.Expiration) {
		return nil, domain.ErrCacheMiss
	}

	classification := item.Classification
	return &classification, nil
}

// Set stores a classification with the given TTL. The value is copied,
// so later mutation of the caller's struct does not affect the cache.
func (c *MemoryCache) Set(ctx context.Context, word string, classification *domain.WordClassification, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[domain.NormalizeWord(word)] = cacheItem{
		Classification: *classification,
		Expiration:     time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a word from the cache
func (c *MemoryCache) Delete(ctx context.Context, word string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, domain.NormalizeWord(word))
	return nil
}

// Exists checks if a word is cached and not expired
func (c *MemoryCache) Exists(ctx context.Context, word string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[domain.NormalizeWord(word)]
	if !exists {
		return false, nil
	}

	if time.Now().After(item.Expiration) {
		return false, nil
	}

	return true, nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for word, item := range c.data {
			if now.After(item.Expiration) {
				delete(c.data, word)
			}
		}
		c.mutex.Unlock()
	}
}

// Size returns the current number of cached words (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all cached classifications
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]cacheItem)
}
