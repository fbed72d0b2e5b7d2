// Package cache memoizes normalized article lists per feed request so
// repeated views within the refresh window do not refetch upstream.
package cache

import (
	"strings"
	"sync"
	"time"

	"newsdash/internal/feed"
)

type entry struct {
	articles  []feed.Article
	expiresAt time.Time
}

// Cache is a TTL-bounded map of article lists. Safe for concurrent use by
// the aggregator's fan-out workers; two workers missing on the same key
// may both fetch, the later Set wins. That is acceptable: entries for a
// key are interchangeable within the window.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
}

// New creates a cache with the given freshness window and starts the
// background cleanup loop.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
	go c.cleanupLoop()
	return c
}

// Key builds the canonical cache key for a feed request.
func Key(source, category, query string) string {
	return strings.ToLower(source) + "|" + strings.ToLower(category) + "|" + query
}

// Get returns the cached articles for key if still fresh.
func (c *Cache) Get(key string) ([]feed.Article, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.articles, true
}

// Set stores articles for key with the configured TTL.
func (c *Cache) Set(key string, articles []feed.Article) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		articles:  articles,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Len reports the number of entries including expired ones not yet swept.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) cleanupLoop() {
	interval := c.ttl
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *Cache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
