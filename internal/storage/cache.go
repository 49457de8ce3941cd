package storage

import (
	"sync"
	"time"

	"github.com/davka-nysa/davka/internal/models"
)

// DefaultListTTL bounds how stale a cached daily list may be.
const DefaultListTTL = 30 * time.Second

type listEntry struct {
	assets  []models.Asset
	expires time.Time
}

// ListCache memoizes media store listings per tag.
type ListCache struct {
	entries map[string]listEntry
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
}

// NewListCache returns a cache; a non-positive ttl disables caching.
func NewListCache(ttl time.Duration) *ListCache {
	return &ListCache{
		entries: make(map[string]listEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *ListCache) Get(tag string) ([]models.Asset, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[tag]
	if !ok || !c.now().Before(e.expires) {
		return nil, false
	}
	return append([]models.Asset(nil), e.assets...), true
}

func (c *ListCache) Set(tag string, assets []models.Asset) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[tag] = listEntry{
		assets:  append([]models.Asset(nil), assets...),
		expires: c.now().Add(c.ttl),
	}
}

// Invalidate drops every cached listing.
func (c *ListCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}
