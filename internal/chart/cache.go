package chart

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// cacheEntry is one rendered image.
type cacheEntry struct {
	Body      []byte
	ExpiresAt time.Time
}

// RenderCache keeps rendered frames for a short TTL. Identical requests at the
// same simulated instant are common while the clock is paused.
type RenderCache struct {
	mu    sync.RWMutex
	store map[string]*cacheEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewRenderCache returns nil (caching disabled) when ttl <= 0.
func NewRenderCache(ttl time.Duration) *RenderCache {
	if ttl <= 0 {
		return nil
	}
	return &RenderCache{
		store: make(map[string]*cacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves a cached frame if available and not expired.
func (c *RenderCache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.store[key]
	if !exists || c.now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Body, true
}

func (c *RenderCache) Set(key string, body []byte) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = &cacheEntry{
		Body:      body,
		ExpiresAt: c.now().Add(c.ttl),
	}
}

// Clear removes all entries.
func (c *RenderCache) Clear() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]*cacheEntry)
}

func (c *RenderCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Run removes expired entries every interval until ctx is done.
func (c *RenderCache) Run(ctx context.Context, interval time.Duration) {
	if c == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *RenderCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.store {
		if now.After(entry.ExpiresAt) {
			delete(c.store, key)
		}
	}
}

// CacheKey builds a deterministic key from everything that affects a frame.
func CacheKey(req Request, currentMs int64, version uint64, width, height int, format Format) string {
	keyStr := fmt.Sprintf("%s:%s:%s:%d:%d:%s:%d:%d:%d:%d:%s",
		req.Kind, req.View, req.Comparison,
		req.Override.Downsample, req.Override.Smooth, req.Override.LabelLayout,
		currentMs, version, width, height, format,
	)

	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}
