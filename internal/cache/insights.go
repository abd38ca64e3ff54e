// Package cache keeps recent coaching results so repeated insight requests
// do not call the model again until the user's data changes.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/dvloznov/finwise/internal/domain"
)

const DefaultTTL = 5 * time.Minute

// InsightsCache stores one CoachingResult per user. Each user has a
// generation that Invalidate advances, so a result computed before a write
// is never stored after it.
type InsightsCache struct {
	cache *ristretto.Cache
	ttl   time.Duration

	mu          sync.Mutex
	generations map[string]uint64
}

// NewInsightsCache creates a cache whose entries expire after ttl. A
// non-positive ttl uses DefaultTTL.
func NewInsightsCache(ttl time.Duration) (*InsightsCache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create insights cache: %w", err)
	}

	return &InsightsCache{cache: c, ttl: ttl, generations: make(map[string]uint64)}, nil
}

// Get returns the cached result for userID.
func (c *InsightsCache) Get(userID string) (*domain.CoachingResult, bool) {
	v, ok := c.cache.Get(userID)
	if !ok {
		return nil, false
	}
	result, ok := v.(*domain.CoachingResult)
	return result, ok
}

// Set stores result for userID. Writes are applied asynchronously.
func (c *InsightsCache) Set(userID string, result *domain.CoachingResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.SetWithTTL(userID, result, 1, c.ttl)
}

// Generation returns the user's current generation. Read it before loading
// the data a result is computed from.
func (c *InsightsCache) Generation(userID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[userID]
}

// SetIfGeneration stores result only when no invalidation happened since
// gen was read. It reports whether the result was stored.
func (c *InsightsCache) SetIfGeneration(userID string, gen uint64, result *domain.CoachingResult) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[userID] != gen {
		return false
	}
	c.cache.SetWithTTL(userID, result, 1, c.ttl)
	return true
}

// Invalidate drops the cached result after the user's data changed.
func (c *InsightsCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[userID]++
	c.cache.Del(userID)
}

// Wait blocks until pending writes are applied.
func (c *InsightsCache) Wait() {
	c.cache.Wait()
}

// Close stops the cache's background goroutines.
func (c *InsightsCache) Close() {
	c.cache.Close()
}
