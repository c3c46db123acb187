// Package cache memoizes recommender results in an in-memory LRU.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/couchcryptid/crop-advisory-service/internal/observability"
)

// CachedRecommender wraps a Recommender with an in-memory LRU cache keyed by
// the soil profile and shortlist length.
type CachedRecommender struct {
	inner   domain.Recommender
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedRecommender creates a cache decorator around a recommender.
func NewCachedRecommender(inner domain.Recommender, maxEntries int, metrics *observability.Metrics) *CachedRecommender {
	return &CachedRecommender{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

// Name reports the wrapped strategy.
func (c *CachedRecommender) Name() string { return c.inner.Name() }

func (c *CachedRecommender) Recommend(ctx context.Context, profile domain.SoilProfile, topN int) ([]domain.RankedRecommendation, error) {
	if topN <= 0 {
		topN = domain.DefaultTopN
	}
	key := cacheKey(profile, topN)
	if recs, ok := c.cache.get(key); ok {
		c.metrics.RecommendationCache.WithLabelValues("hit").Inc()
		return recs, nil
	}
	c.metrics.RecommendationCache.WithLabelValues("miss").Inc()

	recs, err := c.inner.Recommend(ctx, profile, topN)
	if err != nil {
		return recs, err
	}
	// Only cache non-empty results so a fallback or reload can still answer.
	if len(recs) > 0 {
		c.cache.put(key, recs)
	}
	return recs, nil
}

// Len returns the number of cached entries.
func (c *CachedRecommender) Len() int {
	return c.cache.len()
}

func cacheKey(p domain.SoilProfile, topN int) string {
	return fmt.Sprintf("%g|%g|%g|%g|%g|%d", p.Nitrogen, p.Phosphorus, p.Potassium, p.PH, p.OrganicCarbon, topN)
}

// lruCache is a simple thread-safe LRU cache of recommendation lists.
// Values are copied on the way in and out so callers cannot alias entries.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []domain.RankedRecommendation
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]domain.RankedRecommendation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return clone(e.value), true
}

func (c *lruCache) put(key string, value []domain.RankedRecommendation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = clone(value)
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: clone(value)}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}

func clone(recs []domain.RankedRecommendation) []domain.RankedRecommendation {
	out := make([]domain.RankedRecommendation, len(recs))
	copy(out, recs)
	return out
}
