package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"inventory/internal/metrics"
	"inventory/internal/port"
)

// QueryCache memoizes query vectors with LRU eviction and a TTL. Query vectors
// do not depend on catalog contents, so nothing else invalidates them.
type QueryCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	vector    []float32
	timestamp time.Time
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(model, query string) string {
	hash := sha256.Sum256([]byte(model + "\x00" + strings.TrimSpace(query)))
	return hex.EncodeToString(hash[:16])
}

func (c *QueryCache) Get(model, query string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(model, query)
	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	if c.now().Sub(entry.timestamp) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return nil, false
	}
	c.moveToEnd(key)
	return entry.vector, true
}

func (c *QueryCache) Put(model, query string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(model, query)
	if _, exists := c.entries[key]; exists {
		c.entries[key] = &cacheEntry{vector: vector, timestamp: c.now()}
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[key] = &cacheEntry{vector: vector, timestamp: c.now()}
	c.order = append(c.order, key)
}

func (c *QueryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *QueryCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *QueryCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *QueryCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// CachedEmbedder serves repeated query texts from a QueryCache.
type CachedEmbedder struct {
	port.Embedder
	cache   *QueryCache
	metrics *metrics.Metrics
}

func NewCachedEmbedder(e port.Embedder, cache *QueryCache, m *metrics.Metrics) *CachedEmbedder {
	if m == nil {
		m = metrics.NewNop()
	}
	return &CachedEmbedder{Embedder: e, cache: cache, metrics: m}
}

// Embed trims text before both the lookup and the provider call, so texts
// differing only in surrounding space share one vector.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	model := c.Embedder.ModelName()
	if vec, hit := c.cache.Get(model, text); hit {
		c.metrics.QueryCacheHits.Inc()
		return vec, nil
	}
	c.metrics.QueryCacheMisses.Inc()

	vec, err := c.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Put(model, text, vec)
	return vec, nil
}
