package scoring

import (
	"container/list"
	"sync"

	"github.com/postforge/postscore/internal/models"
)

// contentScores are the cached, params-independent outputs for one
// fingerprint: unclamped content-derived sub-scores plus the feature
// vector they came from. Audience multipliers and clamping are applied
// after retrieval, so one entry serves every AdvancedParams combination.
type contentScores struct {
	engagement float64
	reach      float64
	virality   float64
	features   models.FeatureVector
}

// lruCache is a size-bounded LRU keyed by text fingerprint. Scoring is
// deterministic and idempotent, so a lost update only costs a redundant
// recomputation, never an inconsistent result.
type lruCache struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	entries map[string]*list.Element
	hits    uint64
	misses  uint64
}

type cacheEntry struct {
	key    string
	scores contentScores
}

func newLRUCache(maxSize int) *lruCache {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &lruCache{
		maxSize: maxSize,
		order:   list.New(),
		entries: make(map[string]*list.Element, maxSize),
	}
}

func (c *lruCache) get(key string) (contentScores, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return contentScores{}, false
	}
	c.order.MoveToFront(elem)
	c.hits++
	return elem.Value.(*cacheEntry).scores, true
}

func (c *lruCache) put(key string, scores contentScores) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*cacheEntry).scores = scores
		c.order.MoveToFront(elem)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, scores: scores})

	for c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// stats returns lifetime hit/miss counters for metrics reporting.
func (c *lruCache) stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
