package phenotype

import (
	"sync"

	"biomorph/internal/model"
)

// DefaultCacheCapacity bounds the memo cache when the caller does not.
const DefaultCacheCapacity = 256

// Cache memoizes generated segment lists by gene vector. It is an
// optimization only: a miss always recomputes correctly. When the cache
// grows past capacity the oldest half of the entries is evicted. Cached
// slices are never mutated after insertion, so eviction cannot corrupt a
// list still held by a caller.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[[model.GeneCount]int][]Segment
	order    [][model.GeneCount]int
}

func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[[model.GeneCount]int][]Segment, capacity),
	}
}

func (c *Cache) Get(genes [model.GeneCount]int) ([]Segment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	segments, ok := c.entries[genes]
	return segments, ok
}

func (c *Cache) Put(genes [model.GeneCount]int, segments []Segment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[genes]; exists {
		c.entries[genes] = segments
		return
	}
	if len(c.order) >= c.capacity {
		drop := len(c.order) / 2
		if drop < 1 {
			drop = 1
		}
		for _, key := range c.order[:drop] {
			delete(c.entries, key)
		}
		c.order = append([][model.GeneCount]int(nil), c.order[drop:]...)
	}
	c.entries[genes] = segments
	c.order = append(c.order, genes)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Renderer generates phenotype geometry with memoization.
type Renderer struct {
	cache *Cache
}

func NewRenderer(cacheCapacity int) *Renderer {
	return &Renderer{cache: NewCache(cacheCapacity)}
}

// Render returns the canonical segment list for a biomorph. Identical gene
// vectors always yield identical geometry, so the cache is transparent.
func (r *Renderer) Render(b model.Biomorph) []Segment {
	if segments, ok := r.cache.Get(b.Genes); ok {
		return segments
	}
	segments := Generate(b.Genes)
	r.cache.Put(b.Genes, segments)
	return segments
}
