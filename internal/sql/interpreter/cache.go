package interpreter

import (
	"container/list"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/dshills/QuantaIR/internal/log"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

// DefaultCoercionCacheSize is used when a non-positive size is requested
const DefaultCoercionCacheSize = 1000

// CoercionCache is a bounded LRU cache of coercion functions keyed by source
// and target type. It is safe for concurrent use; concurrent misses on the
// same key build the coercion once.
type CoercionCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lruList *list.List
	maxSize int

	group singleflight.Group

	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter

	logger log.Logger
}

type cacheEntry struct {
	key      string
	coercion Coercion
}

// NewCoercionCache creates a cache holding at most maxSize coercions
func NewCoercionCache(maxSize int, logger log.Logger) *CoercionCache {
	if maxSize <= 0 {
		maxSize = DefaultCoercionCacheSize
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quantair",
			Subsystem: "coercion_cache",
			Name:      name,
			Help:      help,
		})
	}
	return &CoercionCache{
		entries:   make(map[string]*list.Element),
		lruList:   list.New(),
		maxSize:   maxSize,
		hits:      counter("hits_total", "Number of coercion cache hits."),
		misses:    counter("misses_total", "Number of coercion cache misses."),
		evictions: counter("evictions_total", "Number of coercions evicted from the cache."),
		logger:    log.OrDefault(logger),
	}
}

func cacheKey(from, to types.Type) string {
	return from.Name() + "->" + to.Name()
}

// Get returns the coercion from one type to another, building and caching it
// on a miss. Failed lookups are not cached.
func (c *CoercionCache) Get(from, to types.Type) (Coercion, error) {
	key := cacheKey(from, to)

	c.mu.Lock()
	if elem, ok := c.entries[key]; ok {
		c.lruList.MoveToFront(elem)
		c.mu.Unlock()
		c.hits.Inc()
		return elem.Value.(*cacheEntry).coercion, nil
	}
	c.mu.Unlock()
	c.misses.Inc()

	v, err, _ := c.group.Do(key, func() (any, error) {
		coercion, err := buildCoercion(from, to)
		if err != nil {
			return nil, err
		}
		c.put(key, coercion)
		return coercion, nil
	})
	if err != nil {
		c.logger.Debug("no coercion", log.String("key", key), log.Any("error", err))
		return nil, err
	}
	return v.(Coercion), nil
}

func (c *CoercionCache) put(key string, coercion Coercion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*cacheEntry).coercion = coercion
		c.lruList.MoveToFront(elem)
		return
	}
	if c.lruList.Len() >= c.maxSize {
		c.evictLRU()
	}
	c.entries[key] = c.lruList.PushFront(&cacheEntry{key: key, coercion: coercion})
}

// evictLRU removes the least recently used entry. Must be called with the lock held.
func (c *CoercionCache) evictLRU() {
	back := c.lruList.Back()
	if back == nil {
		return
	}
	entry := c.lruList.Remove(back).(*cacheEntry)
	delete(c.entries, entry.key)
	c.evictions.Inc()
	c.logger.Debug("coercion evicted", log.String("key", entry.key))
}

// Len returns the number of cached coercions
func (c *CoercionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.Len()
}

// Clear drops every cached coercion
func (c *CoercionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.lruList.Init()
}

// Describe implements prometheus.Collector.
func (c *CoercionCache) Describe(ch chan<- *prometheus.Desc) {
	c.hits.Describe(ch)
	c.misses.Describe(ch)
	c.evictions.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *CoercionCache) Collect(ch chan<- prometheus.Metric) {
	c.hits.Collect(ch)
	c.misses.Collect(ch)
	c.evictions.Collect(ch)
}
