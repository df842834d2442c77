package newsapi

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/couchcryptid/tariff-events-etl/internal/domain"
	"github.com/couchcryptid/tariff-events-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Searcher is the part of Client that CachedClient decorates.
type Searcher interface {
	SearchEvents(ctx context.Context, body Request) (domain.RawBatch, error)
}

// CachedClient wraps a Searcher with an in-memory LRU cache whose entries
// expire after a fixed TTL. Failed searches are never cached.
type CachedClient struct {
	inner   Searcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedClient creates a cache decorator around a searcher.
func NewCachedClient(inner Searcher, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedClient {
	return &CachedClient{
		inner:   inner,
		cache:   newLRUCache(maxEntries, ttl, clock),
		metrics: metrics,
	}
}

// FetchBatch builds the request for q and searches through the cache.
func (c *CachedClient) FetchBatch(ctx context.Context, q domain.Query) (domain.RawBatch, error) {
	return c.SearchEvents(ctx, BuildRequest(q))
}

func (c *CachedClient) SearchEvents(ctx context.Context, body Request) (domain.RawBatch, error) {
	key, err := requestKey(body)
	if err != nil {
		return c.inner.SearchEvents(ctx, body)
	}
	if batch, ok := c.cache.get(key); ok {
		c.metrics.APICache.WithLabelValues("hit").Inc()
		return batch, nil
	}
	c.metrics.APICache.WithLabelValues("miss").Inc()

	batch, err := c.inner.SearchEvents(ctx, body)
	if err != nil {
		return batch, err
	}
	c.cache.put(key, batch)
	return batch, nil
}

// requestKey encodes a request canonically; map keys marshal sorted.
func requestKey(body Request) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// lruCache is a thread-safe LRU cache of search results with per-entry expiry.
type lruCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key       string
	value     domain.RawBatch
	expiresAt time.Time
	prev      *entry
	next      *entry
}

func newLRUCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *lruCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &lruCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.RawBatch, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.RawBatch{}, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.remove(e)
		return domain.RawBatch{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.RawBatch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.clock.Now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
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
	e.prev, e.next = nil, nil
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
