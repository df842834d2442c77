package newsapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/tariff-events-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingSearcher struct {
	calls int
	batch domain.RawBatch
	err   error
}

func (m *countingSearcher) SearchEvents(_ context.Context, _ Request) (domain.RawBatch, error) {
	m.calls++
	return m.batch, m.err
}

func batchOf(ids ...string) domain.RawBatch {
	events := make([]domain.RawEvent, len(ids))
	for i, id := range ids {
		events[i] = domain.RawEvent{"id": id}
	}
	return domain.RawBatch{Events: events}
}

// --- CachedClient tests ---

func TestCachedClient_CacheHit(t *testing.T) {
	inner := &countingSearcher{batch: batchOf("e1")}
	metrics := testMetrics()
	cached := NewCachedClient(inner, 10, time.Hour, clockwork.NewFakeClock(), metrics)

	b1, err := cached.FetchBatch(context.Background(), domain.Query{Hours: 24})
	require.NoError(t, err)
	b2, err := cached.FetchBatch(context.Background(), domain.Query{})
	require.NoError(t, err)

	assert.Equal(t, b1, b2)
	assert.Equal(t, 1, inner.calls, "equivalent queries should share one entry")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.APICache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.APICache.WithLabelValues("miss")), 0)
}

func TestCachedClient_DifferentQueriesMiss(t *testing.T) {
	inner := &countingSearcher{batch: batchOf("e1")}
	cached := NewCachedClient(inner, 10, time.Hour, clockwork.NewFakeClock(), testMetrics())

	_, _ = cached.FetchBatch(context.Background(), domain.Query{ImposingCountries: []string{"US"}})
	_, _ = cached.FetchBatch(context.Background(), domain.Query{ImposingCountries: []string{"CN"}})

	assert.Equal(t, 2, inner.calls)
}

func TestCachedClient_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingSearcher{batch: batchOf("e1")}
	cached := NewCachedClient(inner, 10, time.Hour, clock, testMetrics())

	_, _ = cached.FetchBatch(context.Background(), domain.Query{})
	clock.Advance(59 * time.Minute)
	_, _ = cached.FetchBatch(context.Background(), domain.Query{})
	assert.Equal(t, 1, inner.calls)

	clock.Advance(time.Minute)
	_, _ = cached.FetchBatch(context.Background(), domain.Query{})
	assert.Equal(t, 2, inner.calls, "entry should expire after the TTL")
}

func TestCachedClient_ErrorsNotCached(t *testing.T) {
	inner := &countingSearcher{err: errors.New("api down")}
	cached := NewCachedClient(inner, 10, time.Hour, clockwork.NewFakeClock(), testMetrics())

	_, err := cached.FetchBatch(context.Background(), domain.Query{})
	require.Error(t, err)

	inner.err = nil
	inner.batch = batchOf("e2")
	batch, err := cached.FetchBatch(context.Background(), domain.Query{})
	require.NoError(t, err)
	assert.Equal(t, "e2", batch.Events[0]["id"])
	assert.Equal(t, 2, inner.calls)
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3, time.Hour, clockwork.NewFakeClock())

	c.put("a", batchOf("A"))
	c.put("b", batchOf("B"))

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", result.Events[0]["id"])

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2, time.Hour, clockwork.NewFakeClock())

	c.put("a", batchOf("A"))
	c.put("b", batchOf("B"))
	c.put("c", batchOf("C")) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	_, ok = c.get("b")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.len())
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2, time.Hour, clockwork.NewFakeClock())

	c.put("a", batchOf("A"))
	c.put("b", batchOf("B"))

	// Access "a" to promote it
	c.get("a")

	// Insert "c", which should evict "b" (LRU), not "a"
	c.put("c", batchOf("C"))

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateRefreshesExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newLRUCache(2, time.Minute, clock)

	c.put("a", batchOf("A1"))
	clock.Advance(45 * time.Second)
	c.put("a", batchOf("A2"))
	clock.Advance(45 * time.Second)

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", result.Events[0]["id"])
}

func TestLRUCache_ExpiredEntryRemoved(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newLRUCache(2, time.Minute, clock)

	c.put("a", batchOf("A"))
	clock.Advance(time.Minute)

	_, ok := c.get("a")
	assert.False(t, ok)
	assert.Zero(t, c.len())
}
