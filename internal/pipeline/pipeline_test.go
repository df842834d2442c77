package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/tariff-events-etl/internal/domain"
	"github.com/couchcryptid/tariff-events-etl/internal/observability"
	"github.com/couchcryptid/tariff-events-etl/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	messages []domain.RawMessage
	index    atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawMessage, error) {
	start := int(m.index.Load())
	if start >= len(m.messages) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return nil, ctx.Err()
	}
	end := min(start+batchSize, len(m.messages))
	m.index.Store(int64(end))
	return m.messages[start:end], nil
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawMessage) ([]domain.OutputEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.OutputEvent{{Key: raw.Key, Value: raw.Value}}, nil
}

type mockLoader struct {
	mu     sync.Mutex
	loaded []domain.OutputEvent
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func newTestNormalizer(t *testing.T) *domain.Normalizer {
	t.Helper()
	ref, err := domain.Countries()
	require.NoError(t, err)
	return domain.NewNormalizer(ref)
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	raw := makeRawMessage(t, "msg-1", `{"events":[]}`)

	ext := &mockExtractor{messages: []domain.RawMessage{raw}}
	tfm := &mockTransformer{}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, tfm, ldr, slog.Default(), metrics, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, ldr.loaded, 1)
	assert.Equal(t, raw.Value, ldr.loaded[0].Value)
	assert.True(t, p.Ready())
	require.NoError(t, p.CheckReadiness(context.Background()))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.MessagesConsumed), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PipelineRunning), 0)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{} // no messages, will block
	tfm := &mockTransformer{}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_TransformErrorCommitsAndSkips(t *testing.T) {
	var commits atomic.Int32
	raw := makeRawMessage(t, "msg-2", `not json`)
	raw.Commit = func(_ context.Context) error {
		commits.Add(1)
		return nil
	}

	ext := &mockExtractor{messages: []domain.RawMessage{raw}}
	tfm := &mockTransformer{err: errors.New("bad data")}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, tfm, ldr, slog.Default(), metrics, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
	assert.False(t, p.Ready())
	assert.Equal(t, int32(1), commits.Load())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.TransformErrors), 0)
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	commitCalled := atomic.Bool{}

	raw := makeRawMessage(t, "msg-5", `{"events":[]}`)
	raw.Topic = "raw-tariff-events"
	raw.Commit = func(_ context.Context) error {
		commitCalled.Store(true)
		return nil
	}

	ext := &mockExtractor{messages: []domain.RawMessage{raw}}
	p := pipeline.New(ext, &mockTransformer{}, &mockLoader{}, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.True(t, commitCalled.Load())
}

func TestPipeline_Run_LoadFailureDoesNotCommit(t *testing.T) {
	commitCalled := atomic.Bool{}
	raw := makeRawMessage(t, "msg-6", `{"events":[]}`)
	raw.Commit = func(_ context.Context) error {
		commitCalled.Store(true)
		return nil
	}

	ext := &mockExtractor{messages: []domain.RawMessage{raw}}
	ldr := &mockLoader{err: errors.New("broker down")}
	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.False(t, commitCalled.Load())
	assert.False(t, p.Ready())
}

func TestPipeline_Run_EmptyBatchStillCommits(t *testing.T) {
	commitCalled := atomic.Bool{}
	raw := makeRawMessage(t, "msg-7", `{"events":[{"id":"no-detail"}]}`)
	raw.Commit = func(_ context.Context) error {
		commitCalled.Store(true)
		return nil
	}

	ext := &mockExtractor{messages: []domain.RawMessage{raw}}
	ldr := &mockLoader{}
	metrics := newTestMetrics()
	tfm := pipeline.NewTransformer(newTestNormalizer(t), slog.Default(), metrics)
	p := pipeline.New(ext, tfm, ldr, slog.Default(), metrics, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
	assert.True(t, commitCalled.Load())
	assert.True(t, p.Ready())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.EventsDropped), 0)
}

func TestTariffTransformer_Transform(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.January, 11, 9, 0, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() {
		domain.SetClock(nil)
	})

	raw := makeRawMessage(t, "msg-3", `{"events":[
		{"id":"e1","tariffs_v2":{"imposing_country_code":"US","targeted_country_codes":["CN","EU"],"measure_type":"new tariff"}},
		{"id":"e2"},
		{"id":"e3","tariffs_v2":{}}
	]}`)

	metrics := newTestMetrics()
	tfm := pipeline.NewTransformer(newTestNormalizer(t), slog.Default(), metrics)
	out, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, []byte("e1"), out[0].Key)
	assert.Equal(t, "new tariff", out[0].Headers["measure_type"])
	assert.Equal(t, "US", out[0].Headers["imposing_country_code"])
	assert.Equal(t, "2024-01-11T09:00:00Z", out[0].Headers["processed_at"])
	assert.Equal(t, []byte("e3"), out[1].Key)

	var event domain.Event
	require.NoError(t, json.Unmarshal(out[0].Value, &event))
	want := []domain.Country{{Name: "China", Code: "CN"}, {Name: "European Union", Code: "EU"}}
	if diff := cmp.Diff(want, event.TargetedCountries); diff != "" {
		t.Fatalf("targeted countries mismatch (-want +got):\n%s", diff)
	}

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.EventsNormalized), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.EventsDropped), 0)
}

func TestTariffTransformer_InvalidEnvelope(t *testing.T) {
	tfm := pipeline.NewTransformer(newTestNormalizer(t), slog.Default(), newTestMetrics())
	_, err := tfm.Transform(context.Background(), makeRawMessage(t, "bad", `["not","an","object"]`))
	assert.Error(t, err)
}

// --- helpers ---

func makeRawMessage(t *testing.T, key, value string) domain.RawMessage {
	t.Helper()
	return domain.RawMessage{
		Key:   []byte(key),
		Value: []byte(value),
	}
}
