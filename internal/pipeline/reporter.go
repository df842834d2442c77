package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/tariff-events-etl/internal/domain"
	"github.com/couchcryptid/tariff-events-etl/internal/observability"
)

// BatchFetcher returns one upstream batch envelope for a query.
type BatchFetcher interface {
	FetchBatch(ctx context.Context, q domain.Query) (domain.RawBatch, error)
}

// Reporter builds dashboard reports on demand. It tries the primary source,
// then the fallback, then settles for an empty batch, so callers always get a
// report; an outage looks the same as an empty response.
type Reporter struct {
	primary    BatchFetcher
	fallback   BatchFetcher
	normalizer *domain.Normalizer
	ref        *domain.CountryReference
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewReporter creates a Reporter. Either source may be nil.
func NewReporter(primary, fallback BatchFetcher, normalizer *domain.Normalizer, ref *domain.CountryReference, logger *slog.Logger, metrics *observability.Metrics) *Reporter {
	return &Reporter{
		primary:    primary,
		fallback:   fallback,
		normalizer: normalizer,
		ref:        ref,
		logger:     logger,
		metrics:    metrics,
	}
}

// Report fetches a batch for q, normalizes it, applies f, and aggregates the
// matching events.
func (r *Reporter) Report(ctx context.Context, q domain.Query, f domain.Filter) domain.Report {
	batch := r.fetch(ctx, q)
	return r.Build(batch, f)
}

// Build normalizes an already fetched batch and aggregates the events
// matching f.
func (r *Reporter) Build(batch domain.RawBatch, f domain.Filter) domain.Report {
	events := r.normalizer.Normalize(batch.Events)
	r.metrics.EventsNormalized.Add(float64(len(events)))
	r.metrics.EventsDropped.Add(float64(len(batch.Events) - len(events)))

	if !f.IsZero() {
		events = f.Apply(events)
	}
	events = domain.SortByAnnouncement(events)
	return domain.BuildReport(batch, events, r.ref)
}

func (r *Reporter) fetch(ctx context.Context, q domain.Query) domain.RawBatch {
	if r.primary != nil {
		batch, err := r.primary.FetchBatch(ctx, q)
		if err == nil {
			return batch
		}
		r.logger.Warn("events source failed, using fallback", "error", err)
	}
	if r.fallback != nil {
		batch, err := r.fallback.FetchBatch(ctx, q)
		if err == nil {
			return batch
		}
		r.logger.Warn("fallback events source failed, using empty batch", "error", err)
	}
	return domain.RawBatch{Events: []domain.RawEvent{}}
}
