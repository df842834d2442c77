package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/tariff-events-etl/internal/domain"
	"github.com/couchcryptid/tariff-events-etl/internal/observability"
)

// TariffTransformer implements Transformer: it decodes a batch envelope,
// normalizes its records, and serializes one output event per canonical event.
type TariffTransformer struct {
	normalizer *domain.Normalizer
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewTransformer creates a TariffTransformer around normalizer.
func NewTransformer(normalizer *domain.Normalizer, logger *slog.Logger, metrics *observability.Metrics) *TariffTransformer {
	return &TariffTransformer{
		normalizer: normalizer,
		logger:     logger,
		metrics:    metrics,
	}
}

func (t *TariffTransformer) Transform(_ context.Context, raw domain.RawMessage) ([]domain.OutputEvent, error) {
	batch, err := domain.DecodeBatch(raw.Value)
	if err != nil {
		return nil, err
	}

	events := t.normalizer.Normalize(batch.Events)
	dropped := len(batch.Events) - len(events)
	t.metrics.EventsNormalized.Add(float64(len(events)))
	t.metrics.EventsDropped.Add(float64(dropped))
	if dropped > 0 {
		t.logger.Debug("dropped records without tariff detail",
			"dropped", dropped, "topic", raw.Topic, "offset", raw.Offset)
	}

	out := make([]domain.OutputEvent, 0, len(events))
	for _, e := range events {
		msg, err := domain.SerializeEvent(e)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}
