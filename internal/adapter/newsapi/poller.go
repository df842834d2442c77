package newsapi

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/tariff-events-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// PollTopic tags messages produced by the poller.
const PollTopic = "newsapi"

// Fetcher returns one batch envelope for a query.
type Fetcher interface {
	FetchBatch(ctx context.Context, q domain.Query) (domain.RawBatch, error)
}

// Poller is a batch extractor that fetches the configured query once per
// interval. The first call fetches immediately; later calls wait out the
// remainder of the interval. Each fetch yields a single raw message holding
// the encoded batch envelope, minus events already emitted. A poll with
// nothing new yields no message.
//
// Overlapping lookback windows return the same events on consecutive polls,
// so emitted IDs are remembered until they fall out of the window.
type Poller struct {
	fetcher   Fetcher
	query     domain.Query
	interval  time.Duration
	retention time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger

	mu     sync.Mutex
	last   time.Time
	offset int64
	seen   map[string]time.Time // event ID -> first emitted
}

// NewPoller creates a Poller. A nil clock uses real time.
func NewPoller(fetcher Fetcher, q domain.Query, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Poller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Poller{
		fetcher:   fetcher,
		query:     q,
		interval:  interval,
		retention: time.Duration(q.LookbackHours())*time.Hour + interval,
		clock:     clock,
		logger:    logger,
		seen:      make(map[string]time.Time),
	}
}

// ExtractBatch blocks until the next poll is due, then fetches. batchSize is
// ignored: one poll is one message.
func (p *Poller) ExtractBatch(ctx context.Context, _ int) ([]domain.RawMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.last.IsZero() {
		wait := p.interval - p.clock.Since(p.last)
		if wait > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-p.clock.After(wait):
			}
		}
	}
	p.last = p.clock.Now()

	batch, err := p.fetcher.FetchBatch(ctx, p.query)
	if err != nil {
		return nil, err
	}
	fetched := len(batch.Events)
	batch.Events = p.unseen(batch.Events)
	batch.Count = nil

	p.logger.Info("polled events API", "events", fetched, "new", len(batch.Events), "lookback_hours", p.query.LookbackHours())
	if len(batch.Events) == 0 {
		return nil, nil
	}
	data, err := domain.EncodeBatch(batch)
	if err != nil {
		return nil, err
	}

	p.offset++
	return []domain.RawMessage{{
		Value:     data,
		Topic:     PollTopic,
		Offset:    p.offset,
		Timestamp: p.last,
	}}, nil
}

// unseen drops events emitted by an earlier poll and forgets IDs older than
// the retention window.
func (p *Poller) unseen(events []domain.RawEvent) []domain.RawEvent {
	for id, at := range p.seen {
		if p.last.Sub(at) > p.retention {
			delete(p.seen, id)
		}
	}
	out := make([]domain.RawEvent, 0, len(events))
	for _, e := range events {
		id := domain.EventID(e)
		if _, ok := p.seen[id]; ok {
			continue
		}
		p.seen[id] = p.last
		out = append(out, e)
	}
	return out
}
