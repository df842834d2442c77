package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsForTesting(t *testing.T) {
	m := NewMetricsForTesting()

	m.EventsNormalized.Add(3)
	m.EventsDropped.Inc()
	m.APICache.WithLabelValues("hit").Inc()
	m.ReferenceFallback.Set(1)

	assert.InDelta(t, 3, testutil.ToFloat64(m.EventsNormalized), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.EventsDropped), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.APICache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ReferenceFallback), 0)

	// Separate instances share no state.
	assert.InDelta(t, 0, testutil.ToFloat64(NewMetricsForTesting().EventsNormalized), 0)
}
