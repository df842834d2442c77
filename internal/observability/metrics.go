package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tariff_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Normalization metrics.
	EventsNormalized  prometheus.Counter
	EventsDropped     prometheus.Counter // records without a tariff detail object
	ReferenceFallback prometheus.Gauge

	// Events API metrics.
	APIRequests *prometheus.CounterVec   // labels: outcome={success,error}
	APICache    *prometheus.CounterVec   // labels: result={hit,miss}
	APIDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.EventsNormalized,
		m.EventsDropped,
		m.ReferenceFallback,
		m.APIRequests,
		m.APICache,
		m.APIDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withBuckets bool) *Metrics {
	batchBuckets := []float64{1, 5, 10, 20, 30, 40, 50, 75, 100}
	durationBuckets := []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10}
	if !withBuckets {
		batchBuckets, durationBuckets = nil, nil
	}

	return &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total raw batch messages read from the source.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total canonical events written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total source messages that could not be decoded.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of source messages per extracted batch.",
			Buckets:   batchBuckets,
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   durationBuckets,
		}),
		EventsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_normalized_total",
			Help:      "Total raw records turned into canonical events.",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Total raw records dropped for lacking tariff detail.",
		}),
		ReferenceFallback: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "country_reference_fallback",
			Help:      "1 when the embedded fallback country table is in use.",
		}),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Events search API requests by outcome.",
		}, []string{"outcome"}),
		APICache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_cache_total",
			Help:      "Events search cache lookups by result.",
		}, []string{"result"}),
		APIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_duration_seconds",
			Help:      "Events search API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
