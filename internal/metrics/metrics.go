package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/trace"
)

// Metrics holds the service's Prometheus instruments. Registered once on
// the default registry; create a single instance in main and share it.
type Metrics struct {
	namespace string

	AnalysesTotal    *prometheus.CounterVec // labels: profile
	ComparisonsTotal prometheus.Counter
	SuggestionsTotal prometheus.Counter

	AICallsTotal     *prometheus.CounterVec // labels: provider, outcome
	BlendMethodTotal *prometheus.CounterVec // labels: method

	AnalysisDuration *prometheus.HistogramVec // labels: status
	QueueWaitSeconds prometheus.Histogram
}

// New creates and registers the service metrics under the namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		namespace: namespace,
		AnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Deterministic analyses performed, by scoring profile.",
		}, []string{"profile"}),
		ComparisonsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comparisons_total",
			Help:      "Two-post comparisons performed.",
		}),
		SuggestionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestion_requests_total",
			Help:      "Suggestion generations performed.",
		}),
		AICallsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_calls_total",
			Help:      "LLM provider calls, by provider and outcome.",
		}, []string{"provider", "outcome"}),
		BlendMethodTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hybrid_blend_total",
			Help:      "Hybrid analyses completed, by analysis method.",
		}, []string{"method"}),
		AnalysisDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "hybrid_analysis_duration_seconds",
			Help:      "End-to-end hybrid analysis duration, by status.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"status"}),
		QueueWaitSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "queue_wait_seconds",
			Help:      "Time tasks spent queued before a worker picked them up.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
		}),
	}
}

// RecordAICall counts one LLM provider call by outcome.
func (m *Metrics) RecordAICall(provider, outcome string) {
	m.AICallsTotal.WithLabelValues(provider, outcome).Inc()
}

// RegisterCacheStats exposes the engine's fingerprint-cache counters as
// gauges, keeping the scoring package free of Prometheus types.
func (m *Metrics) RegisterCacheStats(stats func() (hits, misses uint64)) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "score_cache_hits_total",
		Help:      "Fingerprint cache hits.",
	}, func() float64 {
		hits, _ := stats()
		return float64(hits)
	})
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "score_cache_misses_total",
		Help:      "Fingerprint cache misses.",
	}, func() float64 {
		_, misses := stats()
		return float64(misses)
	})
}

// ObserveDurationWithExemplar records a duration on the labelled
// histogram, attaching the current trace ID as an exemplar when sampled.
func (m *Metrics) ObserveDurationWithExemplar(ctx context.Context, hist *prometheus.HistogramVec, duration float64, status string) {
	observer := hist.WithLabelValues(status)

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() && spanCtx.IsSampled() {
		if eo, ok := observer.(prometheus.ExemplarObserver); ok {
			eo.ObserveWithExemplar(duration, prometheus.Labels{
				"trace_id": spanCtx.TraceID().String(),
			})
			return
		}
	}
	observer.Observe(duration)
}
