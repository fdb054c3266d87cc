package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics for the risk registry.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPLatency     *prometheus.HistogramVec
	ScoringRuns     *prometheus.CounterVec
	RecalcProcessed prometheus.Counter
	RecalcDuration  prometheus.Histogram
	HeatmapCache    *prometheus.CounterVec
}

// NewMetrics creates and registers the Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskregistry_http_requests_total",
				Help: "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "riskregistry_http_request_duration_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ScoringRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskregistry_scoring_runs_total",
				Help: "Total number of risk scoring computations, by trigger.",
			},
			[]string{"trigger"},
		),
		RecalcProcessed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "riskregistry_recalc_risks_processed_total",
				Help: "Total risks processed by bulk recalculation sweeps.",
			},
		),
		RecalcDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "riskregistry_recalc_duration_seconds",
				Help:    "Duration of bulk recalculation sweeps.",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
			},
		),
		HeatmapCache: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskregistry_heatmap_cache_total",
				Help: "Heatmap cache lookups by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

// RecordRequest records one handled HTTP request.
func (m *Metrics) RecordRequest(method, route, status string, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordScoringRun records one scoring computation by its trigger
// (create, update, control_change, recalc).
func (m *Metrics) RecordScoringRun(trigger string) {
	m.ScoringRuns.WithLabelValues(trigger).Inc()
}

// RecordRecalc records a completed bulk recalculation sweep.
func (m *Metrics) RecordRecalc(processed int, duration time.Duration) {
	m.RecalcProcessed.Add(float64(processed))
	m.RecalcDuration.Observe(duration.Seconds())
}

// RecordHeatmapCache records a heatmap cache lookup outcome (hit, miss, error).
func (m *Metrics) RecordHeatmapCache(outcome string) {
	m.HeatmapCache.WithLabelValues(outcome).Inc()
}
