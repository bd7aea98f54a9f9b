// Package middleware provides cross-cutting concerns for the judging
// engine. It implements the middleware/wrapper pattern to keep the compute
// and selection logic clean while adding observability.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/venharis/dais/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It provides real-time monitoring of compute runs, selection
// decisions, and score distributions for the judging engine.
type PrometheusMetrics struct {
	operationLatency  *prometheus.HistogramVec
	operationCounter  *prometheus.CounterVec
	systemGauges      *prometheus.GaugeVec
	scoreDistribution *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and
// registers all required metrics in the global Prometheus registry.
// Create it once per process; duplicate registration panics.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		operationLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dais_operation_duration_seconds",
				Help:    "Execution time of judging engine operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "round_id"},
		),
		operationCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dais_operations_total",
				Help: "Total number of operations performed by the judging engine.",
			},
			[]string{"operation", "status"},
		),
		systemGauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dais_system_state",
				Help: "Current system state values for the judging engine.",
			},
			[]string{"metric", "round_id"},
		),
		scoreDistribution: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dais_score_distribution",
				Help: "Distribution of normalized score values across compute runs.",
				// Aggregated z-scores cluster around zero; three standard
				// deviations covers practically every value.
				Buckets: []float64{-3, -2, -1.5, -1, -0.5, -0.25, 0, 0.25, 0.5, 1, 1.5, 2, 3},
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	roundID, ok := labels["round_id"]
	if !ok {
		roundID = "unknown"
	}
	pm.operationLatency.WithLabelValues(operation, roundID).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	status, ok := labels["status"]
	if !ok {
		status = "ok"
	}
	pm.operationCounter.WithLabelValues(metric, status).Add(value)
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	roundID, ok := labels["round_id"]
	if !ok {
		roundID = "unknown"
	}
	pm.systemGauges.WithLabelValues(metric, roundID).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in the score distribution histogram. Latency-style observations
// should go through RecordLatency instead.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	pm.scoreDistribution.WithLabelValues(metric).Observe(value)
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
