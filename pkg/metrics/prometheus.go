package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	evaluations    *prometheus.CounterVec
	gateRejections *prometheus.CounterVec
	driftAlerts    *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastSpread     *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		evaluations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scalpgov_evaluations_total",
				Help: "Total proposal evaluations by pair and outcome",
			},
			[]string{"pair", "outcome"},
		),
		gateRejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scalpgov_gate_rejections_total",
				Help: "Total hard gate rejections by gate name",
			},
			[]string{"gate"},
		),
		driftAlerts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scalpgov_drift_alerts_total",
				Help: "Total edge drift alerts by type and severity",
			},
			[]string{"alert_type", "severity"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scalpgov_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastSpread: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scalpgov_last_spread_pips",
				Help: "Last observed bid/ask spread in pips",
			},
			[]string{"pair"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scalpgov_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordEvaluation records a completed proposal evaluation.
func (r *Recorder) RecordEvaluation(pair string, outcome string) {
	r.evaluations.WithLabelValues(pair, outcome).Inc()
}

// RecordGateRejection records a hard gate firing.
func (r *Recorder) RecordGateRejection(gate string) {
	r.gateRejections.WithLabelValues(gate).Inc()
}

// RecordDriftAlert records one drift alert.
func (r *Recorder) RecordDriftAlert(alertType string, severity string) {
	r.driftAlerts.WithLabelValues(alertType, severity).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastSpread records the last observed spread for a pair.
func (r *Recorder) RecordLastSpread(pair string, pips float64) {
	r.lastSpread.WithLabelValues(pair).Set(pips)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
