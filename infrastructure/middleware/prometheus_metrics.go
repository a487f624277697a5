// Package middleware provides cross-cutting concerns for the ranking and
// submission services: Prometheus metrics and OpenTelemetry tracing.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-standings/internal/ports"
)

// Metric names understood by PrometheusMetrics. Other names are routed to
// the generic operation, state and value vectors.
const (
	MetricSubmissions    = "submissions_total"
	MetricSkipped        = "skipped_evaluations_total"
	MetricRankedTeams    = "ranked_teams"
	MetricTeamPercentage = "team_percentage"
)

// Label keys read from the labels map.
const (
	LabelTournament = "tournament"
	LabelStatus     = "status"
	LabelArea       = "area"
)

const (
	metricsNamespace  = "standings"
	unknownLabelValue = "unknown"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It tracks ranking latency, submission outcomes and the
// distribution of team percentages per tournament.
type PrometheusMetrics struct {
	operationLatency *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	submissions      *prometheus.CounterVec
	skipped          *prometheus.CounterVec
	rankedTeams      *prometheus.GaugeVec
	systemGauges     *prometheus.GaugeVec
	teamPercentage   *prometheus.HistogramVec
	values           *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// its collectors with reg. A nil reg uses the default registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &PrometheusMetrics{
		operationLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of ranking and submission operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", LabelTournament},
		),
		operationCounter: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "operations_total",
				Help:      "Total number of operations by outcome.",
			},
			[]string{"operation", LabelStatus, LabelTournament},
		),
		submissions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      MetricSubmissions,
				Help:      "Evaluation submissions by outcome and area.",
			},
			[]string{LabelStatus, LabelTournament, LabelArea},
		),
		skipped: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      MetricSkipped,
				Help:      "Evaluations dropped from rankings for non-finite scores.",
			},
			[]string{LabelTournament},
		),
		rankedTeams: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      MetricRankedTeams,
				Help:      "Number of teams in the most recent ranking.",
			},
			[]string{LabelTournament},
		),
		systemGauges: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "system_state",
				Help:      "Current values of miscellaneous service gauges.",
			},
			[]string{"metric", LabelTournament},
		),
		teamPercentage: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      MetricTeamPercentage,
				Help:      "Distribution of final team percentages.",
				Buckets:   prometheus.LinearBuckets(10, 10, 10),
			},
			[]string{LabelTournament},
		),
		values: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "values",
				Help:      "Generic value distributions.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"metric", LabelTournament},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	pm.operationLatency.WithLabelValues(operation, label(labels, LabelTournament)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	tournament := label(labels, LabelTournament)

	switch metric {
	case MetricSubmissions:
		pm.submissions.WithLabelValues(label(labels, LabelStatus), tournament, label(labels, LabelArea)).Add(value)
	case MetricSkipped:
		pm.skipped.WithLabelValues(tournament).Add(value)
	default:
		status, ok := labels[LabelStatus]
		if !ok || status == "" {
			status = "success"
		}
		pm.operationCounter.WithLabelValues(metric, status, tournament).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(metric string, value float64, labels map[string]string) {
	tournament := label(labels, LabelTournament)

	switch metric {
	case MetricRankedTeams:
		pm.rankedTeams.WithLabelValues(tournament).Set(value)
	default:
		pm.systemGauges.WithLabelValues(metric, tournament).Set(value)
	}
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(metric string, value float64, labels map[string]string) {
	tournament := label(labels, LabelTournament)

	switch metric {
	case MetricTeamPercentage:
		pm.teamPercentage.WithLabelValues(tournament).Observe(value)
	default:
		pm.values.WithLabelValues(metric, tournament).Observe(value)
	}
}

func label(labels map[string]string, key string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return unknownLabelValue
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
