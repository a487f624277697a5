package middleware

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*PrometheusMetrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewPrometheusMetrics(reg), reg
}

func TestPrometheusMetrics_RecordCounter(t *testing.T) {
	pm, _ := newTestMetrics(t)

	pm.RecordCounter(MetricSubmissions, 1, map[string]string{LabelStatus: "created", LabelTournament: "t1", LabelArea: "design"})
	pm.RecordCounter(MetricSubmissions, 2, map[string]string{LabelStatus: "created", LabelTournament: "t1", LabelArea: "design"})
	pm.RecordCounter(MetricSkipped, 3, map[string]string{LabelTournament: "t1"})
	pm.RecordCounter("ranking", 1, map[string]string{})

	assert.Equal(t, 3.0, testutil.ToFloat64(pm.submissions.WithLabelValues("created", "t1", "design")))
	assert.Equal(t, 3.0, testutil.ToFloat64(pm.skipped.WithLabelValues("t1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.operationCounter.WithLabelValues("ranking", "success", unknownLabelValue)))
}

func TestPrometheusMetrics_RecordGauge(t *testing.T) {
	pm, _ := newTestMetrics(t)

	pm.RecordGauge(MetricRankedTeams, 12, map[string]string{LabelTournament: "t1"})
	pm.RecordGauge(MetricRankedTeams, 10, map[string]string{LabelTournament: "t1"})
	pm.RecordGauge("cached_tournaments", 4, nil)

	assert.Equal(t, 10.0, testutil.ToFloat64(pm.rankedTeams.WithLabelValues("t1")))
	assert.Equal(t, 4.0, testutil.ToFloat64(pm.systemGauges.WithLabelValues("cached_tournaments", unknownLabelValue)))
}

func TestPrometheusMetrics_HistogramsAndLatency(t *testing.T) {
	pm, reg := newTestMetrics(t)

	for _, p := range []float64{0, 45, 100} {
		pm.RecordHistogram(MetricTeamPercentage, p, map[string]string{LabelTournament: "t1"})
	}
	pm.RecordHistogram("evaluations_per_team", 3, map[string]string{LabelTournament: "t1"})
	pm.RecordLatency("ranking", 25*time.Millisecond, map[string]string{LabelTournament: "t1"})
	pm.RecordLatency("submission", time.Millisecond, map[string]string{LabelTournament: ""})

	assert.Equal(t, 1, testutil.CollectAndCount(pm.teamPercentage))
	assert.Equal(t, 1, testutil.CollectAndCount(pm.values))
	assert.Equal(t, 2, testutil.CollectAndCount(pm.operationLatency))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "standings_team_percentage")
	assert.Contains(t, names, "standings_operation_duration_seconds")
}

func TestNewPrometheusMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusMetrics(reg)
	assert.Panics(t, func() { NewPrometheusMetrics(reg) })
}
