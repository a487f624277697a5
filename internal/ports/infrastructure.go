package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-standings/internal/domain"
)

// EvaluationStore persists judge evaluations. Implementations must keep at
// most one row per domain.EvaluationKey.
type EvaluationStore interface {
	// Upsert inserts the evaluation or, when a row with the same key
	// exists, replaces its scores, penalties, comments and timing and
	// increments its version. The stored row is returned with its ID,
	// Version and SubmittedAt populated. Penalties are replaced wholesale.
	Upsert(ctx context.Context, ev domain.Evaluation) (domain.Evaluation, error)

	// Get returns the evaluation with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (domain.Evaluation, error)

	// ListByTournament returns every evaluation of a tournament, active or
	// not, ordered by submission time.
	ListByTournament(ctx context.Context, tournamentID string) ([]domain.Evaluation, error)

	// Deactivate marks an evaluation inactive so rankings ignore it. It
	// returns ErrNotFound when the ID is unknown.
	Deactivate(ctx context.Context, id string) error
}

// TournamentReader provides the read side of tournament definitions.
type TournamentReader interface {
	// Tournament returns the tournament with its areas ordered by Order,
	// its teams and its ranking configuration, or ErrNotFound.
	Tournament(ctx context.Context, id string) (domain.Tournament, error)
}

// TournamentWriter stores tournament definitions.
type TournamentWriter interface {
	// SaveTournament creates or replaces a tournament together with its
	// areas, teams and ranking configuration.
	SaveTournament(ctx context.Context, t domain.Tournament) error
}

// TournamentStore is the union of TournamentReader and TournamentWriter.
type TournamentStore interface {
	TournamentReader
	TournamentWriter
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus or OpenTelemetry.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like accepted or rejected
	// submissions.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like team percentages.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// NoopMetrics discards every measurement.
type NoopMetrics struct{}

// RecordLatency implements MetricsCollector.
func (NoopMetrics) RecordLatency(string, time.Duration, map[string]string) {}

// RecordCounter implements MetricsCollector.
func (NoopMetrics) RecordCounter(string, float64, map[string]string) {}

// RecordGauge implements MetricsCollector.
func (NoopMetrics) RecordGauge(string, float64, map[string]string) {}

// RecordHistogram implements MetricsCollector.
func (NoopMetrics) RecordHistogram(string, float64, map[string]string) {}

// RankingSummary describes one completed ranking computation.
type RankingSummary struct {
	TournamentID string
	Teams        int
	Areas        int
	Evaluations  int

	// Skipped counts evaluations dropped for non-finite scores.
	Skipped int

	// Percentages holds the final team percentages in ranking order.
	Percentages []float64

	Filtered bool
	Elapsed  time.Duration
}

// SubmissionSummary describes one submission attempt.
type SubmissionSummary struct {
	TournamentID string
	AreaID       string
	JudgeID      string
	Round        int

	// Version is the stored version; zero when the submission failed.
	Version int
	Elapsed time.Duration
}

// Observer receives lifecycle callbacks from the ranking and submission
// services. Start methods return the context the operation continues
// with, so implementations can attach spans to it.
type Observer interface {
	RankingStarted(ctx context.Context, tournamentID string) context.Context
	RankingFinished(ctx context.Context, summary RankingSummary, err error)
	SubmissionStarted(ctx context.Context, tournamentID string) context.Context
	SubmissionFinished(ctx context.Context, summary SubmissionSummary, err error)
}

// NoopObserver ignores every callback.
type NoopObserver struct{}

// RankingStarted implements Observer.
func (NoopObserver) RankingStarted(ctx context.Context, _ string) context.Context { return ctx }

// RankingFinished implements Observer.
func (NoopObserver) RankingFinished(context.Context, RankingSummary, error) {}

// SubmissionStarted implements Observer.
func (NoopObserver) SubmissionStarted(ctx context.Context, _ string) context.Context { return ctx }

// SubmissionFinished implements Observer.
func (NoopObserver) SubmissionFinished(context.Context, SubmissionSummary, error) {}
