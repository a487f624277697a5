package middleware

import (
	"context"
	"maps"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-standings/internal/ports"
)

// TracerName is the instrumentation scope of spans started by OTelObserver.
const TracerName = "github.com/ahrav/go-standings"

var _ ports.Observer = (*OTelObserver)(nil)

// OTelObserver implements ports.Observer with OpenTelemetry spans and
// forwards measurements to a MetricsCollector. Spans travel in the context
// returned by the Started callbacks, so one observer serves concurrent
// operations.
type OTelObserver struct {
	tracer  trace.Tracer
	metrics ports.MetricsCollector
}

// NewOTelObserver creates an observer using the global tracer provider.
// A nil metrics collector discards measurements.
func NewOTelObserver(metrics ports.MetricsCollector) *OTelObserver {
	return NewOTelObserverWithTracer(otel.Tracer(TracerName), metrics)
}

// NewOTelObserverWithTracer creates an observer with an explicit tracer.
func NewOTelObserverWithTracer(tracer trace.Tracer, metrics ports.MetricsCollector) *OTelObserver {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &OTelObserver{tracer: tracer, metrics: metrics}
}

// RankingStarted implements ports.Observer.
func (o *OTelObserver) RankingStarted(ctx context.Context, tournamentID string) context.Context {
	ctx, _ = o.tracer.Start(ctx, "RankingService.Ranking",
		trace.WithAttributes(attribute.String("tournament.id", tournamentID)),
	)
	return ctx
}

// RankingFinished implements ports.Observer. It ends the span started by
// RankingStarted and records latency, team count, skipped evaluations and
// the percentage distribution.
func (o *OTelObserver) RankingFinished(ctx context.Context, s ports.RankingSummary, err error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	labels := map[string]string{LabelTournament: s.TournamentID}
	o.metrics.RecordLatency("ranking", s.Elapsed, labels)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.metrics.RecordCounter("ranking", 1, withStatus(labels, "error"))
		return
	}

	span.SetAttributes(
		attribute.Int("ranking.teams", s.Teams),
		attribute.Int("ranking.areas", s.Areas),
		attribute.Int("ranking.evaluations", s.Evaluations),
		attribute.Bool("ranking.filtered", s.Filtered),
	)
	if s.Skipped > 0 {
		span.AddEvent("ranking.skipped_evaluations", trace.WithAttributes(
			attribute.Int("count", s.Skipped),
		))
		o.metrics.RecordCounter(MetricSkipped, float64(s.Skipped), labels)
	}

	o.metrics.RecordCounter("ranking", 1, withStatus(labels, "success"))
	if !s.Filtered {
		o.metrics.RecordGauge(MetricRankedTeams, float64(s.Teams), labels)
		for _, p := range s.Percentages {
			o.metrics.RecordHistogram(MetricTeamPercentage, p, labels)
		}
	}
	span.SetStatus(codes.Ok, "ranking computed")
}

// SubmissionStarted implements ports.Observer.
func (o *OTelObserver) SubmissionStarted(ctx context.Context, tournamentID string) context.Context {
	ctx, _ = o.tracer.Start(ctx, "SubmissionService.Submit",
		trace.WithAttributes(attribute.String("tournament.id", tournamentID)),
	)
	return ctx
}

// SubmissionFinished implements ports.Observer.
func (o *OTelObserver) SubmissionFinished(ctx context.Context, s ports.SubmissionSummary, err error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.SetAttributes(
		attribute.String("area.id", s.AreaID),
		attribute.String("judge.id", s.JudgeID),
		attribute.Int("evaluation.round", s.Round),
	)

	labels := map[string]string{LabelTournament: s.TournamentID, LabelArea: s.AreaID}
	o.metrics.RecordLatency("submission", s.Elapsed, labels)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.metrics.RecordCounter(MetricSubmissions, 1, withStatus(labels, "rejected"))
		return
	}

	span.SetAttributes(attribute.Int("evaluation.version", s.Version))
	status := "created"
	if s.Version > 1 {
		status = "updated"
	}
	o.metrics.RecordCounter(MetricSubmissions, 1, withStatus(labels, status))
	span.SetStatus(codes.Ok, "submission stored")
}

func withStatus(labels map[string]string, status string) map[string]string {
	out := maps.Clone(labels)
	out[LabelStatus] = status
	return out
}
