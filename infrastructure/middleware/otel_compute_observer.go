package middleware

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/venharis/dais/internal/application"
	"github.com/venharis/dais/internal/domain"
)

var _ application.ComputeObserver = (*OTelComputeObserver)(nil)

// OTelComputeObserver implements observability for compute runs using
// OpenTelemetry tracing. It creates one span per run, annotates it with
// the run's dimensions, and records events for anomalies such as skipped
// scores. Metric recording stays with the engine; this observer only
// produces traces.
type OTelComputeObserver struct {
	// mu protects spans. Concurrent runs of distinct rounds share this
	// observer; runs of the same round are serialized by the engine.
	mu    sync.Mutex
	spans map[string]trace.Span
}

// NewOTelComputeObserver creates a new OpenTelemetry compute observer.
func NewOTelComputeObserver() *OTelComputeObserver {
	return &OTelComputeObserver{spans: make(map[string]trace.Span)}
}

// PreCompute implements the ComputeObserver interface. It starts a span
// for the round's compute run.
func (o *OTelComputeObserver) PreCompute(ctx context.Context, roundID string) {
	tracer := otel.Tracer("judging-engine")
	_, span := tracer.Start(ctx, "Engine.ComputeRound")
	span.SetAttributes(attribute.String("round.id", roundID))

	o.mu.Lock()
	o.spans[roundID] = span
	o.mu.Unlock()
}

// PostCompute implements the ComputeObserver interface. It finalizes the
// run's span with the summary dimensions and the error state.
func (o *OTelComputeObserver) PostCompute(
	ctx context.Context,
	summary domain.ComputeSummary,
	elapsed time.Duration,
	err error,
) {
	o.mu.Lock()
	span, ok := o.spans[summary.RoundID]
	delete(o.spans, summary.RoundID)
	o.mu.Unlock()
	if !ok {
		return
	}
	defer span.End()

	span.SetAttributes(
		attribute.String("run.id", summary.RunID),
		attribute.Int("run.teams", summary.TeamCount),
		attribute.Int("run.judges", summary.JudgeCount),
		attribute.Int("run.evaluations", summary.EvaluationCount),
		attribute.Int64("run.elapsed_ms", elapsed.Milliseconds()),
	)

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return
	}

	if summary.SkippedScores > 0 {
		span.AddEvent("compute.scores_skipped", trace.WithAttributes(
			attribute.Int("skipped_count", summary.SkippedScores),
		))
	}

	span.AddEvent("compute.completed", trace.WithAttributes(
		attribute.Int("teams_ranked", summary.TeamCount),
	))
	span.SetStatus(codes.Ok, "Compute run completed successfully")
}
