package middleware

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/venharis/dais/internal/domain"
	"github.com/venharis/dais/internal/ports"
)

var _ ports.SelectionPolicy = (*PolicyTracing)(nil)

// PolicyTracing wraps a selection policy with OpenTelemetry tracing.
// Selection decides which teams advance, so each decision gets a span
// recording its inputs and the exact teams chosen. This stateless
// middleware follows the decorator pattern.
type PolicyTracing struct {
	next ports.SelectionPolicy
}

// NewPolicyTracing creates a PolicyTracing instance that wraps the
// specified policy. The middleware is stateless and thread-safe.
func NewPolicyTracing(next ports.SelectionPolicy) *PolicyTracing {
	if next == nil {
		panic("policy tracing: next policy is required")
	}
	return &PolicyTracing{next: next}
}

// Name returns the wrapped policy's identifier so the middleware stays
// invisible to callers that branch on policy names.
func (pt *PolicyTracing) Name() string { return pt.next.Name() }

// Select runs the wrapped policy inside a span that records the round,
// the number of ranked teams considered, and the selected team IDs.
func (pt *PolicyTracing) Select(ctx context.Context, input ports.SelectionInput) (domain.SelectionResult, error) {
	tracer := otel.Tracer("selection-policy")
	ctx, span := tracer.Start(ctx, "SelectionPolicy.Select")
	defer span.End()

	span.SetAttributes(
		attribute.String("policy.name", pt.next.Name()),
		attribute.String("round.id", input.RoundID),
		attribute.Int("input.ranked_teams", len(input.Results)),
	)

	result, err := pt.next.Select(ctx, input)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	span.AddEvent("selection.completed", trace.WithAttributes(
		attribute.String("mode", result.Mode),
		attribute.Int("selected_count", len(result.TeamIDs)),
		attribute.StringSlice("selected_teams", result.TeamIDs),
	))
	span.SetStatus(codes.Ok, "Selection completed successfully")
	return result, nil
}

// Validate delegates validation to the wrapped policy.
func (pt *PolicyTracing) Validate() error {
	if pt.next == nil {
		return fmt.Errorf("next policy is required")
	}
	if err := pt.next.Validate(); err != nil {
		return fmt.Errorf("wrapped policy validation failed: %w", err)
	}
	return nil
}

// TracePolicyFactory decorates a policy factory so every policy it
// creates carries tracing. Register the decorated factory in the policy
// registry to trace a mode without touching its implementation.
func TracePolicyFactory(
	factory func(name string, params map[string]any) (ports.SelectionPolicy, error),
) func(name string, params map[string]any) (ports.SelectionPolicy, error) {
	return func(name string, params map[string]any) (ports.SelectionPolicy, error) {
		policy, err := factory(name, params)
		if err != nil {
			return nil, err
		}
		return NewPolicyTracing(policy), nil
	}
}
