package ports

import (
	"context"

	"github.com/venharis/dais/internal/domain"
)

// SelectionInput bundles everything a selection policy may consult: the
// round's computed results and the submitted evaluations they were derived
// from. Policies must treat both slices as read-only.
type SelectionInput struct {
	// RoundID is the round the selection is being made from.
	RoundID string

	// Results is the round's computed result set, ordered by rank.
	Results []domain.TeamRoundResult

	// Evaluations holds the round's submitted evaluations for policies
	// that reason per judge rather than per aggregate.
	Evaluations []domain.Evaluation
}

// SelectionPolicy decides which teams advance out of a computed round.
// Implementations are pure with respect to their input: the same input and
// parameters always select the same teams.
type SelectionPolicy interface {
	// Name returns the mode string the policy is registered under.
	Name() string

	// Select applies the policy and returns the selected teams in
	// ascending team ID order.
	Select(ctx context.Context, input SelectionInput) (domain.SelectionResult, error)

	// Validate checks the policy's parameters, returning a descriptive
	// error when the policy cannot run.
	Validate() error
}
