// Package ports defines the interfaces through which the judging engine
// talks to the outside world: persistent stores, selection policies, and
// observability. Implementations live under infrastructure; the engine in
// internal/application depends only on these contracts.
package ports

import (
	"context"

	"github.com/venharis/dais/internal/domain"
)

// RoundStore persists rounds and their judge assignments.
type RoundStore interface {
	// CreateRound stores a new round.
	CreateRound(ctx context.Context, round domain.Round) error

	// GetRound returns the round with the given ID, or an error wrapping
	// domain.ErrRoundNotFound.
	GetRound(ctx context.Context, roundID string) (domain.Round, error)

	// AssignJudges adds the given judges to the round. Assigning a judge
	// twice is a no-op.
	AssignJudges(ctx context.Context, roundID string, judgeIDs []string) error

	// CountJudges returns the number of judges assigned to the round.
	CountJudges(ctx context.Context, roundID string) (int, error)
}

// CriterionStore persists the scoring criteria of each round.
type CriterionStore interface {
	// CreateCriteria stores the given criteria for a round.
	CreateCriteria(ctx context.Context, criteria []domain.Criterion) error

	// ListCriteria returns the round's criteria ordered by DisplayOrder.
	ListCriteria(ctx context.Context, roundID string) ([]domain.Criterion, error)
}

// EvaluationStore persists judge scorecards.
type EvaluationStore interface {
	// SaveEvaluation inserts or replaces the evaluation identified by its
	// (round, judge, team) triple. It fails with
	// domain.ErrJudgeNotAssigned when the judge is not assigned to the
	// round.
	SaveEvaluation(ctx context.Context, eval domain.Evaluation) error

	// ListSubmittedEvaluations returns every submitted evaluation of the
	// round. Drafts are never returned.
	ListSubmittedEvaluations(ctx context.Context, roundID string) ([]domain.Evaluation, error)

	// CountEvaluations returns the number of submitted and draft
	// evaluations of the round.
	CountEvaluations(ctx context.Context, roundID string) (submitted, drafts int, err error)
}

// ResultStore persists computed team results. A round's result set is only
// ever written as a whole.
type ResultStore interface {
	// ReplaceResults atomically swaps the round's entire result set for
	// the given one. Readers never observe a partially written set, and
	// on failure the previous set remains intact.
	ReplaceResults(ctx context.Context, roundID string, results []domain.TeamRoundResult) error

	// ListResults returns the round's results ordered by rank, then team
	// ID. An empty slice means the round has never been computed.
	ListResults(ctx context.Context, roundID string) ([]domain.TeamRoundResult, error)
}

// AssignmentStore persists which teams participate in which round.
type AssignmentStore interface {
	// UpsertAssignments writes the given assignments keyed on
	// (round, team), leaving existing rows untouched. It returns the
	// number of assignments that were newly created, which makes repeat
	// promotions observable as zero-creation calls.
	UpsertAssignments(ctx context.Context, assignments []domain.Assignment) (created int, err error)

	// ListAssignments returns the round's assignments ordered by team ID.
	ListAssignments(ctx context.Context, roundID string) ([]domain.Assignment, error)
}
