// Package testutils provides fixture builders shared by package tests:
// rounds, criteria, scorecards, and a fully scored demo round that
// exercises the whole pipeline.
package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/venharis/dais/internal/domain"
)

// FixtureTime is the deterministic timestamp all fixtures carry, so
// repeated runs produce identical records.
var FixtureTime = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

// Round builds a round fixture.
func Round(id string, number int) domain.Round {
	return domain.Round{
		ID:        id,
		Number:    number,
		Name:      "Round " + id,
		CreatedAt: FixtureTime,
	}
}

// Criterion builds a criterion fixture with MaxMarks 10.
func Criterion(id, roundID string, weight float64, displayOrder int) domain.Criterion {
	return domain.Criterion{
		ID:           id,
		RoundID:      roundID,
		Name:         "Criterion " + id,
		MaxMarks:     10,
		Weight:       weight,
		DisplayOrder: displayOrder,
	}
}

// Evaluation builds a submitted scorecard fixture.
func Evaluation(roundID, judgeID, teamID string, scores map[string]float64) domain.Evaluation {
	return domain.Evaluation{
		ID:        roundID + "-" + judgeID + "-" + teamID,
		RoundID:   roundID,
		JudgeID:   judgeID,
		TeamID:    teamID,
		Scores:    scores,
		Submitted: true,
		UpdatedAt: FixtureTime,
	}
}

// Draft builds an unsubmitted scorecard fixture.
func Draft(roundID, judgeID, teamID string, scores map[string]float64) domain.Evaluation {
	eval := Evaluation(roundID, judgeID, teamID, scores)
	eval.Submitted = false
	return eval
}

// SeedStore is the write surface SeedScoredRound needs. Both the memory
// and the sqlite store satisfy it.
type SeedStore interface {
	CreateRound(ctx context.Context, round domain.Round) error
	AssignJudges(ctx context.Context, roundID string, judgeIDs []string) error
	CreateCriteria(ctx context.Context, criteria []domain.Criterion) error
	SaveEvaluation(ctx context.Context, eval domain.Evaluation) error
}

// SeedScoredRound populates store with a ready-to-compute round: one
// full-weight criterion "c1", judges "judge-a" and "judge-b", and
// submitted scorecards for teams "team-1" through "team-3". Judge B runs
// one point lower than judge A on every team, so both rank the teams
// identically while scoring on different personal scales. The expected
// standing is team-1, team-2, team-3.
func SeedScoredRound(tb testing.TB, store SeedStore, roundID string, number int) {
	tb.Helper()
	ctx := context.Background()

	mustSeed(tb, store.CreateRound(ctx, Round(roundID, number)))
	mustSeed(tb, store.AssignJudges(ctx, roundID, []string{"judge-a", "judge-b"}))
	mustSeed(tb, store.CreateCriteria(ctx, []domain.Criterion{Criterion("c1", roundID, 100, 1)}))

	scores := map[string]float64{"team-1": 8, "team-2": 6, "team-3": 4}
	for teamID, score := range scores {
		mustSeed(tb, store.SaveEvaluation(ctx, Evaluation(roundID, "judge-a", teamID, map[string]float64{"c1": score})))
		mustSeed(tb, store.SaveEvaluation(ctx, Evaluation(roundID, "judge-b", teamID, map[string]float64{"c1": score - 1})))
	}
}

func mustSeed(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Fatalf("seed fixture: %v", err)
	}
}
