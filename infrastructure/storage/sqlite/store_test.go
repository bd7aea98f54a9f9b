package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venharis/dais/internal/domain"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "dais.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func openSeededStore(t *testing.T) *Store {
	t.Helper()
	store := openTempStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateRound(ctx, domain.Round{ID: "round-1", Number: 1, Name: "Qualifiers", CreatedAt: time.Now()}))
	require.NoError(t, store.AssignJudges(ctx, "round-1", []string{"judge-a", "judge-b"}))
	require.NoError(t, store.CreateCriteria(ctx, []domain.Criterion{
		{ID: "crit-1", RoundID: "round-1", Name: "Innovation", MaxMarks: 10, Weight: 60, DisplayOrder: 1},
		{ID: "crit-2", RoundID: "round-1", Name: "Execution", MaxMarks: 10, Weight: 40, DisplayOrder: 2},
	}))
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage path is required")
}

func TestStore_Rounds(t *testing.T) {
	ctx := context.Background()
	store := openSeededStore(t)

	round, err := store.GetRound(ctx, "round-1")
	require.NoError(t, err)
	assert.Equal(t, 1, round.Number)
	assert.Equal(t, "Qualifiers", round.Name)
	assert.False(t, round.CreatedAt.IsZero())

	_, err = store.GetRound(ctx, "round-404")
	assert.ErrorIs(t, err, domain.ErrRoundNotFound)

	err = store.CreateRound(ctx, domain.Round{ID: "round-1", Number: 2})
	assert.Error(t, err, "duplicate round IDs must be rejected")
}

func TestStore_Judges(t *testing.T) {
	ctx := context.Background()
	store := openSeededStore(t)

	count, err := store.CountJudges(ctx, "round-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Re-assigning is a no-op.
	require.NoError(t, store.AssignJudges(ctx, "round-1", []string{"judge-a"}))
	count, err = store.CountJudges(ctx, "round-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	err = store.AssignJudges(ctx, "round-404", []string{"judge-z"})
	assert.ErrorIs(t, err, domain.ErrRoundNotFound)

	count, err = store.CountJudges(ctx, "round-404")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_Criteria(t *testing.T) {
	ctx := context.Background()
	store := openSeededStore(t)

	criteria, err := store.ListCriteria(ctx, "round-1")
	require.NoError(t, err)
	require.Len(t, criteria, 2)
	assert.Equal(t, "crit-1", criteria[0].ID, "ordered by display order")
	assert.Equal(t, 60.0, criteria[0].Weight)

	err = store.CreateCriteria(ctx, []domain.Criterion{{ID: "crit-1", RoundID: "round-1"}})
	assert.Error(t, err, "duplicate criterion IDs must be rejected")

	err = store.CreateCriteria(ctx, []domain.Criterion{{ID: "crit-9", RoundID: "round-404"}})
	assert.ErrorIs(t, err, domain.ErrRoundNotFound)
}

func TestStore_Evaluations(t *testing.T) {
	ctx := context.Background()
	store := openSeededStore(t)

	err := store.SaveEvaluation(ctx, domain.Evaluation{
		ID: "eval-x", RoundID: "round-1", JudgeID: "judge-unassigned", TeamID: "team-1",
		Scores: map[string]float64{"crit-1": 5},
	})
	assert.ErrorIs(t, err, domain.ErrJudgeNotAssigned)

	draft := domain.Evaluation{
		ID: "eval-1", RoundID: "round-1", JudgeID: "judge-a", TeamID: "team-1",
		Scores: map[string]float64{"crit-1": 5, "crit-2": 6}, Submitted: false,
	}
	require.NoError(t, store.SaveEvaluation(ctx, draft))

	evaluations, err := store.ListSubmittedEvaluations(ctx, "round-1")
	require.NoError(t, err)
	assert.Empty(t, evaluations, "drafts are never listed")

	submitted, drafts, err := store.CountEvaluations(ctx, "round-1")
	require.NoError(t, err)
	assert.Zero(t, submitted)
	assert.Equal(t, 1, drafts)

	// Submitting replaces the draft keyed on (round, judge, team).
	final := draft
	final.Scores = map[string]float64{"crit-1": 8, "crit-2": 7}
	final.Submitted = true
	require.NoError(t, store.SaveEvaluation(ctx, final))

	evaluations, err = store.ListSubmittedEvaluations(ctx, "round-1")
	require.NoError(t, err)
	require.Len(t, evaluations, 1)
	assert.Equal(t, 8.0, evaluations[0].Scores["crit-1"])
	assert.True(t, evaluations[0].Submitted)

	submitted, drafts, err = store.CountEvaluations(ctx, "round-1")
	require.NoError(t, err)
	assert.Equal(t, 1, submitted)
	assert.Zero(t, drafts)

	err = store.SaveEvaluation(ctx, domain.Evaluation{
		ID: "eval-2", RoundID: "round-404", JudgeID: "judge-a", TeamID: "team-1",
	})
	assert.ErrorIs(t, err, domain.ErrRoundNotFound)
}

func TestStore_EvaluationListOrder(t *testing.T) {
	ctx := context.Background()
	store := openSeededStore(t)

	for _, e := range []struct{ judge, team string }{
		{"judge-b", "team-2"},
		{"judge-a", "team-2"},
		{"judge-b", "team-1"},
		{"judge-a", "team-1"},
	} {
		require.NoError(t, store.SaveEvaluation(ctx, domain.Evaluation{
			ID: "eval-" + e.judge + "-" + e.team, RoundID: "round-1",
			JudgeID: e.judge, TeamID: e.team,
			Scores: map[string]float64{"crit-1": 5}, Submitted: true,
		}))
	}

	evaluations, err := store.ListSubmittedEvaluations(ctx, "round-1")
	require.NoError(t, err)
	require.Len(t, evaluations, 4)
	assert.Equal(t, "judge-a", evaluations[0].JudgeID)
	assert.Equal(t, "team-1", evaluations[0].TeamID)
	assert.Equal(t, "judge-b", evaluations[3].JudgeID)
	assert.Equal(t, "team-2", evaluations[3].TeamID)
}

func TestStore_Results(t *testing.T) {
	ctx := context.Background()
	store := openSeededStore(t)

	results, err := store.ListResults(ctx, "round-1")
	require.NoError(t, err)
	assert.Empty(t, results, "uncomputed round has no results")

	computedAt := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	first := []domain.TeamRoundResult{
		{
			RoundID: "round-1", TeamID: "team-1", AggregatedZ: 0.82, Rank: 1, Percentile: 100,
			JudgeCount: 2,
			Breakdown: []domain.JudgeBreakdown{
				{JudgeID: "judge-a", RawTotal: 15, WeightedZ: 0.9},
				{JudgeID: "judge-b", RawTotal: 14, WeightedZ: 0.74},
			},
			RunID: "run-1", ComputedAt: computedAt,
		},
		{
			RoundID: "round-1", TeamID: "team-2", AggregatedZ: -0.82, Rank: 2, Percentile: 0,
			JudgeCount: 2, RunID: "run-1", ComputedAt: computedAt,
		},
	}
	require.NoError(t, store.ReplaceResults(ctx, "round-1", first))

	results, err = store.ListResults(ctx, "round-1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "team-1", results[0].TeamID)
	assert.Equal(t, 1, results[0].Rank)
	assert.InDelta(t, 0.82, results[0].AggregatedZ, 0.0001)
	require.Len(t, results[0].Breakdown, 2)
	assert.Equal(t, "judge-a", results[0].Breakdown[0].JudgeID)
	assert.InDelta(t, 0.9, results[0].Breakdown[0].WeightedZ, 0.0001)
	assert.Equal(t, computedAt, results[0].ComputedAt)

	// A recompute replaces the whole set; vanished teams do not linger.
	second := []domain.TeamRoundResult{
		{RoundID: "round-1", TeamID: "team-3", AggregatedZ: 0.1, Rank: 1, Percentile: 100, JudgeCount: 1, RunID: "run-2", ComputedAt: computedAt},
	}
	require.NoError(t, store.ReplaceResults(ctx, "round-1", second))

	results, err = store.ListResults(ctx, "round-1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "team-3", results[0].TeamID)
	assert.Equal(t, "run-2", results[0].RunID)
}

func TestStore_Assignments(t *testing.T) {
	ctx := context.Background()
	store := openSeededStore(t)
	assignedAt := time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)

	created, err := store.UpsertAssignments(ctx, []domain.Assignment{
		{RoundID: "round-1", TeamID: "team-b", SourceRoundID: "round-0", Mode: "top_k", Params: map[string]any{"k": 2.0}, AssignedAt: assignedAt},
		{RoundID: "round-1", TeamID: "team-a", AssignedAt: assignedAt},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	// Repeating the upsert creates nothing and leaves rows untouched.
	created, err = store.UpsertAssignments(ctx, []domain.Assignment{
		{RoundID: "round-1", TeamID: "team-a", Mode: "per_judge", AssignedAt: assignedAt.Add(time.Hour)},
		{RoundID: "round-1", TeamID: "team-c", AssignedAt: assignedAt},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	assignments, err := store.ListAssignments(ctx, "round-1")
	require.NoError(t, err)
	require.Len(t, assignments, 3)
	assert.Equal(t, "team-a", assignments[0].TeamID, "ordered by team ID")
	assert.Empty(t, assignments[0].Mode, "existing assignment must not be overwritten")
	assert.Equal(t, assignedAt, assignments[0].AssignedAt)
	assert.Equal(t, "top_k", assignments[1].Mode)
	assert.Equal(t, map[string]any{"k": 2.0}, assignments[1].Params)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dais.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.CreateRound(ctx, domain.Round{ID: "round-1", Number: 1, Name: "Finals"}))
	require.NoError(t, store.Close())

	// Reopening re-runs migrations, which must be a no-op the second time.
	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	round, err := reopened.GetRound(ctx, "round-1")
	require.NoError(t, err)
	assert.Equal(t, "Finals", round.Name)
}

func TestStore_ContextCancellation(t *testing.T) {
	store := openSeededStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.GetRound(ctx, "round-1")
	assert.ErrorIs(t, err, context.Canceled)

	err = store.SaveEvaluation(ctx, domain.Evaluation{RoundID: "round-1", JudgeID: "judge-a", TeamID: "team-1"})
	assert.ErrorIs(t, err, context.Canceled)
}
