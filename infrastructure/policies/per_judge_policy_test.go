package policies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venharis/dais/internal/domain"
	"github.com/venharis/dais/internal/ports"
)

func jb(judgeID string, weightedZ float64) domain.JudgeBreakdown {
	return domain.JudgeBreakdown{JudgeID: judgeID, WeightedZ: weightedZ}
}

func TestNewPerJudgePolicy(t *testing.T) {
	_, err := NewPerJudgePolicy("", PerJudgeConfig{N: 1})
	assert.ErrorIs(t, err, ErrEmptyPolicyName)

	_, err = NewPerJudgePolicy("per_judge", PerJudgeConfig{N: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")

	policy, err := NewPerJudgePolicy("per_judge", PerJudgeConfig{N: 2})
	require.NoError(t, err)
	assert.Equal(t, "per_judge", policy.Name())
	assert.NoError(t, policy.Validate())
}

func TestPerJudgePolicy_Select(t *testing.T) {
	// judge-1 saw teams a, b, c and prefers a > b > c.
	// judge-2 saw teams b, c, d and prefers d > c > b.
	results := []domain.TeamRoundResult{
		rankedResult("team-a", 1, jb("judge-1", 0.9)),
		rankedResult("team-b", 2, jb("judge-1", 0.5), jb("judge-2", -0.2)),
		rankedResult("team-c", 3, jb("judge-1", 0.1), jb("judge-2", 0.3)),
		rankedResult("team-d", 4, jb("judge-2", 0.8)),
	}

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{
			name: "n zero nominates nothing",
			n:    0,
			want: []string{},
		},
		{
			name: "union of each judge's single favorite",
			n:    1,
			want: []string{"team-a", "team-d"},
		},
		{
			name: "overlapping nominations collapse in the union",
			n:    2,
			want: []string{"team-a", "team-b", "team-c", "team-d"},
		},
		{
			name: "n beyond a judge's coverage takes all their teams",
			n:    10,
			want: []string{"team-a", "team-b", "team-c", "team-d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := NewPerJudgePolicy("per_judge", PerJudgeConfig{N: tt.n})
			require.NoError(t, err)

			selection, err := policy.Select(context.Background(), ports.SelectionInput{
				RoundID: "round-1",
				Results: results,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.want, selection.TeamIDs)
			assert.Equal(t, "per_judge", selection.Mode)
			assert.Equal(t, tt.n, selection.Params["n"])
		})
	}
}

// TestPerJudgePolicy_SupersetProperty verifies the defining guarantee of
// the mode: every judge finds their entire personal top-N inside the
// selected set.
func TestPerJudgePolicy_SupersetProperty(t *testing.T) {
	results := []domain.TeamRoundResult{
		rankedResult("team-a", 1, jb("judge-1", 0.9), jb("judge-2", 0.1)),
		rankedResult("team-b", 2, jb("judge-1", 0.7), jb("judge-3", 0.6)),
		rankedResult("team-c", 3, jb("judge-2", 0.8), jb("judge-3", 0.2)),
		rankedResult("team-d", 4, jb("judge-1", -0.5), jb("judge-2", 0.4), jb("judge-3", 0.9)),
	}
	const n = 2

	policy, err := NewPerJudgePolicy("per_judge", PerJudgeConfig{N: n})
	require.NoError(t, err)

	selection, err := policy.Select(context.Background(), ports.SelectionInput{
		RoundID: "round-1",
		Results: results,
	})
	require.NoError(t, err)

	selected := make(map[string]struct{}, len(selection.TeamIDs))
	for _, id := range selection.TeamIDs {
		selected[id] = struct{}{}
	}

	// Recompute each judge's personal top-n independently.
	perJudge := map[string][]struct {
		teamID string
		z      float64
	}{}
	for _, r := range results {
		for _, b := range r.Breakdown {
			perJudge[b.JudgeID] = append(perJudge[b.JudgeID], struct {
				teamID string
				z      float64
			}{r.TeamID, b.WeightedZ})
		}
	}
	for judgeID, prefs := range perJudge {
		for i := 0; i < len(prefs); i++ {
			for j := i + 1; j < len(prefs); j++ {
				if prefs[j].z > prefs[i].z {
					prefs[i], prefs[j] = prefs[j], prefs[i]
				}
			}
		}
		limit := n
		if limit > len(prefs) {
			limit = len(prefs)
		}
		for _, pref := range prefs[:limit] {
			_, ok := selected[pref.teamID]
			assert.True(t, ok, "judge %s's pick %s missing from selection", judgeID, pref.teamID)
		}
	}
}

// TestPerJudgePolicy_CutoffTie pins the deterministic resolution of a tie
// at a judge's N boundary: the lower team ID is nominated.
func TestPerJudgePolicy_CutoffTie(t *testing.T) {
	results := []domain.TeamRoundResult{
		rankedResult("team-b", 1, jb("judge-1", 0.5)),
		rankedResult("team-a", 1, jb("judge-1", 0.5)),
		rankedResult("team-c", 3, jb("judge-1", 0.1)),
	}

	policy, err := NewPerJudgePolicy("per_judge", PerJudgeConfig{N: 1})
	require.NoError(t, err)

	selection, err := policy.Select(context.Background(), ports.SelectionInput{
		RoundID: "round-1",
		Results: results,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"team-a"}, selection.TeamIDs)
}

func TestPerJudgePolicy_Select_NoResults(t *testing.T) {
	policy, err := NewPerJudgePolicy("per_judge", PerJudgeConfig{N: 2})
	require.NoError(t, err)

	_, err = policy.Select(context.Background(), ports.SelectionInput{RoundID: "round-1"})
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestNewPerJudgeFromParams(t *testing.T) {
	policy, err := NewPerJudgeFromParams("per_judge", map[string]any{"n": 1})
	require.NoError(t, err)

	selection, err := policy.Select(context.Background(), ports.SelectionInput{
		RoundID: "round-1",
		Results: []domain.TeamRoundResult{rankedResult("team-a", 1, jb("judge-1", 0.4))},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"team-a"}, selection.TeamIDs)

	_, err = NewPerJudgeFromParams("per_judge", map[string]any{"n": -1})
	assert.Error(t, err)
}
