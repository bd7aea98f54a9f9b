package policies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/venharis/dais/internal/domain"
	"github.com/venharis/dais/internal/ports"
)

// rankedResult builds a minimal computed result for selection tests.
func rankedResult(teamID string, rank int, breakdown ...domain.JudgeBreakdown) domain.TeamRoundResult {
	return domain.TeamRoundResult{
		RoundID:    "round-1",
		TeamID:     teamID,
		Rank:       rank,
		JudgeCount: len(breakdown),
		Breakdown:  breakdown,
	}
}

func TestNewTopKPolicy(t *testing.T) {
	tests := []struct {
		name          string
		policyName    string
		config        TopKConfig
		expectedError string
	}{
		{
			name:       "valid configuration",
			policyName: "top_k",
			config:     TopKConfig{K: 3},
		},
		{
			name:       "zero k is allowed",
			policyName: "top_k",
			config:     TopKConfig{K: 0},
		},
		{
			name:          "empty name",
			policyName:    "",
			config:        TopKConfig{K: 3},
			expectedError: "policy name cannot be empty",
		},
		{
			name:          "negative k",
			policyName:    "top_k",
			config:        TopKConfig{K: -1},
			expectedError: "configuration validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := NewTopKPolicy(tt.policyName, tt.config)
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.policyName, policy.Name())
			assert.NoError(t, policy.Validate())
		})
	}
}

func TestTopKPolicy_Select(t *testing.T) {
	results := []domain.TeamRoundResult{
		rankedResult("team-d", 4),
		rankedResult("team-a", 1),
		rankedResult("team-c", 2),
		rankedResult("team-b", 2),
		rankedResult("team-e", 5),
	}

	tests := []struct {
		name    string
		k       int
		results []domain.TeamRoundResult
		want    []string
	}{
		{
			name:    "k zero selects nothing",
			k:       0,
			results: results,
			want:    []string{},
		},
		{
			name:    "k one takes the single leader",
			k:       1,
			results: results,
			want:    []string{"team-a"},
		},
		{
			name: "tie at the cutoff expands past k",
			// K=2 lands inside the rank-2 pair, so both ride along.
			k:       2,
			results: results,
			want:    []string{"team-a", "team-b", "team-c"},
		},
		{
			name:    "cutoff aligned with the tie group",
			k:       3,
			results: results,
			want:    []string{"team-a", "team-b", "team-c"},
		},
		{
			name:    "k equal to team count selects everyone",
			k:       5,
			results: results,
			want:    []string{"team-a", "team-b", "team-c", "team-d", "team-e"},
		},
		{
			name:    "k beyond team count selects everyone",
			k:       50,
			results: results,
			want:    []string{"team-a", "team-b", "team-c", "team-d", "team-e"},
		},
		{
			name: "fully tied round comes back whole for any k",
			k:    1,
			results: []domain.TeamRoundResult{
				rankedResult("team-x", 1),
				rankedResult("team-y", 1),
				rankedResult("team-z", 1),
			},
			want: []string{"team-x", "team-y", "team-z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := NewTopKPolicy("top_k", TopKConfig{K: tt.k})
			require.NoError(t, err)

			selection, err := policy.Select(context.Background(), ports.SelectionInput{
				RoundID: "round-1",
				Results: tt.results,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.want, selection.TeamIDs)
			assert.Equal(t, "top_k", selection.Mode)
			assert.Equal(t, "round-1", selection.RoundID)
			assert.Equal(t, tt.k, selection.Params["k"])
		})
	}
}

func TestTopKPolicy_Select_NoResults(t *testing.T) {
	policy, err := NewTopKPolicy("top_k", TopKConfig{K: 3})
	require.NoError(t, err)

	_, err = policy.Select(context.Background(), ports.SelectionInput{RoundID: "round-1"})
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestTopKPolicy_UnmarshalParameters(t *testing.T) {
	tests := []struct {
		name          string
		yamlContent   string
		wantK         int
		expectedError string
	}{
		{
			name:        "valid parameters",
			yamlContent: `k: 5`,
			wantK:       5,
		},
		{
			name:          "negative k rejected",
			yamlContent:   `k: -2`,
			expectedError: "parameter validation failed",
		},
		{
			name:          "malformed value rejected",
			yamlContent:   `k: "three"`,
			expectedError: "failed to decode parameters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var node yaml.Node
			require.NoError(t, yaml.Unmarshal([]byte(tt.yamlContent), &node))

			policy := &TopKPolicy{name: "top_k", config: TopKConfig{K: 1}}
			err := policy.UnmarshalParameters(*node.Content[0])

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Equal(t, 1, policy.config.K, "config must be unchanged on error")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantK, policy.config.K)
		})
	}
}

func TestNewTopKFromParams(t *testing.T) {
	t.Run("params overlay defaults", func(t *testing.T) {
		policy, err := NewTopKFromParams("top_k", map[string]any{"k": 2})
		require.NoError(t, err)

		selection, err := policy.Select(context.Background(), ports.SelectionInput{
			RoundID: "round-1",
			Results: []domain.TeamRoundResult{rankedResult("team-a", 1), rankedResult("team-b", 2)},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"team-a", "team-b"}, selection.TeamIDs)
	})

	t.Run("empty params fall back to defaults", func(t *testing.T) {
		policy, err := NewTopKFromParams("top_k", map[string]any{})
		require.NoError(t, err)

		selection, err := policy.Select(context.Background(), ports.SelectionInput{
			RoundID: "round-1",
			Results: []domain.TeamRoundResult{rankedResult("team-a", 1)},
		})
		require.NoError(t, err)
		assert.Empty(t, selection.TeamIDs, "default k of zero selects nothing")
	})

	t.Run("invalid params rejected", func(t *testing.T) {
		_, err := NewTopKFromParams("top_k", map[string]any{"k": -3})
		assert.Error(t, err)
	})
}
