package policies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venharis/dais/internal/domain"
	"github.com/venharis/dais/internal/ports"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Mode
		wantErr bool
	}{
		{name: "canonical top_k", input: "top_k", want: ModeTopK},
		{name: "canonical per_judge", input: "per_judge", want: ModePerJudge},
		{name: "upper case folds", input: "TOP_K", want: ModeTopK},
		{name: "mixed case folds", input: "Per_Judge", want: ModePerJudge},
		{name: "surrounding whitespace trimmed", input: "  top_k  ", want: ModeTopK},
		{name: "unknown mode", input: "best_teams", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, err := ParseMode(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnknownMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
		})
	}
}

func TestRegistry_Create(t *testing.T) {
	registry := NewRegistry()

	t.Run("builds top_k", func(t *testing.T) {
		policy, err := registry.Create("top_k", map[string]any{"k": 3})
		require.NoError(t, err)
		assert.Equal(t, "top_k", policy.Name())
		assert.IsType(t, &TopKPolicy{}, policy)
	})

	t.Run("builds per_judge case-insensitively", func(t *testing.T) {
		policy, err := registry.Create("PER_JUDGE", map[string]any{"n": 2})
		require.NoError(t, err)
		assert.Equal(t, "per_judge", policy.Name())
		assert.IsType(t, &PerJudgePolicy{}, policy)
	})

	t.Run("nil params mean defaults", func(t *testing.T) {
		policy, err := registry.Create("top_k", nil)
		require.NoError(t, err)
		assert.NoError(t, policy.Validate())
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := registry.Create("coin_flip", nil)
		assert.ErrorIs(t, err, domain.ErrUnknownMode)
	})

	t.Run("invalid params surface the factory error", func(t *testing.T) {
		_, err := registry.Create("top_k", map[string]any{"k": -5})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create top_k policy")
	})
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	err := registry.Register("", nil)
	assert.Error(t, err)

	err = registry.Register("everyone", nil)
	assert.Error(t, err)

	err = registry.Register("everyone", func(name string, params map[string]any) (ports.SelectionPolicy, error) {
		return NewTopKPolicy(name, TopKConfig{K: 1 << 20})
	})
	require.NoError(t, err)

	policy, err := registry.Create("everyone", nil)
	require.NoError(t, err)

	selection, err := policy.Select(context.Background(), ports.SelectionInput{
		RoundID: "round-1",
		Results: []domain.TeamRoundResult{rankedResult("team-a", 1), rankedResult("team-b", 2)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"team-a", "team-b"}, selection.TeamIDs)

	assert.ElementsMatch(t, []string{"top_k", "per_judge", "everyone"}, registry.Modes())
}
