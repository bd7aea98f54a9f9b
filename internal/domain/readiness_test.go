package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateReadiness(t *testing.T) {
	tests := []struct {
		name        string
		stats       ReadinessStats
		wantReady   bool
		wantMissing []string
	}{
		{
			name:      "all preconditions met",
			stats:     ReadinessStats{CriteriaCount: 3, JudgesCount: 2, SubmittedCount: 5, DraftCount: 1},
			wantReady: true,
		},
		{
			name:        "nothing configured",
			stats:       ReadinessStats{},
			wantReady:   false,
			wantMissing: []string{"no criteria defined", "no judges assigned", "no submitted evaluations"},
		},
		{
			name:        "criteria missing",
			stats:       ReadinessStats{JudgesCount: 2, SubmittedCount: 5},
			wantReady:   false,
			wantMissing: []string{"no criteria defined"},
		},
		{
			name:        "judges missing",
			stats:       ReadinessStats{CriteriaCount: 3, SubmittedCount: 5},
			wantReady:   false,
			wantMissing: []string{"no judges assigned"},
		},
		{
			name:        "only drafts saved",
			stats:       ReadinessStats{CriteriaCount: 3, JudgesCount: 2, DraftCount: 4},
			wantReady:   false,
			wantMissing: []string{"no submitted evaluations"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := EvaluateReadiness(tt.stats)
			assert.Equal(t, tt.wantReady, report.Ready)
			assert.Equal(t, tt.wantMissing, report.Missing)
			assert.Equal(t, tt.stats, report.Stats, "stats pass through untouched")
		})
	}
}

// TestEvaluateReadiness_Pure confirms the check has no memory: the same
// counts always produce the same report.
func TestEvaluateReadiness_Pure(t *testing.T) {
	stats := ReadinessStats{CriteriaCount: 1, JudgesCount: 1, SubmittedCount: 1}
	assert.Equal(t, EvaluateReadiness(stats), EvaluateReadiness(stats))
}
