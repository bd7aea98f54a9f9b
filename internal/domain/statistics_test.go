package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestComputeJudgeStatistics_PooledScores verifies that a judge's mean and
// population standard deviation pool every submitted score across teams.
func TestComputeJudgeStatistics_PooledScores(t *testing.T) {
	evaluations := []Evaluation{
		{JudgeID: "judge-a", TeamID: "team-1", Scores: map[string]float64{"crit-1": 8}, Submitted: true},
		{JudgeID: "judge-a", TeamID: "team-2", Scores: map[string]float64{"crit-1": 6}, Submitted: true},
		{JudgeID: "judge-a", TeamID: "team-3", Scores: map[string]float64{"crit-1": 4}, Submitted: true},
	}

	stats := ComputeJudgeStatistics(evaluations)
	require.Len(t, stats, 1)

	stat, ok := stats["judge-a"]
	require.True(t, ok)
	assert.Equal(t, 3, stat.ScoreCount)
	assert.InDelta(t, 6.0, stat.Mean, 0.0001)
	// Population form: sqrt(((8-6)^2 + (6-6)^2 + (4-6)^2) / 3) = sqrt(8/3).
	assert.InDelta(t, math.Sqrt(8.0/3.0), stat.StdDev, 0.0001)
	assert.InDelta(t, 1.633, stat.StdDev, 0.001)
}

func TestComputeJudgeStatistics(t *testing.T) {
	tests := []struct {
		name        string
		evaluations []Evaluation
		wantJudges  int
		check       func(t *testing.T, stats map[string]JudgeStatistic)
	}{
		{
			name:        "no evaluations",
			evaluations: nil,
			wantJudges:  0,
		},
		{
			name: "draft evaluations are invisible",
			evaluations: []Evaluation{
				{JudgeID: "judge-a", TeamID: "team-1", Scores: map[string]float64{"crit-1": 9}, Submitted: false},
			},
			wantJudges: 0,
		},
		{
			name: "judge with empty scorecard is excluded",
			evaluations: []Evaluation{
				{JudgeID: "judge-a", TeamID: "team-1", Scores: map[string]float64{}, Submitted: true},
				{JudgeID: "judge-b", TeamID: "team-1", Scores: map[string]float64{"crit-1": 5}, Submitted: true},
			},
			wantJudges: 1,
			check: func(t *testing.T, stats map[string]JudgeStatistic) {
				_, ok := stats["judge-a"]
				assert.False(t, ok, "judge without scores must not appear")
			},
		},
		{
			name: "single score yields zero stddev",
			evaluations: []Evaluation{
				{JudgeID: "judge-b", TeamID: "team-1", Scores: map[string]float64{"crit-1": 5}, Submitted: true},
			},
			wantJudges: 1,
			check: func(t *testing.T, stats map[string]JudgeStatistic) {
				assert.InDelta(t, 5.0, stats["judge-b"].Mean, 0.0001)
				assert.Zero(t, stats["judge-b"].StdDev)
			},
		},
		{
			name: "identical scores yield zero stddev",
			evaluations: []Evaluation{
				{JudgeID: "judge-c", TeamID: "team-1", Scores: map[string]float64{"crit-1": 7, "crit-2": 7}, Submitted: true},
				{JudgeID: "judge-c", TeamID: "team-2", Scores: map[string]float64{"crit-1": 7, "crit-2": 7}, Submitted: true},
			},
			wantJudges: 1,
			check: func(t *testing.T, stats map[string]JudgeStatistic) {
				assert.Zero(t, stats["judge-c"].StdDev)
				assert.Equal(t, 4, stats["judge-c"].ScoreCount)
			},
		},
		{
			name: "multiple criteria pool into one distribution",
			evaluations: []Evaluation{
				{JudgeID: "judge-d", TeamID: "team-1", Scores: map[string]float64{"crit-1": 10, "crit-2": 2}, Submitted: true},
				{JudgeID: "judge-d", TeamID: "team-2", Scores: map[string]float64{"crit-1": 6, "crit-2": 6}, Submitted: true},
			},
			wantJudges: 1,
			check: func(t *testing.T, stats map[string]JudgeStatistic) {
				stat := stats["judge-d"]
				assert.Equal(t, 4, stat.ScoreCount)
				assert.InDelta(t, 6.0, stat.Mean, 0.0001)
				// sqrt((16 + 16 + 0 + 0) / 4) = sqrt(8).
				assert.InDelta(t, math.Sqrt(8), stat.StdDev, 0.0001)
			},
		},
		{
			name: "judges are independent",
			evaluations: []Evaluation{
				{JudgeID: "judge-a", TeamID: "team-1", Scores: map[string]float64{"crit-1": 2}, Submitted: true},
				{JudgeID: "judge-b", TeamID: "team-1", Scores: map[string]float64{"crit-1": 9}, Submitted: true},
			},
			wantJudges: 2,
			check: func(t *testing.T, stats map[string]JudgeStatistic) {
				assert.InDelta(t, 2.0, stats["judge-a"].Mean, 0.0001)
				assert.InDelta(t, 9.0, stats["judge-b"].Mean, 0.0001)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := ComputeJudgeStatistics(tt.evaluations)
			assert.Len(t, stats, tt.wantJudges)
			for _, stat := range stats {
				assert.GreaterOrEqual(t, stat.StdDev, 0.0, "stddev can never be negative")
				assert.False(t, math.IsNaN(stat.Mean))
				assert.False(t, math.IsNaN(stat.StdDev))
			}
			if tt.check != nil {
				tt.check(t, stats)
			}
		})
	}
}

// TestComputeJudgeStatistics_Deterministic verifies that repeated runs over
// the same evaluations produce identical statistics.
func TestComputeJudgeStatistics_Deterministic(t *testing.T) {
	evaluations := []Evaluation{
		{JudgeID: "judge-a", TeamID: "team-1", Scores: map[string]float64{"crit-1": 8, "crit-2": 3}, Submitted: true},
		{JudgeID: "judge-a", TeamID: "team-2", Scores: map[string]float64{"crit-1": 5, "crit-2": 7}, Submitted: true},
		{JudgeID: "judge-b", TeamID: "team-1", Scores: map[string]float64{"crit-1": 4}, Submitted: true},
	}

	first := ComputeJudgeStatistics(evaluations)
	second := ComputeJudgeStatistics(evaluations)
	assert.Equal(t, first, second)
}
