package domain

import (
	"time"
)

// TeamRoundResult is one team's final standing in a computed round. The
// full set for a round is replaced atomically on every compute, so readers
// always observe a complete, mutually consistent ranking.
type TeamRoundResult struct {
	// RoundID is the round the result belongs to.
	RoundID string `json:"round_id"`

	// TeamID identifies the ranked team.
	TeamID string `json:"team_id"`

	// AggregatedZ is the team's judge-averaged weighted z-score total.
	AggregatedZ float64 `json:"aggregated_z"`

	// Rank is the team's competition rank. Tied teams share a rank and
	// the following rank is skipped, so [1, 1, 3, 4] is a valid sequence.
	Rank int `json:"rank"`

	// Percentile is 100 * (teamCount - Rank) / (teamCount - 1), or 100
	// when the round has a single team.
	Percentile float64 `json:"percentile"`

	// JudgeCount is the number of judges whose evaluations contributed.
	JudgeCount int `json:"judge_count"`

	// Breakdown lists each contributing judge's raw and weighted totals,
	// retained for display and audit.
	Breakdown []JudgeBreakdown `json:"breakdown"`

	// RunID identifies the compute run that produced this result.
	RunID string `json:"run_id"`

	// ComputedAt records when the compute run finished.
	ComputedAt time.Time `json:"computed_at"`
}

// SelectionResult is the outcome of applying a selection policy to a
// round's computed results. It is returned to the caller and recorded on
// promotion for audit; it is not stored on its own.
type SelectionResult struct {
	// RoundID is the round the selection was made from.
	RoundID string `json:"round_id"`

	// Mode names the policy that produced the selection.
	Mode string `json:"mode"`

	// Params echoes the parameters the policy ran with.
	Params map[string]any `json:"params,omitempty"`

	// TeamIDs lists the selected teams in ascending ID order.
	TeamIDs []string `json:"team_ids"`
}

// ComputeSummary describes one completed compute run.
type ComputeSummary struct {
	// RunID identifies the run; each team result carries the same ID.
	RunID string `json:"run_id"`

	// RoundID is the round that was computed.
	RoundID string `json:"round_id"`

	// TeamCount is the number of teams ranked.
	TeamCount int `json:"team_count"`

	// JudgeCount is the number of judges with pooled statistics.
	JudgeCount int `json:"judge_count"`

	// EvaluationCount is the number of submitted evaluations consumed.
	EvaluationCount int `json:"evaluation_count"`

	// SkippedScores counts score entries excluded because they referenced
	// a criterion that is not part of the round.
	SkippedScores int `json:"skipped_scores"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`
}

// PromotionReceipt reports the effect of a promoteTeams call. Promoting
// the same teams again is harmless: the second receipt reports zero
// Promoted and the assignment set is unchanged.
type PromotionReceipt struct {
	// Promoted is the number of assignments newly created by this call.
	Promoted int `json:"promoted"`

	// AlreadyAssigned is the number of requested teams that were already
	// assigned to the target round.
	AlreadyAssigned int `json:"already_assigned"`
}

// Assignment places a team in a round. Assignments are written by the
// promotion writer and by ingest for a competition's first round.
type Assignment struct {
	// RoundID is the round the team is assigned to.
	RoundID string `json:"round_id"`

	// TeamID identifies the assigned team.
	TeamID string `json:"team_id"`

	// SourceRoundID is the round the team was promoted from, empty for
	// direct entry.
	SourceRoundID string `json:"source_round_id,omitempty"`

	// Mode names the selection policy recorded at promotion time, empty
	// for direct entry.
	Mode string `json:"mode,omitempty"`

	// Params echoes the selection parameters recorded at promotion time.
	Params map[string]any `json:"params,omitempty"`

	// AssignedAt records when the assignment was first created.
	AssignedAt time.Time `json:"assigned_at"`
}
