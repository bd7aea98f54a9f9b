// Package domain contains the pure types and computations of the judging
// engine: judge statistics, z-score normalization, weighted aggregation,
// ranking, and readiness evaluation. Nothing in this package performs I/O;
// every function is deterministic over its inputs so that recomputing a
// round from the same snapshot always yields the same result set.
package domain

import (
	"time"
)

// Round is one stage of a competition. Teams advance between rounds in
// ascending Number order, so a promotion target must carry a higher Number
// than its source.
type Round struct {
	// ID uniquely identifies the round.
	ID string `json:"id"`

	// Number is the round's position in the competition sequence,
	// starting at 1.
	Number int `json:"number"`

	// Name is the display name, for example "Qualifiers" or "Finale".
	Name string `json:"name"`

	// CreatedAt records when the round was created.
	CreatedAt time.Time `json:"created_at"`
}

// Criterion is a single scored dimension of a round, such as "Innovation"
// or "Execution". Weights are relative and are not required to sum to any
// particular total; aggregation scales each weight by 1/100.
type Criterion struct {
	// ID uniquely identifies the criterion.
	ID string `json:"id"`

	// RoundID is the round this criterion belongs to.
	RoundID string `json:"round_id"`

	// Name is the display name of the criterion.
	Name string `json:"name"`

	// MaxMarks is the upper bound of the raw score a judge may assign.
	MaxMarks float64 `json:"max_marks"`

	// Weight is the criterion's relative importance. Aggregation
	// multiplies each z-score by Weight/100.
	Weight float64 `json:"weight"`

	// DisplayOrder fixes the presentation order and breaks ties between
	// criteria of equal weight during ranking.
	DisplayOrder int `json:"display_order"`
}

// Evaluation is one judge's scorecard for one team in one round. A judge
// submits at most one evaluation per team per round; saving again replaces
// the previous scores.
type Evaluation struct {
	// ID uniquely identifies the evaluation.
	ID string `json:"id"`

	// RoundID is the round the evaluation was made in.
	RoundID string `json:"round_id"`

	// JudgeID identifies the judge who authored the scores.
	JudgeID string `json:"judge_id"`

	// TeamID identifies the team being scored.
	TeamID string `json:"team_id"`

	// Scores maps criterion ID to the raw score the judge assigned.
	Scores map[string]float64 `json:"scores"`

	// Submitted reports whether the judge has finalized the evaluation.
	// Draft evaluations are invisible to statistics and aggregation.
	Submitted bool `json:"submitted"`

	// UpdatedAt records the last save or submit.
	UpdatedAt time.Time `json:"updated_at"`
}
