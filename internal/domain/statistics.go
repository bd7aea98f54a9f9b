package domain

import (
	"math"
)

// JudgeStatistic is the pooled scoring profile of one judge within one
// round. Every raw score the judge submitted in the round, across all
// criteria and all teams, contributes to a single mean and standard
// deviation. The pooled profile is what makes scores from a harsh judge
// and a generous judge comparable after normalization.
type JudgeStatistic struct {
	// JudgeID identifies the judge the statistics describe.
	JudgeID string `json:"judge_id"`

	// Mean is the arithmetic mean of all raw scores the judge submitted.
	Mean float64 `json:"mean"`

	// StdDev is the population standard deviation of those scores. It is
	// zero when the judge submitted a single score or identical scores.
	StdDev float64 `json:"std_dev"`

	// ScoreCount is the number of raw score values pooled.
	ScoreCount int `json:"score_count"`
}

// ComputeJudgeStatistics derives the pooled per-judge statistics for a
// round from its submitted evaluations. Draft evaluations are ignored.
// Judges that submitted no score values do not appear in the result; a
// judge whose scores never vary is retained with StdDev zero and is
// neutralized later by ZScore.
//
// The standard deviation is the population form, sqrt(sum((x-mean)^2)/n),
// because the judge's submitted scores are the entire population of
// interest, not a sample drawn from one.
func ComputeJudgeStatistics(evaluations []Evaluation) map[string]JudgeStatistic {
	pooled := make(map[string][]float64)
	for _, eval := range evaluations {
		if !eval.Submitted {
			continue
		}
		for _, raw := range eval.Scores {
			pooled[eval.JudgeID] = append(pooled[eval.JudgeID], raw)
		}
	}

	stats := make(map[string]JudgeStatistic, len(pooled))
	for judgeID, scores := range pooled {
		n := float64(len(scores))

		var sum float64
		for _, s := range scores {
			sum += s
		}
		mean := sum / n

		var sq float64
		for _, s := range scores {
			d := s - mean
			sq += d * d
		}

		stats[judgeID] = JudgeStatistic{
			JudgeID:    judgeID,
			Mean:       mean,
			StdDev:     math.Sqrt(sq / n),
			ScoreCount: len(scores),
		}
	}
	return stats
}
