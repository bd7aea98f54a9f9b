package domain

// NormalizedScore is one raw score expressed in units of its judge's
// pooled standard deviation. A stream of these, one per (evaluation,
// criterion) pair, is the input to aggregation.
type NormalizedScore struct {
	// JudgeID identifies the judge who assigned the raw score.
	JudgeID string `json:"judge_id"`

	// TeamID identifies the team the score was assigned to.
	TeamID string `json:"team_id"`

	// CriterionID identifies the criterion the score was assigned under.
	CriterionID string `json:"criterion_id"`

	// Raw is the score as the judge entered it.
	Raw float64 `json:"raw"`

	// ZScore is (Raw - judge mean) / judge stddev, or zero when the
	// judge's stddev is zero.
	ZScore float64 `json:"z_score"`
}

// ZScore expresses a raw score relative to a judge's pooled statistics.
// A judge with zero standard deviation gave every team the same score and
// therefore carries no ranking signal; all of that judge's scores map to
// zero rather than to an undefined division.
func ZScore(raw float64, stat JudgeStatistic) float64 {
	if stat.StdDev <= 0 {
		return 0
	}
	return (raw - stat.Mean) / stat.StdDev
}

// NormalizeEvaluations converts every score in the submitted evaluations
// into a NormalizedScore using the judge statistics produced by
// ComputeJudgeStatistics. Scores from judges absent from stats (a judge
// that submitted no scores) produce nothing, and draft evaluations are
// ignored. The result is unordered; aggregation does not depend on order.
func NormalizeEvaluations(evaluations []Evaluation, stats map[string]JudgeStatistic) []NormalizedScore {
	var out []NormalizedScore
	for _, eval := range evaluations {
		if !eval.Submitted {
			continue
		}
		stat, ok := stats[eval.JudgeID]
		if !ok {
			continue
		}
		for criterionID, raw := range eval.Scores {
			out = append(out, NormalizedScore{
				JudgeID:     eval.JudgeID,
				TeamID:      eval.TeamID,
				CriterionID: criterionID,
				Raw:         raw,
				ZScore:      ZScore(raw, stat),
			})
		}
	}
	return out
}
