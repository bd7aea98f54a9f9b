package domain

import (
	"sort"
)

// TeamAggregate is the folded view of one team's normalized scores,
// carrying everything ranking needs: the judge-averaged weighted total,
// the per-judge breakdown, and the raw and per-criterion figures the
// tie-break chain consults.
type TeamAggregate struct {
	// TeamID identifies the team.
	TeamID string `json:"team_id"`

	// AggregatedZ is the mean over judges of each judge's weighted
	// z-score total for this team.
	AggregatedZ float64 `json:"aggregated_z"`

	// JudgeCount is the number of judges whose evaluations contributed.
	JudgeCount int `json:"judge_count"`

	// Breakdown lists each contributing judge's raw and weighted totals,
	// ordered by judge ID.
	Breakdown []JudgeBreakdown `json:"breakdown"`

	// criterionZ is the mean z-score per criterion across contributing
	// judges, consulted by the first tie-break rule.
	criterionZ map[string]float64

	// rawTotals holds each contributing evaluation's raw score total,
	// feeding the mean and median tie-break rules.
	rawTotals []float64
}

// JudgeBreakdown records what a single judge contributed to a team's
// aggregate, kept on the stored result for display and audit.
type JudgeBreakdown struct {
	// JudgeID identifies the contributing judge.
	JudgeID string `json:"judge_id"`

	// RawTotal is the sum of the judge's raw scores for the team over
	// the round's known criteria.
	RawTotal float64 `json:"raw_total"`

	// WeightedZ is the judge's weighted z-score total for the team,
	// sum over criteria of z * (weight/100).
	WeightedZ float64 `json:"weighted_z"`
}

// AggregateRound folds a round's normalized scores into one aggregate per
// team. Each criterion's z-score is scaled by Weight/100 and summed into a
// per-evaluation weighted total; a team's AggregatedZ is the plain average
// of those totals across the judges who evaluated it. Averaging keeps
// teams seen by different judge counts comparable, at the cost that a
// single enthusiastic judge moves a two-judge team more than a five-judge
// team; that trade-off is inherent to the rule, not corrected here.
//
// Scores referencing a criterion that is not part of the round are
// excluded from every total. The second return value counts those
// exclusions so the caller can surface the inconsistency.
//
// Teams in the result are ordered by TeamID; ranking re-orders them.
func AggregateRound(criteria []Criterion, scores []NormalizedScore) ([]TeamAggregate, int) {
	weights := make(map[string]float64, len(criteria))
	for _, c := range criteria {
		weights[c.ID] = c.Weight
	}

	type evalKey struct{ teamID, judgeID string }
	weightedTotals := make(map[evalKey]float64)
	rawTotals := make(map[evalKey]float64)
	zSums := make(map[string]map[string]float64)
	zCounts := make(map[string]map[string]int)

	skipped := 0
	for _, ns := range scores {
		weight, ok := weights[ns.CriterionID]
		if !ok {
			skipped++
			continue
		}
		key := evalKey{teamID: ns.TeamID, judgeID: ns.JudgeID}
		weightedTotals[key] += ns.ZScore * (weight / 100)
		rawTotals[key] += ns.Raw

		if zSums[ns.TeamID] == nil {
			zSums[ns.TeamID] = make(map[string]float64)
			zCounts[ns.TeamID] = make(map[string]int)
		}
		zSums[ns.TeamID][ns.CriterionID] += ns.ZScore
		zCounts[ns.TeamID][ns.CriterionID]++
	}

	byTeam := make(map[string][]JudgeBreakdown)
	for key, weighted := range weightedTotals {
		byTeam[key.teamID] = append(byTeam[key.teamID], JudgeBreakdown{
			JudgeID:   key.judgeID,
			RawTotal:  rawTotals[key],
			WeightedZ: weighted,
		})
	}

	aggregates := make([]TeamAggregate, 0, len(byTeam))
	for teamID, breakdown := range byTeam {
		sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].JudgeID < breakdown[j].JudgeID })

		var weightedSum float64
		raws := make([]float64, 0, len(breakdown))
		for _, jb := range breakdown {
			weightedSum += jb.WeightedZ
			raws = append(raws, jb.RawTotal)
		}

		criterionZ := make(map[string]float64, len(zSums[teamID]))
		for criterionID, sum := range zSums[teamID] {
			criterionZ[criterionID] = sum / float64(zCounts[teamID][criterionID])
		}

		aggregates = append(aggregates, TeamAggregate{
			TeamID:      teamID,
			AggregatedZ: weightedSum / float64(len(breakdown)),
			JudgeCount:  len(breakdown),
			Breakdown:   breakdown,
			criterionZ:  criterionZ,
			rawTotals:   raws,
		})
	}

	sort.Slice(aggregates, func(i, j int) bool { return aggregates[i].TeamID < aggregates[j].TeamID })
	return aggregates, skipped
}
