package domain

import (
	"cmp"
	"sort"
	"strings"
)

// RankAggregates orders a round's team aggregates into final results.
// Teams are ranked by descending AggregatedZ; exact ties fall through a
// deterministic chain before two teams are declared equal:
//
//  1. higher mean z-score on the highest-weight criterion, then the
//     next-highest, and so on (equal weights ordered by DisplayOrder,
//     then criterion ID),
//  2. higher mean of the raw per-evaluation totals,
//  3. higher median of the raw per-evaluation totals,
//  4. more contributing judges.
//
// Teams equal through the whole chain share a rank and the next rank is
// skipped, competition style. Output is sorted by rank with ties in
// ascending TeamID order, so identical inputs always produce an identical
// result set.
func RankAggregates(roundID string, aggregates []TeamAggregate, criteria []Criterion) []TeamRoundResult {
	order := tieBreakOrder(criteria)

	sorted := make([]TeamAggregate, len(aggregates))
	copy(sorted, aggregates)
	sort.Slice(sorted, func(i, j int) bool {
		if c := compareAggregates(sorted[i], sorted[j], order); c != 0 {
			return c < 0
		}
		return sorted[i].TeamID < sorted[j].TeamID
	})

	n := len(sorted)
	results := make([]TeamRoundResult, 0, n)
	rank := 0
	for i, agg := range sorted {
		if i == 0 || compareAggregates(sorted[i-1], agg, order) != 0 {
			rank = i + 1
		}
		results = append(results, TeamRoundResult{
			RoundID:     roundID,
			TeamID:      agg.TeamID,
			AggregatedZ: agg.AggregatedZ,
			Rank:        rank,
			Percentile:  percentile(rank, n),
			JudgeCount:  agg.JudgeCount,
			Breakdown:   agg.Breakdown,
		})
	}
	return results
}

// compareAggregates returns a negative value when a outranks b, positive
// when b outranks a, and zero when the full tie-break chain is exhausted.
func compareAggregates(a, b TeamAggregate, order []Criterion) int {
	if c := cmp.Compare(b.AggregatedZ, a.AggregatedZ); c != 0 {
		return c
	}
	for _, criterion := range order {
		if c := cmp.Compare(b.criterionZ[criterion.ID], a.criterionZ[criterion.ID]); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(meanOf(b.rawTotals), meanOf(a.rawTotals)); c != 0 {
		return c
	}
	if c := cmp.Compare(medianOf(b.rawTotals), medianOf(a.rawTotals)); c != 0 {
		return c
	}
	return cmp.Compare(b.JudgeCount, a.JudgeCount)
}

// tieBreakOrder sorts criteria by descending weight. Equal weights fall
// back to DisplayOrder and then ID so the chain is stable across runs.
func tieBreakOrder(criteria []Criterion) []Criterion {
	order := make([]Criterion, len(criteria))
	copy(order, criteria)
	sort.Slice(order, func(i, j int) bool {
		if order[i].Weight != order[j].Weight {
			return order[i].Weight > order[j].Weight
		}
		if order[i].DisplayOrder != order[j].DisplayOrder {
			return order[i].DisplayOrder < order[j].DisplayOrder
		}
		return strings.Compare(order[i].ID, order[j].ID) < 0
	})
	return order
}

// percentile maps a competition rank into [0, 100]. A single-team round
// is defined as the 100th percentile.
func percentile(rank, teamCount int) float64 {
	if teamCount <= 1 {
		return 100
	}
	return 100 * float64(teamCount-rank) / float64(teamCount-1)
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// medianOf returns the middle value of the inputs, or the mean of the two
// middle values for even-length input.
func medianOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
