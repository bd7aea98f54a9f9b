package domain

// Missing-precondition reasons surfaced verbatim to organizers. Clients
// display these strings as-is, so changing them is a UI-visible change.
const (
	// MissingCriteria means the round has no criteria to score against.
	MissingCriteria = "no criteria defined"

	// MissingJudges means no judges are assigned to the round.
	MissingJudges = "no judges assigned"

	// MissingEvaluations means no judge has submitted an evaluation yet.
	MissingEvaluations = "no submitted evaluations"
)

// ReadinessStats are the raw counts the readiness decision is made from.
type ReadinessStats struct {
	// CriteriaCount is the number of criteria defined for the round.
	CriteriaCount int `json:"criteria_count"`

	// JudgesCount is the number of judges assigned to the round.
	JudgesCount int `json:"judges_count"`

	// SubmittedCount is the number of submitted evaluations.
	SubmittedCount int `json:"submitted_count"`

	// DraftCount is the number of evaluations still in draft.
	DraftCount int `json:"draft_count"`
}

// ReadinessReport tells an organizer whether a round can be computed and,
// if not, exactly what is missing.
type ReadinessReport struct {
	// Ready is true when every precondition is met.
	Ready bool `json:"ready"`

	// Stats carries the counts behind the decision.
	Stats ReadinessStats `json:"stats"`

	// Missing lists the human-readable reasons the round is not ready.
	// It is nil when Ready is true.
	Missing []string `json:"missing,omitempty"`
}

// EvaluateReadiness decides whether a round with the given counts can be
// computed. The check is a pure function of the counts: it has no side
// effects and consults nothing else, so callers may invoke it as often as
// they like.
func EvaluateReadiness(stats ReadinessStats) ReadinessReport {
	var missing []string
	if stats.CriteriaCount == 0 {
		missing = append(missing, MissingCriteria)
	}
	if stats.JudgesCount == 0 {
		missing = append(missing, MissingJudges)
	}
	if stats.SubmittedCount == 0 {
		missing = append(missing, MissingEvaluations)
	}
	return ReadinessReport{
		Ready:   len(missing) == 0,
		Stats:   stats,
		Missing: missing,
	}
}
