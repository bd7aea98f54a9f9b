// Package memory provides an in-memory implementation of the engine's
// store ports. It mirrors the semantics of the SQLite store, including
// atomic result replacement and creation-counting upserts, and backs
// tests, examples, and ephemeral service runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/venharis/dais/internal/domain"
	"github.com/venharis/dais/internal/ports"
)

// Compile-time interface compliance checks.
var (
	_ ports.RoundStore      = (*Store)(nil)
	_ ports.CriterionStore  = (*Store)(nil)
	_ ports.EvaluationStore = (*Store)(nil)
	_ ports.ResultStore     = (*Store)(nil)
	_ ports.AssignmentStore = (*Store)(nil)
)

type evalKey struct{ judgeID, teamID string }

// Store keeps all engine state in maps guarded by a single RWMutex.
// Values are copied on the way in and out, so callers can never alias the
// store's internal state.
type Store struct {
	mu          sync.RWMutex
	rounds      map[string]domain.Round
	judges      map[string]map[string]struct{}
	criteria    map[string]map[string]domain.Criterion
	evaluations map[string]map[evalKey]domain.Evaluation
	results     map[string][]domain.TeamRoundResult
	assignments map[string]map[string]domain.Assignment
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		rounds:      make(map[string]domain.Round),
		judges:      make(map[string]map[string]struct{}),
		criteria:    make(map[string]map[string]domain.Criterion),
		evaluations: make(map[string]map[evalKey]domain.Evaluation),
		results:     make(map[string][]domain.TeamRoundResult),
		assignments: make(map[string]map[string]domain.Assignment),
	}
}

// CreateRound stores a new round. Reusing an ID is an error.
func (s *Store) CreateRound(ctx context.Context, round domain.Round) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rounds[round.ID]; exists {
		return fmt.Errorf("round %s already exists", round.ID)
	}
	s.rounds[round.ID] = round
	return nil
}

// GetRound returns the round with the given ID.
func (s *Store) GetRound(ctx context.Context, roundID string) (domain.Round, error) {
	if err := ctx.Err(); err != nil {
		return domain.Round{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	round, ok := s.rounds[roundID]
	if !ok {
		return domain.Round{}, fmt.Errorf("round %s: %w", roundID, domain.ErrRoundNotFound)
	}
	return round, nil
}

// AssignJudges adds judges to a round, ignoring repeats.
func (s *Store) AssignJudges(ctx context.Context, roundID string, judgeIDs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rounds[roundID]; !ok {
		return fmt.Errorf("round %s: %w", roundID, domain.ErrRoundNotFound)
	}
	set := s.judges[roundID]
	if set == nil {
		set = make(map[string]struct{})
		s.judges[roundID] = set
	}
	for _, judgeID := range judgeIDs {
		set[judgeID] = struct{}{}
	}
	return nil
}

// CountJudges returns the number of judges assigned to a round.
func (s *Store) CountJudges(ctx context.Context, roundID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.judges[roundID]), nil
}

// CreateCriteria stores criteria for their rounds. Reusing a criterion ID
// is an error, and every referenced round must exist.
func (s *Store) CreateCriteria(ctx context.Context, criteria []domain.Criterion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, criterion := range criteria {
		if _, ok := s.rounds[criterion.RoundID]; !ok {
			return fmt.Errorf("round %s: %w", criterion.RoundID, domain.ErrRoundNotFound)
		}
		if _, exists := s.criteria[criterion.RoundID][criterion.ID]; exists {
			return fmt.Errorf("criterion %s already exists", criterion.ID)
		}
	}
	for _, criterion := range criteria {
		byID := s.criteria[criterion.RoundID]
		if byID == nil {
			byID = make(map[string]domain.Criterion)
			s.criteria[criterion.RoundID] = byID
		}
		byID[criterion.ID] = criterion
	}
	return nil
}

// ListCriteria returns a round's criteria ordered by DisplayOrder, then ID.
func (s *Store) ListCriteria(ctx context.Context, roundID string) ([]domain.Criterion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Criterion, 0, len(s.criteria[roundID]))
	for _, criterion := range s.criteria[roundID] {
		out = append(out, criterion)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// SaveEvaluation inserts or replaces the evaluation for its
// (round, judge, team) triple. The judge must be assigned to the round.
func (s *Store) SaveEvaluation(ctx context.Context, eval domain.Evaluation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rounds[eval.RoundID]; !ok {
		return fmt.Errorf("round %s: %w", eval.RoundID, domain.ErrRoundNotFound)
	}
	if _, ok := s.judges[eval.RoundID][eval.JudgeID]; !ok {
		return fmt.Errorf("judge %s, round %s: %w", eval.JudgeID, eval.RoundID, domain.ErrJudgeNotAssigned)
	}

	byKey := s.evaluations[eval.RoundID]
	if byKey == nil {
		byKey = make(map[evalKey]domain.Evaluation)
		s.evaluations[eval.RoundID] = byKey
	}
	byKey[evalKey{judgeID: eval.JudgeID, teamID: eval.TeamID}] = copyEvaluation(eval)
	return nil
}

// ListSubmittedEvaluations returns the round's submitted evaluations
// ordered by judge ID, then team ID.
func (s *Store) ListSubmittedEvaluations(ctx context.Context, roundID string) ([]domain.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Evaluation
	for _, eval := range s.evaluations[roundID] {
		if eval.Submitted {
			out = append(out, copyEvaluation(eval))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JudgeID != out[j].JudgeID {
			return out[i].JudgeID < out[j].JudgeID
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out, nil
}

// CountEvaluations returns the round's submitted and draft counts.
func (s *Store) CountEvaluations(ctx context.Context, roundID string) (submitted, drafts int, err error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, eval := range s.evaluations[roundID] {
		if eval.Submitted {
			submitted++
		} else {
			drafts++
		}
	}
	return submitted, drafts, nil
}

// ReplaceResults swaps the round's entire result set in one step under the
// store lock; readers see either the previous set or the new one.
func (s *Store) ReplaceResults(ctx context.Context, roundID string, results []domain.TeamRoundResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	replacement := make([]domain.TeamRoundResult, len(results))
	for i, r := range results {
		replacement[i] = copyResult(r)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[roundID] = replacement
	return nil
}

// ListResults returns the round's results ordered by rank, then team ID.
func (s *Store) ListResults(ctx context.Context, roundID string) ([]domain.TeamRoundResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.TeamRoundResult, 0, len(s.results[roundID]))
	for _, r := range s.results[roundID] {
		out = append(out, copyResult(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out, nil
}

// UpsertAssignments writes assignments keyed on (round, team), leaving
// existing rows untouched, and returns how many were newly created.
func (s *Store) UpsertAssignments(ctx context.Context, assignments []domain.Assignment) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	created := 0
	for _, assignment := range assignments {
		if _, ok := s.rounds[assignment.RoundID]; !ok {
			return created, fmt.Errorf("round %s: %w", assignment.RoundID, domain.ErrRoundNotFound)
		}
		byTeam := s.assignments[assignment.RoundID]
		if byTeam == nil {
			byTeam = make(map[string]domain.Assignment)
			s.assignments[assignment.RoundID] = byTeam
		}
		if _, exists := byTeam[assignment.TeamID]; exists {
			continue
		}
		byTeam[assignment.TeamID] = copyAssignment(assignment)
		created++
	}
	return created, nil
}

// ListAssignments returns the round's assignments ordered by team ID.
func (s *Store) ListAssignments(ctx context.Context, roundID string) ([]domain.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Assignment, 0, len(s.assignments[roundID]))
	for _, assignment := range s.assignments[roundID] {
		out = append(out, copyAssignment(assignment))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func copyEvaluation(eval domain.Evaluation) domain.Evaluation {
	out := eval
	out.Scores = make(map[string]float64, len(eval.Scores))
	for k, v := range eval.Scores {
		out.Scores[k] = v
	}
	return out
}

func copyResult(result domain.TeamRoundResult) domain.TeamRoundResult {
	out := result
	out.Breakdown = make([]domain.JudgeBreakdown, len(result.Breakdown))
	copy(out.Breakdown, result.Breakdown)
	return out
}

func copyAssignment(assignment domain.Assignment) domain.Assignment {
	out := assignment
	if assignment.Params != nil {
		out.Params = make(map[string]any, len(assignment.Params))
		for k, v := range assignment.Params {
			out.Params[k] = v
		}
	}
	return out
}
