// Package application orchestrates the judging engine's use cases. It
// wires the pure computations in internal/domain to the store ports,
// serializes concurrent computes per round, and reports summaries to the
// configured observability hooks.
package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/venharis/dais/internal/domain"
	"github.com/venharis/dais/internal/ports"
	"github.com/venharis/dais/pkg/logger"
)

// DefaultRecomputeConcurrency bounds how many rounds a batch recompute
// processes in parallel when no explicit limit is configured.
const DefaultRecomputeConcurrency = 4

// Stores bundles the persistence ports the engine depends on. A single
// backend usually implements all five, but the engine only ever sees the
// individual contracts.
type Stores struct {
	Rounds      ports.RoundStore
	Criteria    ports.CriterionStore
	Evaluations ports.EvaluationStore
	Results     ports.ResultStore
	Assignments ports.AssignmentStore
}

func (s Stores) validate() error {
	if s.Rounds == nil {
		return fmt.Errorf("round store is required")
	}
	if s.Criteria == nil {
		return fmt.Errorf("criterion store is required")
	}
	if s.Evaluations == nil {
		return fmt.Errorf("evaluation store is required")
	}
	if s.Results == nil {
		return fmt.Errorf("result store is required")
	}
	if s.Assignments == nil {
		return fmt.Errorf("assignment store is required")
	}
	return nil
}

// PolicyCatalog resolves selection mode strings into configured policies.
// The policy registry in infrastructure/policies is the standard
// implementation.
type PolicyCatalog interface {
	Create(mode string, params map[string]any) (ports.SelectionPolicy, error)
}

// ComputeObserver provides observability hooks around compute runs.
// Implementations can add tracing and metrics without coupling those
// concerns to the compute pipeline itself.
type ComputeObserver interface {
	// PreCompute is called after the readiness gate passes, before the
	// normalization pipeline runs.
	PreCompute(ctx context.Context, roundID string)

	// PostCompute is called once the run finishes, with the summary and
	// timing information. On failure the summary carries whatever was
	// known at the point of the error.
	PostCompute(ctx context.Context, summary domain.ComputeSummary, elapsed time.Duration, err error)
}

// Options carries the engine's optional collaborators. The zero value is
// valid: logging goes to a no-op logger and metrics, tracing, and batch
// concurrency fall back to defaults.
type Options struct {
	// Logger receives structured engine logs. Defaults to a no-op logger.
	Logger logger.Logger

	// Metrics receives latency, counter, gauge, and histogram updates.
	// Nil disables metric recording.
	Metrics ports.MetricsCollector

	// Observer receives pre/post hooks around each compute run.
	// Nil disables the hooks.
	Observer ComputeObserver

	// RecomputeConcurrency bounds parallel round computes during batch
	// recomputes. Values below one fall back to
	// DefaultRecomputeConcurrency.
	RecomputeConcurrency int
}

// Engine implements the judging platform's core operations: readiness
// checks, score normalization and ranking, team selection, and promotion
// into later rounds.
//
// Compute runs against the same round are serialized through a per-round
// mutex; runs against distinct rounds proceed in parallel. All writes go
// through the stores' transactional operations, so a failed run never
// leaves partial results behind.
type Engine struct {
	stores  Stores
	catalog PolicyCatalog

	log      logger.Logger
	metrics  ports.MetricsCollector
	observer ComputeObserver

	recomputeConcurrency int

	// mu protects roundLocks.
	mu         sync.Mutex
	roundLocks map[string]*sync.Mutex
}

// NewEngine creates an engine over the given stores and policy catalog.
func NewEngine(stores Stores, catalog PolicyCatalog, opts Options) (*Engine, error) {
	if err := stores.validate(); err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, fmt.Errorf("policy catalog is required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	concurrency := opts.RecomputeConcurrency
	if concurrency < 1 {
		concurrency = DefaultRecomputeConcurrency
	}

	return &Engine{
		stores:               stores,
		catalog:              catalog,
		log:                  log.Named("engine"),
		metrics:              opts.Metrics,
		observer:             opts.Observer,
		recomputeConcurrency: concurrency,
		roundLocks:           make(map[string]*sync.Mutex),
	}, nil
}

// CheckReadiness reports whether a round has everything a compute run
// needs: at least one criterion, one assigned judge, and one submitted
// evaluation. The report lists what is missing so callers can surface
// actionable feedback.
func (e *Engine) CheckReadiness(ctx context.Context, roundID string) (domain.ReadinessReport, error) {
	if _, err := e.stores.Rounds.GetRound(ctx, roundID); err != nil {
		return domain.ReadinessReport{}, err
	}

	criteria, err := e.stores.Criteria.ListCriteria(ctx, roundID)
	if err != nil {
		return domain.ReadinessReport{}, fmt.Errorf("list criteria: %w", err)
	}
	judges, err := e.stores.Rounds.CountJudges(ctx, roundID)
	if err != nil {
		return domain.ReadinessReport{}, fmt.Errorf("count judges: %w", err)
	}
	submitted, drafts, err := e.stores.Evaluations.CountEvaluations(ctx, roundID)
	if err != nil {
		return domain.ReadinessReport{}, fmt.Errorf("count evaluations: %w", err)
	}

	return domain.EvaluateReadiness(domain.ReadinessStats{
		CriteriaCount:  len(criteria),
		JudgesCount:    judges,
		SubmittedCount: submitted,
		DraftCount:     drafts,
	}), nil
}

// ComputeRound runs the full normalization pipeline for one round and
// atomically replaces its stored results.
//
// The round must pass the readiness gate; otherwise a
// domain.NotReadyError is returned and nothing is written. Draft
// evaluations are invisible to the run. Recomputing is safe at any time:
// each run works from the current submitted evaluations and the previous
// result set stays intact until the new one commits.
func (e *Engine) ComputeRound(ctx context.Context, roundID string) (domain.ComputeSummary, error) {
	lock := e.roundLock(roundID)
	lock.Lock()
	defer lock.Unlock()

	report, err := e.CheckReadiness(ctx, roundID)
	if err != nil {
		return domain.ComputeSummary{}, err
	}
	if !report.Ready {
		return domain.ComputeSummary{}, domain.NewNotReadyError(roundID, report.Missing)
	}

	if e.observer != nil {
		e.observer.PreCompute(ctx, roundID)
	}
	start := time.Now()

	summary, err := e.computeLocked(ctx, roundID)
	elapsed := time.Since(start)
	summary.RoundID = roundID
	summary.Elapsed = elapsed

	if e.observer != nil {
		e.observer.PostCompute(ctx, summary, elapsed, err)
	}
	if e.metrics != nil {
		e.metrics.RecordLatency("compute_round", elapsed, map[string]string{"round_id": roundID})
		status := "ok"
		if err != nil {
			status = "error"
		}
		e.metrics.RecordCounter("compute_runs_total", 1, map[string]string{"status": status})
	}
	if err != nil {
		e.log.Error(ctx, "compute run failed",
			logger.String("round_id", roundID),
			logger.Error(err))
		return domain.ComputeSummary{}, err
	}

	if summary.SkippedScores > 0 {
		e.log.Warn(ctx, "scores referencing unknown criteria were excluded",
			logger.String("round_id", roundID),
			logger.Int("skipped", summary.SkippedScores))
	}
	e.log.Info(ctx, "round computed",
		logger.String("round_id", roundID),
		logger.String("run_id", summary.RunID),
		logger.Int("teams", summary.TeamCount),
		logger.Int("judges", summary.JudgeCount),
		logger.Int("evaluations", summary.EvaluationCount),
		logger.Duration("elapsed", elapsed))
	return summary, nil
}

// computeLocked runs the pipeline body. The caller holds the round lock.
func (e *Engine) computeLocked(ctx context.Context, roundID string) (domain.ComputeSummary, error) {
	criteria, err := e.stores.Criteria.ListCriteria(ctx, roundID)
	if err != nil {
		return domain.ComputeSummary{}, fmt.Errorf("list criteria: %w", err)
	}
	evaluations, err := e.stores.Evaluations.ListSubmittedEvaluations(ctx, roundID)
	if err != nil {
		return domain.ComputeSummary{}, fmt.Errorf("list evaluations: %w", err)
	}

	stats := domain.ComputeJudgeStatistics(evaluations)
	scores := domain.NormalizeEvaluations(evaluations, stats)
	aggregates, skipped := domain.AggregateRound(criteria, scores)
	results := domain.RankAggregates(roundID, aggregates, criteria)

	runID := uuid.NewString()
	computedAt := time.Now().UTC()
	for i := range results {
		results[i].RunID = runID
		results[i].ComputedAt = computedAt
	}

	if err := e.stores.Results.ReplaceResults(ctx, roundID, results); err != nil {
		return domain.ComputeSummary{}, fmt.Errorf("replace results: %w", err)
	}

	if e.metrics != nil {
		e.metrics.RecordGauge("teams_ranked", float64(len(results)), map[string]string{"round_id": roundID})
		for _, result := range results {
			e.metrics.RecordHistogram("aggregated_z", result.AggregatedZ, nil)
		}
	}

	return domain.ComputeSummary{
		RunID:           runID,
		RoundID:         roundID,
		TeamCount:       len(results),
		JudgeCount:      len(stats),
		EvaluationCount: len(evaluations),
		SkippedScores:   skipped,
	}, nil
}

// RoundResults returns a round's computed standings. It fails with
// domain.ErrResultsNotComputed when no compute run has stored results for
// the round yet.
func (e *Engine) RoundResults(ctx context.Context, roundID string) ([]domain.TeamRoundResult, error) {
	if _, err := e.stores.Rounds.GetRound(ctx, roundID); err != nil {
		return nil, err
	}
	results, err := e.stores.Results.ListResults(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("round %s: %w", roundID, domain.ErrResultsNotComputed)
	}
	return results, nil
}

// SelectTeams applies a selection policy to a round's computed results
// and returns the chosen teams. The round must have been computed first.
func (e *Engine) SelectTeams(ctx context.Context, roundID, mode string, params map[string]any) (domain.SelectionResult, error) {
	results, err := e.RoundResults(ctx, roundID)
	if err != nil {
		return domain.SelectionResult{}, err
	}
	evaluations, err := e.stores.Evaluations.ListSubmittedEvaluations(ctx, roundID)
	if err != nil {
		return domain.SelectionResult{}, fmt.Errorf("list evaluations: %w", err)
	}

	policy, err := e.catalog.Create(mode, params)
	if err != nil {
		return domain.SelectionResult{}, err
	}

	selection, err := policy.Select(ctx, ports.SelectionInput{
		RoundID:     roundID,
		Results:     results,
		Evaluations: evaluations,
	})
	if err != nil {
		return domain.SelectionResult{}, fmt.Errorf("policy %s: %w", policy.Name(), err)
	}

	e.log.Info(ctx, "teams selected",
		logger.String("round_id", roundID),
		logger.String("mode", selection.Mode),
		logger.Int("selected", len(selection.TeamIDs)))
	return selection, nil
}

// PromoteTeams assigns the selected teams to the target round, recording
// the source round and selection parameters for audit. The target round
// must come after the source round in the competition sequence.
//
// Promotion is idempotent on the (round, team) pair: repeating the same
// call creates nothing new and reports every team as already assigned.
func (e *Engine) PromoteTeams(ctx context.Context, sourceRoundID, targetRoundID string, selection domain.SelectionResult) (domain.PromotionReceipt, error) {
	source, err := e.stores.Rounds.GetRound(ctx, sourceRoundID)
	if err != nil {
		return domain.PromotionReceipt{}, err
	}
	target, err := e.stores.Rounds.GetRound(ctx, targetRoundID)
	if err != nil {
		return domain.PromotionReceipt{}, err
	}
	if target.Number <= source.Number {
		return domain.PromotionReceipt{}, fmt.Errorf("round %s (number %d) to round %s (number %d): %w",
			sourceRoundID, source.Number, targetRoundID, target.Number, domain.ErrTargetRoundNotAhead)
	}

	assignedAt := time.Now().UTC()
	assignments := make([]domain.Assignment, 0, len(selection.TeamIDs))
	for _, teamID := range selection.TeamIDs {
		assignments = append(assignments, domain.Assignment{
			RoundID:       targetRoundID,
			TeamID:        teamID,
			SourceRoundID: sourceRoundID,
			Mode:          selection.Mode,
			Params:        selection.Params,
			AssignedAt:    assignedAt,
		})
	}

	created, err := e.stores.Assignments.UpsertAssignments(ctx, assignments)
	if err != nil {
		return domain.PromotionReceipt{}, fmt.Errorf("upsert assignments: %w", err)
	}

	receipt := domain.PromotionReceipt{
		Promoted:        created,
		AlreadyAssigned: len(assignments) - created,
	}
	if e.metrics != nil {
		e.metrics.RecordCounter("teams_promoted_total", float64(receipt.Promoted), map[string]string{"round_id": targetRoundID})
	}
	e.log.Info(ctx, "teams promoted",
		logger.String("source_round_id", sourceRoundID),
		logger.String("target_round_id", targetRoundID),
		logger.Int("promoted", receipt.Promoted),
		logger.Int("already_assigned", receipt.AlreadyAssigned))
	return receipt, nil
}

// roundLock returns the mutex that serializes computes of one round,
// creating it on first use.
func (e *Engine) roundLock(roundID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.roundLocks[roundID]
	if !ok {
		lock = &sync.Mutex{}
		e.roundLocks[roundID] = lock
	}
	return lock
}
