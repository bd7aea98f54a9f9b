package application

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/venharis/dais/internal/domain"
	"github.com/venharis/dais/pkg/logger"
)

// RecomputeRounds re-runs the compute pipeline for several rounds, bounded
// by the configured concurrency limit. It is the administrative entry
// point after bulk changes such as a rubric correction.
//
// Rounds are independent: each one commits or fails on its own. The first
// failure cancels the remaining work and is returned; summaries of runs
// that finished before the failure are returned alongside it.
func (e *Engine) RecomputeRounds(ctx context.Context, roundIDs []string) ([]domain.ComputeSummary, error) {
	if len(roundIDs) == 0 {
		return nil, nil
	}

	summaries := make([]domain.ComputeSummary, len(roundIDs))
	completed := make([]bool, len(roundIDs))
	var mu sync.Mutex // Protects summaries and completed.

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.recomputeConcurrency)

	for i, roundID := range roundIDs {
		g.Go(func() error {
			summary, err := e.ComputeRound(gctx, roundID)
			if err != nil {
				return fmt.Errorf("round %s: %w", roundID, err)
			}

			mu.Lock()
			summaries[i] = summary
			completed[i] = true
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()

	finished := make([]domain.ComputeSummary, 0, len(roundIDs))
	for i, summary := range summaries {
		if completed[i] {
			finished = append(finished, summary)
		}
	}

	if err != nil {
		e.log.Error(ctx, "batch recompute failed",
			logger.Int("requested", len(roundIDs)),
			logger.Int("finished", len(finished)),
			logger.Error(err))
		return finished, err
	}

	e.log.Info(ctx, "batch recompute finished",
		logger.Int("rounds", len(finished)))
	return finished, nil
}
