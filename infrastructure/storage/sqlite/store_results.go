package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/venharis/dais/internal/domain"
)

// ReplaceResults swaps a round's full standings in one transaction. Readers
// never observe a half-written compute run.
func (s *Store) ReplaceResults(ctx context.Context, roundID string, results []domain.TeamRoundResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM team_round_results WHERE round_id = ?`,
		roundID,
	); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}

	for _, result := range results {
		breakdownJSON, err := json.Marshal(result.Breakdown)
		if err != nil {
			return fmt.Errorf("marshal breakdown for team %s: %w", result.TeamID, err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO team_round_results
				(round_id, team_id, aggregated_z, team_rank, percentile, judge_count, breakdown, run_id, computed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			roundID,
			result.TeamID,
			result.AggregatedZ,
			result.Rank,
			result.Percentile,
			result.JudgeCount,
			string(breakdownJSON),
			result.RunID,
			toMillis(result.ComputedAt),
		); err != nil {
			return fmt.Errorf("insert result for team %s: %w", result.TeamID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit results: %w", err)
	}
	return nil
}

// ListResults returns a round's standings ordered by rank. An empty slice
// means the round has never been computed.
func (s *Store) ListResults(ctx context.Context, roundID string) ([]domain.TeamRoundResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT round_id, team_id, aggregated_z, team_rank, percentile, judge_count, breakdown, run_id, computed_at
		 FROM team_round_results
		 WHERE round_id = ?
		 ORDER BY team_rank, team_id`,
		roundID,
	)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []domain.TeamRoundResult
	for rows.Next() {
		var result domain.TeamRoundResult
		var breakdownJSON string
		var computedAt int64
		if err := rows.Scan(
			&result.RoundID,
			&result.TeamID,
			&result.AggregatedZ,
			&result.Rank,
			&result.Percentile,
			&result.JudgeCount,
			&breakdownJSON,
			&result.RunID,
			&computedAt,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if err := json.Unmarshal([]byte(breakdownJSON), &result.Breakdown); err != nil {
			return nil, fmt.Errorf("unmarshal breakdown: %w", err)
		}
		result.ComputedAt = fromMillis(computedAt)
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}
