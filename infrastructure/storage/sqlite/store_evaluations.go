package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/venharis/dais/internal/domain"
)

// SaveEvaluation upserts a judge's scorecard for a team. The judge must be
// assigned to the round before any scorecard is accepted.
func (s *Store) SaveEvaluation(ctx context.Context, evaluation domain.Evaluation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(evaluation.JudgeID) == "" {
		return fmt.Errorf("judge id is required")
	}
	if strings.TrimSpace(evaluation.TeamID) == "" {
		return fmt.Errorf("team id is required")
	}
	if _, err := s.GetRound(ctx, evaluation.RoundID); err != nil {
		return err
	}

	scoresJSON, err := json.Marshal(evaluation.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	updatedAt := evaluation.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var assigned int
	row := tx.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM round_judges WHERE round_id = ? AND judge_id = ?`,
		evaluation.RoundID,
		evaluation.JudgeID,
	)
	if err := row.Scan(&assigned); err != nil {
		return fmt.Errorf("check judge assignment: %w", err)
	}
	if assigned == 0 {
		return fmt.Errorf("judge %s on round %s: %w",
			evaluation.JudgeID, evaluation.RoundID, domain.ErrJudgeNotAssigned)
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO evaluations (id, round_id, judge_id, team_id, scores, submitted, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(round_id, judge_id, team_id) DO UPDATE SET
			id = excluded.id,
			scores = excluded.scores,
			submitted = excluded.submitted,
			updated_at = excluded.updated_at`,
		evaluation.ID,
		evaluation.RoundID,
		evaluation.JudgeID,
		evaluation.TeamID,
		string(scoresJSON),
		boolToInt(evaluation.Submitted),
		toMillis(updatedAt),
	); err != nil {
		return fmt.Errorf("save evaluation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit evaluation: %w", err)
	}
	return nil
}

// ListSubmittedEvaluations returns all submitted scorecards for a round.
// Drafts are excluded.
func (s *Store) ListSubmittedEvaluations(ctx context.Context, roundID string) ([]domain.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, round_id, judge_id, team_id, scores, submitted, updated_at
		 FROM evaluations
		 WHERE round_id = ? AND submitted = 1
		 ORDER BY judge_id, team_id`,
		roundID,
	)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var evaluations []domain.Evaluation
	for rows.Next() {
		evaluation, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, evaluation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}
	return evaluations, nil
}

// CountEvaluations returns the submitted and draft scorecard counts for a round.
func (s *Store) CountEvaluations(ctx context.Context, roundID string) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	if err := s.ready(); err != nil {
		return 0, 0, err
	}

	var submitted, drafts int
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT
			COALESCE(SUM(CASE WHEN submitted = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN submitted = 0 THEN 1 ELSE 0 END), 0)
		 FROM evaluations WHERE round_id = ?`,
		roundID,
	)
	if err := row.Scan(&submitted, &drafts); err != nil {
		return 0, 0, fmt.Errorf("count evaluations: %w", err)
	}
	return submitted, drafts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row rowScanner) (domain.Evaluation, error) {
	var evaluation domain.Evaluation
	var scoresJSON string
	var submitted int
	var updatedAt int64
	if err := row.Scan(
		&evaluation.ID,
		&evaluation.RoundID,
		&evaluation.JudgeID,
		&evaluation.TeamID,
		&scoresJSON,
		&submitted,
		&updatedAt,
	); err != nil {
		return domain.Evaluation{}, fmt.Errorf("scan evaluation: %w", err)
	}
	if err := json.Unmarshal([]byte(scoresJSON), &evaluation.Scores); err != nil {
		return domain.Evaluation{}, fmt.Errorf("unmarshal scores: %w", err)
	}
	evaluation.Submitted = submitted == 1
	evaluation.UpdatedAt = fromMillis(updatedAt)
	return evaluation, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
