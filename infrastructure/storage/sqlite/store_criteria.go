package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/venharis/dais/internal/domain"
)

// CreateCriteria inserts rubric rows in one transaction. Every referenced
// round must already exist.
func (s *Store) CreateCriteria(ctx context.Context, criteria []domain.Criterion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if len(criteria) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	for _, criterion := range criteria {
		if _, ok := seen[criterion.RoundID]; ok {
			continue
		}
		if _, err := s.GetRound(ctx, criterion.RoundID); err != nil {
			return err
		}
		seen[criterion.RoundID] = struct{}{}
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, criterion := range criteria {
		if strings.TrimSpace(criterion.ID) == "" {
			return fmt.Errorf("criterion id is required")
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO criteria (id, round_id, name, max_marks, weight, display_order)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			criterion.ID,
			criterion.RoundID,
			criterion.Name,
			criterion.MaxMarks,
			criterion.Weight,
			criterion.DisplayOrder,
		); err != nil {
			return fmt.Errorf("create criterion %s: %w", criterion.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit criteria: %w", err)
	}
	return nil
}

// ListCriteria returns a round's criteria in display order.
func (s *Store) ListCriteria(ctx context.Context, roundID string) ([]domain.Criterion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, round_id, name, max_marks, weight, display_order
		 FROM criteria
		 WHERE round_id = ?
		 ORDER BY display_order, id`,
		roundID,
	)
	if err != nil {
		return nil, fmt.Errorf("list criteria: %w", err)
	}
	defer rows.Close()

	var criteria []domain.Criterion
	for rows.Next() {
		var criterion domain.Criterion
		if err := rows.Scan(
			&criterion.ID,
			&criterion.RoundID,
			&criterion.Name,
			&criterion.MaxMarks,
			&criterion.Weight,
			&criterion.DisplayOrder,
		); err != nil {
			return nil, fmt.Errorf("scan criterion: %w", err)
		}
		criteria = append(criteria, criterion)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate criteria: %w", err)
	}
	return criteria, nil
}
