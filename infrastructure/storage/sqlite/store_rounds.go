package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/venharis/dais/internal/domain"
)

// CreateRound inserts one round record.
func (s *Store) CreateRound(ctx context.Context, round domain.Round) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(round.ID) == "" {
		return fmt.Errorf("round id is required")
	}
	if round.Number <= 0 {
		return fmt.Errorf("round number must be greater than zero")
	}
	createdAt := round.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO rounds (id, number, name, created_at) VALUES (?, ?, ?, ?)`,
		round.ID,
		round.Number,
		round.Name,
		toMillis(createdAt),
	)
	if err != nil {
		return fmt.Errorf("create round: %w", err)
	}
	return nil
}

// GetRound returns one round by ID.
func (s *Store) GetRound(ctx context.Context, roundID string) (domain.Round, error) {
	if err := ctx.Err(); err != nil {
		return domain.Round{}, err
	}
	if err := s.ready(); err != nil {
		return domain.Round{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, number, name, created_at FROM rounds WHERE id = ?`,
		roundID,
	)

	var round domain.Round
	var createdAt int64
	err := row.Scan(&round.ID, &round.Number, &round.Name, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Round{}, fmt.Errorf("round %s: %w", roundID, domain.ErrRoundNotFound)
		}
		return domain.Round{}, fmt.Errorf("get round: %w", err)
	}
	round.CreatedAt = fromMillis(createdAt)
	return round, nil
}

// AssignJudges adds judges to a round, ignoring repeats.
func (s *Store) AssignJudges(ctx context.Context, roundID string, judgeIDs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.GetRound(ctx, roundID); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, judgeID := range judgeIDs {
		if strings.TrimSpace(judgeID) == "" {
			return fmt.Errorf("judge id is required")
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO round_judges (round_id, judge_id) VALUES (?, ?)
			 ON CONFLICT(round_id, judge_id) DO NOTHING`,
			roundID,
			judgeID,
		); err != nil {
			return fmt.Errorf("assign judge %s: %w", judgeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit judge assignments: %w", err)
	}
	return nil
}

// CountJudges returns the number of judges assigned to a round.
func (s *Store) CountJudges(ctx context.Context, roundID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}

	var count int
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM round_judges WHERE round_id = ?`,
		roundID,
	)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count judges: %w", err)
	}
	return count, nil
}
