package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/venharis/dais/internal/domain"
)

// UpsertAssignments records team placements into a round, skipping teams that
// are already assigned. Returns the number of newly created assignments.
func (s *Store) UpsertAssignments(ctx context.Context, assignments []domain.Assignment) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}
	if len(assignments) == 0 {
		return 0, nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	created := 0
	for _, assignment := range assignments {
		paramsJSON, err := json.Marshal(assignment.Params)
		if err != nil {
			return 0, fmt.Errorf("marshal params for team %s: %w", assignment.TeamID, err)
		}
		assignedAt := assignment.AssignedAt
		if assignedAt.IsZero() {
			assignedAt = time.Now().UTC()
		}
		res, err := tx.ExecContext(
			ctx,
			`INSERT INTO round_assignments
				(round_id, team_id, source_round_id, mode, params, assigned_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(round_id, team_id) DO NOTHING`,
			assignment.RoundID,
			assignment.TeamID,
			assignment.SourceRoundID,
			assignment.Mode,
			string(paramsJSON),
			toMillis(assignedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("upsert assignment for team %s: %w", assignment.TeamID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		created += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit assignments: %w", err)
	}
	return created, nil
}

// ListAssignments returns all team placements for a round ordered by team ID.
func (s *Store) ListAssignments(ctx context.Context, roundID string) ([]domain.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT round_id, team_id, source_round_id, mode, params, assigned_at
		 FROM round_assignments
		 WHERE round_id = ?
		 ORDER BY team_id`,
		roundID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []domain.Assignment
	for rows.Next() {
		var assignment domain.Assignment
		var paramsJSON string
		var assignedAt int64
		if err := rows.Scan(
			&assignment.RoundID,
			&assignment.TeamID,
			&assignment.SourceRoundID,
			&assignment.Mode,
			&paramsJSON,
			&assignedAt,
		); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		if err := json.Unmarshal([]byte(paramsJSON), &assignment.Params); err != nil {
			return nil, fmt.Errorf("unmarshal params: %w", err)
		}
		assignment.AssignedAt = fromMillis(assignedAt)
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return assignments, nil
}
