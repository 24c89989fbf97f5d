package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/model"
)

const goalColumns = `id, owner_id, name, target_value, current_value, deadline, profile_id,
	status, conclusion_origin, concluded_at, finalized_at, created_at`

// AddGoal inserts a new goal.
func (s *SQLiteStorage) AddGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoal(goal); err != nil {
		return err
	}
	return s.addGoalTx(ctx, s.db, goal)
}

func (s *SQLiteStorage) addGoalTx(ctx context.Context, q queryable, goal *model.Goal) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		goal.ID,
		goal.OwnerID,
		goal.Name,
		goal.TargetValue,
		goal.CurrentValue,
		formatDate(goal.Deadline),
		nullString(goal.ProfileID),
		string(goal.Status),
		string(goal.ConclusionOrigin),
		nullTime(goal.ConcludedAt),
		nullTime(goal.FinalizedAt),
		goal.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}
	return nil
}

// UpdateGoal persists every mutable field of an existing goal.
func (s *SQLiteStorage) UpdateGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoal(goal); err != nil {
		return err
	}
	return s.updateGoalTx(ctx, s.db, goal)
}

func (s *SQLiteStorage) updateGoalTx(ctx context.Context, q queryable, goal *model.Goal) error {
	result, err := q.ExecContext(ctx, `
		UPDATE goals
		SET name = ?, target_value = ?, current_value = ?, deadline = ?, profile_id = ?,
		    status = ?, conclusion_origin = ?, concluded_at = ?, finalized_at = ?
		WHERE id = ?
	`,
		goal.Name,
		goal.TargetValue,
		goal.CurrentValue,
		formatDate(goal.Deadline),
		nullString(goal.ProfileID),
		string(goal.Status),
		string(goal.ConclusionOrigin),
		nullTime(goal.ConcludedAt),
		nullTime(goal.FinalizedAt),
		goal.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	return checkAffected(result, "goal", goal.ID)
}

// GetGoalByID retrieves a single goal by ID.
func (s *SQLiteStorage) GetGoalByID(ctx context.Context, id string) (*model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getGoalByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getGoalByIDTx(ctx context.Context, q queryable, id string) (*model.Goal, error) {
	row := q.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id)
	goal, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("goal %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}

// GetGoalsByOwner returns the owner's goals ordered by deadline ascending.
func (s *SQLiteStorage) GetGoalsByOwner(ctx context.Context, ownerID string) ([]model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}
	return s.getGoalsByOwnerTx(ctx, s.db, ownerID)
}

func (s *SQLiteStorage) getGoalsByOwnerTx(ctx context.Context, q queryable, ownerID string) ([]model.Goal, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE owner_id = ?
		ORDER BY deadline ASC, created_at ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []model.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *goal)
	}
	return goals, rows.Err()
}

func scanGoal(row rowScanner) (*model.Goal, error) {
	var (
		goal        model.Goal
		deadline    string
		profileID   sql.NullString
		status      string
		origin      string
		concludedAt sql.NullTime
		finalizedAt sql.NullTime
	)
	err := row.Scan(
		&goal.ID,
		&goal.OwnerID,
		&goal.Name,
		&goal.TargetValue,
		&goal.CurrentValue,
		&deadline,
		&profileID,
		&status,
		&origin,
		&concludedAt,
		&finalizedAt,
		&goal.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if goal.Deadline, err = parseDate(deadline); err != nil {
		return nil, err
	}
	goal.ProfileID = profileID.String
	goal.Status = model.GoalStatus(status)
	goal.ConclusionOrigin = model.ConclusionOrigin(origin)
	goal.ConcludedAt = timePtr(concludedAt)
	goal.FinalizedAt = timePtr(finalizedAt)
	return &goal, nil
}
