package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/nest-egg/internal/model"
)

// AddGoalUsage appends a usage entry to the goal's ledger.
func (s *SQLiteStorage) AddGoalUsage(ctx context.Context, goalID, transactionID string, value float64) (*model.GoalUsage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUsage(goalID, transactionID); err != nil {
		return nil, err
	}
	return s.addGoalUsageTx(ctx, s.db, goalID, transactionID, value)
}

func (s *SQLiteStorage) addGoalUsageTx(ctx context.Context, q queryable, goalID, transactionID string, value float64) (*model.GoalUsage, error) {
	usage := &model.GoalUsage{
		ID:            uuid.NewString(),
		GoalID:        goalID,
		TransactionID: transactionID,
		Value:         value,
		CreatedAt:     time.Now().UTC(),
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO goal_usages (id, goal_id, transaction_id, value, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, usage.ID, usage.GoalID, usage.TransactionID, usage.Value, usage.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert goal usage: %w", err)
	}
	return usage, nil
}

// SumGoalUsage totals the usage entries for a goal, 0 when there are none.
func (s *SQLiteStorage) SumGoalUsage(ctx context.Context, goalID string) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(goalID, "goalID"); err != nil {
		return 0, err
	}
	return s.sumGoalUsageTx(ctx, s.db, goalID)
}

func (s *SQLiteStorage) sumGoalUsageTx(ctx context.Context, q queryable, goalID string) (float64, error) {
	var total float64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(value), 0) FROM goal_usages WHERE goal_id = ?
	`, goalID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum goal usages: %w", err)
	}
	return total, nil
}

// GetGoalUsages returns a goal's usage entries in the order they were recorded.
func (s *SQLiteStorage) GetGoalUsages(ctx context.Context, goalID string) ([]model.GoalUsage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(goalID, "goalID"); err != nil {
		return nil, err
	}
	return s.getGoalUsagesTx(ctx, s.db, goalID)
}

func (s *SQLiteStorage) getGoalUsagesTx(ctx context.Context, q queryable, goalID string) ([]model.GoalUsage, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, goal_id, transaction_id, value, created_at
		FROM goal_usages
		WHERE goal_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goal usages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var usages []model.GoalUsage
	for rows.Next() {
		var u model.GoalUsage
		if err := rows.Scan(&u.ID, &u.GoalID, &u.TransactionID, &u.Value, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal usage: %w", err)
		}
		usages = append(usages, u)
	}
	return usages, rows.Err()
}
