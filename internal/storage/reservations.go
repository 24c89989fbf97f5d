package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/model"
)

const reservationColumns = `id, owner_id, goal_id, transaction_id, note, value, created_at, updated_at`

// AddReservation inserts a new reservation.
func (s *SQLiteStorage) AddReservation(ctx context.Context, reservation *model.Reservation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReservation(reservation); err != nil {
		return err
	}
	return s.addReservationTx(ctx, s.db, reservation)
}

func (s *SQLiteStorage) addReservationTx(ctx context.Context, q queryable, r *model.Reservation) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO reservations (`+reservationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		r.OwnerID,
		r.GoalID,
		nullString(r.TransactionID),
		r.Note,
		r.Value,
		r.CreatedAt.UTC(),
		nullTime(r.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}
	return nil
}

// UpdateReservation persists the value, note and update time of a reservation.
func (s *SQLiteStorage) UpdateReservation(ctx context.Context, reservation *model.Reservation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReservation(reservation); err != nil {
		return err
	}
	return s.updateReservationTx(ctx, s.db, reservation)
}

func (s *SQLiteStorage) updateReservationTx(ctx context.Context, q queryable, r *model.Reservation) error {
	result, err := q.ExecContext(ctx, `
		UPDATE reservations
		SET value = ?, note = ?, transaction_id = ?, updated_at = ?
		WHERE id = ?
	`, r.Value, r.Note, nullString(r.TransactionID), nullTime(r.UpdatedAt), r.ID)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	return checkAffected(result, "reservation", r.ID)
}

// DeleteReservation removes a reservation.
func (s *SQLiteStorage) DeleteReservation(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.deleteReservationTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteReservationTx(ctx context.Context, q queryable, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	return checkAffected(result, "reservation", id)
}

// GetReservationByID retrieves a single reservation by ID.
func (s *SQLiteStorage) GetReservationByID(ctx context.Context, id string) (*model.Reservation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getReservationByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getReservationByIDTx(ctx context.Context, q queryable, id string) (*model.Reservation, error) {
	row := q.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	r, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reservation %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return r, nil
}

// GetReservationsByGoal returns a goal's reservations in creation order.
func (s *SQLiteStorage) GetReservationsByGoal(ctx context.Context, goalID string) ([]model.Reservation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(goalID, "goalID"); err != nil {
		return nil, err
	}
	return s.getReservationsByGoalTx(ctx, s.db, goalID)
}

func (s *SQLiteStorage) getReservationsByGoalTx(ctx context.Context, q queryable, goalID string) ([]model.Reservation, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE goal_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reservations []model.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, *r)
	}
	return reservations, rows.Err()
}

// GetReservationTotalByGoal sums the goal's reservations.
func (s *SQLiteStorage) GetReservationTotalByGoal(ctx context.Context, goalID string) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(goalID, "goalID"); err != nil {
		return 0, err
	}
	return s.getReservationTotalByGoalTx(ctx, s.db, goalID)
}

func (s *SQLiteStorage) getReservationTotalByGoalTx(ctx context.Context, q queryable, goalID string) (float64, error) {
	var total float64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(value), 0) FROM reservations WHERE goal_id = ?
	`, goalID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum reservations: %w", err)
	}
	return total, nil
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var (
		r             model.Reservation
		transactionID sql.NullString
		updatedAt     sql.NullTime
	)
	err := row.Scan(
		&r.ID,
		&r.OwnerID,
		&r.GoalID,
		&transactionID,
		&r.Note,
		&r.Value,
		&r.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.TransactionID = transactionID.String
	r.UpdatedAt = timePtr(updatedAt)
	return &r, nil
}
