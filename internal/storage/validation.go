// Package storage provides the data persistence layer for nest-egg.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/nest-egg/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidGoal        = errors.New("invalid goal")
	ErrInvalidReservation = errors.New("invalid reservation")
	ErrInvalidMapping     = errors.New("invalid csv mapping")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.OwnerID == "" {
		return fmt.Errorf("%w: missing owner ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Value <= 0 {
		return fmt.Errorf("%w: value must be positive", ErrInvalidTransaction)
	}
	return nil
}

func validateGoal(goal *model.Goal) error {
	if goal == nil {
		return fmt.Errorf("%w: goal", ErrNilParameter)
	}
	if goal.ID == "" || goal.OwnerID == "" {
		return fmt.Errorf("%w: missing ID or owner ID", ErrInvalidGoal)
	}
	if goal.CurrentValue < 0 {
		return fmt.Errorf("%w: current value cannot be negative", ErrInvalidGoal)
	}
	if goal.FinalizedAt != nil && goal.ConcludedAt == nil {
		return fmt.Errorf("%w: finalized goal must be concluded", ErrInvalidGoal)
	}
	return nil
}

func validateReservation(r *model.Reservation) error {
	if r == nil {
		return fmt.Errorf("%w: reservation", ErrNilParameter)
	}
	if r.ID == "" || r.GoalID == "" {
		return fmt.Errorf("%w: missing ID or goal ID", ErrInvalidReservation)
	}
	if r.Value <= 0 {
		return fmt.Errorf("%w: value must be positive", ErrInvalidReservation)
	}
	return nil
}

func validateMapping(m *model.CSVMapping) error {
	if m == nil {
		return fmt.Errorf("%w: mapping", ErrNilParameter)
	}
	if m.ID == "" || m.OwnerID == "" || m.Name == "" {
		return fmt.Errorf("%w: missing ID, owner ID or name", ErrInvalidMapping)
	}
	return nil
}

func validateUsage(goalID, transactionID string) error {
	if err := validateString(goalID, "goalID"); err != nil {
		return err
	}
	return validateString(transactionID, "transactionID")
}

func validateFilter(filter model.TransactionFilter) error {
	if err := validateString(filter.OwnerID, "ownerID"); err != nil {
		return err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, *filter.To, *filter.From)
	}
	return nil
}
