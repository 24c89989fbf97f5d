// Package model defines the core domain models used throughout the application.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/nest-egg/internal/common"
)

// TransactionKind indicates whether money came in or went out.
type TransactionKind string

// Transaction kinds.
const (
	KindIncome  TransactionKind = "INCOME"
	KindExpense TransactionKind = "EXPENSE"
)

// ParseTransactionKind accepts INCOME or EXPENSE in any case.
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch TransactionKind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindIncome:
		return KindIncome, nil
	case KindExpense:
		return KindExpense, nil
	default:
		return "", common.NewValidationError("transaction kind must be INCOME or EXPENSE, got %q", s)
	}
}

// TransactionStatus tracks whether a transaction still sits in the inbox.
type TransactionStatus string

// Transaction statuses.
const (
	StatusPending   TransactionStatus = "PENDING"
	StatusProcessed TransactionStatus = "PROCESSED"
)

// Transaction represents a single financial movement owned by one user.
type Transaction struct {
	Date        time.Time
	ID          string
	OwnerID     string
	Description string
	CategoryID  string
	ProfileID   string
	Kind        TransactionKind
	Status      TransactionStatus
	Value       float64
}

// NewTransaction builds a transaction. It lands in the inbox (PENDING) unless
// both a category and a profile are supplied.
func NewTransaction(ownerID string, value float64, kind TransactionKind, date time.Time, description, categoryID, profileID string) (*Transaction, error) {
	if value <= 0 {
		return nil, common.NewValidationError("transaction value must be greater than zero")
	}
	if kind != KindIncome && kind != KindExpense {
		return nil, common.NewValidationError("transaction kind must be INCOME or EXPENSE, got %q", kind)
	}

	txn := &Transaction{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Value:       value,
		Kind:        kind,
		Date:        date,
		Description: description,
		CategoryID:  categoryID,
		ProfileID:   profileID,
		Status:      StatusPending,
	}
	if txn.CategoryID != "" && txn.ProfileID != "" {
		txn.Status = StatusProcessed
	}
	return txn, nil
}

// Categorize assigns category and profile and marks the transaction processed.
func (t *Transaction) Categorize(categoryID, profileID string) {
	t.CategoryID = categoryID
	t.ProfileID = profileID
	t.Status = StatusProcessed
}

// IsPending reports whether the transaction still needs triage.
func (t *Transaction) IsPending() bool {
	return t.Status == StatusPending
}

// SignedValue is positive for income and negative for expenses.
func (t *Transaction) SignedValue() float64 {
	if t.Kind == KindExpense {
		return -t.Value
	}
	return t.Value
}

// TransactionFilter defines filtering options for transaction queries.
// Zero values mean "no constraint".
type TransactionFilter struct {
	From            *time.Time
	To              *time.Time
	MinValue        *float64
	MaxValue        *float64
	Status          TransactionStatus
	OwnerID         string
	Description     string
	CategoryID      string
	ProfileID       string
	WithoutCategory bool
	WithoutProfile  bool
}

// DashboardStats summarizes processed transactions for one owner.
type DashboardStats struct {
	Balance       float64
	MonthIncome   float64
	MonthExpenses float64
}
