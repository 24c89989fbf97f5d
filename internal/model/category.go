package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/nest-egg/internal/common"
)

// Category labels what a transaction was for. Kind matches the transaction kinds.
type Category struct {
	CreatedAt time.Time
	ID        string
	OwnerID   string
	Name      string
	Kind      TransactionKind
}

// NewCategory validates the name and kind.
func NewCategory(ownerID, name string, kind TransactionKind, now time.Time) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("category name is required")
	}
	if kind != KindIncome && kind != KindExpense {
		return nil, common.NewValidationError("category kind must be INCOME or EXPENSE, got %q", kind)
	}
	return &Category{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		Kind:      kind,
		CreatedAt: now,
	}, nil
}

// Profile is the person or household a transaction or goal is attributed to.
type Profile struct {
	CreatedAt time.Time
	ID        string
	OwnerID   string
	Name      string
}

// NewProfile validates the name.
func NewProfile(ownerID, name string, now time.Time) (*Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("profile name is required")
	}
	return &Profile{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
	}, nil
}

// CSVMapping names the columns of a statement layout so it can be reused.
type CSVMapping struct {
	CreatedAt         time.Time
	ID                string
	OwnerID           string
	Name              string
	DateColumn        string
	ValueColumn       string
	DescriptionColumn string
}

// NewCSVMapping requires a name and three distinct, non-empty columns.
func NewCSVMapping(ownerID, name, dateColumn, valueColumn, descriptionColumn string, now time.Time) (*CSVMapping, error) {
	m := &CSVMapping{
		ID:                uuid.NewString(),
		OwnerID:           ownerID,
		Name:              strings.TrimSpace(name),
		DateColumn:        strings.TrimSpace(dateColumn),
		ValueColumn:       strings.TrimSpace(valueColumn),
		DescriptionColumn: strings.TrimSpace(descriptionColumn),
		CreatedAt:         now,
	}
	if m.Name == "" {
		return nil, common.NewValidationError("mapping name is required")
	}
	if m.DateColumn == "" || m.ValueColumn == "" || m.DescriptionColumn == "" {
		return nil, common.NewValidationError("date, value and description columns are required")
	}
	if m.DateColumn == m.ValueColumn || m.DateColumn == m.DescriptionColumn || m.ValueColumn == m.DescriptionColumn {
		return nil, common.NewValidationError("each mapped column must be distinct")
	}
	return m, nil
}
