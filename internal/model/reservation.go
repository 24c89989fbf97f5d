package model

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/nest-egg/internal/common"
)

// Reservation (reserva) earmarks funds for one goal. The sum of a goal's
// reservations is the goal's accumulated value.
type Reservation struct {
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	ID            string
	OwnerID       string
	GoalID        string
	TransactionID string
	Note          string
	Value         float64
}

// NewReservation validates the value and stamps the creation time.
func NewReservation(ownerID, goalID string, value float64, transactionID, note string, now time.Time) (*Reservation, error) {
	if err := validateReservationValue(value); err != nil {
		return nil, err
	}
	return &Reservation{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		GoalID:        goalID,
		Value:         value,
		TransactionID: transactionID,
		Note:          note,
		CreatedAt:     now,
	}, nil
}

// UpdateValue replaces the reserved value and stamps the update time.
func (r *Reservation) UpdateValue(value float64, now time.Time) error {
	if err := validateReservationValue(value); err != nil {
		return err
	}
	r.Value = value
	at := now
	r.UpdatedAt = &at
	return nil
}

func validateReservationValue(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return common.NewValidationError("reservation value must be a finite number")
	}
	if value <= 0 {
		return common.NewValidationError("reservation value must be positive")
	}
	return nil
}

// GoalUsage (meta uso) records that a transaction drew on a concluded goal's funds.
type GoalUsage struct {
	CreatedAt     time.Time
	ID            string
	GoalID        string
	TransactionID string
	Value         float64
}

// ContributionSuggestions are the periodic amounts that reach a target by its deadline.
type ContributionSuggestions struct {
	Weekly  float64
	Monthly float64
}
