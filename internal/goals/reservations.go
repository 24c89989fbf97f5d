package goals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/model"
)

// Messages returned alongside successful results.
const (
	ConcludedMessage = "Goal concluded! Congratulations, you reached your target."
	NoGoalsAvailable = "No goals available for reservations. Create a new goal to start saving."
	reallocationNote = "Reallocated from goal %q"
)

// ReservationInput describes a new reservation.
type ReservationInput struct {
	OwnerID       string
	GoalID        string
	TransactionID string
	Note          string
	Value         float64
}

// ReservationResult is returned by reservation create and update.
// JustConcluded reports that this mutation pushed the goal over its target.
type ReservationResult struct {
	Reservation   *model.Reservation
	Goal          *model.Goal
	Message       string
	JustConcluded bool
}

// AvailableGoals lists goals that still accept reservations. EmptyMessage is
// set when there are none.
type AvailableGoals struct {
	EmptyMessage string
	Goals        []model.Goal
}

// CreateReservation earmarks funds for a goal and recomputes it.
// A missing goal is a validation failure here, not a not-found one.
func (s *Service) CreateReservation(ctx context.Context, in ReservationInput) (*ReservationResult, error) {
	goal, err := s.deps.Goals.GetGoalByID(ctx, in.GoalID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewValidationError("goal %s not found for this reservation", in.GoalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load goal: %w", err)
	}
	if goal.OwnerID != in.OwnerID {
		return nil, common.NewPermissionError("goal %s does not belong to this user", in.GoalID)
	}
	if err := goal.CanReserve(); err != nil {
		return nil, err
	}
	if err := s.checkTransaction(ctx, in.OwnerID, in.TransactionID); err != nil {
		return nil, err
	}

	reservation, err := model.NewReservation(in.OwnerID, in.GoalID, in.Value, in.TransactionID, in.Note, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.deps.Reservations.AddReservation(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to save reservation: %w", err)
	}

	updated, justConcluded, err := s.recompute(ctx, goal.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("Created reservation",
		"reservation_id", reservation.ID,
		"goal_id", goal.ID,
		"value", reservation.Value,
		"goal_value", updated.CurrentValue)

	return newReservationResult(reservation, updated, justConcluded), nil
}

// UpdateReservation changes a reservation's value and, when note is non-nil, its note.
func (s *Service) UpdateReservation(ctx context.Context, ownerID, reservationID string, value float64, note *string) (*ReservationResult, error) {
	reservation, err := s.loadReservation(ctx, ownerID, reservationID)
	if err != nil {
		return nil, err
	}
	if err := reservation.UpdateValue(value, s.now()); err != nil {
		return nil, err
	}
	if note != nil {
		reservation.Note = *note
	}

	if err := s.deps.Reservations.UpdateReservation(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}

	goal, justConcluded, err := s.recompute(ctx, reservation.GoalID)
	if err != nil {
		return nil, err
	}

	slog.Info("Updated reservation",
		"reservation_id", reservation.ID,
		"goal_id", goal.ID,
		"value", reservation.Value)

	return newReservationResult(reservation, goal, justConcluded), nil
}

// DeleteReservation removes a reservation and returns the recomputed goal.
// An auto-concluded goal that drops below target reverts to ACTIVE.
func (s *Service) DeleteReservation(ctx context.Context, ownerID, reservationID string) (*model.Goal, error) {
	reservation, err := s.loadReservation(ctx, ownerID, reservationID)
	if err != nil {
		return nil, err
	}

	if err := s.deps.Reservations.DeleteReservation(ctx, reservation.ID); err != nil {
		return nil, fmt.Errorf("failed to delete reservation: %w", err)
	}

	goal, _, err := s.recompute(ctx, reservation.GoalID)
	if err != nil {
		return nil, err
	}

	slog.Info("Deleted reservation",
		"reservation_id", reservation.ID,
		"goal_id", goal.ID,
		"goal_value", goal.CurrentValue,
		"concluded", goal.IsConcluded())

	return goal, nil
}

// ListAvailableGoals returns the owner's goals that still accept reservations, by deadline.
func (s *Service) ListAvailableGoals(ctx context.Context, ownerID string) (*AvailableGoals, error) {
	all, err := s.deps.Goals.GetGoalsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	result := &AvailableGoals{Goals: []model.Goal{}}
	for _, g := range all {
		if g.CanReserve() == nil {
			result.Goals = append(result.Goals, g)
		}
	}
	if len(result.Goals) == 0 {
		result.EmptyMessage = NoGoalsAvailable
	}
	return result, nil
}

// recompute reloads the goal, sums its ledger and persists the derived value.
// It reports whether this call moved the goal into the concluded state.
func (s *Service) recompute(ctx context.Context, goalID string) (*model.Goal, bool, error) {
	goal, err := s.deps.Goals.GetGoalByID(ctx, goalID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to reload goal %s: %w", goalID, err)
	}
	total, err := s.deps.Reservations.GetReservationTotalByGoal(ctx, goalID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to sum reservations: %w", err)
	}

	wasConcluded := goal.IsConcluded()
	if err := goal.UpdateCurrentValue(total, s.now()); err != nil {
		return nil, false, err
	}
	if err := s.deps.Goals.UpdateGoal(ctx, goal); err != nil {
		return nil, false, fmt.Errorf("failed to update goal: %w", err)
	}

	justConcluded := !wasConcluded && goal.IsConcluded()
	if justConcluded {
		slog.Info("Goal concluded", "goal_id", goal.ID, "value", goal.CurrentValue, "target", goal.TargetValue)
	}
	return goal, justConcluded, nil
}

func (s *Service) loadReservation(ctx context.Context, ownerID, reservationID string) (*model.Reservation, error) {
	reservation, err := s.deps.Reservations.GetReservationByID(ctx, reservationID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewNotFoundError("reservation %s not found", reservationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	if reservation.OwnerID != ownerID {
		return nil, common.NewPermissionError("reservation %s does not belong to this user", reservationID)
	}
	return reservation, nil
}

// checkTransaction verifies that an optional source transaction exists and
// belongs to the owner.
func (s *Service) checkTransaction(ctx context.Context, ownerID, transactionID string) error {
	if transactionID == "" {
		return nil
	}
	txn, err := s.deps.Transactions.GetTransactionByID(ctx, transactionID)
	if errors.Is(err, common.ErrNotFound) {
		return common.NewValidationError("transaction %s not found for this reservation", transactionID)
	}
	if err != nil {
		return fmt.Errorf("failed to load transaction: %w", err)
	}
	if txn.OwnerID != ownerID {
		return common.NewPermissionError("transaction %s does not belong to this user", transactionID)
	}
	return nil
}

func newReservationResult(r *model.Reservation, g *model.Goal, justConcluded bool) *ReservationResult {
	result := &ReservationResult{Reservation: r, Goal: g, JustConcluded: justConcluded}
	if justConcluded {
		result.Message = ConcludedMessage
	}
	return result
}
