package goals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/model"
)

// GoalInput carries goal fields as entered by the user.
type GoalInput struct {
	Name        string
	TargetValue string
	Deadline    string
	ProfileID   string
}

// CreateGoalResult is the new goal plus its contribution plan.
type CreateGoalResult struct {
	Goal        *model.Goal
	Suggestions model.ContributionSuggestions
}

// FundDisposition decides what happens to a cancelled goal's accumulated value.
type FundDisposition string

// Fund dispositions.
const (
	FundsKeep       FundDisposition = "keep"
	FundsRelease    FundDisposition = "release"
	FundsReallocate FundDisposition = "reallocate"
)

// ParseFundDisposition accepts keep, release or reallocate in any case.
func ParseFundDisposition(s string) (FundDisposition, error) {
	switch d := FundDisposition(strings.ToLower(strings.TrimSpace(s))); d {
	case FundsKeep, FundsRelease, FundsReallocate:
		return d, nil
	default:
		return "", common.NewValidationError("fund disposition must be keep, release or reallocate, got %q", s)
	}
}

// CancelResult describes a cancellation. Destination and Transferred are set
// only for reallocation.
type CancelResult struct {
	Goal          *model.Goal
	Destination   *model.Goal
	Disposition   FundDisposition
	Message       string
	Transferred   float64
	JustConcluded bool
}

// UsageResult is returned by RegisterUsage.
type UsageResult struct {
	Goal       *model.Goal
	Usage      *model.GoalUsage
	AmountUsed float64
}

// ReleaseResult is the informational breakdown of a released balance.
type ReleaseResult struct {
	Goal       *model.Goal
	TotalValue float64
	TotalUsed  float64
	Remaining  float64
}

// GoalDetail is a goal with its ledgers, for display.
type GoalDetail struct {
	Goal         *model.Goal
	Reservations []model.Reservation
	Usages       []model.GoalUsage
	Progress     float64
	TotalUsed    float64
}

// CreateGoal validates the input, computes contribution suggestions and stores an ACTIVE goal.
func (s *Service) CreateGoal(ctx context.Context, ownerID string, in GoalInput) (*CreateGoalResult, error) {
	name, target, deadline, err := parseGoalInput(in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	suggestions, err := Suggest(target, deadline, now)
	if err != nil {
		return nil, err
	}

	goal, err := model.NewGoal(ownerID, name, target, deadline, strings.TrimSpace(in.ProfileID), now)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Goals.AddGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to save goal: %w", err)
	}

	slog.Info("Created goal",
		"goal_id", goal.ID,
		"target", goal.TargetValue,
		"deadline", goal.Deadline.Format("2006-01-02"))

	return &CreateGoalResult{Goal: goal, Suggestions: suggestions}, nil
}

// EditGoal changes name, target and deadline of a goal that is not concluded.
func (s *Service) EditGoal(ctx context.Context, ownerID, goalID string, in GoalInput) (*model.Goal, error) {
	goal, err := s.loadGoal(ctx, ownerID, goalID)
	if err != nil {
		return nil, err
	}
	if goal.IsConcluded() {
		return nil, common.NewValidationError("a concluded goal cannot be edited")
	}

	name, target, deadline, err := parseGoalInput(in)
	if err != nil {
		return nil, err
	}
	if err := goal.Edit(name, target, deadline, s.now()); err != nil {
		return nil, err
	}
	if err := s.deps.Goals.UpdateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	slog.Info("Edited goal", "goal_id", goal.ID, "target", goal.TargetValue)
	return goal, nil
}

// PauseGoal moves an ACTIVE goal to PAUSED.
func (s *Service) PauseGoal(ctx context.Context, ownerID, goalID string) (*model.Goal, error) {
	return s.transition(ctx, ownerID, goalID, "Paused goal", (*model.Goal).Pause)
}

// ResumeGoal moves a PAUSED goal back to ACTIVE. A goal already at its
// target concludes on resume.
func (s *Service) ResumeGoal(ctx context.Context, ownerID, goalID string) (*model.Goal, error) {
	return s.transition(ctx, ownerID, goalID, "Resumed goal", func(g *model.Goal) error {
		return g.Resume(s.now())
	})
}

// ConcludeGoal concludes a goal manually. A manual conclusion never reverts.
func (s *Service) ConcludeGoal(ctx context.Context, ownerID, goalID string) (*model.Goal, error) {
	return s.transition(ctx, ownerID, goalID, "Concluded goal manually", func(g *model.Goal) error {
		return g.ConcludeManually(s.now())
	})
}

func (s *Service) transition(ctx context.Context, ownerID, goalID, logMsg string, apply func(*model.Goal) error) (*model.Goal, error) {
	goal, err := s.loadGoal(ctx, ownerID, goalID)
	if err != nil {
		return nil, err
	}
	if err := apply(goal); err != nil {
		return nil, err
	}
	if err := s.deps.Goals.UpdateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}
	slog.Info(logMsg, "goal_id", goal.ID, "status", goal.Status)
	return goal, nil
}

// CancelGoal cancels a goal that is not concluded and disposes of its funds.
//
// keep leaves the ledger untouched. release deletes the goal's reservations so
// its value drops to zero. reallocate adds the goal's current value to an
// ACTIVE destination goal of the same owner as a new reservation; the origin
// keeps its own ledger.
func (s *Service) CancelGoal(ctx context.Context, ownerID, goalID string, disposition FundDisposition, destinationID string) (*CancelResult, error) {
	goal, err := s.loadGoal(ctx, ownerID, goalID)
	if err != nil {
		return nil, err
	}
	if err := goal.CanCancel(); err != nil {
		return nil, err
	}
	if _, err := ParseFundDisposition(string(disposition)); err != nil {
		return nil, err
	}

	var destination *model.Goal
	if disposition == FundsReallocate {
		if destination, err = s.loadDestination(ctx, goal, destinationID); err != nil {
			return nil, err
		}
	}

	result := &CancelResult{Disposition: disposition}
	switch disposition {
	case FundsRelease:
		if err := s.releaseFunds(ctx, goal); err != nil {
			return nil, err
		}
		if goal, _, err = s.recompute(ctx, goal.ID); err != nil {
			return nil, err
		}
	case FundsReallocate:
		result.Transferred = goal.CurrentValue
		if result.Transferred > 0 {
			note := fmt.Sprintf(reallocationNote, goal.Name)
			transfer, err := model.NewReservation(ownerID, destination.ID, result.Transferred, "", note, s.now())
			if err != nil {
				return nil, err
			}
			if err := s.deps.Reservations.AddReservation(ctx, transfer); err != nil {
				return nil, fmt.Errorf("failed to save reallocation: %w", err)
			}
			if destination, result.JustConcluded, err = s.recompute(ctx, destination.ID); err != nil {
				return nil, err
			}
		}
		result.Destination = destination
		if result.JustConcluded {
			result.Message = ConcludedMessage
		}
	case FundsKeep:
	}

	if err := goal.Cancel(); err != nil {
		return nil, err
	}
	if err := s.deps.Goals.UpdateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}
	result.Goal = goal

	slog.Info("Cancelled goal",
		"goal_id", goal.ID,
		"disposition", disposition,
		"transferred", result.Transferred,
		"destination_id", destinationID)

	return result, nil
}

func (s *Service) loadDestination(ctx context.Context, origin *model.Goal, destinationID string) (*model.Goal, error) {
	if strings.TrimSpace(destinationID) == "" {
		return nil, common.NewValidationError("a destination goal is required to reallocate funds")
	}
	if destinationID == origin.ID {
		return nil, common.NewValidationError("funds cannot be reallocated to the goal being cancelled")
	}
	destination, err := s.deps.Goals.GetGoalByID(ctx, destinationID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewValidationError("destination goal %s not found", destinationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load destination goal: %w", err)
	}
	if destination.OwnerID != origin.OwnerID {
		return nil, common.NewValidationError("destination goal does not belong to this user")
	}
	if destination.Status != model.GoalActive {
		return nil, common.NewValidationError("destination goal must be active")
	}
	return destination, nil
}

func (s *Service) releaseFunds(ctx context.Context, goal *model.Goal) error {
	reservations, err := s.deps.Reservations.GetReservationsByGoal(ctx, goal.ID)
	if err != nil {
		return fmt.Errorf("failed to list reservations: %w", err)
	}
	for _, r := range reservations {
		if err := s.deps.Reservations.DeleteReservation(ctx, r.ID); err != nil {
			return fmt.Errorf("failed to delete reservation %s: %w", r.ID, err)
		}
	}
	return nil
}

// RegisterUsage records that a transaction's full value was spent from a concluded goal.
func (s *Service) RegisterUsage(ctx context.Context, ownerID, goalID, transactionID string) (*UsageResult, error) {
	goal, err := s.loadGoal(ctx, ownerID, goalID)
	if err != nil {
		return nil, err
	}
	if err := goal.CanDrawFunds(); err != nil {
		return nil, err
	}

	txn, err := s.deps.Transactions.GetTransactionByID(ctx, transactionID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewNotFoundError("transaction %s not found", transactionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if txn.OwnerID != ownerID {
		return nil, common.NewPermissionError("transaction %s does not belong to this user", transactionID)
	}

	usage, err := s.deps.Usages.AddGoalUsage(ctx, goal.ID, txn.ID, txn.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to record goal usage: %w", err)
	}

	slog.Info("Registered goal usage", "goal_id", goal.ID, "transaction_id", txn.ID, "value", txn.Value)
	return &UsageResult{Goal: goal, Usage: usage, AmountUsed: txn.Value}, nil
}

// ReleaseBalance finalizes a concluded goal and reports what is left after usage.
// The remaining amount is informational and is not stored.
func (s *Service) ReleaseBalance(ctx context.Context, ownerID, goalID string) (*ReleaseResult, error) {
	goal, err := s.loadGoal(ctx, ownerID, goalID)
	if err != nil {
		return nil, err
	}
	if err := goal.CanDrawFunds(); err != nil {
		return nil, err
	}

	used, err := s.deps.Usages.SumGoalUsage(ctx, goal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum goal usage: %w", err)
	}

	if err := goal.Finalize(s.now()); err != nil {
		return nil, err
	}
	if err := s.deps.Goals.UpdateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	result := &ReleaseResult{
		Goal:       goal,
		TotalValue: goal.CurrentValue,
		TotalUsed:  used,
		Remaining:  goal.CurrentValue - used,
	}
	slog.Info("Released goal balance",
		"goal_id", goal.ID,
		"total", result.TotalValue,
		"used", result.TotalUsed,
		"remaining", result.Remaining)
	return result, nil
}

// ListGoals returns all of the owner's goals ordered by deadline.
func (s *Service) ListGoals(ctx context.Context, ownerID string) ([]model.Goal, error) {
	goals, err := s.deps.Goals.GetGoalsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	if goals == nil {
		goals = []model.Goal{}
	}
	return goals, nil
}

// GetGoal returns a goal with its reservations and usage entries.
func (s *Service) GetGoal(ctx context.Context, ownerID, goalID string) (*GoalDetail, error) {
	goal, err := s.loadGoal(ctx, ownerID, goalID)
	if err != nil {
		return nil, err
	}
	reservations, err := s.deps.Reservations.GetReservationsByGoal(ctx, goal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	usages, err := s.deps.Usages.GetGoalUsages(ctx, goal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goal usages: %w", err)
	}

	detail := &GoalDetail{
		Goal:         goal,
		Reservations: reservations,
		Usages:       usages,
		Progress:     goal.Progress(),
	}
	for _, u := range usages {
		detail.TotalUsed += u.Value
	}
	return detail, nil
}

func (s *Service) loadGoal(ctx context.Context, ownerID, goalID string) (*model.Goal, error) {
	goal, err := s.deps.Goals.GetGoalByID(ctx, goalID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewNotFoundError("goal %s not found", goalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load goal: %w", err)
	}
	if goal.OwnerID != ownerID {
		return nil, common.NewPermissionError("goal %s does not belong to this user", goalID)
	}
	return goal, nil
}

func parseGoalInput(in GoalInput) (string, float64, time.Time, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", 0, time.Time{}, common.NewValidationError("goal name is required")
	}
	target, err := ParseValue(in.TargetValue)
	if err != nil {
		return "", 0, time.Time{}, err
	}
	deadline, err := ParseDeadline(in.Deadline)
	if err != nil {
		return "", 0, time.Time{}, err
	}
	return name, target, deadline, nil
}
