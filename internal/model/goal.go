package model

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/nest-egg/internal/common"
)

// GoalStatus is the lifecycle state of a savings goal.
type GoalStatus string

// Goal statuses.
const (
	GoalActive    GoalStatus = "ACTIVE"
	GoalPaused    GoalStatus = "PAUSED"
	GoalConcluded GoalStatus = "CONCLUDED"
	GoalCancelled GoalStatus = "CANCELLED"
)

// ConclusionOrigin records how a goal reached its conclusion.
type ConclusionOrigin string

// Conclusion origins. An AUTO conclusion reverts when the accumulated value
// drops below target again; a MANUAL one never does.
const (
	ConclusionNone   ConclusionOrigin = ""
	ConclusionAuto   ConclusionOrigin = "AUTO"
	ConclusionManual ConclusionOrigin = "MANUAL"
)

// Goal (meta) is a savings target. CurrentValue caches the sum of the goal's
// reservations and is only changed through UpdateCurrentValue.
type Goal struct {
	CreatedAt        time.Time
	Deadline         time.Time
	ConcludedAt      *time.Time
	FinalizedAt      *time.Time
	ID               string
	OwnerID          string
	Name             string
	ProfileID        string
	Status           GoalStatus
	ConclusionOrigin ConclusionOrigin
	TargetValue      float64
	CurrentValue     float64
}

// NewGoal validates the fields and returns an ACTIVE goal with nothing saved yet.
func NewGoal(ownerID, name string, target float64, deadline time.Time, profileID string, now time.Time) (*Goal, error) {
	if err := validateGoalFields(name, target, deadline, now); err != nil {
		return nil, err
	}

	return &Goal{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(name),
		TargetValue: target,
		Deadline:    deadline,
		ProfileID:   profileID,
		Status:      GoalActive,
		CreatedAt:   now,
	}, nil
}

func validateGoalFields(name string, target float64, deadline, now time.Time) error {
	if strings.TrimSpace(name) == "" {
		return common.NewValidationError("goal name is required")
	}
	if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return common.NewValidationError("goal target value must be greater than zero")
	}
	if DaysBetween(now, deadline) <= 0 {
		return common.NewValidationError("goal deadline must be in the future")
	}
	return nil
}

// IsConcluded reports whether the goal has a conclusion date.
func (g *Goal) IsConcluded() bool {
	return g.ConcludedAt != nil
}

// IsFinalized reports whether the goal's balance has been released.
func (g *Goal) IsFinalized() bool {
	return g.FinalizedAt != nil
}

// Progress is the accumulated share of the target, as a percentage with two decimals.
func (g *Goal) Progress() float64 {
	if g.TargetValue <= 0 {
		return 0
	}
	return Round2(g.CurrentValue / g.TargetValue * 100)
}

// UpdateCurrentValue replaces the cached accumulated value and re-runs the conclusion check.
func (g *Goal) UpdateCurrentValue(value float64, now time.Time) error {
	if value < 0 {
		return common.NewValidationError("goal current value cannot be negative")
	}
	g.CurrentValue = value
	g.refreshConclusion(now)
	return nil
}

// refreshConclusion runs the auto-check. Only ACTIVE goals auto-conclude and
// only AUTO conclusions that were never finalized revert. PAUSED and CANCELLED
// goals hold their state whatever the value.
func (g *Goal) refreshConclusion(now time.Time) {
	switch g.Status {
	case GoalActive:
		if g.CurrentValue >= g.TargetValue {
			at := now
			g.ConcludedAt = &at
			g.ConclusionOrigin = ConclusionAuto
			g.Status = GoalConcluded
		}
	case GoalConcluded:
		if g.CurrentValue < g.TargetValue && g.ConclusionOrigin == ConclusionAuto && !g.IsFinalized() {
			g.ConcludedAt = nil
			g.ConclusionOrigin = ConclusionNone
			g.Status = GoalActive
		}
	}
}

// Edit changes name, target and deadline. Concluded goals cannot be edited.
func (g *Goal) Edit(name string, target float64, deadline, now time.Time) error {
	if g.IsConcluded() {
		return common.NewValidationError("a concluded goal cannot be edited")
	}
	if err := validateGoalFields(name, target, deadline, now); err != nil {
		return err
	}
	g.Name = strings.TrimSpace(name)
	g.TargetValue = target
	g.Deadline = deadline
	g.refreshConclusion(now)
	return nil
}

// Pause moves an ACTIVE goal to PAUSED.
func (g *Goal) Pause() error {
	switch {
	case g.IsConcluded():
		return common.NewValidationError("a concluded goal cannot be paused")
	case g.Status == GoalPaused:
		return common.NewValidationError("goal is already paused")
	case g.Status != GoalActive:
		return common.NewValidationError("only active goals can be paused")
	}
	g.Status = GoalPaused
	return nil
}

// Resume moves a PAUSED goal back to ACTIVE and runs the auto-check, so a goal
// that was filled while paused concludes on resume.
func (g *Goal) Resume(now time.Time) error {
	if g.IsConcluded() {
		return common.NewValidationError("a concluded goal cannot be resumed")
	}
	if g.Status != GoalPaused {
		return common.NewValidationError("only paused goals can be resumed")
	}
	g.Status = GoalActive
	g.refreshConclusion(now)
	return nil
}

// CanReserve reports the guard violation, if any, that blocks new reservations.
func (g *Goal) CanReserve() error {
	switch {
	case g.IsConcluded():
		return common.NewValidationError("a concluded goal cannot receive new reservations")
	case g.Status == GoalCancelled:
		return common.NewValidationError("a cancelled goal cannot receive new reservations")
	}
	return nil
}

// CanCancel reports the guard violation, if any, that blocks cancellation.
func (g *Goal) CanCancel() error {
	switch {
	case g.IsConcluded():
		return common.NewValidationError("a concluded goal cannot be cancelled")
	case g.Status == GoalCancelled:
		return common.NewValidationError("goal is already cancelled")
	}
	return nil
}

// Cancel marks the goal CANCELLED. Fund disposition is handled by the caller.
func (g *Goal) Cancel() error {
	if err := g.CanCancel(); err != nil {
		return err
	}
	g.Status = GoalCancelled
	return nil
}

// ConcludeManually concludes the goal regardless of its accumulated value.
func (g *Goal) ConcludeManually(now time.Time) error {
	if g.IsConcluded() {
		return common.NewValidationError("goal is already concluded")
	}
	if g.Status == GoalCancelled {
		return common.NewValidationError("a cancelled goal cannot be concluded")
	}
	at := now
	g.ConcludedAt = &at
	g.ConclusionOrigin = ConclusionManual
	g.Status = GoalConcluded
	return nil
}

// CanDrawFunds reports the guard violation, if any, that blocks usage or release.
func (g *Goal) CanDrawFunds() error {
	if g.Status == GoalCancelled {
		return common.NewValidationError("a cancelled goal's funds cannot be used")
	}
	if !g.IsConcluded() {
		return common.NewValidationError("goal must be concluded before its funds are used")
	}
	if g.IsFinalized() {
		return common.NewValidationError("goal is already finalized")
	}
	return nil
}

// Finalize closes the goal's balance bookkeeping. It is terminal.
func (g *Goal) Finalize(now time.Time) error {
	if err := g.CanDrawFunds(); err != nil {
		return err
	}
	at := now
	g.FinalizedAt = &at
	return nil
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DaysBetween counts calendar days from from's date to to's date.
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
