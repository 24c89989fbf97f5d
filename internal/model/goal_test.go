package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/nest-egg/internal/common"
)

var testNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func newTestGoal(t *testing.T, target float64) *Goal {
	t.Helper()
	g, err := NewGoal("owner-1", "Emergency fund", target, testNow.AddDate(0, 0, 90), "", testNow)
	require.NoError(t, err)
	return g
}

func TestNewGoal(t *testing.T) {
	tests := []struct {
		deadline time.Time
		name     string
		goalName string
		errMsg   string
		target   float64
		wantErr  bool
	}{
		{name: "valid goal", goalName: "Trip", target: 1000, deadline: testNow.AddDate(0, 0, 1)},
		{name: "blank name", goalName: "  ", target: 1000, deadline: testNow.AddDate(0, 1, 0), wantErr: true, errMsg: "name"},
		{name: "zero target", goalName: "Trip", target: 0, deadline: testNow.AddDate(0, 1, 0), wantErr: true, errMsg: "greater than zero"},
		{name: "negative target", goalName: "Trip", target: -5, deadline: testNow.AddDate(0, 1, 0), wantErr: true, errMsg: "greater than zero"},
		{name: "deadline today", goalName: "Trip", target: 1000, deadline: testNow.Add(5 * time.Hour), wantErr: true, errMsg: "future"},
		{name: "deadline in past", goalName: "Trip", target: 1000, deadline: testNow.AddDate(0, 0, -3), wantErr: true, errMsg: "future"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGoal("owner-1", tt.goalName, tt.target, tt.deadline, "", testNow)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrValidation)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, g.ID)
			assert.Equal(t, GoalActive, g.Status)
			assert.Zero(t, g.CurrentValue)
			assert.False(t, g.IsConcluded())
		})
	}
}

func TestGoalAutoConclusionAndRevert(t *testing.T) {
	g := newTestGoal(t, 1000)

	require.NoError(t, g.UpdateCurrentValue(600, testNow))
	assert.False(t, g.IsConcluded())
	assert.Equal(t, 60.0, g.Progress())

	require.NoError(t, g.UpdateCurrentValue(1000, testNow))
	assert.True(t, g.IsConcluded())
	assert.Equal(t, GoalConcluded, g.Status)
	assert.Equal(t, ConclusionAuto, g.ConclusionOrigin)
	concludedAt := *g.ConcludedAt

	// Going further over target keeps the original conclusion date.
	require.NoError(t, g.UpdateCurrentValue(1200, testNow.Add(time.Hour)))
	assert.Equal(t, concludedAt, *g.ConcludedAt)

	require.NoError(t, g.UpdateCurrentValue(900, testNow))
	assert.False(t, g.IsConcluded())
	assert.Equal(t, GoalActive, g.Status)
	assert.Equal(t, ConclusionNone, g.ConclusionOrigin)
}

func TestPausedGoalConcludesOnResume(t *testing.T) {
	g := newTestGoal(t, 100)
	require.NoError(t, g.Pause())

	require.NoError(t, g.UpdateCurrentValue(100, testNow))
	assert.Equal(t, GoalPaused, g.Status)
	assert.False(t, g.IsConcluded())

	require.NoError(t, g.Resume(testNow))
	assert.Equal(t, GoalConcluded, g.Status)
	assert.Equal(t, ConclusionAuto, g.ConclusionOrigin)
}

func TestPausedGoalStaysPausedWhenEmptied(t *testing.T) {
	g := newTestGoal(t, 100)
	require.NoError(t, g.Pause())
	require.NoError(t, g.UpdateCurrentValue(100, testNow))
	require.NoError(t, g.UpdateCurrentValue(0, testNow))

	assert.Equal(t, GoalPaused, g.Status)
	assert.False(t, g.IsConcluded())
}

func TestCancelledGoalNeverConcludes(t *testing.T) {
	g := newTestGoal(t, 100)
	require.NoError(t, g.Cancel())

	require.NoError(t, g.UpdateCurrentValue(150, testNow))
	assert.Equal(t, GoalCancelled, g.Status)
	assert.False(t, g.IsConcluded())
	assert.ErrorIs(t, g.CanReserve(), common.ErrValidation)
	assert.ErrorIs(t, g.CanDrawFunds(), common.ErrValidation)
	assert.ErrorIs(t, g.Finalize(testNow), common.ErrValidation)
}

func TestGoalCanReserve(t *testing.T) {
	g := newTestGoal(t, 100)
	assert.NoError(t, g.CanReserve())

	require.NoError(t, g.Pause())
	assert.NoError(t, g.CanReserve())

	require.NoError(t, g.ConcludeManually(testNow))
	assert.ErrorIs(t, g.CanReserve(), common.ErrValidation)
}

func TestGoalManualConclusionNeverReverts(t *testing.T) {
	g := newTestGoal(t, 1000)
	require.NoError(t, g.UpdateCurrentValue(200, testNow))
	require.NoError(t, g.ConcludeManually(testNow))

	require.NoError(t, g.UpdateCurrentValue(0, testNow))
	assert.True(t, g.IsConcluded())
	assert.Equal(t, GoalConcluded, g.Status)
	assert.Equal(t, ConclusionManual, g.ConclusionOrigin)

	err := g.ConcludeManually(testNow)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "already concluded")
}

func TestGoalFinalizedNeverReverts(t *testing.T) {
	g := newTestGoal(t, 500)
	require.NoError(t, g.UpdateCurrentValue(500, testNow))
	require.NoError(t, g.Finalize(testNow))

	require.NoError(t, g.UpdateCurrentValue(100, testNow))
	assert.True(t, g.IsConcluded())
	assert.True(t, g.IsFinalized())

	err := g.Finalize(testNow)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "already finalized")
}

func TestGoalUpdateCurrentValueRejectsNegative(t *testing.T) {
	g := newTestGoal(t, 500)
	assert.ErrorIs(t, g.UpdateCurrentValue(-1, testNow), common.ErrValidation)
	assert.Zero(t, g.CurrentValue)
}

func TestGoalTransitions(t *testing.T) {
	tests := []struct {
		setup   func(g *Goal)
		apply   func(g *Goal) error
		name    string
		want    GoalStatus
		wantErr bool
	}{
		{name: "pause active", apply: (*Goal).Pause, want: GoalPaused},
		{name: "pause paused", setup: func(g *Goal) { g.Status = GoalPaused }, apply: (*Goal).Pause, wantErr: true},
		{name: "pause cancelled", setup: func(g *Goal) { g.Status = GoalCancelled }, apply: (*Goal).Pause, wantErr: true},
		{name: "resume paused", setup: func(g *Goal) { g.Status = GoalPaused }, apply: func(g *Goal) error { return g.Resume(testNow) }, want: GoalActive},
		{name: "resume active", apply: func(g *Goal) error { return g.Resume(testNow) }, wantErr: true},
		{name: "cancel active", apply: (*Goal).Cancel, want: GoalCancelled},
		{name: "cancel paused", setup: func(g *Goal) { g.Status = GoalPaused }, apply: (*Goal).Cancel, want: GoalCancelled},
		{name: "cancel cancelled", setup: func(g *Goal) { g.Status = GoalCancelled }, apply: (*Goal).Cancel, wantErr: true},
		{
			name:    "cancel concluded",
			setup:   func(g *Goal) { _ = g.UpdateCurrentValue(g.TargetValue, testNow) },
			apply:   (*Goal).Cancel,
			wantErr: true,
		},
		{
			name:    "pause concluded",
			setup:   func(g *Goal) { _ = g.UpdateCurrentValue(g.TargetValue, testNow) },
			apply:   (*Goal).Pause,
			wantErr: true,
		},
		{
			name:    "conclude cancelled",
			setup:   func(g *Goal) { g.Status = GoalCancelled },
			apply:   func(g *Goal) error { return g.ConcludeManually(testNow) },
			wantErr: true,
		},
		{
			name:  "conclude paused",
			setup: func(g *Goal) { g.Status = GoalPaused },
			apply: func(g *Goal) error { return g.ConcludeManually(testNow) },
			want:  GoalConcluded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGoal(t, 1000)
			if tt.setup != nil {
				tt.setup(g)
			}
			before := g.Status
			err := tt.apply(g)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
				assert.Equal(t, before, g.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Status)
		})
	}
}

func TestGoalEdit(t *testing.T) {
	g := newTestGoal(t, 1000)
	require.NoError(t, g.UpdateCurrentValue(500, testNow))

	require.NoError(t, g.Edit("Smaller fund", 500, testNow.AddDate(0, 2, 0), testNow))
	assert.Equal(t, "Smaller fund", g.Name)
	assert.True(t, g.IsConcluded(), "lowering the target to the saved amount concludes the goal")

	err := g.Edit("Other", 2000, testNow.AddDate(0, 2, 0), testNow)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "Smaller fund", g.Name)
}

func TestGoalDrawFundsGuard(t *testing.T) {
	g := newTestGoal(t, 1000)
	assert.ErrorIs(t, g.CanDrawFunds(), common.ErrValidation)

	require.NoError(t, g.UpdateCurrentValue(1000, testNow))
	assert.NoError(t, g.CanDrawFunds())
}

func TestDaysBetween(t *testing.T) {
	from := time.Date(2026, 1, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(from, time.Date(2026, 2, 1, 0, 1, 0, 0, time.UTC)))
	assert.Equal(t, 0, DaysBetween(from, from.Add(-time.Hour)))
	assert.Equal(t, -31, DaysBetween(from, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 33.33, Round2(100.0/3))
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, 400.0, Round2(400))
}
