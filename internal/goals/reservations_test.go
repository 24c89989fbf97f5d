package goals

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/model"
	"github.com/Veraticus/nest-egg/internal/service"
)

func TestCreateReservationAccumulates(t *testing.T) {
	svc, db := newTestService(t)
	goal := mustCreateGoal(t, svc, "Trip", "1000")

	first := mustReserve(t, svc, goal.ID, 600)
	assert.False(t, first.JustConcluded)
	assert.Empty(t, first.Message)
	assert.InDelta(t, 600, first.Goal.CurrentValue, 0.001)
	assert.Equal(t, model.GoalActive, first.Goal.Status)

	second := mustReserve(t, svc, goal.ID, 400)
	assert.True(t, second.JustConcluded)
	assert.Equal(t, ConcludedMessage, second.Message)
	assert.Equal(t, model.GoalConcluded, second.Goal.Status)
	assert.Equal(t, model.ConclusionAuto, second.Goal.ConclusionOrigin)

	stored := db.MustGetGoal(goal.ID)
	assert.InDelta(t, db.MustReservationTotal(goal.ID), stored.CurrentValue, 0.001)
	assert.True(t, stored.IsConcluded())
}

func TestCreateReservationKeepsTransactionAndNote(t *testing.T) {
	svc, db := newTestService(t)
	goal := mustCreateGoal(t, svc, "Trip", "1000")
	txn := db.MustAddTransaction(owner, 250, model.KindIncome, goal.CreatedAt, "", "")

	result, err := svc.CreateReservation(context.Background(), ReservationInput{
		OwnerID:       owner,
		GoalID:        goal.ID,
		TransactionID: txn.ID,
		Note:          "bonus",
		Value:         250,
	})
	require.NoError(t, err)

	stored, err := db.Storage.GetReservationByID(context.Background(), result.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, stored.TransactionID)
	assert.Equal(t, "bonus", stored.Note)
}

func TestCreateReservationGuards(t *testing.T) {
	svc, db := newTestService(t)
	goal := mustCreateGoal(t, svc, "Trip", "1000")
	foreign := db.MustAddGoal("someone-else", "Theirs", 500, goal.Deadline)
	ctx := context.Background()

	_, err := svc.CreateReservation(ctx, ReservationInput{OwnerID: owner, GoalID: "missing", Value: 10})
	requireKind(t, err, common.KindValidation)

	_, err = svc.CreateReservation(ctx, ReservationInput{OwnerID: owner, GoalID: foreign.ID, Value: 10})
	requireKind(t, err, common.KindPermission)

	for _, value := range []float64{0, -3} {
		_, err = svc.CreateReservation(ctx, ReservationInput{OwnerID: owner, GoalID: goal.ID, Value: value})
		requireKind(t, err, common.KindValidation)
	}
	assert.Zero(t, db.MustReservationTotal(goal.ID))
}

func TestCreateReservationChecksTransaction(t *testing.T) {
	svc, db := newTestService(t)
	goal := mustCreateGoal(t, svc, "Trip", "1000")
	theirs := db.MustAddTransaction("someone-else", 80, model.KindIncome, goal.CreatedAt, "", "")
	ctx := context.Background()

	_, err := svc.CreateReservation(ctx, ReservationInput{OwnerID: owner, GoalID: goal.ID, TransactionID: "missing", Value: 10})
	requireKind(t, err, common.KindValidation)

	_, err = svc.CreateReservation(ctx, ReservationInput{OwnerID: owner, GoalID: goal.ID, TransactionID: theirs.ID, Value: 10})
	requireKind(t, err, common.KindPermission)

	assert.Zero(t, db.MustReservationTotal(goal.ID))
}

func TestCreateReservationOnConcludedGoalPersistsNothing(t *testing.T) {
	svc, db := newTestService(t)
	goal := mustCreateGoal(t, svc, "Trip", "1000")
	mustReserve(t, svc, goal.ID, 1000)

	_, err := svc.CreateReservation(context.Background(), ReservationInput{OwnerID: owner, GoalID: goal.ID, Value: 50})
	requireKind(t, err, common.KindValidation)

	reservations, err := db.Storage.GetReservationsByGoal(context.Background(), goal.ID)
	require.NoError(t, err)
	assert.Len(t, reservations, 1)
	assert.InDelta(t, 1000, db.MustGetGoal(goal.ID).CurrentValue, 0.001)
}

func TestUpdateReservationRecomputes(t *testing.T) {
	svc, db := newTestService(t)
	goal := mustCreateGoal(t, svc, "Trip", "1000")
	keep := mustReserve(t, svc, goal.ID, 300)
	ctx := context.Background()

	note := "raised"
	result, err := svc.UpdateReservation(ctx, owner, keep.Reservation.ID, 1200, &note)
	require.NoError(t, err)
	assert.True(t, result.JustConcluded)
	assert.Equal(t, "raised", result.Reservation.Note)
	require.NotNil(t, result.Reservation.UpdatedAt)

	result, err = svc.UpdateReservation(ctx, owner, keep.Reservation.ID, 200, nil)
	require.NoError(t, err)
	assert.False(t, result.JustConcluded)
	assert.Equal(t, model.GoalActive, result.Goal.Status)
	assert.Nil(t, result.Goal.ConcludedAt)
	assert.Equal(t, "raised", result.Reservation.Note)

	stored := db.MustGetGoal(goal.ID)
	assert.InDelta(t, 200, stored.CurrentValue, 0.001)
}

func TestUpdateReservationErrors(t *testing.T) {
	svc, _ := newTestService(t)
	goal := mustCreateGoal(t, svc, "Trip", "1000")
	r := mustReserve(t, svc, goal.ID, 300)
	ctx := context.Background()

	_, err := svc.UpdateReservation(ctx, owner, "missing", 10, nil)
	requireKind(t, err, common.KindNotFound)

	_, err = svc.UpdateReservation(ctx, "intruder", r.Reservation.ID, 10, nil)
	requireKind(t, err, common.KindPermission)

	_, err = svc.UpdateReservation(ctx, owner, r.Reservation.ID, 0, nil)
	requireKind(t, err, common.KindValidation)
}

func TestDeleteReservationRevertsAutoConclusion(t *testing.T) {
	svc, db := newTestService(t)
	goal := mustCreateGoal(t, svc, "Trip", "1000")
	mustReserve(t, svc, goal.ID, 600)
	crossing := mustReserve(t, svc, goal.ID, 400)
	require.True(t, crossing.Goal.IsConcluded())

	updated, err := svc.DeleteReservation(context.Background(), owner, crossing.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GoalActive, updated.Status)
	assert.Nil(t, updated.ConcludedAt)
	assert.Equal(t, model.ConclusionNone, updated.ConclusionOrigin)
	assert.InDelta(t, 600, db.MustGetGoal(goal.ID).CurrentValue, 0.001)
}

func TestDeleteReservationKeepsManualConclusion(t *testing.T) {
	svc, _ := newTestService(t)
	goal := mustCreateGoal(t, svc, "Trip", "1000")
	r := mustReserve(t, svc, goal.ID, 200)
	ctx := context.Background()

	_, err := svc.ConcludeGoal(ctx, owner, goal.ID)
	require.NoError(t, err)

	updated, err := svc.DeleteReservation(ctx, owner, r.Reservation.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsConcluded())
	assert.Equal(t, model.GoalConcluded, updated.Status)
	assert.Zero(t, updated.CurrentValue)
}

func TestDeleteReservationErrors(t *testing.T) {
	svc, _ := newTestService(t)
	goal := mustCreateGoal(t, svc, "Trip", "1000")
	r := mustReserve(t, svc, goal.ID, 200)
	ctx := context.Background()

	_, err := svc.DeleteReservation(ctx, owner, "missing")
	requireKind(t, err, common.KindNotFound)

	_, err = svc.DeleteReservation(ctx, "intruder", r.Reservation.ID)
	requireKind(t, err, common.KindPermission)
}

func TestListAvailableGoals(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	empty, err := svc.ListAvailableGoals(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, empty.Goals)
	assert.Equal(t, NoGoalsAvailable, empty.EmptyMessage)

	open := mustCreateGoal(t, svc, "Open", "1000")
	done := mustCreateGoal(t, svc, "Done", "100")
	mustReserve(t, svc, done.ID, 100)
	dropped := mustCreateGoal(t, svc, "Dropped", "500")
	_, err = svc.CancelGoal(ctx, owner, dropped.ID, FundsKeep, "")
	require.NoError(t, err)

	available, err := svc.ListAvailableGoals(ctx, owner)
	require.NoError(t, err)
	require.Len(t, available.Goals, 1)
	assert.Equal(t, open.ID, available.Goals[0].ID)
	assert.Empty(t, available.EmptyMessage)
}

func TestReservationRolledBackWithTransaction(t *testing.T) {
	svc, db := newTestService(t)
	goal := mustCreateGoal(t, svc, "Trip", "1000")
	ctx := context.Background()

	tx, err := db.Storage.BeginTx(ctx)
	require.NoError(t, err)
	txSvc, err := NewWithConfig(DepsFrom(tx), Config{Now: svc.now})
	require.NoError(t, err)

	_, err = txSvc.CreateReservation(ctx, ReservationInput{OwnerID: owner, GoalID: goal.ID, Value: 1000})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	stored := db.MustGetGoal(goal.ID)
	assert.Zero(t, stored.CurrentValue)
	assert.False(t, stored.IsConcluded())
	assert.Zero(t, db.MustReservationTotal(goal.ID))
}

func TestReservationCommittedByWithTransaction(t *testing.T) {
	svc, db := newTestService(t)
	goal := mustCreateGoal(t, svc, "Trip", "1000")

	err := db.WithTransaction(func(tx service.Transaction) error {
		txSvc, err := NewWithConfig(DepsFrom(tx), Config{Now: svc.now})
		if err != nil {
			return err
		}
		_, err = txSvc.CreateReservation(context.Background(), ReservationInput{OwnerID: owner, GoalID: goal.ID, Value: 150})
		return err
	})
	require.NoError(t, err)
	assert.InDelta(t, 150, db.MustGetGoal(goal.ID).CurrentValue, 0.001)
}
