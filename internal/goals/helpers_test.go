package goals

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/model"
	"github.com/Veraticus/nest-egg/internal/testutil"
)

const owner = testutil.DefaultOwner

func newTestService(t *testing.T) (*Service, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc, err := NewWithConfig(DepsFrom(db.Storage), Config{Now: testutil.Clock})
	require.NoError(t, err)
	return svc, db
}

func daysFromNow(days int) string {
	return testutil.FixedNow.AddDate(0, 0, days).Format("2006-01-02")
}

func mustCreateGoal(t *testing.T, svc *Service, name, target string) *model.Goal {
	t.Helper()
	result, err := svc.CreateGoal(context.Background(), owner, GoalInput{
		Name:        name,
		TargetValue: target,
		Deadline:    daysFromNow(90),
	})
	require.NoError(t, err)
	return result.Goal
}

func mustReserve(t *testing.T, svc *Service, goalID string, value float64) *ReservationResult {
	t.Helper()
	result, err := svc.CreateReservation(context.Background(), ReservationInput{
		OwnerID: owner,
		GoalID:  goalID,
		Value:   value,
	})
	require.NoError(t, err)
	return result
}

func requireKind(t *testing.T, err error, kind common.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, common.Kind(err), "unexpected error kind for %v", err)
}

func expenseAt(db *testutil.TestDB, ownerID string, value float64) *model.Transaction {
	return db.MustAddTransaction(ownerID, value, model.KindExpense, testutil.FixedNow.Add(-24*time.Hour), "", "")
}
