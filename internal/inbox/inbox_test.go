package inbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/model"
	"github.com/Veraticus/nest-egg/internal/testutil"
)

const owner = testutil.DefaultOwner

type fixture struct {
	svc      *Service
	db       *testutil.TestDB
	category model.Category
	profile  *model.Profile
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc, err := NewWithConfig(DepsFrom(db.Storage), Config{Now: testutil.Clock})
	require.NoError(t, err)
	return fixture{
		svc:      svc,
		db:       db,
		category: db.SeedCategories(owner, model.KindExpense, "Groceries")[0],
		profile:  db.MustAddProfile(owner, "Personal"),
	}
}

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 0, 0, 0, 0, time.UTC)
}

func requireKind(t *testing.T, err error, kind common.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, common.Kind(err), "unexpected error kind for %v", err)
}

func TestLaunch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	pending, err := f.svc.Launch(ctx, owner, LaunchInput{Value: 42.5, Kind: model.KindExpense, Date: day(6, 1), Description: " market "})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, pending.Status)
	assert.Equal(t, "market", pending.Description)

	processed, err := f.svc.Launch(ctx, owner, LaunchInput{
		Value:      10,
		Kind:       model.KindExpense,
		Date:       day(6, 2),
		CategoryID: f.category.ID,
		ProfileID:  f.profile.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessed, processed.Status)

	stored, err := f.db.Storage.GetTransactionByID(ctx, processed.ID)
	require.NoError(t, err)
	assert.Equal(t, f.category.ID, stored.CategoryID)
	assert.Equal(t, model.StatusProcessed, stored.Status)
}

func TestLaunchValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	foreign := f.db.MustAddProfile("someone-else", "Theirs")

	tests := []struct {
		name  string
		input LaunchInput
		kind  common.ErrorKind
	}{
		{name: "zero value", input: LaunchInput{Value: 0, Kind: model.KindIncome, Date: day(6, 1)}, kind: common.KindValidation},
		{name: "negative value", input: LaunchInput{Value: -5, Kind: model.KindIncome, Date: day(6, 1)}, kind: common.KindValidation},
		{name: "bad kind", input: LaunchInput{Value: 5, Kind: "TRANSFER", Date: day(6, 1)}, kind: common.KindValidation},
		{name: "missing date", input: LaunchInput{Value: 5, Kind: model.KindIncome}, kind: common.KindValidation},
		{name: "unknown category", input: LaunchInput{Value: 5, Kind: model.KindIncome, Date: day(6, 1), CategoryID: "nope"}, kind: common.KindValidation},
		{name: "foreign profile", input: LaunchInput{Value: 5, Kind: model.KindIncome, Date: day(6, 1), ProfileID: foreign.ID}, kind: common.KindPermission},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Launch(ctx, owner, tt.input)
			requireKind(t, err, tt.kind)
		})
	}

	pending, err := f.svc.ListPending(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	txn := f.db.MustAddTransaction(owner, 80, model.KindExpense, day(6, 3), "", "")

	desc := "pharmacy"
	updated, err := f.svc.Update(ctx, owner, txn.ID, Changes{Description: &desc, CategoryID: &f.category.ID})
	require.NoError(t, err)
	assert.Equal(t, "pharmacy", updated.Description)
	assert.Equal(t, model.StatusPending, updated.Status)

	updated, err = f.svc.Update(ctx, owner, txn.ID, Changes{ProfileID: &f.profile.ID})
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessed, updated.Status)

	stored, err := f.db.Storage.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessed, stored.Status)
	assert.InDelta(t, 80, stored.Value, 0.001)
	assert.True(t, day(6, 3).Equal(stored.Date))

	again := "again"
	_, err = f.svc.Update(ctx, owner, txn.ID, Changes{Description: &again})
	requireKind(t, err, common.KindPermission)
}

func TestUpdateErrors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	foreign := f.db.MustAddTransaction("someone-else", 10, model.KindIncome, day(6, 1), "", "")

	_, err := f.svc.Update(ctx, owner, "missing", Changes{})
	requireKind(t, err, common.KindNotFound)

	_, err = f.svc.Update(ctx, owner, foreign.ID, Changes{})
	requireKind(t, err, common.KindPermission)
}

func TestDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	txn := f.db.MustAddTransaction(owner, 10, model.KindIncome, day(6, 1), "", "")
	foreign := f.db.MustAddTransaction("someone-else", 10, model.KindIncome, day(6, 1), "", "")

	require.NoError(t, f.svc.Delete(ctx, owner, txn.ID))
	_, err := f.db.Storage.GetTransactionByID(ctx, txn.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.NoError(t, f.svc.Delete(ctx, owner, txn.ID))
	assert.NoError(t, f.svc.Delete(ctx, owner, "never-existed"))

	requireKind(t, f.svc.Delete(ctx, owner, foreign.ID), common.KindPermission)
}

func TestCategorizeBatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.db.MustAddTransaction(owner, 10, model.KindExpense, day(6, 1), "", "")
	b := f.db.MustAddTransaction(owner, 20, model.KindExpense, day(6, 2), "", "")
	done := f.db.MustAddTransaction(owner, 30, model.KindExpense, day(6, 3), "old-cat", "old-profile")
	foreign := f.db.MustAddTransaction("someone-else", 40, model.KindExpense, day(6, 4), "", "")

	count, err := f.svc.CategorizeBatch(ctx, owner, []string{a.ID, b.ID, done.ID, foreign.ID, "missing"}, f.category.ID, f.profile.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	pending, err := f.svc.ListPending(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, pending)

	storedDone, err := f.db.Storage.GetTransactionByID(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, "old-cat", storedDone.CategoryID)

	storedForeign, err := f.db.Storage.GetTransactionByID(ctx, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, storedForeign.Status)
}

func TestCategorizeBatchValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.CategorizeBatch(ctx, owner, []string{"x"}, "", f.profile.ID)
	requireKind(t, err, common.KindValidation)

	count, err := f.svc.CategorizeBatch(ctx, owner, nil, f.category.ID, f.profile.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFilter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.db.MustAddTransaction(owner, 10, model.KindExpense, day(5, 1), "", "")
	mid := f.db.MustAddTransaction(owner, 50, model.KindExpense, day(6, 1), "", "")
	f.db.MustAddTransaction(owner, 500, model.KindIncome, day(6, 10), "", "")
	f.db.MustAddTransaction("someone-else", 50, model.KindExpense, day(6, 1), "", "")

	from, to := day(5, 15), day(6, 30)
	minValue, maxValue := 20.0, 100.0
	got, err := f.svc.Filter(ctx, owner, model.TransactionFilter{From: &from, To: &to, MinValue: &minValue, MaxValue: &maxValue, OwnerID: "ignored"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mid.ID, got[0].ID)

	all, err := f.svc.Filter(ctx, owner, model.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFilterRejectsInvertedRanges(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	from, to := day(6, 10), day(6, 1)
	_, err := f.svc.Filter(ctx, owner, model.TransactionFilter{From: &from, To: &to})
	requireKind(t, err, common.KindValidation)

	minValue, maxValue := 100.0, 10.0
	_, err = f.svc.Filter(ctx, owner, model.TransactionFilter{MinValue: &minValue, MaxValue: &maxValue})
	requireKind(t, err, common.KindValidation)
}

func TestDashboardStats(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.db.MustAddTransaction(owner, 1000, model.KindIncome, day(6, 2), "c", "p")
	f.db.MustAddTransaction(owner, 200, model.KindExpense, day(6, 10), "c", "p")
	f.db.MustAddTransaction(owner, 50, model.KindExpense, day(5, 20), "c", "p")
	f.db.MustAddTransaction(owner, 999, model.KindIncome, day(6, 12), "", "")
	f.db.MustAddTransaction("someone-else", 75, model.KindIncome, day(6, 1), "c", "p")

	stats, err := f.svc.DashboardStats(ctx, owner)
	require.NoError(t, err)
	assert.InDelta(t, 750, stats.Balance, 0.001)
	assert.InDelta(t, 1000, stats.MonthIncome, 0.001)
	assert.InDelta(t, 200, stats.MonthExpenses, 0.001)
}

func TestDepsValidate(t *testing.T) {
	_, err := New(Deps{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction repository")
}
