package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/nest-egg/internal/common"
)

func TestNewTransaction(t *testing.T) {
	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		categoryID string
		profileID  string
		kind       TransactionKind
		wantStatus TransactionStatus
		value      float64
		wantErr    bool
	}{
		{name: "pending without category", value: 10, kind: KindExpense, wantStatus: StatusPending},
		{name: "pending with only category", value: 10, kind: KindExpense, categoryID: "c1", wantStatus: StatusPending},
		{name: "processed with category and profile", value: 10, kind: KindIncome, categoryID: "c1", profileID: "p1", wantStatus: StatusProcessed},
		{name: "zero value", value: 0, kind: KindIncome, wantErr: true},
		{name: "negative value", value: -3, kind: KindIncome, wantErr: true},
		{name: "unknown kind", value: 3, kind: "TRANSFER", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, err := NewTransaction("owner-1", tt.value, tt.kind, date, "coffee", tt.categoryID, tt.profileID)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
				assert.Nil(t, txn)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, txn.Status)
		})
	}
}

func TestTransactionSignedValueAndCategorize(t *testing.T) {
	txn, err := NewTransaction("owner-1", 25, KindExpense, time.Now(), "", "", "")
	require.NoError(t, err)
	assert.True(t, txn.IsPending())
	assert.Equal(t, -25.0, txn.SignedValue())

	txn.Categorize("c1", "p1")
	assert.False(t, txn.IsPending())
	assert.Equal(t, "c1", txn.CategoryID)
}

func TestParseTransactionKind(t *testing.T) {
	kind, err := ParseTransactionKind(" income ")
	require.NoError(t, err)
	assert.Equal(t, KindIncome, kind)

	_, err = ParseTransactionKind("refund")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestNewReservation(t *testing.T) {
	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := NewReservation("owner-1", "goal-1", bad, "", "", testNow)
		assert.ErrorIs(t, err, common.ErrValidation, "value %v", bad)
	}

	r, err := NewReservation("owner-1", "goal-1", 50, "txn-1", "payday", testNow)
	require.NoError(t, err)
	assert.Nil(t, r.UpdatedAt)

	assert.ErrorIs(t, r.UpdateValue(-1, testNow), common.ErrValidation)
	assert.ErrorIs(t, r.UpdateValue(math.NaN(), testNow), common.ErrValidation)
	assert.ErrorIs(t, r.UpdateValue(math.Inf(1), testNow), common.ErrValidation)
	assert.Equal(t, 50.0, r.Value)

	require.NoError(t, r.UpdateValue(75, testNow))
	assert.Equal(t, 75.0, r.Value)
	assert.NotNil(t, r.UpdatedAt)
}

func TestNewCSVMapping(t *testing.T) {
	tests := []struct {
		name    string
		mapName string
		cols    [3]string
		wantErr bool
	}{
		{name: "valid", mapName: "Bank", cols: [3]string{"Data", "Valor", "Historico"}},
		{name: "missing name", mapName: "", cols: [3]string{"Data", "Valor", "Historico"}, wantErr: true},
		{name: "missing column", mapName: "Bank", cols: [3]string{"Data", "", "Historico"}, wantErr: true},
		{name: "duplicate column", mapName: "Bank", cols: [3]string{"Data", "Data", "Historico"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewCSVMapping("owner-1", tt.mapName, tt.cols[0], tt.cols[1], tt.cols[2], testNow)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Valor", m.ValueColumn)
		})
	}
}

func TestNewCategoryAndProfile(t *testing.T) {
	c, err := NewCategory("owner-1", " Food ", KindExpense, testNow)
	require.NoError(t, err)
	assert.Equal(t, "Food", c.Name)

	_, err = NewCategory("owner-1", "Food", "OTHER", testNow)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = NewProfile("owner-1", "", testNow)
	assert.ErrorIs(t, err, common.ErrValidation)
}
