package goals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/nest-egg/internal/common"
)

func TestSuggest(t *testing.T) {
	today := time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name        string
		target      float64
		days        int
		wantWeekly  float64
		wantMonthly float64
	}{
		{name: "ninety days", target: 1200, days: 90, wantWeekly: 92.31, wantMonthly: 400},
		{name: "one day rounds up to one period", target: 500, days: 1, wantWeekly: 500, wantMonthly: 500},
		{name: "exact weeks", target: 700, days: 14, wantWeekly: 350, wantMonthly: 700},
		{name: "a year", target: 3650, days: 365, wantWeekly: 68.87, wantMonthly: 280.77},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Suggest(tt.target, today.AddDate(0, 0, tt.days), today)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantWeekly, got.Weekly, 0.001)
			assert.InDelta(t, tt.wantMonthly, got.Monthly, 0.001)
		})
	}
}

func TestSuggestRejectsPastOrTodayDeadline(t *testing.T) {
	today := time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC)

	for _, deadline := range []time.Time{today, today.Add(-48 * time.Hour), time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC)} {
		_, err := Suggest(1000, deadline, today)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrValidation)
		assert.Contains(t, err.Error(), "future")
	}
}
