package importer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/model"
)

// dateLayouts are tried in order. Day-first wins for ambiguous dates.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"01/02/2006",
}

// ParseDate reads a statement date in one of the supported layouts.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, common.NewValidationError("date column is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, common.NewValidationError("invalid date format: %s", raw)
}

// ParseAmount reads a signed statement amount such as "R$ 1.234,56", "-12,50"
// or "1,234.56". The sign picks the kind; the returned value is absolute.
func ParseAmount(raw string) (float64, model.TransactionKind, error) {
	text := strings.ReplaceAll(strings.TrimSpace(raw), "R$", "")
	text = strings.ReplaceAll(text, " ", "")
	if text == "" {
		return 0, "", common.NewValidationError("value column is empty")
	}

	comma, dot := strings.LastIndex(text, ","), strings.LastIndex(text, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		text = strings.ReplaceAll(text, ".", "")
		text = strings.ReplaceAll(text, ",", ".")
	case comma >= 0 && dot >= 0:
		text = strings.ReplaceAll(text, ",", "")
	case comma >= 0:
		text = strings.ReplaceAll(text, ",", ".")
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, "", common.NewValidationError("invalid value: %s", raw)
	}

	kind := model.KindIncome
	if v < 0 {
		kind = model.KindExpense
	}
	return math.Abs(v), kind, nil
}
