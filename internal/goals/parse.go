package goals

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/nest-egg/internal/common"
)

// deadlineLayouts are the accepted ISO date and datetime forms.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDeadline accepts an ISO date (2006-01-02) or ISO datetime.
func ParseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, common.NewValidationError("a deadline is required")
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, common.NewValidationError("deadline must be an ISO date (YYYY-MM-DD) or datetime (YYYY-MM-DDTHH:MM:SS), got %q", s)
}

// ParseValue parses a positive amount. A comma is accepted as the decimal separator.
func ParseValue(s string) (float64, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, common.NewValidationError("a numeric value is required")
	}
	if strings.Contains(raw, ",") && !strings.Contains(raw, ".") {
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, common.NewValidationError("%q is not a valid numeric value", s)
	}
	if err := checkPositive(v); err != nil {
		return 0, err
	}
	return v, nil
}

func checkPositive(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return common.NewValidationError("value must be greater than zero")
	}
	return nil
}
