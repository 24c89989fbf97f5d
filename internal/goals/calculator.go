package goals

import (
	"math"
	"time"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/model"
)

// Suggest computes the weekly and monthly contributions that reach target by deadline.
// Weeks and months are rounded up and never below one.
func Suggest(target float64, deadline, today time.Time) (model.ContributionSuggestions, error) {
	days := model.DaysBetween(today, deadline)
	if days <= 0 {
		return model.ContributionSuggestions{}, common.NewValidationError("deadline must be in the future")
	}

	weeks := math.Max(1, math.Ceil(float64(days)/7))
	months := math.Max(1, math.Ceil(float64(days)/30))

	return model.ContributionSuggestions{
		Weekly:  model.Round2(target / weeks),
		Monthly: model.Round2(target / months),
	}, nil
}
