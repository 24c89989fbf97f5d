package api

import (
	"time"

	"github.com/Veraticus/nest-egg/internal/goals"
	"github.com/Veraticus/nest-egg/internal/model"
)

const dateLayout = "2006-01-02"

type goalResponse struct {
	ConcludedAt      *time.Time `json:"concluded_at,omitempty"`
	FinalizedAt      *time.Time `json:"finalized_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Deadline         string     `json:"deadline"`
	ProfileID        string     `json:"profile_id,omitempty"`
	Status           string     `json:"status"`
	ConclusionOrigin string     `json:"conclusion_origin,omitempty"`
	TargetValue      float64    `json:"target_value"`
	CurrentValue     float64    `json:"current_value"`
	Progress         float64    `json:"progress"`
}

func toGoal(g *model.Goal) *goalResponse {
	if g == nil {
		return nil
	}
	return &goalResponse{
		ID:               g.ID,
		Name:             g.Name,
		TargetValue:      g.TargetValue,
		CurrentValue:     g.CurrentValue,
		Progress:         g.Progress(),
		Deadline:         g.Deadline.Format(dateLayout),
		ProfileID:        g.ProfileID,
		Status:           string(g.Status),
		ConclusionOrigin: string(g.ConclusionOrigin),
		ConcludedAt:      g.ConcludedAt,
		FinalizedAt:      g.FinalizedAt,
		CreatedAt:        g.CreatedAt,
	}
}

func toGoals(list []model.Goal) []*goalResponse {
	out := make([]*goalResponse, 0, len(list))
	for i := range list {
		out = append(out, toGoal(&list[i]))
	}
	return out
}

type reservationResponse struct {
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ID            string     `json:"id"`
	GoalID        string     `json:"goal_id"`
	TransactionID string     `json:"transaction_id,omitempty"`
	Note          string     `json:"note,omitempty"`
	Value         float64    `json:"value"`
}

func toReservation(r *model.Reservation) *reservationResponse {
	return &reservationResponse{
		ID:            r.ID,
		GoalID:        r.GoalID,
		TransactionID: r.TransactionID,
		Note:          r.Note,
		Value:         r.Value,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type usageResponse struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id"`
	Value         float64   `json:"value"`
}

type createGoalResponse struct {
	Goal    *goalResponse `json:"goal"`
	Weekly  float64       `json:"weekly_suggestion"`
	Monthly float64       `json:"monthly_suggestion"`
}

type goalDetailResponse struct {
	Goal         *goalResponse          `json:"goal"`
	Reservations []*reservationResponse `json:"reservations"`
	Usages       []usageResponse        `json:"usages"`
	TotalUsed    float64                `json:"total_used"`
}

func toGoalDetail(d *goals.GoalDetail) *goalDetailResponse {
	out := &goalDetailResponse{
		Goal:         toGoal(d.Goal),
		Reservations: make([]*reservationResponse, 0, len(d.Reservations)),
		Usages:       make([]usageResponse, 0, len(d.Usages)),
		TotalUsed:    d.TotalUsed,
	}
	for i := range d.Reservations {
		out.Reservations = append(out.Reservations, toReservation(&d.Reservations[i]))
	}
	for _, u := range d.Usages {
		out.Usages = append(out.Usages, usageResponse{
			ID:            u.ID,
			TransactionID: u.TransactionID,
			Value:         u.Value,
			CreatedAt:     u.CreatedAt,
		})
	}
	return out
}

type reservationResultResponse struct {
	Reservation   *reservationResponse `json:"reservation"`
	Goal          *goalResponse        `json:"goal"`
	Message       string               `json:"message,omitempty"`
	JustConcluded bool                 `json:"just_concluded"`
}

func toReservationResult(r *goals.ReservationResult) *reservationResultResponse {
	return &reservationResultResponse{
		Reservation:   toReservation(r.Reservation),
		Goal:          toGoal(r.Goal),
		Message:       r.Message,
		JustConcluded: r.JustConcluded,
	}
}

type cancelResponse struct {
	Goal          *goalResponse `json:"goal"`
	Destination   *goalResponse `json:"destination,omitempty"`
	Disposition   string        `json:"disposition"`
	Message       string        `json:"message,omitempty"`
	Transferred   float64       `json:"transferred"`
	JustConcluded bool          `json:"just_concluded"`
}

type usageResultResponse struct {
	Goal       *goalResponse `json:"goal"`
	UsageID    string        `json:"usage_id"`
	AmountUsed float64       `json:"amount_used"`
}

type releaseResponse struct {
	Goal       *goalResponse `json:"goal"`
	TotalValue float64       `json:"total_value"`
	TotalUsed  float64       `json:"total_used"`
	Remaining  float64       `json:"remaining"`
}

type availableResponse struct {
	Goals   []*goalResponse `json:"goals"`
	Message string          `json:"message,omitempty"`
}

type transactionResponse struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	CategoryID  string  `json:"category_id,omitempty"`
	ProfileID   string  `json:"profile_id,omitempty"`
	Kind        string  `json:"kind"`
	Status      string  `json:"status"`
	Value       float64 `json:"value"`
}

func toTransaction(t *model.Transaction) *transactionResponse {
	return &transactionResponse{
		ID:          t.ID,
		Date:        t.Date.Format(dateLayout),
		Description: t.Description,
		CategoryID:  t.CategoryID,
		ProfileID:   t.ProfileID,
		Kind:        string(t.Kind),
		Status:      string(t.Status),
		Value:       t.Value,
	}
}

func toTransactions(list []model.Transaction) []*transactionResponse {
	out := make([]*transactionResponse, 0, len(list))
	for i := range list {
		out = append(out, toTransaction(&list[i]))
	}
	return out
}

type statsResponse struct {
	Balance       float64 `json:"balance"`
	MonthIncome   float64 `json:"month_income"`
	MonthExpenses float64 `json:"month_expenses"`
}

type mappingResponse struct {
	CreatedAt         time.Time `json:"created_at"`
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	DateColumn        string    `json:"date_column"`
	ValueColumn       string    `json:"value_column"`
	DescriptionColumn string    `json:"description_column"`
}

func toMapping(m *model.CSVMapping) *mappingResponse {
	return &mappingResponse{
		ID:                m.ID,
		Name:              m.Name,
		DateColumn:        m.DateColumn,
		ValueColumn:       m.ValueColumn,
		DescriptionColumn: m.DescriptionColumn,
		CreatedAt:         m.CreatedAt,
	}
}

type categoryResponse struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
}

func toCategory(c *model.Category) *categoryResponse {
	return &categoryResponse{ID: c.ID, Name: c.Name, Kind: string(c.Kind), CreatedAt: c.CreatedAt}
}

type profileResponse struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
}

func toProfile(p *model.Profile) *profileResponse {
	return &profileResponse{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt}
}
