package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Veraticus/nest-egg/internal/goals"
)

type reservationRequest struct {
	GoalID        string  `json:"goal_id"`
	TransactionID string  `json:"transaction_id"`
	Note          string  `json:"note"`
	Value         float64 `json:"value"`
}

type reservationUpdateRequest struct {
	Note  *string `json:"note"`
	Value float64 `json:"value"`
}

func (s *Server) createReservation(r *http.Request, svc *services) (int, any, error) {
	var req reservationRequest
	if err := decode(r, &req); err != nil {
		return 0, nil, err
	}
	result, err := svc.goals.CreateReservation(r.Context(), goals.ReservationInput{
		OwnerID:       s.ownerID,
		GoalID:        req.GoalID,
		TransactionID: req.TransactionID,
		Note:          req.Note,
		Value:         req.Value,
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, toReservationResult(result), nil
}

func (s *Server) updateReservation(r *http.Request, svc *services) (int, any, error) {
	var req reservationUpdateRequest
	if err := decode(r, &req); err != nil {
		return 0, nil, err
	}
	result, err := svc.goals.UpdateReservation(r.Context(), s.ownerID, chi.URLParam(r, "id"), req.Value, req.Note)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, toReservationResult(result), nil
}

func (s *Server) deleteReservation(r *http.Request, svc *services) (int, any, error) {
	goal, err := svc.goals.DeleteReservation(r.Context(), s.ownerID, chi.URLParam(r, "id"))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, toGoal(goal), nil
}
