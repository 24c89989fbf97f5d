package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Veraticus/nest-egg/internal/goals"
)

// valueText accepts a JSON number or a string such as "1.234,56".
type valueText string

func (v *valueText) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(data, []byte(`"`)) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = valueText(s)
		return nil
	}
	*v = valueText(data)
	return nil
}

type goalRequest struct {
	Name        string    `json:"name"`
	TargetValue valueText `json:"target_value"`
	Deadline    string    `json:"deadline"`
	ProfileID   string    `json:"profile_id"`
}

func (g goalRequest) input() goals.GoalInput {
	return goals.GoalInput{
		Name:        g.Name,
		TargetValue: string(g.TargetValue),
		Deadline:    g.Deadline,
		ProfileID:   g.ProfileID,
	}
}

type cancelRequest struct {
	Disposition   string `json:"disposition"`
	DestinationID string `json:"destination_id"`
}

type usageRequest struct {
	TransactionID string `json:"transaction_id"`
}

func (s *Server) listGoals(r *http.Request, svc *services) (int, any, error) {
	list, err := svc.goals.ListGoals(r.Context(), s.ownerID)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, toGoals(list), nil
}

func (s *Server) createGoal(r *http.Request, svc *services) (int, any, error) {
	var req goalRequest
	if err := decode(r, &req); err != nil {
		return 0, nil, err
	}
	result, err := svc.goals.CreateGoal(r.Context(), s.ownerID, req.input())
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, createGoalResponse{
		Goal:    toGoal(result.Goal),
		Weekly:  result.Suggestions.Weekly,
		Monthly: result.Suggestions.Monthly,
	}, nil
}

func (s *Server) availableGoals(r *http.Request, svc *services) (int, any, error) {
	available, err := svc.goals.ListAvailableGoals(r.Context(), s.ownerID)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, availableResponse{
		Goals:   toGoals(available.Goals),
		Message: available.EmptyMessage,
	}, nil
}

func (s *Server) getGoal(r *http.Request, svc *services) (int, any, error) {
	detail, err := svc.goals.GetGoal(r.Context(), s.ownerID, chi.URLParam(r, "id"))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, toGoalDetail(detail), nil
}

func (s *Server) editGoal(r *http.Request, svc *services) (int, any, error) {
	var req goalRequest
	if err := decode(r, &req); err != nil {
		return 0, nil, err
	}
	goal, err := svc.goals.EditGoal(r.Context(), s.ownerID, chi.URLParam(r, "id"), req.input())
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, toGoal(goal), nil
}

func (s *Server) pauseGoal(r *http.Request, svc *services) (int, any, error) {
	goal, err := svc.goals.PauseGoal(r.Context(), s.ownerID, chi.URLParam(r, "id"))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, toGoal(goal), nil
}

func (s *Server) resumeGoal(r *http.Request, svc *services) (int, any, error) {
	goal, err := svc.goals.ResumeGoal(r.Context(), s.ownerID, chi.URLParam(r, "id"))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, toGoal(goal), nil
}

func (s *Server) concludeGoal(r *http.Request, svc *services) (int, any, error) {
	goal, err := svc.goals.ConcludeGoal(r.Context(), s.ownerID, chi.URLParam(r, "id"))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, toGoal(goal), nil
}

func (s *Server) cancelGoal(r *http.Request, svc *services) (int, any, error) {
	var req cancelRequest
	if err := decode(r, &req); err != nil {
		return 0, nil, err
	}
	disposition, err := goals.ParseFundDisposition(req.Disposition)
	if err != nil {
		return 0, nil, err
	}
	result, err := svc.goals.CancelGoal(r.Context(), s.ownerID, chi.URLParam(r, "id"), disposition, req.DestinationID)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, cancelResponse{
		Goal:          toGoal(result.Goal),
		Destination:   toGoal(result.Destination),
		Disposition:   string(result.Disposition),
		Message:       result.Message,
		Transferred:   result.Transferred,
		JustConcluded: result.JustConcluded,
	}, nil
}

func (s *Server) registerUsage(r *http.Request, svc *services) (int, any, error) {
	var req usageRequest
	if err := decode(r, &req); err != nil {
		return 0, nil, err
	}
	result, err := svc.goals.RegisterUsage(r.Context(), s.ownerID, chi.URLParam(r, "id"), req.TransactionID)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, usageResultResponse{
		Goal:       toGoal(result.Goal),
		UsageID:    result.Usage.ID,
		AmountUsed: result.AmountUsed,
	}, nil
}

func (s *Server) releaseBalance(r *http.Request, svc *services) (int, any, error) {
	result, err := svc.goals.ReleaseBalance(r.Context(), s.ownerID, chi.URLParam(r, "id"))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, releaseResponse{
		Goal:       toGoal(result.Goal),
		TotalValue: result.TotalValue,
		TotalUsed:  result.TotalUsed,
		Remaining:  result.Remaining,
	}, nil
}
