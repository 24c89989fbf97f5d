package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/importer"
	"github.com/Veraticus/nest-egg/internal/inbox"
	"github.com/Veraticus/nest-egg/internal/model"
)

type launchRequest struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	CategoryID  string  `json:"category_id"`
	ProfileID   string  `json:"profile_id"`
	Kind        string  `json:"kind"`
	Value       float64 `json:"value"`
}

type transactionUpdateRequest struct {
	Description *string `json:"description"`
	CategoryID  *string `json:"category_id"`
	ProfileID   *string `json:"profile_id"`
}

type categorizeRequest struct {
	CategoryID     string   `json:"category_id"`
	ProfileID      string   `json:"profile_id"`
	TransactionIDs []string `json:"transaction_ids"`
}

type categorizeResponse struct {
	Updated int `json:"updated"`
}

func (s *Server) launchTransaction(r *http.Request, svc *services) (int, any, error) {
	var req launchRequest
	if err := decode(r, &req); err != nil {
		return 0, nil, err
	}
	kind, err := model.ParseTransactionKind(req.Kind)
	if err != nil {
		return 0, nil, err
	}
	var date time.Time
	if req.Date != "" {
		if date, err = importer.ParseDate(req.Date); err != nil {
			return 0, nil, err
		}
	}
	txn, err := svc.inbox.Launch(r.Context(), s.ownerID, inbox.LaunchInput{
		Date:        date,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		ProfileID:   req.ProfileID,
		Kind:        kind,
		Value:       req.Value,
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, toTransaction(txn), nil
}

func (s *Server) listPending(r *http.Request, svc *services) (int, any, error) {
	list, err := svc.inbox.ListPending(r.Context(), s.ownerID)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, toTransactions(list), nil
}

func (s *Server) updateTransaction(r *http.Request, svc *services) (int, any, error) {
	var req transactionUpdateRequest
	if err := decode(r, &req); err != nil {
		return 0, nil, err
	}
	txn, err := svc.inbox.Update(r.Context(), s.ownerID, chi.URLParam(r, "id"), inbox.Changes{
		Description: req.Description,
		CategoryID:  req.CategoryID,
		ProfileID:   req.ProfileID,
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, toTransaction(txn), nil
}

func (s *Server) deleteTransaction(r *http.Request, svc *services) (int, any, error) {
	if err := svc.inbox.Delete(r.Context(), s.ownerID, chi.URLParam(r, "id")); err != nil {
		return 0, nil, err
	}
	return http.StatusNoContent, nil, nil
}

func (s *Server) categorizeBatch(r *http.Request, svc *services) (int, any, error) {
	var req categorizeRequest
	if err := decode(r, &req); err != nil {
		return 0, nil, err
	}
	n, err := svc.inbox.CategorizeBatch(r.Context(), s.ownerID, req.TransactionIDs, req.CategoryID, req.ProfileID)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, categorizeResponse{Updated: n}, nil
}

func (s *Server) filterTransactions(r *http.Request, svc *services) (int, any, error) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		return 0, nil, err
	}
	list, err := svc.inbox.Filter(r.Context(), s.ownerID, filter)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, toTransactions(list), nil
}

func (s *Server) dashboardStats(r *http.Request, svc *services) (int, any, error) {
	stats, err := svc.inbox.DashboardStats(r.Context(), s.ownerID)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, statsResponse{
		Balance:       stats.Balance,
		MonthIncome:   stats.MonthIncome,
		MonthExpenses: stats.MonthExpenses,
	}, nil
}

// parseFilter reads from, to, min, max, status, q, category_id, profile_id,
// without_category and without_profile from the query string.
func parseFilter(q url.Values) (model.TransactionFilter, error) {
	filter := model.TransactionFilter{
		Description: strings.TrimSpace(q.Get("q")),
		CategoryID:  q.Get("category_id"),
		ProfileID:   q.Get("profile_id"),
	}

	var err error
	if filter.From, err = queryDate(q, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = queryDate(q, "to"); err != nil {
		return filter, err
	}
	if filter.MinValue, err = queryFloat(q, "min"); err != nil {
		return filter, err
	}
	if filter.MaxValue, err = queryFloat(q, "max"); err != nil {
		return filter, err
	}
	if filter.WithoutCategory, err = queryBool(q, "without_category"); err != nil {
		return filter, err
	}
	if filter.WithoutProfile, err = queryBool(q, "without_profile"); err != nil {
		return filter, err
	}

	switch status := model.TransactionStatus(strings.ToUpper(q.Get("status"))); status {
	case "", model.StatusPending, model.StatusProcessed:
		filter.Status = status
	default:
		return filter, common.NewValidationError("status must be PENDING or PROCESSED, got %q", q.Get("status"))
	}

	return filter, nil
}

func queryDate(q url.Values, key string) (*time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := importer.ParseDate(raw)
	if err != nil {
		return nil, common.NewValidationError("invalid %s date %q", key, raw)
	}
	return &t, nil
}

func queryFloat(q url.Values, key string) (*float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, common.NewValidationError("invalid %s value %q", key, raw)
	}
	return &v, nil
}

func queryBool(q url.Values, key string) (bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, common.NewValidationError("invalid %s flag %q", key, raw)
	}
	return v, nil
}
