package api

import (
	"net/http"

	"github.com/Veraticus/nest-egg/internal/model"
)

type categoryRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type profileRequest struct {
	Name string `json:"name"`
}

func (s *Server) listCategories(r *http.Request, svc *services) (int, any, error) {
	var kind model.TransactionKind
	if raw := r.URL.Query().Get("kind"); raw != "" {
		parsed, err := model.ParseTransactionKind(raw)
		if err != nil {
			return 0, nil, err
		}
		kind = parsed
	}

	list, err := svc.inbox.ListCategories(r.Context(), s.ownerID, kind)
	if err != nil {
		return 0, nil, err
	}
	out := make([]*categoryResponse, 0, len(list))
	for i := range list {
		out = append(out, toCategory(&list[i]))
	}
	return http.StatusOK, out, nil
}

func (s *Server) createCategory(r *http.Request, svc *services) (int, any, error) {
	var req categoryRequest
	if err := decode(r, &req); err != nil {
		return 0, nil, err
	}
	kind, err := model.ParseTransactionKind(req.Kind)
	if err != nil {
		return 0, nil, err
	}
	c, err := svc.inbox.AddCategory(r.Context(), s.ownerID, req.Name, kind)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, toCategory(c), nil
}

func (s *Server) listProfiles(r *http.Request, svc *services) (int, any, error) {
	list, err := svc.inbox.ListProfiles(r.Context(), s.ownerID)
	if err != nil {
		return 0, nil, err
	}
	out := make([]*profileResponse, 0, len(list))
	for i := range list {
		out = append(out, toProfile(&list[i]))
	}
	return http.StatusOK, out, nil
}

func (s *Server) createProfile(r *http.Request, svc *services) (int, any, error) {
	var req profileRequest
	if err := decode(r, &req); err != nil {
		return 0, nil, err
	}
	p, err := svc.inbox.AddProfile(r.Context(), s.ownerID, req.Name)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, toProfile(p), nil
}
