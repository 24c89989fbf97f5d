// Package api exposes the use cases over HTTP with JSON bodies.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/goals"
	"github.com/Veraticus/nest-egg/internal/importer"
	"github.com/Veraticus/nest-egg/internal/inbox"
	"github.com/Veraticus/nest-egg/internal/service"
)

// maxUploadBytes bounds statement uploads.
const maxUploadBytes = 10 << 20

// Config holds configuration options for the HTTP server.
type Config struct {
	// OwnerID is the user every request acts for.
	OwnerID string
	Now     func() time.Time
}

// Server routes HTTP requests to the use cases. Every request runs inside one
// storage transaction that is committed only when the handler succeeds.
type Server struct {
	store   service.Storage
	ownerID string
	now     func() time.Time
}

// NewServer creates a server over store.
func NewServer(store service.Storage, config Config) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("storage dependency is required")
	}
	if config.OwnerID == "" {
		return nil, fmt.Errorf("%w: owner id", common.ErrMissingConfig)
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Server{store: store, ownerID: config.OwnerID, now: config.Now}, nil
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/goals", func(r chi.Router) {
		r.Get("/", s.handle(s.listGoals))
		r.Post("/", s.handle(s.createGoal))
		r.Get("/available", s.handle(s.availableGoals))
		r.Get("/{id}", s.handle(s.getGoal))
		r.Put("/{id}", s.handle(s.editGoal))
		r.Post("/{id}/pause", s.handle(s.pauseGoal))
		r.Post("/{id}/resume", s.handle(s.resumeGoal))
		r.Post("/{id}/conclude", s.handle(s.concludeGoal))
		r.Post("/{id}/cancel", s.handle(s.cancelGoal))
		r.Post("/{id}/usages", s.handle(s.registerUsage))
		r.Post("/{id}/release", s.handle(s.releaseBalance))
	})

	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", s.handle(s.createReservation))
		r.Put("/{id}", s.handle(s.updateReservation))
		r.Delete("/{id}", s.handle(s.deleteReservation))
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", s.handle(s.filterTransactions))
		r.Post("/", s.handle(s.launchTransaction))
		r.Get("/pending", s.handle(s.listPending))
		r.Get("/stats", s.handle(s.dashboardStats))
		r.Post("/categorize", s.handle(s.categorizeBatch))
		r.Put("/{id}", s.handle(s.updateTransaction))
		r.Delete("/{id}", s.handle(s.deleteTransaction))
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", s.handle(s.listCategories))
		r.Post("/", s.handle(s.createCategory))
	})

	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", s.handle(s.listProfiles))
		r.Post("/", s.handle(s.createProfile))
	})

	r.Post("/imports", s.handle(s.importStatement))

	r.Route("/mappings", func(r chi.Router) {
		r.Get("/", s.handle(s.listMappings))
		r.Post("/", s.handle(s.saveMapping))
	})

	return r
}

// services are the use cases bound to one storage transaction.
type services struct {
	goals    *goals.Service
	inbox    *inbox.Service
	importer *importer.Service
}

func (s *Server) bind(tx service.Transaction) (*services, error) {
	g, err := goals.NewWithConfig(goals.DepsFrom(tx), goals.Config{Now: s.now})
	if err != nil {
		return nil, err
	}
	in, err := inbox.NewWithConfig(inbox.DepsFrom(tx), inbox.Config{Now: s.now})
	if err != nil {
		return nil, err
	}
	im, err := importer.NewWithConfig(importer.DepsFrom(tx), importer.Config{Now: s.now})
	if err != nil {
		return nil, err
	}
	return &services{goals: g, inbox: in, importer: im}, nil
}

// handlerFunc returns the status and body to send on success.
type handlerFunc func(r *http.Request, svc *services) (int, any, error)

func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tx, err := s.store.BeginTx(ctx)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("failed to begin transaction: %w", err))
			return
		}

		svc, err := s.bind(tx)
		if err != nil {
			_ = tx.Rollback()
			writeError(ctx, w, err)
			return
		}

		status, body, err := fn(r, svc)
		if err != nil {
			_ = tx.Rollback()
			writeError(ctx, w, err)
			return
		}
		if err := tx.Commit(); err != nil {
			writeError(ctx, w, fmt.Errorf("failed to commit transaction: %w", err))
			return
		}

		if status == http.StatusNoContent {
			w.WriteHeader(status)
			return
		}
		writeJSON(w, status, body)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch common.Kind(err) {
	case common.KindValidation:
		return http.StatusBadRequest
	case common.KindNotFound:
		return http.StatusNotFound
	case common.KindPermission:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := common.UserMessage(err)
	if status == http.StatusInternalServerError {
		common.LogError(ctx, err, "Request failed", common.Fields{"request_id": middleware.GetReqID(ctx)})
		message = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}

// decode reads a JSON body into dst, rejecting unknown fields.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return common.NewValidationError("malformed JSON at offset %d", syntaxErr.Offset)
		}
		return common.NewValidationError("invalid request body: %v", err)
	}
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
