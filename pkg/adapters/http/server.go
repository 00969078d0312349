// Package http exposes the transition API over HTTP. The handlers are thin:
// all lifecycle semantics live in the executor and machine packages.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/roomflow/internal/logging"
	"github.com/aretw0/roomflow/pkg/domain"
	"github.com/aretw0/roomflow/pkg/executor"
)

// Server wires the executor to the router.
type Server struct {
	exec   *executor.Executor
	logger *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler builds the HTTP handler for the transition API. When a gatherer
// is provided, /metrics serves it.
func NewHandler(exec *executor.Executor, gatherer prometheus.Gatherer, opts ...Option) http.Handler {
	s := &Server{
		exec:   exec,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", s.createReservation)
		r.Route("/{reservationID}", func(r chi.Router) {
			r.Post("/transitions", s.executeTransition)
			r.Get("/transitions", s.availableTransitions)
			r.Post("/migrate", s.migrate)
		})
	})
	return r
}

type createRequest struct {
	domain.Context
}

type transitionRequest struct {
	Event   string `json:"event"`
	Service string `json:"service,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type migrateRequest struct {
	Tenant string `json:"tenant"`
	Status string `json:"status"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) createReservation(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.ReservationID == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("reservationId is required"))
		return
	}
	result, err := s.exec.Create(r.Context(), body.Context)
	if err != nil {
		s.writeExecutorError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, result)
}

func (s *Server) executeTransition(w http.ResponseWriter, r *http.Request) {
	reservationID := chi.URLParam(r, "reservationID")
	var body transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.Event == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("event is required"))
		return
	}
	payload := domain.Payload{
		Service: domain.Service(body.Service),
		Reason:  body.Reason,
	}
	result, err := s.exec.Execute(r.Context(), reservationID, domain.Event(body.Event), payload)
	if err != nil {
		s.writeExecutorError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) availableTransitions(w http.ResponseWriter, r *http.Request) {
	reservationID := chi.URLParam(r, "reservationID")
	events, err := s.exec.AvailableTransitions(r.Context(), reservationID)
	if err != nil {
		s.writeExecutorError(w, err)
		return
	}
	if events == nil {
		events = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) migrate(w http.ResponseWriter, r *http.Request) {
	reservationID := chi.URLParam(r, "reservationID")
	var body migrateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.exec.Migrate(r.Context(), body.Tenant, reservationID, body.Status)
	if err != nil {
		s.writeExecutorError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeExecutorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		s.writeError(w, http.StatusConflict, err)
	case errors.Is(err, domain.ErrReservationNotFound):
		s.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrRehydration):
		s.writeError(w, http.StatusUnprocessableEntity, err)
	default:
		s.logger.Error("transition request failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Success: false, Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
