// Package http exposes a skill over HTTP for local development. It is a
// debug surface, not a production transport: permissive CORS, no auth, no
// platform signature verification.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/pkg/model"
)

// Invoker runs one request envelope through a skill. *tendril.Skill
// satisfies it; tests plug in fakes.
type Invoker interface {
	Invoke(ctx context.Context, envelope *model.RequestEnvelope) (*model.ResponseEnvelope, error)
}

// Server holds the handler state behind the router.
type Server struct {
	invoker Invoker
	logger  *slog.Logger
}

// Option configures the HTTP handler.
type Option func(*Server)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler builds the HTTP handler around an invoker.
//
// Routes: POST /invoke runs one envelope through the skill and returns the
// response envelope, GET /healthz reports liveness, GET /info reports the
// library version.
func NewHandler(invoker Invoker, opts ...Option) http.Handler {
	s := &Server{
		invoker: invoker,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Post("/invoke", s.handleInvoke)
	r.Get("/healthz", s.handleHealth)
	r.Get("/info", s.handleInfo)
	return enableCORS(r)
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	var envelope model.RequestEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		s.logger.Warn("invoke rejected", "err", err)
		return
	}

	resp, err := s.invoker.Invoke(r.Context(), &envelope)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, model.ErrInvalidEnvelope):
			status = http.StatusBadRequest
		case errors.Is(err, tendril.ErrSkillIDMismatch):
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
		s.logger.Error("invoke failed", "status", status, "err", err)
		return
	}

	s.logger.Debug("invoke handled", "request_type", envelope.RequestType())
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("invoke response encode failed", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"app":     "tendril-http",
		"version": strings.TrimSpace(tendril.Version),
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
