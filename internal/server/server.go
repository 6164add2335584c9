// Package server serves the merged lease and neighbor view over http.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/metal-stack/netstatus/internal/failure"
	"github.com/metal-stack/netstatus/internal/status"
	"github.com/metal-stack/v"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// StatusCollector produces the merged view for a single request.
type StatusCollector interface {
	Collect(ctx context.Context) (status.Status, error)
}

type Config struct {
	Addr      string
	Log       *zap.Logger
	Collector StatusCollector

	// RateLimit in requests per second, zero disables it.
	RateLimit float64
	RateBurst int
}

type Server struct {
	httpServer *http.Server
	log        *zap.Logger
	mux        *http.ServeMux
	collector  StatusCollector
}

func New(c Config) *Server {
	mux := http.NewServeMux()
	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		log:       log,
		mux:       mux,
		collector: c.Collector,
	}
	s.registerRoutes()

	handler := Chain(mux,
		RecoveryMiddleware(log),
		RequestIDMiddleware,
		LoggingMiddleware(log, "/healthz", "/metrics"),
		RateLimitMiddleware(c.RateLimit, c.RateBurst, "/healthz", "/metrics"),
	)

	s.httpServer = &http.Server{
		Addr:              c.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("starting http server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "alive",
		"version": v.V.String(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.collector.Collect(r.Context())
	if err != nil {
		s.log.Error("unable to collect status",
			zap.Error(err),
			zap.String("kind", failure.Kind(err)),
			zap.String("request_id", RequestID(r.Context())),
		)
		WriteProblem(w, collectProblem(err, r.URL.Path))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		s.log.Warn("unable to write status response", zap.Error(err))
	}
}

func collectProblem(err error, instance string) Problem {
	p := Problem{
		Type:     ProblemTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   err.Error(),
		Instance: instance,
	}
	switch {
	case errors.Is(err, failure.ErrSourceUnavailable):
		p.Type = ProblemTypeSourceUnavailable
		p.Title = "Service Unavailable"
		p.Status = http.StatusServiceUnavailable
	case errors.Is(err, failure.ErrCommandFailure):
		p.Type = ProblemTypeCommandFailure
		p.Title = "Bad Gateway"
		p.Status = http.StatusBadGateway
	}
	return p
}
