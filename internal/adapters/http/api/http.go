// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/minestats/internal/adapters/repository"
	service "github.com/okian/minestats/internal/app"
	"github.com/okian/minestats/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Submit queues a CSV payload for analysis.
	Submit(ctx context.Context, source string, payload []byte) (service.SubmitResult, error)

	// Read operations expose stored snapshots.
	Latest(ctx context.Context) (*repository.Snapshot, error)
	Snapshot(ctx context.Context, id string) (*repository.Snapshot, error)
	Snapshots(ctx context.Context) ([]repository.Info, error)
	Table(ctx context.Context, name string) (types.Table, error)
	Pareto(ctx context.Context, dims string) (types.Table, error)
}

const defaultMaxUploadBytes = 32 << 20

// Option configures the API server.
type Option func(*Server)

// WithMaxUploadBytes caps POST /runs bodies.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.runsHandler.maxBytes = n
		}
	}
}

// Server wires HTTP routes for the analysis API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	runsHandler      *RunsHandler
	snapshotsHandler *SnapshotsHandler
	tablesHandler    *TablesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		runsHandler:      NewRunsHandler(deps, defaultMaxUploadBytes),
		snapshotsHandler: NewSnapshotsHandler(deps),
		tablesHandler:    NewTablesHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /runs", MetricsMiddleware(s.runsHandler.HandlePostRuns, "runs"))
	mux.HandleFunc("GET /snapshots", MetricsMiddleware(s.snapshotsHandler.HandleList, "snapshots"))
	mux.HandleFunc("GET /snapshots/latest", MetricsMiddleware(s.snapshotsHandler.HandleLatest, "snapshots_latest"))
	mux.HandleFunc("GET /snapshots/{id}", MetricsMiddleware(s.snapshotsHandler.HandleGet, "snapshot"))
	mux.HandleFunc("GET /tables", MetricsMiddleware(s.tablesHandler.HandleList, "tables"))
	mux.HandleFunc("GET /tables/{name}", MetricsMiddleware(s.tablesHandler.HandleGet, "table"))
	mux.HandleFunc("GET /pareto", MetricsMiddleware(s.tablesHandler.HandlePareto, "pareto"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service and store errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", fmt.Errorf("%w: %w", ErrUnavailable, err))
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrUnknownTable):
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%w: %w", ErrNotFound, err))
	case errors.Is(err, service.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", fmt.Errorf("%w: %w", ErrBackpressure, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}
