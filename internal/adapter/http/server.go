package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ijsmallman/hass-history-etl/internal/domain"
	"github.com/ijsmallman/hass-history-etl/internal/store"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// HistoryReader is the slice of the store the API serves.
type HistoryReader interface {
	FetchTemperatureReadings(ctx context.Context, q store.ReadingQuery) ([]domain.TemperatureReading, error)
	CountTable(ctx context.Context, table string) (int64, error)
}

// Server exposes health, readiness, metrics, and history query HTTP endpoints.
type Server struct {
	httpServer *http.Server
	reader     HistoryReader
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /api/v1 history routes.
func NewServer(addr string, reader HistoryReader, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		reader: reader,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/v1/readings", s.handleReadings)
	mux.HandleFunc("GET /api/v1/counts", s.handleCounts)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// handleReadings serves GET /api/v1/readings?from=&to=&unit=. Bounds are
// RFC 3339 and inclusive; either side may be omitted.
func (s *Server) handleReadings(w http.ResponseWriter, r *http.Request) {
	var q store.ReadingQuery
	q.TargetUnit = r.URL.Query().Get("unit")

	if v := r.URL.Query().Get("from"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from: must be RFC 3339")
			return
		}
		q.From = ts
	}
	if v := r.URL.Query().Get("to"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to: must be RFC 3339")
			return
		}
		q.To = ts
	}

	readings, err := s.reader.FetchTemperatureReadings(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(readings),
		"readings": readings,
	})
}

// handleCounts serves GET /api/v1/counts with row counts of every recorder table.
func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	counts := make(map[string]int64, 4)
	for _, table := range []string{store.TableEvents, store.TableRecorderRuns, store.TableSchemaChanges, store.TableStates} {
		n, err := s.reader.CountTable(r.Context(), table)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		counts[table] = n
	}
	writeJSON(w, http.StatusOK, counts)
}

// writeDomainError maps the reader's error taxonomy onto HTTP statuses:
// caller mistakes are 400s, bad rows and engine failures are 500s.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedUnit), errors.Is(err, domain.ErrUnknownTable):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
