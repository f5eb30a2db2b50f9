package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/climate-forecast-engine/internal/domain"
)

const maxRequestBytes = 64 << 10

// Forecaster produces a forecast for a validated request.
type Forecaster interface {
	Forecast(ctx context.Context, req domain.ForecastRequest) (domain.ForecastResult, error)
}

// Server exposes the forecast API alongside health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	forecaster Forecaster
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the forecast routes plus /healthz,
// /readyz, and /metrics.
func NewServer(addr string, forecaster Forecaster, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 2 * time.Minute, // a cold forecast may retry the archive for every year
			IdleTimeout:  60 * time.Second,
		},
		forecaster: forecaster,
		logger:     logger,
	}

	mux.HandleFunc("POST /api/predictions/forecast", s.handleForecast)
	mux.HandleFunc("POST /api/predictions/validate", s.handleValidate)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

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

type errorResponse struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations,omitempty"`
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req domain.ForecastRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body: " + err.Error()})
		return
	}

	result, err := s.forecaster.Forecast(r.Context(), req)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request", Violations: ve.Violations})
			return
		}
		s.logger.Error("forecast failed", "name", req.Name, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "forecast failed"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleValidate checks a previously generated forecast against the
// response rules without producing a new one.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var res domain.ForecastResult
	if err := decodeBody(w, r, &res); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, domain.ValidateResponse(res))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
