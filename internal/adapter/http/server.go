package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/opencovid-fr/internal/dashboard"
	"github.com/couchcryptid/opencovid-fr/internal/domain"
	"github.com/couchcryptid/opencovid-fr/internal/forecast"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Dashboard answers the API queries.
type Dashboard interface {
	Areas() []dashboard.Area
	NationalIndicators(ctx context.Context) (dashboard.Indicators, error)
	AreaIndicators(ctx context.Context, area string) (dashboard.Indicators, error)
	NationalTrends(ctx context.Context) (dashboard.Trends, error)
	AreaTrends(ctx context.Context, area string) (dashboard.Trends, error)
	NationalForecast(ctx context.Context) (forecast.Series, error)
	AreaForecast(ctx context.Context, area string) (forecast.Series, error)
	ForecastChart(ctx context.Context, area string) ([]byte, error)
	IncidenceMap(ctx context.Context) (dashboard.Map, error)
	HospitalizationMap(ctx context.Context, r dashboard.DateRange) (dashboard.Map, error)
	PositivesMap(ctx context.Context, r dashboard.DateRange) (dashboard.Map, error)
	IncidenceWorkbook(ctx context.Context) ([]byte, error)
}

// Refresher forces a reload of every source feed.
type Refresher interface {
	Refresh(ctx context.Context) (*domain.Dataset, error)
}

// Server exposes the dashboard API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	dashboard  Dashboard
	refresher  Refresher
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the API, /healthz, /readyz, and
// /metrics routes.
func NewServer(addr string, ready ReadinessChecker, d Dashboard, refresher Refresher, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       10 * time.Second,
			// Cold loads and model fits run inside the request.
			WriteTimeout: 3 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		dashboard: d,
		refresher: refresher,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/areas", s.handleAreas)
	mux.HandleFunc("GET /api/indicators/national", s.handleNationalIndicators)
	mux.HandleFunc("GET /api/indicators/area/{area}", s.handleAreaIndicators)
	mux.HandleFunc("GET /api/trends/national", s.handleNationalTrends)
	mux.HandleFunc("GET /api/trends/area/{area}", s.handleAreaTrends)
	mux.HandleFunc("GET /api/forecast/national", s.handleNationalForecast)
	mux.HandleFunc("GET /api/forecast/area/{area}", s.handleAreaForecast)
	mux.HandleFunc("GET /api/charts/forecast/{area}", s.handleForecastChart)
	mux.HandleFunc("GET /api/maps/incidence", s.handleIncidenceMap)
	mux.HandleFunc("GET /api/maps/hospitalizations", s.handleHospitalizationMap)
	mux.HandleFunc("GET /api/maps/positives", s.handlePositivesMap)
	mux.HandleFunc("GET /api/export/incidence.xlsx", s.handleIncidenceExport)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)

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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

func writeBytes(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // client may have gone away
}
