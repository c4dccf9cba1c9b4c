package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/couchcryptid/opencovid-fr/internal/dashboard"
	"github.com/couchcryptid/opencovid-fr/internal/domain"
	"github.com/couchcryptid/opencovid-fr/internal/forecast"
	"github.com/couchcryptid/opencovid-fr/internal/geo"
)

const (
	contentTypePNG  = "image/png"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (s *Server) handleAreas(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboard.Areas())
}

func (s *Server) handleNationalIndicators(w http.ResponseWriter, r *http.Request) {
	respond(s, w, r, func(ctx context.Context) (dashboard.Indicators, error) {
		return s.dashboard.NationalIndicators(ctx)
	})
}

func (s *Server) handleAreaIndicators(w http.ResponseWriter, r *http.Request) {
	area := r.PathValue("area")
	respond(s, w, r, func(ctx context.Context) (dashboard.Indicators, error) {
		return s.dashboard.AreaIndicators(ctx, area)
	})
}

func (s *Server) handleNationalTrends(w http.ResponseWriter, r *http.Request) {
	respond(s, w, r, s.dashboard.NationalTrends)
}

func (s *Server) handleAreaTrends(w http.ResponseWriter, r *http.Request) {
	area := r.PathValue("area")
	respond(s, w, r, func(ctx context.Context) (dashboard.Trends, error) {
		return s.dashboard.AreaTrends(ctx, area)
	})
}

func (s *Server) handleNationalForecast(w http.ResponseWriter, r *http.Request) {
	respond(s, w, r, s.dashboard.NationalForecast)
}

func (s *Server) handleAreaForecast(w http.ResponseWriter, r *http.Request) {
	area := r.PathValue("area")
	respond(s, w, r, func(ctx context.Context) (forecast.Series, error) {
		return s.dashboard.AreaForecast(ctx, area)
	})
}

func (s *Server) handleForecastChart(w http.ResponseWriter, r *http.Request) {
	png, err := s.dashboard.ForecastChart(r.Context(), r.PathValue("area"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, contentTypePNG, png)
}

func (s *Server) handleIncidenceMap(w http.ResponseWriter, r *http.Request) {
	respond(s, w, r, s.dashboard.IncidenceMap)
}

func (s *Server) handleHospitalizationMap(w http.ResponseWriter, r *http.Request) {
	dr, err := dateRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(s, w, r, func(ctx context.Context) (dashboard.Map, error) {
		return s.dashboard.HospitalizationMap(ctx, dr)
	})
}

func (s *Server) handlePositivesMap(w http.ResponseWriter, r *http.Request) {
	dr, err := dateRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(s, w, r, func(ctx context.Context) (dashboard.Map, error) {
		return s.dashboard.PositivesMap(ctx, dr)
	})
}

func (s *Server) handleIncidenceExport(w http.ResponseWriter, r *http.Request) {
	xlsx, err := s.dashboard.IncidenceWorkbook(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="incidence.xlsx"`)
	writeBytes(w, contentTypeXLSX, xlsx)
}

type refreshResponse struct {
	LoadedAt time.Time      `json:"loaded_at"`
	Rows     map[string]int `json:"rows"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ds, err := s.refresher.Refresh(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{LoadedAt: ds.LoadedAt(), Rows: ds.RowCounts()})
}

func respond[T any](s *Server, w http.ResponseWriter, r *http.Request, fn func(context.Context) (T, error)) {
	v, err := fn(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// badRequestError marks a malformed query parameter.
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

func dateRange(r *http.Request) (dashboard.DateRange, error) {
	var dr dashboard.DateRange
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{
		{"start", &dr.Start},
		{"end", &dr.End},
	} {
		v := r.URL.Query().Get(p.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(domain.DayLayout, v)
		if err != nil {
			return dashboard.DateRange{}, &badRequestError{fmt.Errorf("invalid %s date %q: want YYYY-MM-DD", p.name, v)}
		}
		*p.dst = t
	}
	return dr, nil
}

// statusFor maps domain errors onto HTTP status codes. Load and geo-join
// failures are checked first because they may wrap geo.ErrNotFound.
func statusFor(err error) int {
	var (
		badRequest   *badRequestError
		rangeErr     *domain.RangeError
		loadErr      *domain.DataLoadError
		geoErr       *domain.GeoResolutionError
		forecastErr  *domain.ForecastError
		insufficient *domain.InsufficientDataError
	)
	switch {
	case errors.As(err, &badRequest), errors.As(err, &rangeErr):
		return http.StatusBadRequest
	case errors.As(err, &loadErr), errors.As(err, &geoErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, geo.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &forecastErr), errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
