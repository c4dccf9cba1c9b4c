// Package dashboard assembles the indicators, trend series, forecasts and map
// frames shown to users from a loaded dataset. Each indicator and series
// degrades independently: a failure is reported on the item itself.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/opencovid-fr/internal/domain"
	"github.com/couchcryptid/opencovid-fr/internal/forecast"
	"github.com/couchcryptid/opencovid-fr/internal/geo"
)

// DatasetSource returns the current dataset, loading it if needed.
type DatasetSource interface {
	Load(ctx context.Context) (*domain.Dataset, error)
}

// Forecaster predicts a daily series.
type Forecaster interface {
	Forecast(ctx context.Context, id string, obs []domain.Observation, p forecast.Params) (forecast.Series, error)
}

// Service answers dashboard queries.
type Service struct {
	data       DatasetSource
	forecaster Forecaster
	table      *geo.Table
	horizon    int
	logger     *slog.Logger
}

// NewService creates a Service. A non-positive horizon selects
// forecast.DefaultHorizon.
func NewService(data DatasetSource, f Forecaster, table *geo.Table, horizon int, logger *slog.Logger) *Service {
	if horizon <= 0 {
		horizon = forecast.DefaultHorizon
	}
	return &Service{
		data:       data,
		forecaster: f,
		table:      table,
		horizon:    horizon,
		logger:     logger,
	}
}

// Area identifies a department by code and name.
type Area struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Areas lists the selectable departments in code order.
func (s *Service) Areas() []Area {
	deps := s.table.Departments()
	out := make([]Area, len(deps))
	for i, d := range deps {
		out[i] = Area{Code: d.Code, Name: d.Name}
	}
	return out
}

// ResolveArea accepts a department name or code. Unknown values wrap
// geo.ErrNotFound.
func (s *Service) ResolveArea(area string) (Area, error) {
	if code, err := s.table.DepartmentCodeForName(area); err == nil {
		return Area{Code: code, Name: area}, nil
	}
	code := geo.NormalizeCode(area)
	name, err := s.table.DepartmentNameForCode(code)
	if err != nil {
		return Area{}, fmt.Errorf("area %q: %w", area, err)
	}
	return Area{Code: code, Name: name}, nil
}

// allAgesTests keeps the all-ages total rows of the SI-DEP feed.
func allAgesTests(rows []domain.DepartmentTestRecord) []domain.DepartmentTestRecord {
	return domain.Filter(rows, domain.DepartmentTestRecord.IsAllAges)
}

// ageBracketTests keeps the per-bracket rows, excluding the all-ages total.
func ageBracketTests(rows []domain.DepartmentTestRecord) []domain.DepartmentTestRecord {
	return domain.Filter(rows, func(r domain.DepartmentTestRecord) bool { return !r.IsAllAges() })
}

func allAgesIncidence(rows []domain.IncidenceRecord) []domain.IncidenceRecord {
	return domain.Filter(rows, domain.IncidenceRecord.IsAllAges)
}

// areaRows returns the department-level key-figure rows of one department.
// Some names (Guadeloupe, Martinique, ...) are both a region and a department.
func areaRows(ds *domain.Dataset, name string) []domain.AreaRecord {
	return domain.Filter(domain.FilterByArea(ds.Areas(), name), func(r domain.AreaRecord) bool {
		return r.Granularity == domain.GranularityDepartment
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
