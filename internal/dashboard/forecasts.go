package dashboard

import (
	"context"

	"github.com/couchcryptid/opencovid-fr/internal/domain"
	"github.com/couchcryptid/opencovid-fr/internal/forecast"
)

// NationalSeriesID identifies the aggregate France positive-case series.
const NationalSeriesID = "national"

// DepartmentSeriesID identifies the positive-case series of a department.
func DepartmentSeriesID(code string) string {
	return "department:" + code
}

// NationalPositives is the daily all-ages positive count for France.
func NationalPositives(ds *domain.Dataset) []domain.Observation {
	return forecast.ObservationsFromTotals(domain.SumByDay(allAgesTests(ds.DepartmentTests()), domain.Positive))
}

// DepartmentPositives is the daily all-ages positive count of one department.
func DepartmentPositives(ds *domain.Dataset, code string) []domain.Observation {
	rows := domain.FilterByArea(allAgesTests(ds.DepartmentTests()), code)
	return forecast.ObservationsFromTotals(domain.SumByDay(rows, domain.Positive))
}

// NationalForecast predicts daily positive cases for France.
func (s *Service) NationalForecast(ctx context.Context) (forecast.Series, error) {
	ds, err := s.data.Load(ctx)
	if err != nil {
		return forecast.Series{}, err
	}
	return s.forecaster.Forecast(ctx, NationalSeriesID, NationalPositives(ds), forecast.NationalParams.WithHorizon(s.horizon))
}

// AreaForecast predicts daily positive cases for one department, given by
// name or code.
func (s *Service) AreaForecast(ctx context.Context, area string) (forecast.Series, error) {
	a, err := s.ResolveArea(area)
	if err != nil {
		return forecast.Series{}, err
	}
	ds, err := s.data.Load(ctx)
	if err != nil {
		return forecast.Series{}, err
	}
	return s.forecaster.Forecast(ctx, DepartmentSeriesID(a.Code), DepartmentPositives(ds, a.Code), forecast.DepartmentParams.WithHorizon(s.horizon))
}
