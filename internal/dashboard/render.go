package dashboard

import (
	"bytes"
	"context"
	"fmt"

	"github.com/couchcryptid/opencovid-fr/internal/chart"
	"github.com/couchcryptid/opencovid-fr/internal/export"
	"github.com/couchcryptid/opencovid-fr/internal/forecast"
)

// NationalArea selects the France aggregate where an area is expected.
const NationalArea = "national"

// ForecastChart renders the forecast of area, or of France when area is
// NationalArea, as a PNG image.
func (s *Service) ForecastChart(ctx context.Context, area string) ([]byte, error) {
	var (
		series forecast.Series
		title  string
		err    error
	)
	if area == NationalArea {
		series, err = s.NationalForecast(ctx)
		title = "France: daily positive cases"
	} else {
		var a Area
		if a, err = s.ResolveArea(area); err != nil {
			return nil, err
		}
		series, err = s.AreaForecast(ctx, a.Code)
		title = fmt.Sprintf("%s (%s): daily positive cases", a.Name, a.Code)
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := chart.RenderForecast(&buf, series, title); err != nil {
		return nil, fmt.Errorf("render forecast %s: %w", series.ID, err)
	}
	return buf.Bytes(), nil
}

// IncidenceWorkbook exports the incidence feeds as an XLSX file.
func (s *Service) IncidenceWorkbook(ctx context.Context) ([]byte, error) {
	ds, err := s.data.Load(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.IncidenceWorkbook(&buf, ds, s.departmentName); err != nil {
		return nil, fmt.Errorf("export incidence: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Service) departmentName(code string) string {
	return departmentLabel(s.table, code)
}
