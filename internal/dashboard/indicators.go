package dashboard

import (
	"context"
	"time"

	"github.com/couchcryptid/opencovid-fr/internal/domain"
)

// AlertLevel classifies a weekly incidence rate.
type AlertLevel string

const (
	AlertLow       AlertLevel = "low"
	AlertVigilance AlertLevel = "vigilance"
	AlertHigh      AlertLevel = "alert"
)

// Incidence thresholds, in cases per 100 000 inhabitants over seven days.
const (
	VigilanceThreshold = 10.0
	AlertThreshold     = 50.0
)

// AlertLevelFor returns the level of rate.
func AlertLevelFor(rate float64) AlertLevel {
	switch {
	case rate >= AlertThreshold:
		return AlertHigh
	case rate >= VigilanceThreshold:
		return AlertVigilance
	default:
		return AlertLow
	}
}

// Indicator is a latest value with its change from the previous observation.
type Indicator struct {
	Name     string     `json:"name"`
	Day      time.Time  `json:"day,omitzero"`
	Value    float64    `json:"value"`
	Previous float64    `json:"previous"`
	Change   float64    `json:"change"`
	Alert    AlertLevel `json:"alert,omitempty"`
	Error    string     `json:"error,omitempty"`
}

func newIndicator(name string, d domain.Delta, err error) Indicator {
	if err != nil {
		return Indicator{Name: name, Error: err.Error()}
	}
	return Indicator{
		Name:     name,
		Day:      d.Latest.Day,
		Value:    d.Latest.Value,
		Previous: d.Previous.Value,
		Change:   d.Change(),
	}
}

func metricIndicator[R domain.Dated](rows []R, m domain.Metric[R]) Indicator {
	d, err := domain.LatestAndDelta(rows, m)
	return newIndicator(m.Name, d, err)
}

func totalIndicator(name string, totals []domain.DailyTotal) Indicator {
	d, err := domain.LatestAndDeltaOf(name, totals)
	return newIndicator(name, d, err)
}

func incidenceIndicator(rows []domain.IncidenceRecord) Indicator {
	ind := metricIndicator(rows, domain.Incidence)
	if ind.Error == "" {
		ind.Alert = AlertLevelFor(ind.Value)
	}
	return ind
}

// Indicators is a set of indicators computed from one dataset.
type Indicators struct {
	Area       *Area       `json:"area,omitempty"`
	LoadedAt   time.Time   `json:"loaded_at"`
	Indicators []Indicator `json:"indicators"`
}

// Indicator returns the named indicator.
func (s Indicators) Indicator(name string) (Indicator, bool) {
	for _, ind := range s.Indicators {
		if ind.Name == name {
			return ind, true
		}
	}
	return Indicator{}, false
}

// NationalIndicators computes the headline figures for France.
func (s *Service) NationalIndicators(ctx context.Context) (Indicators, error) {
	ds, err := s.data.Load(ctx)
	if err != nil {
		return Indicators{}, err
	}
	return NationalIndicatorsOf(ds), nil
}

// NationalIndicatorsOf computes the national indicators of ds.
func NationalIndicatorsOf(ds *domain.Dataset) Indicators {
	france := domain.FilterByArea(ds.Areas(), domain.NationalAreaName)
	positives := domain.SumByDay(allAgesTests(ds.DepartmentTests()), domain.Positive)

	return Indicators{
		LoadedAt: ds.LoadedAt(),
		Indicators: []Indicator{
			metricIndicator(france, domain.NewHospitalizations),
			metricIndicator(france, domain.NewICUAdmissions),
			totalIndicator(domain.Positive.Name, positives),
			incidenceIndicator(allAgesIncidence(ds.NationalIncidence())),
		},
	}
}

// AreaIndicators computes the figures for one department, given by name or
// code.
func (s *Service) AreaIndicators(ctx context.Context, area string) (Indicators, error) {
	a, err := s.ResolveArea(area)
	if err != nil {
		return Indicators{}, err
	}
	ds, err := s.data.Load(ctx)
	if err != nil {
		return Indicators{}, err
	}
	return AreaIndicatorsOf(ds, a), nil
}

// AreaIndicatorsOf computes the indicators of one department in ds.
func AreaIndicatorsOf(ds *domain.Dataset, a Area) Indicators {
	rows := areaRows(ds, a.Name)
	incidence := domain.FilterByArea(allAgesIncidence(ds.DepartmentIncidence()), a.Code)
	tests := domain.FilterByArea(allAgesTests(ds.DepartmentTests()), a.Code)

	return Indicators{
		Area:     &a,
		LoadedAt: ds.LoadedAt(),
		Indicators: []Indicator{
			incidenceIndicator(incidence),
			metricIndicator(rows, domain.CumulativeDeaths),
			metricIndicator(rows, domain.NewHospitalizations),
			metricIndicator(rows, domain.NewICUAdmissions),
			totalIndicator(domain.Tested.Name, domain.SumByDay(tests, domain.Tested)),
			totalIndicator(domain.Positive.Name, domain.SumByDay(tests, domain.Positive)),
		},
	}
}
