package dashboard

import (
	"context"
	"time"

	"github.com/couchcryptid/opencovid-fr/internal/domain"
)

// RecentDays is the window of the short-term hospitalization trend.
const RecentDays = 10

// Trend is one chart series. Grouped series carry Totals, ungrouped ones
// Observations.
type Trend struct {
	Name         string               `json:"name"`
	GroupedBy    string               `json:"grouped_by,omitempty"`
	Observations []domain.Observation `json:"observations,omitempty"`
	Totals       []domain.DailyTotal  `json:"totals,omitempty"`
	Error        string               `json:"error,omitempty"`
}

// Trends is a set of series computed from one dataset.
type Trends struct {
	Area     *Area     `json:"area,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
	Trends   []Trend   `json:"trends"`
}

// Trend returns the named series.
func (t Trends) Trend(name string) (Trend, bool) {
	for _, tr := range t.Trends {
		if tr.Name == name {
			return tr, true
		}
	}
	return Trend{}, false
}

// Trend names that are not plain metric names.
const (
	TrendRecentNewHospitalizations = "recent_new_hospitalizations"
	TrendRecentNewICUAdmissions    = "recent_new_icu_admissions"
	TrendTestedByAge               = "tested_by_age"
	TrendPositiveByAge             = "positive_by_age"
)

// NationalTrends returns daily positives and tested people for France.
func (s *Service) NationalTrends(ctx context.Context) (Trends, error) {
	ds, err := s.data.Load(ctx)
	if err != nil {
		return Trends{}, err
	}
	return NationalTrendsOf(ds), nil
}

// NationalTrendsOf computes the national trends of ds.
func NationalTrendsOf(ds *domain.Dataset) Trends {
	tests := allAgesTests(ds.DepartmentTests())
	return Trends{
		LoadedAt: ds.LoadedAt(),
		Trends: []Trend{
			totalsTrend(domain.Positive.Name, domain.SumByDay(tests, domain.Positive)),
			totalsTrend(domain.Tested.Name, domain.SumByDay(tests, domain.Tested)),
		},
	}
}

// AreaTrends returns the series of one department, given by name or code.
func (s *Service) AreaTrends(ctx context.Context, area string) (Trends, error) {
	a, err := s.ResolveArea(area)
	if err != nil {
		return Trends{}, err
	}
	ds, err := s.data.Load(ctx)
	if err != nil {
		return Trends{}, err
	}
	return AreaTrendsOf(ds, a), nil
}

// AreaTrendsOf computes the trends of one department in ds.
func AreaTrendsOf(ds *domain.Dataset, a Area) Trends {
	rows := areaRows(ds, a.Name)
	brackets := domain.FilterByArea(ageBracketTests(ds.DepartmentTests()), a.Code)

	return Trends{
		Area:     &a,
		LoadedAt: ds.LoadedAt(),
		Trends: []Trend{
			recentTrend(TrendRecentNewHospitalizations, domain.Observations(rows, domain.NewHospitalizations)),
			recentTrend(TrendRecentNewICUAdmissions, domain.Observations(rows, domain.NewICUAdmissions)),
			observationTrend(domain.CumulativeDeaths.Name, domain.Observations(rows, domain.CumulativeDeaths)),
			observationTrend(domain.CumulativeHospitalized.Name, domain.Observations(rows, domain.CumulativeHospitalized)),
			observationTrend(domain.CumulativeICU.Name, domain.Observations(rows, domain.CumulativeICU)),
			groupedTrend(TrendTestedByAge, domain.SumByDay(brackets, domain.Tested, domain.ByAgeBracket)),
			groupedTrend(TrendPositiveByAge, domain.SumByDay(brackets, domain.Positive, domain.ByAgeBracket)),
		},
	}
}

func observationTrend(name string, obs []domain.Observation) Trend {
	t := Trend{Name: name, Observations: obs}
	if len(obs) == 0 {
		t.Error = errString(&domain.InsufficientDataError{Metric: name, Have: 0, Need: 1})
	}
	return t
}

func recentTrend(name string, obs []domain.Observation) Trend {
	return observationTrend(name, domain.LastN(obs, RecentDays))
}

func totalsTrend(name string, totals []domain.DailyTotal) Trend {
	obs := make([]domain.Observation, len(totals))
	for i, t := range totals {
		obs[i] = domain.Observation{Day: t.Day, Value: t.Total}
	}
	return observationTrend(name, obs)
}

func groupedTrend(name string, totals []domain.DailyTotal) Trend {
	t := Trend{Name: name, GroupedBy: domain.ByAgeBracket.Name, Totals: totals}
	if len(totals) == 0 {
		t.Error = errString(&domain.InsufficientDataError{Metric: name, Have: 0, Need: 1})
	}
	return t
}
