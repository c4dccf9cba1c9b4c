package domain

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Dated rows carry a calendar day. A zero day means the source date was
// malformed.
type Dated interface {
	Date() time.Time
}

// Keyed rows belong to an area: a name for key figures, a department code
// for SI-DEP and incidence rows.
type Keyed interface {
	AreaKey() string
}

// Metric extracts an optional numeric value from a row.
type Metric[R any] struct {
	Name  string
	Value func(R) (float64, bool)
}

// Dimension extracts a grouping label from a row.
type Dimension[R any] struct {
	Name  string
	Value func(R) string
}

// Field adapts a nullable field accessor into a Metric.
func Field[R any](name string, get func(R) *float64) Metric[R] {
	return Metric[R]{
		Name: name,
		Value: func(r R) (float64, bool) {
			p := get(r)
			if p == nil {
				return 0, false
			}
			return *p, true
		},
	}
}

// Key figure metrics.
var (
	NewHospitalizations    = Field("new_hospitalizations", func(r AreaRecord) *float64 { return r.NewHospitalizations })
	NewICUAdmissions       = Field("new_icu_admissions", func(r AreaRecord) *float64 { return r.NewICUAdmissions })
	CumulativeDeaths       = Field("cumulative_deaths", func(r AreaRecord) *float64 { return r.CumulativeDeaths })
	CumulativeHospitalized = Field("cumulative_hospitalized", func(r AreaRecord) *float64 { return r.CumulativeHospitalized })
	CumulativeICU          = Field("cumulative_icu", func(r AreaRecord) *float64 { return r.CumulativeICU })
)

// SI-DEP metrics and dimensions.
var (
	Tested   = Field("tested", func(r DepartmentTestRecord) *float64 { return r.Tested })
	Positive = Field("positive", func(r DepartmentTestRecord) *float64 { return r.Positive })

	ByAgeBracket = Dimension[DepartmentTestRecord]{Name: "age_bracket", Value: func(r DepartmentTestRecord) string { return r.AgeBracket }}
	ByDepartment = Dimension[DepartmentTestRecord]{Name: "department", Value: func(r DepartmentTestRecord) string { return r.DepartmentCode }}
)

// Incidence metrics.
var (
	IncidencePositive = Field("positive", func(r IncidenceRecord) *float64 { return r.Positive })
	Incidence         = Metric[IncidenceRecord]{Name: "incidence_rate", Value: IncidenceRecord.IncidenceRate}
)

// IncidenceRate returns p per 100 000 inhabitants. It is undefined when pop is
// not a positive number.
func IncidenceRate(p, pop float64) (float64, bool) {
	if pop <= 0 || math.IsNaN(pop) || math.IsNaN(p) {
		return 0, false
	}
	return p * 100000 / pop, true
}

// Observation is one dated value.
type Observation struct {
	Day   time.Time `json:"day"`
	Value float64   `json:"value"`
}

// Delta is the most recent observation and the one before it.
type Delta struct {
	Latest   Observation `json:"latest"`
	Previous Observation `json:"previous"`
}

// Change is Latest minus Previous.
func (d Delta) Change() float64 { return d.Latest.Value - d.Previous.Value }

// Observations returns the dated, non-missing values of m in chronological
// order. Rows sharing a day keep their input order.
func Observations[R Dated](rows []R, m Metric[R]) []Observation {
	out := make([]Observation, 0, len(rows))
	for _, r := range rows {
		day := r.Date()
		if day.IsZero() {
			continue
		}
		v, ok := m.Value(r)
		if !ok {
			continue
		}
		out = append(out, Observation{Day: day, Value: v})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// LatestAndDelta returns the last two observations of m after ordering rows
// by day.
func LatestAndDelta[R Dated](rows []R, m Metric[R]) (Delta, error) {
	obs := Observations(rows, m)
	return lastTwo(m.Name, obs)
}

// LatestAndDeltaOf is LatestAndDelta over an already aggregated series.
func LatestAndDeltaOf(name string, totals []DailyTotal) (Delta, error) {
	obs := make([]Observation, 0, len(totals))
	for _, t := range totals {
		obs = append(obs, Observation{Day: t.Day, Value: t.Total})
	}
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Day.Before(obs[j].Day) })
	return lastTwo(name, obs)
}

func lastTwo(name string, obs []Observation) (Delta, error) {
	if len(obs) < 2 {
		return Delta{}, &InsufficientDataError{Metric: name, Have: len(obs), Need: 2}
	}
	return Delta{Latest: obs[len(obs)-1], Previous: obs[len(obs)-2]}, nil
}

// DailyTotal is the sum of a metric for one day and one combination of
// grouping labels.
type DailyTotal struct {
	Day      time.Time `json:"day"`
	Groups   []string  `json:"groups,omitempty"`
	Total    float64   `json:"total"`
	Observed int       `json:"observed"` // rows that carried a value
}

// SumByDay sums m per day and per combination of dims. Rows without a day are
// excluded; missing values add nothing. Output is ascending by day, then by
// group labels in natural order (numeric labels compare as numbers).
func SumByDay[R Dated](rows []R, m Metric[R], dims ...Dimension[R]) []DailyTotal {
	index := make(map[string]int)
	var out []DailyTotal

	for _, r := range rows {
		day := r.Date()
		if day.IsZero() {
			continue
		}
		groups := make([]string, len(dims))
		for i, d := range dims {
			groups[i] = d.Value(r)
		}
		k := day.Format(DayLayout) + "\x00" + strings.Join(groups, "\x00")

		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, DailyTotal{Day: day, Groups: groups})
		}
		if v, ok := m.Value(r); ok {
			out[i].Total += v
			out[i].Observed++
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		return lessGroups(out[i].Groups, out[j].Groups)
	})
	if len(dims) == 0 {
		for i := range out {
			out[i].Groups = nil
		}
	}
	return out
}

func lessGroups(a, b []string) bool {
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		return NaturalLess(a[i], b[i])
	}
	return false
}

// NaturalLess orders numeric labels by value and falls back to string order.
// Numeric labels sort before non-numeric ones.
func NaturalLess(a, b string) bool {
	na, errA := strconv.ParseFloat(a, 64)
	nb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// FilterByArea returns the rows whose AreaKey equals key.
func FilterByArea[R Keyed](rows []R, key string) []R {
	var out []R
	for _, r := range rows {
		if r.AreaKey() == key {
			out = append(out, r)
		}
	}
	return out
}

// FilterByDateRange returns the rows whose day falls within [start, end].
// A zero bound is open. Undated rows are dropped.
func FilterByDateRange[R Dated](rows []R, start, end time.Time) ([]R, error) {
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return nil, &RangeError{Start: start, End: end}
	}
	var out []R
	for _, r := range rows {
		day := r.Date()
		if day.IsZero() {
			continue
		}
		if !start.IsZero() && day.Before(start) {
			continue
		}
		if !end.IsZero() && day.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Filter returns the rows for which keep is true.
func Filter[R any](rows []R, keep func(R) bool) []R {
	var out []R
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// LastDay returns the most recent day among rows, or false if none is dated.
func LastDay[R Dated](rows []R) (time.Time, bool) {
	var last time.Time
	for _, r := range rows {
		if d := r.Date(); d.After(last) {
			last = d
		}
	}
	return last, !last.IsZero()
}

// LastN keeps the final n entries of a chronological slice.
func LastN[T any](s []T, n int) []T {
	if n <= 0 {
		return nil
	}
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
