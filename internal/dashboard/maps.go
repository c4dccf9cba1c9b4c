package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/couchcryptid/opencovid-fr/internal/domain"
	"github.com/couchcryptid/opencovid-fr/internal/geo"
)

// MapCenter is where maps of metropolitan France are centred.
var MapCenter = geo.Coordinates{Lat: 48.862725, Lon: 2.287592}

// MapPoint is one sized marker.
type MapPoint struct {
	Key         string          `json:"key"`
	Label       string          `json:"label"`
	Coordinates geo.Coordinates `json:"coordinates"`
	Value       float64         `json:"value"`
}

// MapFrame holds the markers of one day.
type MapFrame struct {
	Day    time.Time  `json:"day"`
	Points []MapPoint `json:"points"`
}

// Map is a sequence of frames for one metric.
type Map struct {
	Metric      string          `json:"metric"`
	RollingWeek string          `json:"rolling_week,omitempty"`
	Center      geo.Coordinates `json:"center"`
	Centroid    geo.Coordinates `json:"centroid,omitzero"`
	Frames      []MapFrame      `json:"frames"`
}

// DateRange bounds a map request. Zero bounds default to the latest day of
// the underlying table.
type DateRange struct {
	Start, End time.Time
}

// IncidenceMap returns the departmental incidence rate of the latest rolling
// week.
func (s *Service) IncidenceMap(ctx context.Context) (Map, error) {
	ds, err := s.data.Load(ctx)
	if err != nil {
		return Map{}, err
	}
	return IncidenceMapOf(ds, s.table), nil
}

// IncidenceMapOf builds the latest-week incidence map of ds.
func IncidenceMapOf(ds *domain.Dataset, table *geo.Table) Map {
	rows := allAgesIncidence(ds.DepartmentIncidence())
	m := Map{Metric: domain.Incidence.Name, Center: MapCenter}

	last, ok := domain.LastDay(rows)
	if !ok {
		return m
	}
	week := domain.Filter(rows, func(r domain.IncidenceRecord) bool { return r.Day.Equal(last) })
	if len(week) > 0 {
		m.RollingWeek = week[0].RollingWeek
	}

	frame := MapFrame{Day: last}
	for _, r := range week {
		rate, ok := r.IncidenceRate()
		if !ok {
			continue
		}
		frame.Points = append(frame.Points, MapPoint{
			Key:         r.DepartmentCode,
			Label:       departmentLabel(table, r.DepartmentCode),
			Coordinates: r.Coordinates,
			Value:       rate,
		})
	}
	sortPoints(frame.Points)
	m.Frames = []MapFrame{frame}
	return m.withCentroid()
}

// HospitalizationMap returns per-day new hospitalizations by department.
func (s *Service) HospitalizationMap(ctx context.Context, r DateRange) (Map, error) {
	ds, err := s.data.Load(ctx)
	if err != nil {
		return Map{}, err
	}
	return HospitalizationMapOf(ds, s.table, r)
}

// HospitalizationMapOf builds the new-hospitalization frames of ds.
func HospitalizationMapOf(ds *domain.Dataset, table *geo.Table, r DateRange) (Map, error) {
	rows, err := inRange(ds.Departments(), r)
	if err != nil {
		return Map{}, err
	}

	byDay := make(map[time.Time][]MapPoint)
	for _, row := range rows {
		v := 0.0
		if row.NewHospitalizations != nil {
			v = *row.NewHospitalizations
		}
		key := row.AreaCode
		if code, err := table.DepartmentCodeForName(row.AreaName); err == nil {
			key = code
		}
		byDay[row.Day] = append(byDay[row.Day], MapPoint{
			Key:         key,
			Label:       row.AreaName,
			Coordinates: row.Coordinates,
			Value:       v,
		})
	}

	m := Map{Metric: domain.NewHospitalizations.Name, Center: MapCenter, Frames: frames(byDay)}
	return m.withCentroid(), nil
}

// PositivesMap returns per-day all-ages positive cases by department.
func (s *Service) PositivesMap(ctx context.Context, r DateRange) (Map, error) {
	ds, err := s.data.Load(ctx)
	if err != nil {
		return Map{}, err
	}
	return PositivesMapOf(ds, s.table, r)
}

// PositivesMapOf builds the positive-case frames of ds.
func PositivesMapOf(ds *domain.Dataset, table *geo.Table, r DateRange) (Map, error) {
	rows, err := inRange(allAgesTests(ds.DepartmentTests()), r)
	if err != nil {
		return Map{}, err
	}

	coords := make(map[string]geo.Coordinates)
	for _, row := range rows {
		coords[row.DepartmentCode] = row.Coordinates
	}

	byDay := make(map[time.Time][]MapPoint)
	for _, t := range domain.SumByDay(rows, domain.Positive, domain.ByDepartment) {
		code := t.Groups[0]
		byDay[t.Day] = append(byDay[t.Day], MapPoint{
			Key:         code,
			Label:       departmentLabel(table, code),
			Coordinates: coords[code],
			Value:       t.Total,
		})
	}

	m := Map{Metric: domain.Positive.Name, Center: MapCenter, Frames: frames(byDay)}
	return m.withCentroid(), nil
}

// inRange applies r, defaulting open bounds to the latest day of rows.
func inRange[R domain.Dated](rows []R, r DateRange) ([]R, error) {
	if r.Start.IsZero() || r.End.IsZero() {
		last, ok := domain.LastDay(rows)
		if !ok {
			return nil, nil
		}
		if r.Start.IsZero() {
			r.Start = last
		}
		if r.End.IsZero() {
			r.End = last
		}
	}
	return domain.FilterByDateRange(rows, r.Start, r.End)
}

func frames(byDay map[time.Time][]MapPoint) []MapFrame {
	out := make([]MapFrame, 0, len(byDay))
	for day, points := range byDay {
		sortPoints(points)
		out = append(out, MapFrame{Day: day, Points: points})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

func sortPoints(points []MapPoint) {
	sort.Slice(points, func(i, j int) bool { return domain.NaturalLess(points[i].Key, points[j].Key) })
}

func (m Map) withCentroid() Map {
	var points []geo.Coordinates
	for _, f := range m.Frames {
		for _, p := range f.Points {
			points = append(points, p.Coordinates)
		}
	}
	if c, ok := geo.Centroid(points...); ok {
		m.Centroid = c
	}
	return m
}

func departmentLabel(table *geo.Table, code string) string {
	if name, err := table.DepartmentNameForCode(code); err == nil {
		return name
	}
	return code
}
