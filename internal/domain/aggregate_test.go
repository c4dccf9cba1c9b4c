package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	return ParseDay(s)
}

// scenario is the 14-day positive-case series used across packages.
var scenario = []float64{10, 12, 9, 15, 20, 18, 22, 25, 30, 28, 26, 33, 31, 29}

func scenarioRows() []DepartmentTestRecord {
	start := day("2020-10-01")
	rows := make([]DepartmentTestRecord, len(scenario))
	for i, v := range scenario {
		rows[i] = DepartmentTestRecord{
			DepartmentCode: "75",
			Day:            start.AddDate(0, 0, i),
			AgeBracket:     AllAges,
			Positive:       Float(v),
		}
	}
	return rows
}

func TestLatestAndDelta_Scenario(t *testing.T) {
	d, err := LatestAndDelta(scenarioRows(), Positive)
	require.NoError(t, err)

	assert.Equal(t, 29.0, d.Latest.Value)
	assert.Equal(t, 31.0, d.Previous.Value)
	assert.Equal(t, day("2020-10-14"), d.Latest.Day)
	assert.Equal(t, day("2020-10-13"), d.Previous.Day)
	assert.Equal(t, -2.0, d.Change())
}

func TestLatestAndDelta_SortsByDay(t *testing.T) {
	rows := []AreaRecord{
		{AreaName: "Paris", Day: day("2020-04-03"), NewHospitalizations: Float(3)},
		{AreaName: "Paris", Day: day("2020-04-01"), NewHospitalizations: Float(1)},
		{AreaName: "Paris", Day: day("2020-04-02"), NewHospitalizations: Float(2)},
	}

	d, err := LatestAndDelta(rows, NewHospitalizations)
	require.NoError(t, err)
	assert.Equal(t, 3.0, d.Latest.Value)
	assert.Equal(t, 2.0, d.Previous.Value)
}

func TestLatestAndDelta_SkipsMissingAndUndated(t *testing.T) {
	rows := []AreaRecord{
		{Day: day("2020-04-01"), NewICUAdmissions: Float(5)},
		{Day: day("2020-04-02"), NewICUAdmissions: Float(7)},
		{Day: day("2020-04-03")},
		{Day: time.Time{}, NewICUAdmissions: Float(99)},
	}

	d, err := LatestAndDelta(rows, NewICUAdmissions)
	require.NoError(t, err)
	assert.Equal(t, 7.0, d.Latest.Value)
	assert.Equal(t, 5.0, d.Previous.Value)
}

func TestLatestAndDelta_InsufficientData(t *testing.T) {
	tests := []struct {
		name string
		rows []AreaRecord
		have int
	}{
		{name: "empty", rows: nil, have: 0},
		{name: "single", rows: []AreaRecord{{Day: day("2020-04-01"), CumulativeDeaths: Float(1)}}, have: 1},
		{name: "only missing", rows: []AreaRecord{{Day: day("2020-04-01")}, {Day: day("2020-04-02")}}, have: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LatestAndDelta(tt.rows, CumulativeDeaths)
			var insufficient *InsufficientDataError
			require.ErrorAs(t, err, &insufficient)
			assert.Equal(t, tt.have, insufficient.Have)
			assert.Equal(t, 2, insufficient.Need)
			assert.Equal(t, "cumulative_deaths", insufficient.Metric)
		})
	}
}

func TestIncidenceRate(t *testing.T) {
	rate, ok := IncidenceRate(50, 100000)
	assert.True(t, ok)
	assert.Equal(t, 50.0, rate)

	rate, ok = IncidenceRate(12, 2148271)
	assert.True(t, ok)
	assert.InDelta(t, 0.5586, rate, 1e-4)

	_, ok = IncidenceRate(10, 0)
	assert.False(t, ok)

	_, ok = IncidenceRate(10, -3)
	assert.False(t, ok)
}

func TestIncidenceRecord_IncidenceRate(t *testing.T) {
	r := IncidenceRecord{Positive: Float(10), Population: Float(0)}
	_, ok := r.IncidenceRate()
	assert.False(t, ok)

	r = IncidenceRecord{Positive: Float(10)}
	_, ok = r.IncidenceRate()
	assert.False(t, ok)

	r = IncidenceRecord{Positive: Float(25), Population: Float(50000)}
	rate, ok := r.IncidenceRate()
	assert.True(t, ok)
	assert.Equal(t, 50.0, rate)
}

func TestSumByDay_OrderAndConservation(t *testing.T) {
	rows := []DepartmentTestRecord{
		{DepartmentCode: "75", Day: day("2020-10-02"), AgeBracket: "19", Positive: Float(4)},
		{DepartmentCode: "13", Day: day("2020-10-01"), AgeBracket: "9", Positive: Float(1)},
		{DepartmentCode: "75", Day: day("2020-10-01"), AgeBracket: "19", Positive: Float(2)},
		{DepartmentCode: "13", Day: day("2020-10-02"), AgeBracket: "9", Positive: Float(3)},
		{DepartmentCode: "69", Day: time.Time{}, AgeBracket: "9", Positive: Float(100)},
		{DepartmentCode: "69", Day: day("2020-10-02"), AgeBracket: "9"},
	}

	totals := SumByDay(rows, Positive)
	want := []DailyTotal{
		{Day: day("2020-10-01"), Total: 3, Observed: 2},
		{Day: day("2020-10-02"), Total: 7, Observed: 2},
	}
	if diff := cmp.Diff(want, totals); diff != "" {
		t.Errorf("SumByDay mismatch (-want +got):\n%s", diff)
	}

	var sum float64
	for _, tt := range totals {
		sum += tt.Total
	}
	assert.Equal(t, 10.0, sum, "sum of totals equals sum over dated rows")
}

func TestSumByDay_NaturalGroupOrder(t *testing.T) {
	rows := []DepartmentTestRecord{
		{Day: day("2020-10-01"), AgeBracket: "90", Tested: Float(1)},
		{Day: day("2020-10-01"), AgeBracket: "9", Tested: Float(2)},
		{Day: day("2020-10-01"), AgeBracket: "19", Tested: Float(3)},
		{Day: day("2020-10-01"), AgeBracket: "19", Tested: Float(3)},
	}

	totals := SumByDay(rows, Tested, ByAgeBracket)
	require.Len(t, totals, 3)
	assert.Equal(t, []string{"9"}, totals[0].Groups)
	assert.Equal(t, []string{"19"}, totals[1].Groups)
	assert.Equal(t, 6.0, totals[1].Total)
	assert.Equal(t, []string{"90"}, totals[2].Groups)
}

func TestSumByDay_Empty(t *testing.T) {
	assert.Empty(t, SumByDay([]DepartmentTestRecord{}, Positive))
}

func TestNaturalLess(t *testing.T) {
	assert.True(t, NaturalLess("9", "19"))
	assert.False(t, NaturalLess("19", "9"))
	assert.True(t, NaturalLess("2", "2A"))
	assert.True(t, NaturalLess("2A", "2B"))
	assert.False(t, NaturalLess("x", "x"))
}

func TestFilterByArea(t *testing.T) {
	rows := scenarioRows()
	rows = append(rows, DepartmentTestRecord{DepartmentCode: "13", Day: day("2020-10-01")})

	assert.Len(t, FilterByArea(rows, "75"), len(scenario))
	assert.Len(t, FilterByArea(rows, "13"), 1)
	assert.Empty(t, FilterByArea(rows, "2A"))
}

func TestFilterByDateRange(t *testing.T) {
	rows := scenarioRows()

	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{name: "inclusive bounds", start: day("2020-10-03"), end: day("2020-10-05"), want: 3},
		{name: "single day", start: day("2020-10-14"), end: day("2020-10-14"), want: 1},
		{name: "open start", end: day("2020-10-02"), want: 2},
		{name: "open end", start: day("2020-10-13"), want: 2},
		{name: "fully open", want: len(scenario)},
		{name: "outside data", start: day("2021-01-01"), end: day("2021-02-01"), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterByDateRange(rows, tt.start, tt.end)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestFilterByDateRange_Inverted(t *testing.T) {
	_, err := FilterByDateRange(scenarioRows(), day("2020-10-05"), day("2020-10-01"))
	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)
}

func TestLastDayAndLastN(t *testing.T) {
	last, ok := LastDay(scenarioRows())
	require.True(t, ok)
	assert.Equal(t, day("2020-10-14"), last)

	_, ok = LastDay([]AreaRecord{{}})
	assert.False(t, ok)

	assert.Equal(t, []int{3, 4}, LastN([]int{1, 2, 3, 4}, 2))
	assert.Equal(t, []int{1}, LastN([]int{1}, 10))
	assert.Nil(t, LastN([]int{1}, 0))
}
