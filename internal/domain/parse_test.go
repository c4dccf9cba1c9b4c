package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const keyFiguresCSV = "\ufeffdate,granularite,maille_code,maille_nom,cas_confirmes,deces,reanimation,hospitalises,nouvelles_hospitalisations,nouvelles_reanimations,source_nom\n" +
	"2020-11-01,pays,FRA,France,,36565,4454,26584,1234,215,Santé publique France\n" +
	"2020_11_02,departement,DEP-75,Paris,,,,,,,ARS\n" +
	"2020-11-xx,region,REG-11,Île-de-France,,100,,,,,ARS\n" +
	"2020-11-02,monde,WORLD,Monde,,,,,,,OMS\n"

func TestParseAreaRecords(t *testing.T) {
	rows, err := ParseAreaRecords(strings.NewReader(keyFiguresCSV))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	fr := rows[0]
	assert.Equal(t, "France", fr.AreaName)
	assert.Equal(t, "FRA", fr.AreaCode)
	assert.Equal(t, GranularityNation, fr.Granularity)
	assert.Equal(t, time.Date(2020, 11, 1, 0, 0, 0, 0, time.UTC), fr.Day)
	require.NotNil(t, fr.NewHospitalizations)
	assert.Equal(t, 1234.0, *fr.NewHospitalizations)
	assert.Equal(t, 215.0, *fr.NewICUAdmissions)
	assert.Equal(t, 36565.0, *fr.CumulativeDeaths)
	assert.Equal(t, 26584.0, *fr.CumulativeHospitalized)
	assert.Equal(t, 4454.0, *fr.CumulativeICU)

	paris := rows[1]
	assert.Equal(t, GranularityDepartment, paris.Granularity)
	assert.Equal(t, day("2020-11-02"), paris.Day, "underscore dates are accepted")
	assert.Nil(t, paris.NewHospitalizations, "empty cells are missing, not zero")

	assert.True(t, rows[2].Day.IsZero(), "malformed dates parse to the zero day")
	assert.Equal(t, GranularityOther, rows[3].Granularity)
}

func TestParseAreaRecords_MissingColumn(t *testing.T) {
	_, err := ParseAreaRecords(strings.NewReader("date,maille_nom\n2020-11-01,France\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "granularite")
}

func TestParseAreaRecords_Empty(t *testing.T) {
	_, err := ParseAreaRecords(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty file")
}

func TestParseDepartmentTests(t *testing.T) {
	in := "dep;jour;P;T;cl_age90;pop\n" +
		"1;2020-10-01;3;120;0;656955\n" +
		"2A;2020-10-01;NA;15;9;\n"

	rows, err := ParseDepartmentTests(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "01", rows[0].DepartmentCode)
	assert.True(t, rows[0].IsAllAges())
	assert.Equal(t, 3.0, *rows[0].Positive)
	assert.Equal(t, 120.0, *rows[0].Tested)
	assert.Equal(t, 656955.0, *rows[0].Population)

	assert.Equal(t, "2A", rows[1].DepartmentCode)
	assert.False(t, rows[1].IsAllAges())
	assert.Nil(t, rows[1].Positive)
	assert.Nil(t, rows[1].Population)
}

func TestParseDepartmentTests_WrongSeparator(t *testing.T) {
	_, err := ParseDepartmentTests(strings.NewReader("dep,jour,P,T,cl_age90\n75,2020-10-01,1,2,0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}

func TestParseIncidence_RollingWeekDating(t *testing.T) {
	in := "dep;semaine_glissante;cl_age90;pop;P\n" +
		"75;2020-10-01-2020-10-07;0;2148271;5320\n" +
		"13;garbage;0;2043110;1200\n"

	rows, err := ParseDepartmentIncidence(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, ScopeDepartment, rows[0].Scope)
	assert.Equal(t, "75", rows[0].AreaKey())
	assert.Equal(t, day("2020-10-07"), rows[0].Day)
	assert.Equal(t, "2020-10-01-2020-10-07", rows[0].RollingWeek)
	rate, ok := rows[0].IncidenceRate()
	assert.True(t, ok)
	assert.InDelta(t, 247.64, rate, 0.01)

	assert.True(t, rows[1].Day.IsZero())
}

func TestParseNationalIncidence(t *testing.T) {
	in := "fra;jour;P;pop\nFR;2020-10-01;12000;67000000\nFR;2020-10-02;13000;0\n"

	rows, err := ParseNationalIncidence(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, NationalAreaKey, rows[0].AreaKey())
	_, ok := rows[1].IncidenceRate()
	assert.False(t, ok, "pop = 0 leaves the rate undefined")
}

func TestParseIncidence_RequiresDateColumn(t *testing.T) {
	_, err := ParseNationalIncidence(strings.NewReader("P;pop\n1;2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "semaine_glissante")
}

func TestParseRollingWeek(t *testing.T) {
	start, end, ok := ParseRollingWeek("2020-10-01-2020-10-07")
	require.True(t, ok)
	assert.Equal(t, day("2020-10-01"), start)
	assert.Equal(t, day("2020-10-07"), end)

	_, _, ok = ParseRollingWeek("2020-10-01")
	assert.False(t, ok)
}

func TestParseDay(t *testing.T) {
	tests := map[string]time.Time{
		"2020-03-18":          time.Date(2020, 3, 18, 0, 0, 0, 0, time.UTC),
		"2020_03_18":          time.Date(2020, 3, 18, 0, 0, 0, 0, time.UTC),
		" 2020-03-18 ":        time.Date(2020, 3, 18, 0, 0, 0, 0, time.UTC),
		"2020-03-18 19:00:00": time.Date(2020, 3, 18, 0, 0, 0, 0, time.UTC),
		"18/03/2020":          {},
		"":                    {},
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseDay(in), "input %q", in)
	}
}

func TestParseNumber(t *testing.T) {
	assert.Nil(t, parseNumber(""))
	assert.Nil(t, parseNumber("NA"))
	assert.Nil(t, parseNumber("nan"))
	assert.Nil(t, parseNumber("abc"))
	assert.Equal(t, 1.5, *parseNumber("1,5"))
	assert.Equal(t, 42.0, *parseNumber(" 42 "))
}
