package domain

import (
	"time"

	"github.com/couchcryptid/opencovid-fr/internal/geo"
)

// Granularity is the geographic level of an AreaRecord.
type Granularity string

const (
	GranularityNation     Granularity = "nation"
	GranularityRegion     Granularity = "region"
	GranularityDepartment Granularity = "department"
	GranularityOther      Granularity = "other"
)

// ParseGranularity maps the national feed's granularite column.
func ParseGranularity(s string) Granularity {
	switch s {
	case "pays":
		return GranularityNation
	case "region":
		return GranularityRegion
	case "departement":
		return GranularityDepartment
	default:
		return GranularityOther
	}
}

// AllAges is the age bracket label SI-DEP uses for the all-ages total row.
const AllAges = "0"

// AreaRecord is one row of the national key-figures feed. Metric fields are
// nil when the source cell is empty.
type AreaRecord struct {
	AreaCode    string          `json:"area_code"`
	AreaName    string          `json:"area_name"`
	Granularity Granularity     `json:"granularity"`
	Day         time.Time       `json:"day"`
	Coordinates geo.Coordinates `json:"coordinates"`

	NewHospitalizations    *float64 `json:"new_hospitalizations"`
	NewICUAdmissions       *float64 `json:"new_icu_admissions"`
	CumulativeDeaths       *float64 `json:"cumulative_deaths"`
	CumulativeHospitalized *float64 `json:"cumulative_hospitalized"`
	CumulativeICU          *float64 `json:"cumulative_icu"`
}

func (r AreaRecord) Date() time.Time        { return r.Day }
func (r AreaRecord) AreaKey() string        { return r.AreaName }
func (r AreaRecord) Point() geo.Coordinates { return r.Coordinates }

// DepartmentTestRecord is one row of the departmental SI-DEP testing feed.
type DepartmentTestRecord struct {
	DepartmentCode string          `json:"department_code"`
	Day            time.Time       `json:"day"`
	AgeBracket     string          `json:"age_bracket"`
	Tested         *float64        `json:"tested"`
	Positive       *float64        `json:"positive"`
	Population     *float64        `json:"population,omitempty"`
	Coordinates    geo.Coordinates `json:"coordinates"`
}

func (r DepartmentTestRecord) Date() time.Time        { return r.Day }
func (r DepartmentTestRecord) AreaKey() string        { return r.DepartmentCode }
func (r DepartmentTestRecord) Point() geo.Coordinates { return r.Coordinates }

// IsAllAges reports whether the row is the all-ages total.
func (r DepartmentTestRecord) IsAllAges() bool {
	return r.AgeBracket == AllAges || r.AgeBracket == ""
}

// IncidenceScope distinguishes the national and departmental incidence feeds.
type IncidenceScope string

const (
	ScopeNational   IncidenceScope = "national"
	ScopeDepartment IncidenceScope = "department"
)

// NationalAreaKey is the AreaKey of national incidence rows.
const NationalAreaKey = "FRA"

// IncidenceRecord is one row of a rolling-week incidence feed.
type IncidenceRecord struct {
	Scope          IncidenceScope  `json:"scope"`
	DepartmentCode string          `json:"department_code,omitempty"`
	Day            time.Time       `json:"day"`
	RollingWeek    string          `json:"rolling_week,omitempty"`
	AgeBracket     string          `json:"age_bracket,omitempty"`
	Positive       *float64        `json:"positive"`
	Population     *float64        `json:"population"`
	Coordinates    geo.Coordinates `json:"coordinates"`
}

func (r IncidenceRecord) Date() time.Time        { return r.Day }
func (r IncidenceRecord) Point() geo.Coordinates { return r.Coordinates }

func (r IncidenceRecord) AreaKey() string {
	if r.Scope == ScopeNational {
		return NationalAreaKey
	}
	return r.DepartmentCode
}

// IsAllAges reports whether the row is the all-ages total.
func (r IncidenceRecord) IsAllAges() bool {
	return r.AgeBracket == AllAges || r.AgeBracket == ""
}

// IncidenceRate is P per 100 000 inhabitants. It is undefined when either
// value is missing or the population is not positive.
func (r IncidenceRecord) IncidenceRate() (float64, bool) {
	if r.Positive == nil || r.Population == nil {
		return 0, false
	}
	return IncidenceRate(*r.Positive, *r.Population)
}

// Float returns a pointer to v, for building records by hand.
func Float(v float64) *float64 { return &v }
