package domain

import (
	"time"
)

// Table names used in logs, metrics and errors.
const (
	TableAreas               = "areas"
	TableDepartments         = "departments"
	TableDepartmentTests     = "department_tests"
	TableNationalIncidence   = "national_incidence"
	TableDepartmentIncidence = "department_incidence"
)

// Dataset is one complete, geo-joined load of the four feeds plus the
// department-only view. It is never modified after NewDataset returns, so it
// can be shared between goroutines. Slices returned by accessors must be
// treated as read-only.
type Dataset struct {
	areas               []AreaRecord
	departments         []AreaRecord
	tests               []DepartmentTestRecord
	nationalIncidence   []IncidenceRecord
	departmentIncidence []IncidenceRecord
	loadedAt            time.Time
}

// NewDataset assembles a dataset and derives the department-only view.
func NewDataset(
	areas []AreaRecord,
	tests []DepartmentTestRecord,
	nationalIncidence []IncidenceRecord,
	departmentIncidence []IncidenceRecord,
	loadedAt time.Time,
) *Dataset {
	return &Dataset{
		areas:               areas,
		departments:         DepartmentsOnly(areas),
		tests:               tests,
		nationalIncidence:   nationalIncidence,
		departmentIncidence: departmentIncidence,
		loadedAt:            loadedAt,
	}
}

// Areas returns every row of the key-figures feed.
func (d *Dataset) Areas() []AreaRecord { return d.areas }

// Departments returns department-level key-figure rows with missing new
// hospitalizations filled with zero.
func (d *Dataset) Departments() []AreaRecord { return d.departments }

// DepartmentTests returns the SI-DEP testing rows.
func (d *Dataset) DepartmentTests() []DepartmentTestRecord { return d.tests }

// NationalIncidence returns the national incidence rows.
func (d *Dataset) NationalIncidence() []IncidenceRecord { return d.nationalIncidence }

// DepartmentIncidence returns the departmental incidence rows.
func (d *Dataset) DepartmentIncidence() []IncidenceRecord { return d.departmentIncidence }

// LoadedAt is when the dataset finished loading.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// RowCounts reports the size of each table.
func (d *Dataset) RowCounts() map[string]int {
	return map[string]int{
		TableAreas:               len(d.areas),
		TableDepartments:         len(d.departments),
		TableDepartmentTests:     len(d.tests),
		TableNationalIncidence:   len(d.nationalIncidence),
		TableDepartmentIncidence: len(d.departmentIncidence),
	}
}

// DepartmentsOnly returns a fresh slice of department-level rows where a
// missing NewHospitalizations is replaced by zero.
func DepartmentsOnly(rows []AreaRecord) []AreaRecord {
	var out []AreaRecord
	for _, r := range rows {
		if r.Granularity != GranularityDepartment {
			continue
		}
		if r.NewHospitalizations == nil {
			r.NewHospitalizations = Float(0)
		}
		out = append(out, r)
	}
	return out
}

// MergeSameDay collapses rows sharing a granularity, area name and day, which
// happens when several publishers report the same figures. Overseas regions
// and their single department share a name, so granularity is part of the key.
// For each metric the first non-missing value wins. First-seen order is
// preserved.
func MergeSameDay(rows []AreaRecord) []AreaRecord {
	type key struct {
		granularity Granularity
		name        string
		day         time.Time
	}
	index := make(map[key]int, len(rows))
	out := make([]AreaRecord, 0, len(rows))
	for _, r := range rows {
		k := key{granularity: r.Granularity, name: r.AreaName, day: r.Day}
		i, seen := index[k]
		if !seen || r.Day.IsZero() {
			index[k] = len(out)
			out = append(out, r)
			continue
		}
		m := &out[i]
		fillMissing(&m.NewHospitalizations, r.NewHospitalizations)
		fillMissing(&m.NewICUAdmissions, r.NewICUAdmissions)
		fillMissing(&m.CumulativeDeaths, r.CumulativeDeaths)
		fillMissing(&m.CumulativeHospitalized, r.CumulativeHospitalized)
		fillMissing(&m.CumulativeICU, r.CumulativeICU)
		if m.AreaCode == "" {
			m.AreaCode = r.AreaCode
		}
	}
	return out
}

func fillMissing(dst **float64, src *float64) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}
