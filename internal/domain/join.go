package domain

import (
	"github.com/couchcryptid/opencovid-fr/internal/geo"
)

// NationalAreaName is the area name whose coordinates place national rows.
const NationalAreaName = "France"

// Resolver is the subset of the geo table needed to place rows.
type Resolver interface {
	CoordinatesForArea(name string) (geo.Coordinates, error)
	CoordinatesForDepartmentCode(code string) (geo.Coordinates, error)
}

// AttachAreaCoordinates returns a copy of rows with coordinates resolved from
// the area name.
func AttachAreaCoordinates(rows []AreaRecord, r Resolver) ([]AreaRecord, error) {
	return attach(TableAreas, rows,
		func(row AreaRecord) string { return row.AreaName },
		r.CoordinatesForArea,
		func(row *AreaRecord, c geo.Coordinates) { row.Coordinates = c },
	)
}

// AttachTestCoordinates returns a copy of rows with coordinates resolved from
// the department code.
func AttachTestCoordinates(rows []DepartmentTestRecord, r Resolver) ([]DepartmentTestRecord, error) {
	return attach(TableDepartmentTests, rows,
		func(row DepartmentTestRecord) string { return row.DepartmentCode },
		r.CoordinatesForDepartmentCode,
		func(row *DepartmentTestRecord, c geo.Coordinates) { row.Coordinates = c },
	)
}

// AttachIncidenceCoordinates returns a copy of rows with coordinates resolved
// from the department code, or the national point for national rows.
func AttachIncidenceCoordinates(table string, rows []IncidenceRecord, r Resolver) ([]IncidenceRecord, error) {
	return attach(table, rows,
		func(row IncidenceRecord) string {
			if row.Scope == ScopeNational {
				return NationalAreaName
			}
			return row.DepartmentCode
		},
		func(key string) (geo.Coordinates, error) {
			if key == NationalAreaName {
				return r.CoordinatesForArea(key)
			}
			return r.CoordinatesForDepartmentCode(key)
		},
		func(row *IncidenceRecord, c geo.Coordinates) { row.Coordinates = c },
	)
}

// attach resolves each distinct key once, then writes coordinates into a copy
// of rows. Nothing is written unless every key resolves.
func attach[R any](
	table string,
	rows []R,
	key func(R) string,
	lookup func(string) (geo.Coordinates, error),
	set func(*R, geo.Coordinates),
) ([]R, error) {
	resolved := make(map[string]geo.Coordinates)
	for _, row := range rows {
		k := key(row)
		if _, ok := resolved[k]; ok {
			continue
		}
		c, err := lookup(k)
		if err != nil {
			return nil, &GeoResolutionError{Table: table, Key: k, Err: err}
		}
		resolved[k] = c
	}

	out := make([]R, len(rows))
	copy(out, rows)
	for i := range out {
		set(&out[i], resolved[key(out[i])])
	}
	return out, nil
}
