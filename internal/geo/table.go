// Package geo holds the static geographic reference data used to place French
// COVID-19 statistics on a map: a coordinate per area name and the INSEE
// department code to name mapping.
//
// The table is read-only after construction and safe for concurrent use.
package geo

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when a key is absent from the table.
var ErrNotFound = errors.New("geo: key not found")

// Coordinates is a WGS84 point in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Department pairs an INSEE code with its name.
type Department struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Table answers area and department lookups.
type Table struct {
	areas      map[string]Coordinates
	codeToName map[string]string
	nameToCode map[string]string
}

var defaultTable = mustTable(areaCoordinates, departmentNames)

// Default returns the built-in table covering every area in the published feeds.
func Default() *Table {
	return defaultTable
}

// NewTable builds a table from explicit data. The department mapping must be a
// bijection and every department name must have coordinates.
func NewTable(areas map[string]Coordinates, departments map[string]string) (*Table, error) {
	t := &Table{
		areas:      make(map[string]Coordinates, len(areas)),
		codeToName: make(map[string]string, len(departments)),
		nameToCode: make(map[string]string, len(departments)),
	}
	for name, c := range areas {
		t.areas[name] = c
	}
	for code, name := range departments {
		code = NormalizeCode(code)
		if other, dup := t.nameToCode[name]; dup {
			return nil, fmt.Errorf("department %q mapped from both %q and %q", name, other, code)
		}
		if _, ok := t.areas[name]; !ok {
			return nil, fmt.Errorf("department %q (%s) has no coordinates", name, code)
		}
		t.codeToName[code] = name
		t.nameToCode[name] = code
	}
	return t, nil
}

func mustTable(areas map[string]Coordinates, departments map[string]string) *Table {
	t, err := NewTable(areas, departments)
	if err != nil {
		panic(err)
	}
	return t
}

// CoordinatesForArea returns the point for an area name exactly as it appears
// in the national feed.
func (t *Table) CoordinatesForArea(name string) (Coordinates, error) {
	c, ok := t.areas[name]
	if !ok {
		return Coordinates{}, fmt.Errorf("area %q: %w", name, ErrNotFound)
	}
	return c, nil
}

// DepartmentCodeForName returns the INSEE code of a department name.
func (t *Table) DepartmentCodeForName(name string) (string, error) {
	code, ok := t.nameToCode[name]
	if !ok {
		return "", fmt.Errorf("department name %q: %w", name, ErrNotFound)
	}
	return code, nil
}

// DepartmentNameForCode returns the name for an INSEE department code.
// Single-digit codes are accepted ("1" resolves like "01").
func (t *Table) DepartmentNameForCode(code string) (string, error) {
	name, ok := t.codeToName[NormalizeCode(code)]
	if !ok {
		return "", fmt.Errorf("department code %q: %w", code, ErrNotFound)
	}
	return name, nil
}

// CoordinatesForDepartmentCode is DepartmentNameForCode followed by
// CoordinatesForArea.
func (t *Table) CoordinatesForDepartmentCode(code string) (Coordinates, error) {
	name, err := t.DepartmentNameForCode(code)
	if err != nil {
		return Coordinates{}, err
	}
	return t.CoordinatesForArea(name)
}

// Departments lists every department ordered by code.
func (t *Table) Departments() []Department {
	out := make([]Department, 0, len(t.codeToName))
	for code, name := range t.codeToName {
		out = append(out, Department{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Areas lists every area name in lexical order.
func (t *Table) Areas() []string {
	out := make([]string, 0, len(t.areas))
	for name := range t.areas {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// NormalizeCode trims whitespace, upper-cases Corsican codes and left-pads
// single-digit codes.
func NormalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) == 1 && code[0] >= '0' && code[0] <= '9' {
		return "0" + code
	}
	return code
}
