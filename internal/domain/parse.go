package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/opencovid-fr/internal/geo"
)

// DayLayout is the calendar day format used by every feed.
const DayLayout = "2006-01-02"

// Field separators of the published files.
const (
	CommaSeparated     = ','
	SemicolonSeparated = ';'
)

// ParseDay parses a calendar day. Underscore separators are accepted, and a
// trailing time component is ignored. Malformed input yields the zero time so
// the row is kept but treated as undated.
func ParseDay(s string) time.Time {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "-")
	if len(s) > len(DayLayout) {
		s = s[:len(DayLayout)]
	}
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseRollingWeek splits a "YYYY-MM-DD-YYYY-MM-DD" label into its bounds.
func ParseRollingWeek(label string) (start, end time.Time, ok bool) {
	label = strings.TrimSpace(label)
	n := len(DayLayout)
	if len(label) != 2*n+1 {
		return time.Time{}, time.Time{}, false
	}
	start, end = ParseDay(label[:n]), ParseDay(label[n+1:])
	if start.IsZero() || end.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// parseNumber returns nil for empty, NA and non-finite cells.
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return nil
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// csvTable is a header-indexed view over a delimited file.
type csvTable struct {
	name   string
	header map[string]int
	rows   [][]string
}

func readTable(name string, r io.Reader, sep rune) (*csvTable, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: empty file", name)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s header: %w", name, err)
	}

	t := &csvTable{name: name, header: make(map[string]int, len(header))}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		t.header[strings.TrimSpace(h)] = i
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

func (t *csvTable) require(cols ...string) error {
	for _, c := range cols {
		if !t.has(c) {
			return fmt.Errorf("parse %s: missing column %q", t.name, c)
		}
	}
	return nil
}

func (t *csvTable) has(col string) bool {
	_, ok := t.header[col]
	return ok
}

// get returns the cell for col, or "" when the column or cell is absent.
func (t *csvTable) get(row []string, col string) string {
	i, ok := t.header[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseAreaRecords reads the national key-figures feed (comma separated).
func ParseAreaRecords(r io.Reader) ([]AreaRecord, error) {
	t, err := readTable("key figures", r, CommaSeparated)
	if err != nil {
		return nil, err
	}
	if err := t.require("date", "granularite", "maille_nom"); err != nil {
		return nil, err
	}

	out := make([]AreaRecord, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, AreaRecord{
			AreaCode:               t.get(row, "maille_code"),
			AreaName:               t.get(row, "maille_nom"),
			Granularity:            ParseGranularity(t.get(row, "granularite")),
			Day:                    ParseDay(t.get(row, "date")),
			NewHospitalizations:    parseNumber(t.get(row, "nouvelles_hospitalisations")),
			NewICUAdmissions:       parseNumber(t.get(row, "nouvelles_reanimations")),
			CumulativeDeaths:       parseNumber(t.get(row, "deces")),
			CumulativeHospitalized: parseNumber(t.get(row, "hospitalises")),
			CumulativeICU:          parseNumber(t.get(row, "reanimation")),
		})
	}
	return out, nil
}

// ParseDepartmentTests reads the departmental SI-DEP feed (semicolon separated).
func ParseDepartmentTests(r io.Reader) ([]DepartmentTestRecord, error) {
	t, err := readTable("department tests", r, SemicolonSeparated)
	if err != nil {
		return nil, err
	}
	if err := t.require("dep", "jour", "P", "T", "cl_age90"); err != nil {
		return nil, err
	}

	out := make([]DepartmentTestRecord, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, DepartmentTestRecord{
			DepartmentCode: geo.NormalizeCode(t.get(row, "dep")),
			Day:            ParseDay(t.get(row, "jour")),
			AgeBracket:     t.get(row, "cl_age90"),
			Tested:         parseNumber(t.get(row, "T")),
			Positive:       parseNumber(t.get(row, "P")),
			Population:     parseNumber(t.get(row, "pop")),
		})
	}
	return out, nil
}

// ParseNationalIncidence reads the national incidence feed (semicolon separated).
func ParseNationalIncidence(r io.Reader) ([]IncidenceRecord, error) {
	return parseIncidence("national incidence", r, ScopeNational)
}

// ParseDepartmentIncidence reads the departmental incidence feed (semicolon separated).
func ParseDepartmentIncidence(r io.Reader) ([]IncidenceRecord, error) {
	return parseIncidence("department incidence", r, ScopeDepartment)
}

func parseIncidence(name string, r io.Reader, scope IncidenceScope) ([]IncidenceRecord, error) {
	t, err := readTable(name, r, SemicolonSeparated)
	if err != nil {
		return nil, err
	}
	if err := t.require("P", "pop"); err != nil {
		return nil, err
	}
	if !t.has("jour") && !t.has("semaine_glissante") {
		return nil, fmt.Errorf("parse %s: missing column %q or %q", name, "jour", "semaine_glissante")
	}
	if scope == ScopeDepartment {
		if err := t.require("dep"); err != nil {
			return nil, err
		}
	}

	out := make([]IncidenceRecord, 0, len(t.rows))
	for _, row := range t.rows {
		rec := IncidenceRecord{
			Scope:       scope,
			RollingWeek: t.get(row, "semaine_glissante"),
			AgeBracket:  t.get(row, "cl_age90"),
			Positive:    parseNumber(t.get(row, "P")),
			Population:  parseNumber(t.get(row, "pop")),
		}
		if scope == ScopeDepartment {
			rec.DepartmentCode = geo.NormalizeCode(t.get(row, "dep"))
		}
		if t.has("jour") {
			rec.Day = ParseDay(t.get(row, "jour"))
		} else if _, end, ok := ParseRollingWeek(rec.RollingWeek); ok {
			rec.Day = end
		}
		out = append(out, rec)
	}
	return out, nil
}
