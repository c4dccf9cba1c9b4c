// Package export writes dataset extracts as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/couchcryptid/opencovid-fr/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the incidence workbook.
const (
	SheetLatestWeek  = "Latest week"
	SheetDepartments = "Departments"
	SheetNational    = "National"
)

var incidenceHeaders = []string{
	"Department", "Name", "Day", "Rolling week", "Age bracket",
	"Positive", "Population", "Incidence rate", "Latitude", "Longitude",
}

// NameFunc maps a department code to its display name.
type NameFunc func(code string) string

// IncidenceWorkbook writes the all-ages incidence rows of ds to w. The first
// sheet holds the latest rolling week per department, the second every
// departmental row and the third the national series.
func IncidenceWorkbook(w io.Writer, ds *domain.Dataset, name NameFunc) error {
	if name == nil {
		name = func(code string) string { return code }
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	departments := domain.Filter(ds.DepartmentIncidence(), domain.IncidenceRecord.IsAllAges)
	var latest []domain.IncidenceRecord
	if last, ok := domain.LastDay(departments); ok {
		latest = domain.Filter(departments, func(r domain.IncidenceRecord) bool { return r.Day.Equal(last) })
	}
	national := domain.Filter(ds.NationalIncidence(), domain.IncidenceRecord.IsAllAges)

	if err := f.SetSheetName("Sheet1", SheetLatestWeek); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeIncidenceSheet(f, SheetLatestWeek, latest, name); err != nil {
		return err
	}
	for _, s := range []struct {
		name string
		rows []domain.IncidenceRecord
	}{
		{SheetDepartments, departments},
		{SheetNational, national},
	} {
		if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		if err := writeIncidenceSheet(f, s.name, s.rows, name); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeIncidenceSheet(f *excelize.File, sheet string, rows []domain.IncidenceRecord, name NameFunc) error {
	for i, h := range incidenceHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("%s header: %w", sheet, err)
		}
		if err := f.SetColWidth(sheet, columnName(i+1), columnName(i+1), 16); err != nil {
			return fmt.Errorf("%s column width: %w", sheet, err)
		}
	}

	for i, r := range rows {
		values := []any{
			r.DepartmentCode,
			"",
			r.Day.Format("2006-01-02"),
			r.RollingWeek,
			r.AgeBracket,
			optional(r.Positive),
			optional(r.Population),
			nil,
			nil,
			nil,
		}
		if r.Scope == domain.ScopeNational {
			values[0] = domain.NationalAreaKey
			values[1] = domain.NationalAreaName
		} else {
			values[1] = name(r.DepartmentCode)
			values[8] = r.Coordinates.Lat
			values[9] = r.Coordinates.Lon
		}
		if rate, ok := r.IncidenceRate(); ok {
			values[7] = rate
		}

		for col, v := range values {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
			}
		}
	}
	return nil
}

func columnName(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}

func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
