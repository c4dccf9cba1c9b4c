package domain

import (
	"fmt"
	"time"
)

// DataLoadError reports a network or parse failure for one source feed.
type DataLoadError struct {
	Source string
	URL    string
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load %s (%s): %v", e.Source, e.URL, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// GeoResolutionError reports a key that could not be placed on the map. The
// whole table is rejected when this happens.
type GeoResolutionError struct {
	Table string
	Key   string
	Err   error
}

func (e *GeoResolutionError) Error() string {
	return fmt.Sprintf("resolve coordinates for %s key %q: %v", e.Table, e.Key, e.Err)
}

func (e *GeoResolutionError) Unwrap() error { return e.Err }

// InsufficientDataError is returned when fewer observations are available
// than an operation needs.
type InsufficientDataError struct {
	Metric string
	Have   int
	Need   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("not enough data for %s: have %d observations, need %d", e.Metric, e.Have, e.Need)
}

// ForecastError reports a failed model fit or prediction for one series.
type ForecastError struct {
	Series string
	Err    error
}

func (e *ForecastError) Error() string {
	return fmt.Sprintf("forecast %s: %v", e.Series, e.Err)
}

func (e *ForecastError) Unwrap() error { return e.Err }

// RangeError reports an inverted date range.
type RangeError struct {
	Start, End time.Time
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s is after end %s", e.Start.Format(DayLayout), e.End.Format(DayLayout))
}
