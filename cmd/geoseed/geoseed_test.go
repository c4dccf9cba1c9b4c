package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/couchcryptid/opencovid-fr/internal/adapter/opendata"
	"github.com/couchcryptid/opencovid-fr/internal/domain"
	"github.com/couchcryptid/opencovid-fr/internal/geo"
	"github.com/couchcryptid/opencovid-fr/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tableGeocoder struct {
	offsets map[string]geo.Coordinates
	table   *geo.Table
}

func (g tableGeocoder) ForwardGeocode(_ context.Context, name, _ string) (geo.GeocodingResult, error) {
	c, err := g.table.CoordinatesForArea(name)
	if err != nil {
		return geo.GeocodingResult{}, nil
	}
	if off, ok := g.offsets[name]; ok {
		c = geo.Coordinates{Lat: c.Lat + off.Lat, Lon: c.Lon + off.Lon}
	}
	return geo.GeocodingResult{Lat: c.Lat, Lon: c.Lon, FormattedAddress: name + ", France"}, nil
}

func TestAudit(t *testing.T) {
	table := geo.Default()
	g := tableGeocoder{
		table:   table,
		offsets: map[string]geo.Coordinates{"Gironde": {Lat: 2}},
	}

	drifts, missing, err := audit(context.Background(), g, table, []string{"Paris", "Gironde", "Ain"}, "fr", 50)
	require.NoError(t, err)
	assert.Empty(t, missing)
	require.Len(t, drifts, 1)
	assert.Equal(t, "Gironde", drifts[0].name)
	assert.InDelta(t, 222, drifts[0].km, 2)

	var buf bytes.Buffer
	err = printAudit(&buf, drifts, []string{"Atlantis"}, 50)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "DRIFT Gironde")
	assert.Contains(t, buf.String(), "MISSING Atlantis")
}

func TestAudit_UnknownTableName(t *testing.T) {
	table := geo.Default()
	_, _, err := audit(context.Background(), tableGeocoder{table: table}, table, []string{"Atlantis"}, "fr", 50)
	require.ErrorIs(t, err, geo.ErrNotFound)
}

func TestKeys(t *testing.T) {
	rows := []domain.DepartmentTestRecord{
		{DepartmentCode: "75"}, {DepartmentCode: "2A"}, {DepartmentCode: "01"}, {DepartmentCode: "75"}, {DepartmentCode: "971"},
	}
	ks, err := keys(rows, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"01", "75", "971", "2A"}, ks, "numeric codes sort first")
}

func TestCheckFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("dep;jour;P;T;cl_age90;pop\n75;2020-10-01;3;30;0;100\n99;2020-10-01;1;10;0;100\n"))
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fetcher := opendata.NewFetcher(0, observability.NewMetricsForTesting(), logger)

	p := checkFeed(context.Background(), fetcher, "department_tests", srv.URL, func(r io.Reader) ([]string, error) {
		return keys[domain.DepartmentTestRecord](domain.ParseDepartmentTests(r))
	}, departmentCheck(geo.Default()))

	assert.False(t, p.passed())
	assert.Equal(t, 2, p.keys)
	assert.Equal(t, []string{`unresolved key "99"`}, p.errors)

	var buf bytes.Buffer
	require.Error(t, report(&buf, []*phase{p, {name: "national", keys: 3}}))
	assert.Contains(t, buf.String(), "department_tests       FAIL (2 keys)")
	assert.Contains(t, buf.String(), "national               PASS (3 keys)")
}
