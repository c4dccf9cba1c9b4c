// Command geoseed audits the static geo lookup table.
//
// Usage:
//
//	go run ./cmd/geoseed check
//	go run ./cmd/geoseed check --national file://$PWD/data/mock/chiffres-cles.csv
//	MAPBOX_TOKEN=... go run ./cmd/geoseed geocode --max-drift-km 60
package main

import (
	"github.com/alecthomas/kong"

	"github.com/couchcryptid/opencovid-fr/internal/config"
	"github.com/couchcryptid/opencovid-fr/internal/observability"
)

type globals struct {
	LogLevel string `help:"Log level (debug, info, warn, error)." default:"info" enum:"debug,info,warn,error"`
}

type cli struct {
	globals

	Check   checkCmd   `cmd:"" help:"Fetch the four feeds and report keys missing from the geo table."`
	Geocode geocodeCmd `cmd:"" help:"Geocode every table entry with Mapbox and report drifting coordinates."`
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("geoseed"),
		kong.Description("Geo lookup table maintenance for the opencovid-fr service."),
		kong.UsageOnError(),
		kong.Vars{
			"national_url":             config.DefaultNationalURL,
			"department_tests_url":     config.DefaultDepartmentTestsURL,
			"national_incidence_url":   config.DefaultNationalIncidenceURL,
			"department_incidence_url": config.DefaultDepartmentIncidenceURL,
		},
	)
	logger := observability.NewLogger(&config.Config{LogLevel: c.LogLevel, LogFormat: "text"})
	ctx.FatalIfErrorf(ctx.Run(&c.globals, logger))
}
