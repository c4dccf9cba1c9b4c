package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/opencovid-fr/internal/adapter/mapbox"
	"github.com/couchcryptid/opencovid-fr/internal/geo"
)

type geocodeCmd struct {
	Token           string        `help:"Mapbox access token." env:"MAPBOX_TOKEN" required:""`
	Country         string        `help:"ISO country filter passed to Mapbox; empty searches worldwide." default:"fr"`
	MaxDriftKm      float64       `name:"max-drift-km" help:"Report entries further than this from the Mapbox result." default:"75"`
	DepartmentsOnly bool          `help:"Only geocode department names."`
	Timeout         time.Duration `help:"Per-request timeout." default:"10s"`
	CacheSize       int           `help:"Geocoder LRU size." default:"512"`
}

type drift struct {
	name     string
	table    geo.Coordinates
	geocoded geo.GeocodingResult
	km       float64
}

func (c *geocodeCmd) Run(_ *globals, logger *slog.Logger) error {
	ctx := context.Background()
	client := mapbox.NewClient(c.Token, c.Timeout, logger)
	geocoder := mapbox.NewCachedGeocoder(client, c.CacheSize)

	table := geo.Default()
	names := table.Areas()
	if c.DepartmentsOnly {
		names = nil
		for _, d := range table.Departments() {
			names = append(names, d.Name)
		}
	}

	drifts, missing, err := audit(ctx, geocoder, table, names, c.Country, c.MaxDriftKm)
	if err != nil {
		return err
	}
	logger.Info("geocoding finished", "names", len(names), "drifting", len(drifts), "not_found", len(missing))
	return printAudit(os.Stdout, drifts, missing, c.MaxDriftKm)
}

// audit geocodes every name and returns entries further than maxKm from the
// table, and names Mapbox could not find.
func audit(ctx context.Context, g geo.Geocoder, table *geo.Table, names []string, country string, maxKm float64) ([]drift, []string, error) {
	var (
		drifts  []drift
		missing []string
	)
	for _, name := range names {
		want, err := table.CoordinatesForArea(name)
		if err != nil {
			return nil, nil, err
		}
		result, err := g.ForwardGeocode(ctx, name, country)
		if err != nil {
			return nil, nil, fmt.Errorf("geocode %q: %w", name, err)
		}
		if result.FormattedAddress == "" {
			missing = append(missing, name)
			continue
		}
		if km := geo.DistanceKm(want, result.Coordinates()); km > maxKm {
			drifts = append(drifts, drift{name: name, table: want, geocoded: result, km: km})
		}
	}
	return drifts, missing, nil
}

func printAudit(w io.Writer, drifts []drift, missing []string, maxKm float64) error {
	for _, d := range drifts {
		fmt.Fprintf(w, "DRIFT %-32s %7.1f km  table=(%.4f, %.4f) mapbox=(%.4f, %.4f) %s %q\n",
			d.name, d.km, d.table.Lat, d.table.Lon, d.geocoded.Lat, d.geocoded.Lon,
			d.geocoded.PlaceType, d.geocoded.FormattedAddress)
	}
	for _, name := range missing {
		fmt.Fprintf(w, "MISSING %s\n", name)
	}
	if len(drifts) > 0 {
		return fmt.Errorf("%d entries drift more than %.0f km", len(drifts), maxKm)
	}
	return nil
}
