package geo

import "context"

// GeocodingResult holds the output of a forward geocoding lookup.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceType        string // Mapbox feature type, such as "region" or "place"
	Confidence       float64
}

// Coordinates returns the result's point.
func (r GeocodingResult) Coordinates() Coordinates {
	return Coordinates{Lat: r.Lat, Lon: r.Lon}
}

// Geocoder resolves place names to coordinates. It is used to build and audit
// the static table, never on the request path.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, name, country string) (GeocodingResult, error)
}
