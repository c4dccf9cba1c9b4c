package mapbox

import (
	"context"
	"strings"

	"github.com/couchcryptid/opencovid-fr/internal/cache"
	"github.com/couchcryptid/opencovid-fr/internal/geo"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache.
type CachedGeocoder struct {
	inner geo.Geocoder
	cache *cache.LRU[string, geo.GeocodingResult]
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner geo.Geocoder, maxEntries int) *CachedGeocoder {
	return &CachedGeocoder{
		inner: inner,
		cache: cache.NewLRU[string, geo.GeocodingResult](maxEntries),
	}
}

func (c *CachedGeocoder) ForwardGeocode(ctx context.Context, name, country string) (geo.GeocodingResult, error) {
	key := strings.ToLower(country) + "|" + name
	if result, ok := c.cache.Get(key); ok {
		return result, nil
	}
	result, err := c.inner.ForwardGeocode(ctx, name, country)
	if err != nil {
		return result, err
	}
	// Only cache non-empty results so transient "not found" responses can be retried.
	if result.FormattedAddress != "" {
		c.cache.Put(key, result)
	}
	return result, nil
}
