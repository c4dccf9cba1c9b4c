//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/opencovid-fr/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, 10*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_ForwardGeocode(t *testing.T) {
	c := smokeClient(t)

	result, err := c.ForwardGeocode(context.Background(), "Gironde", "fr")
	require.NoError(t, err)

	assert.Contains(t, result.FormattedAddress, "Gironde")
	assert.Greater(t, result.Confidence, 0.5)
}

func TestSmoke_TableDrift(t *testing.T) {
	c := smokeClient(t)
	table := geo.Default()

	// Department centroids and Mapbox region points differ, but not by more
	// than the size of a department.
	for _, code := range []string{"33", "75", "2A"} {
		name, err := table.DepartmentNameForCode(code)
		require.NoError(t, err)
		want, err := table.CoordinatesForDepartmentCode(code)
		require.NoError(t, err)

		result, err := c.ForwardGeocode(context.Background(), name, "fr")
		require.NoError(t, err)
		assert.Less(t, geo.DistanceKm(want, result.Coordinates()), 100.0, name)
	}
}

func TestSmoke_CachedGeocoder(t *testing.T) {
	cached := NewCachedGeocoder(smokeClient(t), 10)

	r1, err := cached.ForwardGeocode(context.Background(), "Finistère", "fr")
	require.NoError(t, err)
	assert.Contains(t, r1.FormattedAddress, "Finistère")

	r2, err := cached.ForwardGeocode(context.Background(), "Finistère", "fr")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
