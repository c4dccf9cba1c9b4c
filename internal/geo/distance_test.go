package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	paris := Coordinates{Lat: 48.8566969, Lon: 2.3514616}
	marseille := Coordinates{Lat: 43.2961743, Lon: 5.3699525}

	assert.InDelta(t, 661, DistanceKm(paris, marseille), 5)
	assert.InDelta(t, 0, DistanceKm(paris, paris), 1e-9)
}

func TestCentroid(t *testing.T) {
	c, ok := Centroid(
		Coordinates{Lat: 0, Lon: -10},
		Coordinates{Lat: 0, Lon: 10},
	)
	assert.True(t, ok)
	assert.InDelta(t, 0, c.Lat, 1e-9)
	assert.InDelta(t, 0, c.Lon, 1e-9)

	_, ok = Centroid()
	assert.False(t, ok)
}

func TestCentroid_SinglePoint(t *testing.T) {
	in := Coordinates{Lat: 48.862725, Lon: 2.287592}
	c, ok := Centroid(in)
	assert.True(t, ok)
	assert.InDelta(t, in.Lat, c.Lat, 1e-9)
	assert.InDelta(t, in.Lon, c.Lon, 1e-9)
}
