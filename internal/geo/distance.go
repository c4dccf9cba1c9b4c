package geo

import (
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius.
const EarthRadiusKm = 6371.0088

// DistanceKm returns the great-circle distance between two points.
func DistanceKm(a, b Coordinates) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lon)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// Centroid returns the spherical mean of the given points. The second return
// value is false when no points were given or they cancel out.
func Centroid(points ...Coordinates) (Coordinates, bool) {
	var sum r3.Vector
	for _, c := range points {
		p := s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
		sum = sum.Add(p.Vector)
	}
	if sum.Norm() == 0 {
		return Coordinates{}, false
	}
	ll := s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})
	return Coordinates{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()}, true
}
