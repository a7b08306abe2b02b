package geo

import (
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	return orbgeo.DistanceHaversine(orb.Point{lon1, lat1}, orb.Point{lon2, lat2})
}

// Distance returns the great-circle distance in meters between two
// orb points (lon, lat order).
func Distance(a, b orb.Point) float64 {
	return orbgeo.DistanceHaversine(a, b)
}

// Point builds an orb point from a lat/lon pair.
func Point(lat, lon float64) orb.Point {
	return orb.Point{lon, lat}
}

// BoundAround returns the bounding box containing every point within
// meters of p.
func BoundAround(p orb.Point, meters float64) orb.Bound {
	return orbgeo.NewBoundAroundPoint(p, meters)
}
