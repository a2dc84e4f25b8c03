// Package geo evaluates geofence proximity for classroom check-ins.
package geo

import "math"

// earthRadiusM is the mean Earth radius used by the haversine formula.
const earthRadiusM = 6371000

// DefaultRadiusM is the fallback geofence radius when none is configured.
const DefaultRadiusM = 50

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Distance returns the great-circle distance between two points in meters.
func Distance(a, b Point) float64 {
	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dPhi := radians(b.Lat - a.Lat)
	dLambda := radians(b.Lon - a.Lon)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusM * c
}

// WithinRadius reports whether p lies within radiusM meters of center.
func WithinRadius(p, center Point, radiusM float64) bool {
	return Distance(p, center) <= radiusM
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
