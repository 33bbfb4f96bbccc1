// Package geo holds the great-circle helpers used by the geofence check.
package geo

import "math"

// EarthRadiusM is the mean Earth radius used by Haversine, in metres.
const EarthRadiusM = 6371000.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Haversine returns the great-circle distance between two points in metres.
// Inputs are not range checked.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	// rounding can push a just outside [0, 1] near the antipode
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusM * c
}

// Distance is Haversine over Points.
func Distance(a, b Point) float64 {
	return Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
}

// Within reports the distance from p to centre and whether it is inside radiusM.
func Within(p, centre Point, radiusM float64) (float64, bool) {
	d := Distance(p, centre)
	return d, d <= radiusM
}
