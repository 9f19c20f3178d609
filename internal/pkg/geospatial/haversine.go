package geospatial

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// ReuseThresholdMeters is the proximity under which a previously resolved
// place name is reused instead of issuing a new geocoding request.
const ReuseThresholdMeters = 100.0

// KeyPrecision is the number of decimal digits a coordinate is rounded to
// when used as a cache key (6 digits is roughly 0.11 m).
const KeyPrecision = 6

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// WithinReuseThreshold reports whether two points are strictly closer than
// ReuseThresholdMeters. Exactly 100 m apart does not qualify.
func WithinReuseThreshold(lat1, lon1, lat2, lon2 float64) bool {
	return Haversine(lat1, lon1, lat2, lon2) < ReuseThresholdMeters
}

// QuantizedKey rounds a coordinate to KeyPrecision decimals and renders it
// as a cache key. Key equality only deduplicates near-identical lookups;
// cache validity is decided by WithinReuseThreshold.
func QuantizedKey(lat, lng float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lng)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
