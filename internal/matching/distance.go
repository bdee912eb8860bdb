// internal/matching/distance.go
package matching

import "math"

const (
	EarthRadiusKm    = 6371.0
	EarthRadiusMiles = 3958.8
)

// HaversineKm returns the great-circle distance between two points in kilometers.
// NaN coordinates yield NaN.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// DistanceKm is HaversineKm over two points.
func DistanceKm(a, b GeoPoint) float64 {
	return HaversineKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

// KilometersToMiles converts at the call site for consumers that display miles.
func KilometersToMiles(km float64) float64 {
	return km * EarthRadiusMiles / EarthRadiusKm
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
