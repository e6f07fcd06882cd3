package features

import (
	"math"

	"github.com/vijay-prabhu/aptmatch/internal/listing"
)

// EarthRadiusMiles is the mean Earth radius used for great-circle distance
const EarthRadiusMiles = 3958.8

// HaversineMiles returns the great-circle distance between a and b in miles
func HaversineMiles(a, b listing.Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMiles * c
}
