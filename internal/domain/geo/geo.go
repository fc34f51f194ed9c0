package geo

import "math"

// EarthRadiusKm is the mean radius of Earth used for Haversine distance.
const EarthRadiusKm = 6371.0

// EarthRadiusMeters is EarthRadiusKm expressed in meters.
const EarthRadiusMeters = EarthRadiusKm * 1000

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Valid reports whether c is finite and inside the WGS84 ranges.
func (c Coordinate) Valid() bool { return ValidateCoordinates(c.Lat, c.Lon) }

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

// HaversineKm returns the great-circle distance in kilometers between two points
// specified by latitude and longitude in degrees.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a just above 1 for antipodal points.
	a = math.Min(a, 1)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Haversine returns the great-circle distance in meters.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	return HaversineKm(lat1, lon1, lat2, lon2) * 1000
}

// Distance returns the great-circle distance in kilometers between two coordinates.
func Distance(a, b Coordinate) float64 {
	return HaversineKm(a.Lat, a.Lon, b.Lat, b.Lon)
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
// NaN and infinities are rejected.
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
