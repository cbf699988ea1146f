// Package geo holds the great-circle distance used for candidate filtering
// together with explicit location and distance-limit types.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// LegacySentinel is the stored encoding of an unbounded distance preference.
// Older rows also use it for coordinates that were not shared. It never
// leaves the storage boundary.
const LegacySentinel = 999999

var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Point is a validated latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// NewPoint validates lat in [-90, 90] and lon in [-180, 180].
func NewPoint(lat, lon float64) (Point, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Point{}, fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidCoordinates, lat, lon)
	}
	return Point{Lat: lat, Lon: lon}, nil
}

// PointFromStored decodes nullable stored coordinates. NULLs, the legacy
// sentinel and out-of-range values all mean "no location".
func PointFromStored(lat, lon *float64) (Point, bool) {
	if lat == nil || lon == nil {
		return Point{}, false
	}
	if *lat == LegacySentinel || *lon == LegacySentinel {
		return Point{}, false
	}
	p, err := NewPoint(*lat, *lon)
	if err != nil {
		return Point{}, false
	}
	return p, true
}

// Distance returns the Haversine distance between a and b in kilometers.
func Distance(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
