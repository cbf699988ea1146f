package geo

import (
	"encoding/json"
	"math"
	"strconv"
)

// Limit is a maximum search distance: either Bounded(km) or Unbounded.
// The zero value is Unbounded.
type Limit struct {
	km      float64
	bounded bool
}

func Bounded(km float64) Limit {
	return Limit{km: km, bounded: true}
}

func Unbounded() Limit {
	return Limit{}
}

// LimitFromStored decodes a stored max-distance preference. It reports false
// when the preference is unset (NULL or non-positive).
func LimitFromStored(v *int) (Limit, bool) {
	if v == nil || *v <= 0 {
		return Limit{}, false
	}
	if *v >= LegacySentinel {
		return Unbounded(), true
	}
	return Bounded(float64(*v)), true
}

// Stored encodes the limit for the max_distance_preference column.
func (l Limit) Stored() int {
	if !l.bounded {
		return LegacySentinel
	}
	return int(math.Round(l.km))
}

func (l Limit) IsBounded() bool {
	return l.bounded
}

// Km returns the bound in kilometers and false for Unbounded.
func (l Limit) Km() (float64, bool) {
	return l.km, l.bounded
}

// Admits reports whether a distance falls within the limit.
func (l Limit) Admits(distanceKm float64) bool {
	return !l.bounded || distanceKm <= l.km
}

func (l Limit) String() string {
	if !l.bounded {
		return "unbounded"
	}
	return strconv.FormatFloat(l.km, 'f', -1, 64) + "km"
}

// MarshalJSON renders a bounded limit as its kilometers and Unbounded as null.
func (l Limit) MarshalJSON() ([]byte, error) {
	if !l.bounded {
		return []byte("null"), nil
	}
	return json.Marshal(l.km)
}
