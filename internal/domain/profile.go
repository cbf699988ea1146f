package domain

import (
	"time"

	"github.com/gdugdh24/topicmatch-backend/internal/geo"
	"github.com/google/uuid"
)

type Profile struct {
	UserID                uuid.UUID  `json:"user_id" db:"user_id"`
	Name                  string     `json:"name" db:"name"`
	Bio                   *string    `json:"bio" db:"bio"`
	Age                   *int       `json:"age" db:"age"`
	ProfileImageURL       *string    `json:"profile_image_url" db:"profile_image_url"`
	Latitude              *float64   `json:"-" db:"latitude"`
	Longitude             *float64   `json:"-" db:"longitude"`
	City                  *string    `json:"city" db:"city"`
	Country               *string    `json:"country" db:"country"`
	ShareLocation         bool       `json:"share_location" db:"share_location"`
	MaxDistancePreference *int       `json:"max_distance_preference" db:"max_distance_preference"`
	IsActive              bool       `json:"is_active" db:"is_active"`
	LastActive            *time.Time `json:"last_active" db:"last_active"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
}

// Location returns the profile's coordinates, or false when the user has no
// usable location.
func (p *Profile) Location() (geo.Point, bool) {
	return geo.PointFromStored(p.Latitude, p.Longitude)
}

// DistanceLimit returns the stored max-distance preference, or false when the
// user has not set one.
func (p *Profile) DistanceLimit() (geo.Limit, bool) {
	return geo.LimitFromStored(p.MaxDistancePreference)
}

// LocationUpdate is a full replace of a user's location preferences.
type LocationUpdate struct {
	UserID        uuid.UUID
	Point         *geo.Point
	City          *string
	Country       *string
	ShareLocation bool

	// MaxDistance nil leaves the request parameter in charge.
	MaxDistance *geo.Limit
}
