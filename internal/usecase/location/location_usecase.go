package location

import (
	"context"
	"fmt"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/gdugdh24/topicmatch-backend/internal/geo"
	"github.com/gdugdh24/topicmatch-backend/internal/logging"
	"github.com/gdugdh24/topicmatch-backend/internal/repository"
	"github.com/google/uuid"
)

type LocationUseCase struct {
	profileRepo repository.ProfileRepository
}

func NewLocationUseCase(profileRepo repository.ProfileRepository) *LocationUseCase {
	return &LocationUseCase{
		profileRepo: profileRepo,
	}
}

// UpdateLocationRequest represents location preference update request
type UpdateLocationRequest struct {
	UserID        uuid.UUID `json:"user_id" binding:"required"`
	ShareLocation bool      `json:"share_location"`
	Latitude      *float64  `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude     *float64  `json:"longitude" binding:"omitempty,min=-180,max=180"`
	City          *string   `json:"city" binding:"omitempty,max=100"`
	Country       *string   `json:"country" binding:"omitempty,max=100"`
	MaxDistanceKm *int      `json:"max_distance_km" binding:"omitempty,min=1,max=20000"`
	Worldwide     bool      `json:"worldwide"`
}

// UpdateLocation replaces the user's location preferences. When the user
// does not share their location, coordinates, city and country are cleared.
func (uc *LocationUseCase) UpdateLocation(ctx context.Context, req *UpdateLocationRequest) (*domain.Profile, error) {
	update := &domain.LocationUpdate{
		UserID:        req.UserID,
		ShareLocation: req.ShareLocation,
	}

	if req.ShareLocation {
		if req.Latitude == nil || req.Longitude == nil {
			return nil, fmt.Errorf("%w: latitude and longitude are required when sharing location", geo.ErrInvalidCoordinates)
		}
		point, err := geo.NewPoint(*req.Latitude, *req.Longitude)
		if err != nil {
			return nil, err
		}
		update.Point = &point
		update.City = req.City
		update.Country = req.Country
	}

	switch {
	case req.Worldwide:
		limit := geo.Unbounded()
		update.MaxDistance = &limit
	case req.MaxDistanceKm != nil:
		limit := geo.Bounded(float64(*req.MaxDistanceKm))
		update.MaxDistance = &limit
	}

	if err := uc.profileRepo.UpdateLocation(ctx, update); err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("user_id", req.UserID.String()).
		Bool("share_location", req.ShareLocation).
		Msg("location preferences updated")

	return uc.profileRepo.GetByUserID(ctx, req.UserID)
}
