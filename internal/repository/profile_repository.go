package repository

import (
	"context"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/google/uuid"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	// ListActiveExcept returns every active profile other than userID.
	ListActiveExcept(ctx context.Context, userID uuid.UUID) ([]*domain.Profile, error)
	UpdateLocation(ctx context.Context, update *domain.LocationUpdate) error
}
