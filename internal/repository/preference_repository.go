package repository

import (
	"context"
	"time"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/google/uuid"
)

type PreferenceRepository interface {
	GetAll(ctx context.Context, userID uuid.UUID) ([]domain.TopicPreference, error)
	GetAllForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]domain.TopicPreference, error)
	// ReplaceAll deletes every preference of userID and inserts prefs in one
	// transaction. Concurrent calls for the same user are serialized.
	// changedAt becomes the rows' created_at and must come from the clock that
	// stamps calculated_at on cached scores.
	ReplaceAll(ctx context.Context, userID uuid.UUID, prefs []domain.PreferenceInput, changedAt time.Time) error
	ListUsersWithPreferences(ctx context.Context) ([]uuid.UUID, error)
}
