package repository

import (
	"context"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/google/uuid"
)

type TopicRepository interface {
	// ExistingIDs returns the subset of ids that refer to active topics.
	ExistingIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error)
	ListActive(ctx context.Context, category string) ([]*domain.Topic, error)
}
