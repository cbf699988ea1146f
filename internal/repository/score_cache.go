package repository

import (
	"context"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/google/uuid"
)

// ScoreCache stores pairwise scores keyed by the canonical user pair.
type ScoreCache interface {
	Get(ctx context.Context, a, b uuid.UUID) (*domain.CompatibilityScore, error)
	// GetForUser returns cached scores involving userID keyed by the other user.
	GetForUser(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]*domain.CompatibilityScore, error)
	// Put upserts the score. A write older than the stored row is ignored.
	Put(ctx context.Context, score *domain.CompatibilityScore) error
	InvalidateAllFor(ctx context.Context, userID uuid.UUID) error
}

// StaleScoreFinder lists users whose preferences changed after their newest
// cached score was computed.
type StaleScoreFinder interface {
	ListUsersWithStaleScores(ctx context.Context, limit int) ([]uuid.UUID, error)
}
