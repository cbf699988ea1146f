package postgres

import (
	"context"
	"strings"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/gdugdh24/topicmatch-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type topicRepository struct {
	db *sqlx.DB
}

func NewTopicRepository(db *sqlx.DB) repository.TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) ExistingIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	existing := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	var found []uuid.UUID
	query := `SELECT id FROM topics WHERE is_active = true AND id = ANY($1::uuid[])`
	if err := r.db.SelectContext(ctx, &found, query, uuidArray(ids)); err != nil {
		return nil, err
	}
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

func (r *topicRepository) ListActive(ctx context.Context, category string) ([]*domain.Topic, error) {
	var topics []*domain.Topic
	query := `
		SELECT id, title, description, category, image_url, icon, is_active, created_at
		FROM topics
		WHERE is_active = true AND ($1 = '' OR lower(category) = $1)
		ORDER BY category, title
	`
	err := r.db.SelectContext(ctx, &topics, query, strings.ToLower(category))
	return topics, err
}
