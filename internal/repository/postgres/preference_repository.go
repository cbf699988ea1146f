package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/gdugdh24/topicmatch-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const preferenceSelect = `
	SELECT p.user_id, p.topic_id, p.preference, t.category, t.title, t.icon, p.created_at
	FROM user_topic_preferences p
	JOIN topics t ON t.id = p.topic_id
`

type preferenceRepository struct {
	db *sqlx.DB
}

func NewPreferenceRepository(db *sqlx.DB) repository.PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) GetAll(ctx context.Context, userID uuid.UUID) ([]domain.TopicPreference, error) {
	var prefs []domain.TopicPreference
	query := preferenceSelect + `
		WHERE p.user_id = $1
		ORDER BY p.created_at, p.topic_id
	`
	err := r.db.SelectContext(ctx, &prefs, query, userID)
	return prefs, err
}

func (r *preferenceRepository) GetAllForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]domain.TopicPreference, error) {
	result := make(map[uuid.UUID][]domain.TopicPreference, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var prefs []domain.TopicPreference
	query := preferenceSelect + `
		WHERE p.user_id = ANY($1::uuid[])
		ORDER BY p.user_id, p.created_at, p.topic_id
	`
	if err := r.db.SelectContext(ctx, &prefs, query, uuidArray(userIDs)); err != nil {
		return nil, err
	}

	for _, p := range prefs {
		result[p.UserID] = append(result[p.UserID], p)
	}
	return result, nil
}

func (r *preferenceRepository) ReplaceAll(ctx context.Context, userID uuid.UUID, prefs []domain.PreferenceInput, changedAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// serializes concurrent full replaces for the same user
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID.String()); err != nil {
		return fmt.Errorf("failed to lock preferences: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_topic_preferences WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete preferences: %w", err)
	}

	if len(prefs) > 0 {
		topicIDs := make([]string, len(prefs))
		kinds := make([]string, len(prefs))
		for i, p := range prefs {
			topicIDs[i] = p.TopicID.String()
			kinds[i] = string(p.Preference)
		}

		query := `
			INSERT INTO user_topic_preferences (user_id, topic_id, preference, created_at)
			SELECT $1::uuid, t.topic_id, t.preference, $4::timestamptz
			FROM unnest($2::uuid[], $3::text[]) AS t(topic_id, preference)
		`
		if _, err := tx.ExecContext(ctx, query, userID, pq.Array(topicIDs), pq.Array(kinds), changedAt); err != nil {
			return fmt.Errorf("failed to insert preferences: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit preferences: %w", err)
	}
	return nil
}

func (r *preferenceRepository) ListUsersWithPreferences(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `SELECT DISTINCT user_id FROM user_topic_preferences ORDER BY user_id`
	err := r.db.SelectContext(ctx, &ids, query)
	return ids, err
}
