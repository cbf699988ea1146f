package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/gdugdh24/topicmatch-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const scoreColumns = `
	user1_id, user2_id, score, shared_topics, matched_topics,
	conflicting_topics, distance_km, calculated_at
`

// ScoreRepository is the durable ScoreCache backed by compatibility_scores.
type ScoreRepository struct {
	db *sqlx.DB
}

var (
	_ repository.ScoreCache       = (*ScoreRepository)(nil)
	_ repository.StaleScoreFinder = (*ScoreRepository)(nil)
)

func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

func (r *ScoreRepository) Get(ctx context.Context, a, b uuid.UUID) (*domain.CompatibilityScore, error) {
	user1ID, user2ID := domain.CanonicalPair(a, b)

	var score domain.CompatibilityScore
	query := `SELECT ` + scoreColumns + ` FROM compatibility_scores WHERE user1_id = $1 AND user2_id = $2`
	err := r.db.GetContext(ctx, &score, query, user1ID, user2ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrScoreNotFound
		}
		return nil, err
	}
	return &score, nil
}

func (r *ScoreRepository) GetForUser(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]*domain.CompatibilityScore, error) {
	var scores []*domain.CompatibilityScore
	query := `SELECT ` + scoreColumns + ` FROM compatibility_scores WHERE user1_id = $1 OR user2_id = $1`
	if err := r.db.SelectContext(ctx, &scores, query, userID); err != nil {
		return nil, err
	}

	byOther := make(map[uuid.UUID]*domain.CompatibilityScore, len(scores))
	for _, s := range scores {
		if other, ok := s.OtherUser(userID); ok {
			byOther[other] = s
		}
	}
	return byOther, nil
}

func (r *ScoreRepository) Put(ctx context.Context, score *domain.CompatibilityScore) error {
	score.Canonicalize()

	query := `
		INSERT INTO compatibility_scores (` + scoreColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user1_id, user2_id) DO UPDATE SET
			score = EXCLUDED.score,
			shared_topics = EXCLUDED.shared_topics,
			matched_topics = EXCLUDED.matched_topics,
			conflicting_topics = EXCLUDED.conflicting_topics,
			distance_km = EXCLUDED.distance_km,
			calculated_at = EXCLUDED.calculated_at
		WHERE compatibility_scores.calculated_at <= EXCLUDED.calculated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		score.User1ID, score.User2ID, score.Score,
		score.SharedTopics, score.MatchedTopics, score.ConflictingTopics,
		score.DistanceKm, score.CalculatedAt,
	)
	return err
}

func (r *ScoreRepository) InvalidateAllFor(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM compatibility_scores WHERE user1_id = $1 OR user2_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

func (r *ScoreRepository) ListUsersWithStaleScores(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `
		SELECT p.user_id
		FROM (
			SELECT user_id, MAX(created_at) AS changed_at
			FROM user_topic_preferences
			GROUP BY user_id
		) p
		LEFT JOIN LATERAL (
			SELECT MAX(calculated_at) AS calculated_at
			FROM compatibility_scores s
			WHERE s.user1_id = p.user_id OR s.user2_id = p.user_id
		) s ON true
		WHERE (s.calculated_at IS NULL OR s.calculated_at < p.changed_at)
		  AND EXISTS (
			SELECT 1 FROM user_topic_preferences o WHERE o.user_id <> p.user_id
		  )
		ORDER BY p.changed_at
		LIMIT $1
	`
	err := r.db.SelectContext(ctx, &ids, query, limit)
	return ids, err
}
