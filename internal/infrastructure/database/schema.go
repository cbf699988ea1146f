package database

import (
	"context"
	"fmt"

	"github.com/gdugdh24/topicmatch-backend/internal/logging"
	"github.com/jmoiron/sqlx"
)

// migrations are idempotent and run in order.
var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	`CREATE TABLE IF NOT EXISTS user_profiles (
		user_id UUID PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		bio TEXT,
		age INTEGER CHECK (age IS NULL OR age BETWEEN 18 AND 120),
		profile_image_url TEXT,
		latitude DOUBLE PRECISION CHECK (latitude IS NULL OR latitude BETWEEN -90 AND 90),
		longitude DOUBLE PRECISION CHECK (longitude IS NULL OR longitude BETWEEN -180 AND 180),
		city VARCHAR(100),
		country VARCHAR(100),
		share_location BOOLEAN NOT NULL DEFAULT false,
		max_distance_preference INTEGER,
		is_active BOOLEAN NOT NULL DEFAULT true,
		last_active TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS topics (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title VARCHAR(200) NOT NULL,
		description TEXT,
		category VARCHAR(50) NOT NULL,
		image_url TEXT,
		icon VARCHAR(50),
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS user_topic_preferences (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES user_profiles(user_id) ON DELETE CASCADE,
		topic_id UUID NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
		preference VARCHAR(10) NOT NULL CHECK (preference IN ('like', 'dislike')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, topic_id)
	)`,

	`CREATE TABLE IF NOT EXISTS compatibility_scores (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user1_id UUID NOT NULL REFERENCES user_profiles(user_id) ON DELETE CASCADE,
		user2_id UUID NOT NULL REFERENCES user_profiles(user_id) ON DELETE CASCADE,
		score INTEGER NOT NULL CHECK (score BETWEEN 0 AND 100),
		shared_topics INTEGER NOT NULL DEFAULT 0,
		matched_topics INTEGER NOT NULL DEFAULT 0,
		conflicting_topics INTEGER NOT NULL DEFAULT 0,
		distance_km DOUBLE PRECISION,
		calculated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user1_id, user2_id),
		CHECK (user1_id <> user2_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_user_profiles_active ON user_profiles(is_active, last_active DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_topics_category ON topics(category) WHERE is_active`,
	`CREATE INDEX IF NOT EXISTS idx_preferences_user ON user_topic_preferences(user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_preferences_topic ON user_topic_preferences(topic_id)`,
	`CREATE INDEX IF NOT EXISTS idx_scores_user1 ON compatibility_scores(user1_id)`,
	`CREATE INDEX IF NOT EXISTS idx_scores_user2 ON compatibility_scores(user2_id)`,
}

// EnsureSchema creates the tables and indexes the repositories read from.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d/%d failed: %w", i+1, len(migrations), err)
		}
	}
	logging.Info().Int("migrations", len(migrations)).Msg("database schema ensured")
	return nil
}
