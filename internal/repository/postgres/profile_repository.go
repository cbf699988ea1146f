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

const profileColumns = `
	user_id, name, bio, age, profile_image_url,
	latitude, longitude, city, country,
	share_location, max_distance_preference,
	is_active, last_active, created_at, updated_at
`

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id = $1`
	err := r.db.GetContext(ctx, &profile, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) ListActiveExcept(ctx context.Context, userID uuid.UUID) ([]*domain.Profile, error) {
	var profiles []*domain.Profile
	query := `
		SELECT ` + profileColumns + `
		FROM user_profiles
		WHERE is_active = true AND user_id <> $1
		ORDER BY last_active DESC NULLS LAST, user_id
	`
	err := r.db.SelectContext(ctx, &profiles, query, userID)
	return profiles, err
}

func (r *profileRepository) UpdateLocation(ctx context.Context, update *domain.LocationUpdate) error {
	var lat, lon *float64
	if update.Point != nil {
		lat, lon = &update.Point.Lat, &update.Point.Lon
	}
	var maxDistance *int
	if update.MaxDistance != nil {
		v := update.MaxDistance.Stored()
		maxDistance = &v
	}

	query := `
		UPDATE user_profiles
		SET latitude = $1, longitude = $2, city = $3, country = $4,
		    share_location = $5, max_distance_preference = $6,
		    updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		lat, lon, update.City, update.Country,
		update.ShareLocation, maxDistance,
		update.UserID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
