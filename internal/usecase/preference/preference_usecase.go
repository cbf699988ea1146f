package preference

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/gdugdh24/topicmatch-backend/internal/logging"
	"github.com/gdugdh24/topicmatch-backend/internal/metrics"
	"github.com/gdugdh24/topicmatch-backend/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Recomputer refreshes cached scores after a user's preferences change.
type Recomputer interface {
	Trigger(ctx context.Context, userID uuid.UUID)
}

type PreferenceUseCase struct {
	profileRepo repository.ProfileRepository
	prefRepo    repository.PreferenceRepository
	topicRepo   repository.TopicRepository
	recomputer  Recomputer
	validate    *validator.Validate
	now         func() time.Time
}

func NewPreferenceUseCase(
	profileRepo repository.ProfileRepository,
	prefRepo repository.PreferenceRepository,
	topicRepo repository.TopicRepository,
	recomputer Recomputer,
) *PreferenceUseCase {
	return &PreferenceUseCase{
		profileRepo: profileRepo,
		prefRepo:    prefRepo,
		topicRepo:   topicRepo,
		recomputer:  recomputer,
		validate:    validator.New(),
		now:         time.Now,
	}
}

// SavePreferencesRequest represents a full preference replace
type SavePreferencesRequest struct {
	UserID      uuid.UUID                `json:"user_id" binding:"required"`
	Preferences []domain.PreferenceInput `json:"preferences" binding:"required,min=1,max=1000"`
}

// SaveResult reports what was stored.
type SaveResult struct {
	Saved   int         `json:"saved"`
	Dropped []uuid.UUID `json:"dropped"`
}

// SavePreferences replaces the user's preference set. Unknown topics are
// dropped; if none remain the save fails with ErrNoValidTopics. A successful
// save triggers score recomputation, whose failure does not fail the save.
func (uc *PreferenceUseCase) SavePreferences(ctx context.Context, userID uuid.UUID, inputs []domain.PreferenceInput) (*SaveResult, error) {
	for i := range inputs {
		if err := uc.validate.Struct(inputs[i]); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", domain.ErrInvalidPreference, i, err)
		}
	}

	if _, err := uc.profileRepo.GetByUserID(ctx, userID); err != nil {
		return nil, err
	}

	prefs := dedupe(inputs)

	ids := make([]uuid.UUID, len(prefs))
	for i, p := range prefs {
		ids[i] = p.TopicID
	}
	existing, err := uc.topicRepo.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to validate topics: %w", err)
	}

	result := &SaveResult{Dropped: []uuid.UUID{}}
	valid := prefs[:0]
	for _, p := range prefs {
		if existing[p.TopicID] {
			valid = append(valid, p)
			continue
		}
		result.Dropped = append(result.Dropped, p.TopicID)
	}

	if len(result.Dropped) > 0 {
		metrics.PreferencesDropped.Add(float64(len(result.Dropped)))
		logging.Ctx(ctx).Warn().
			Str("user_id", userID.String()).
			Int("dropped", len(result.Dropped)).
			Interface("topic_ids", result.Dropped).
			Msg("dropping preferences for unknown topics")
	}
	if len(valid) == 0 {
		return nil, domain.ErrNoValidTopics
	}

	if err := uc.prefRepo.ReplaceAll(ctx, userID, valid, uc.now()); err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	result.Saved = len(valid)

	logging.Ctx(ctx).Info().
		Str("user_id", userID.String()).
		Int("saved", result.Saved).
		Msg("preferences saved")

	if uc.recomputer != nil {
		uc.recomputer.Trigger(ctx, userID)
	}
	return result, nil
}

// dedupe keeps the first position of each topic and the last submitted value.
func dedupe(inputs []domain.PreferenceInput) []domain.PreferenceInput {
	out := make([]domain.PreferenceInput, 0, len(inputs))
	index := make(map[uuid.UUID]int, len(inputs))
	for _, p := range inputs {
		if i, ok := index[p.TopicID]; ok {
			out[i].Preference = p.Preference
			continue
		}
		index[p.TopicID] = len(out)
		out = append(out, p)
	}
	return out
}

func (uc *PreferenceUseCase) GetPreferences(ctx context.Context, userID uuid.UUID) ([]domain.TopicPreference, error) {
	if _, err := uc.profileRepo.GetByUserID(ctx, userID); err != nil {
		return nil, err
	}
	prefs, err := uc.prefRepo.GetAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	if prefs == nil {
		prefs = []domain.TopicPreference{}
	}
	return prefs, nil
}

// ListTopics returns active topics, optionally restricted to one category.
func (uc *PreferenceUseCase) ListTopics(ctx context.Context, category string) ([]*domain.Topic, error) {
	topics, err := uc.topicRepo.ListActive(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	if topics == nil {
		topics = []*domain.Topic{}
	}
	return topics, nil
}
