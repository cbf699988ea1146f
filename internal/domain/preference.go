package domain

import (
	"time"

	"github.com/google/uuid"
)

type PreferenceKind string

const (
	PreferenceLike    PreferenceKind = "like"
	PreferenceDislike PreferenceKind = "dislike"
)

func (k PreferenceKind) Valid() bool {
	return k == PreferenceLike || k == PreferenceDislike
}

// TopicPreference is one user's like/dislike for one topic, joined with the
// topic fields the scorer needs.
type TopicPreference struct {
	UserID     uuid.UUID      `json:"user_id" db:"user_id"`
	TopicID    uuid.UUID      `json:"topic_id" db:"topic_id"`
	Preference PreferenceKind `json:"preference" db:"preference"`
	Category   string         `json:"category" db:"category"`
	Title      string         `json:"title" db:"title"`
	Icon       *string        `json:"icon,omitempty" db:"icon"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// PreferenceInput is a single entry of a preference save request.
type PreferenceInput struct {
	TopicID    uuid.UUID      `json:"topic_id" validate:"required"`
	Preference PreferenceKind `json:"preference" validate:"required,oneof=like dislike"`
}
