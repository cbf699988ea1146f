package domain

import (
	"time"

	"github.com/google/uuid"
)

// CompatibilityScore is a cached pairwise score. User1ID is always the
// lexicographically smaller id.
type CompatibilityScore struct {
	User1ID           uuid.UUID `json:"user1_id" db:"user1_id"`
	User2ID           uuid.UUID `json:"user2_id" db:"user2_id"`
	Score             int       `json:"score" db:"score"`
	SharedTopics      int       `json:"shared_topics" db:"shared_topics"`
	MatchedTopics     int       `json:"matched_topics" db:"matched_topics"`
	ConflictingTopics int       `json:"conflicting_topics" db:"conflicting_topics"`
	DistanceKm        *float64  `json:"distance_km" db:"distance_km"`
	CalculatedAt      time.Time `json:"calculated_at" db:"calculated_at"`
}

// CanonicalPair orders two user ids so the smaller string comes first.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if b.String() < a.String() {
		return b, a
	}
	return a, b
}

func (s *CompatibilityScore) Canonicalize() {
	s.User1ID, s.User2ID = CanonicalPair(s.User1ID, s.User2ID)
}

func (s *CompatibilityScore) HasUser(userID uuid.UUID) bool {
	return s.User1ID == userID || s.User2ID == userID
}

func (s *CompatibilityScore) OtherUser(userID uuid.UUID) (uuid.UUID, bool) {
	if s.User1ID == userID {
		return s.User2ID, true
	}
	if s.User2ID == userID {
		return s.User1ID, true
	}
	return uuid.Nil, false
}

// IsFresh reports whether the entry is younger than maxAge at now.
// A non-positive maxAge accepts any entry.
func (s *CompatibilityScore) IsFresh(now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return true
	}
	return now.Sub(s.CalculatedAt) < maxAge
}

type CompatibilityLevel string

const (
	LevelPerfectMatch  CompatibilityLevel = "perfect_match"
	LevelGreatMatch    CompatibilityLevel = "great_match"
	LevelGoodMatch     CompatibilityLevel = "good_match"
	LevelModerateMatch CompatibilityLevel = "moderate_match"
	LevelDifferentVibe CompatibilityLevel = "different_vibes"
)

type MatchedTopicDetail struct {
	TopicID   uuid.UUID `json:"topic_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Icon      *string   `json:"icon,omitempty"`
	BothLiked bool      `json:"both_liked"`
}

// Compatibility is the full result of scoring two preference sets.
type Compatibility struct {
	Score               int                  `json:"score"`
	Level               CompatibilityLevel   `json:"compatibility_level"`
	SharedTopics        int                  `json:"shared_topics"`
	MatchedTopics       []uuid.UUID          `json:"matched_topics"`
	ConflictingTopics   []uuid.UUID          `json:"conflicting_topics"`
	CategoryBreakdown   map[string]int       `json:"category_breakdown"`
	MatchedTopicDetails []MatchedTopicDetail `json:"matched_topic_details"`
}
