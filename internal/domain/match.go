package domain

import "github.com/google/uuid"

// EmptyReason explains why a match query returned no candidates.
type EmptyReason string

const (
	ReasonNone                  EmptyReason = ""
	ReasonNoPreferences         EmptyReason = "no_preferences"
	ReasonNoCandidatesInRange   EmptyReason = "no_candidates_in_range"
	ReasonBelowMinCompatibility EmptyReason = "below_min_compatibility"
)

// MatchCandidate is a ranked candidate. Topic lists are only filled when the
// score was computed on demand; cache hits carry counts only.
type MatchCandidate struct {
	UserID                 uuid.UUID            `json:"user_id"`
	Profile                *Profile             `json:"profile"`
	Score                  int                  `json:"compatibility_score"`
	Level                  CompatibilityLevel   `json:"compatibility_level"`
	SharedTopics           int                  `json:"shared_topics"`
	MatchedTopicsCount     int                  `json:"matched_topics_count"`
	ConflictingTopicsCount int                  `json:"conflicting_topics_count"`
	MatchedTopics          []uuid.UUID          `json:"matched_topics,omitempty"`
	ConflictingTopics      []uuid.UUID          `json:"conflicting_topics,omitempty"`
	CategoryBreakdown      map[string]int       `json:"category_breakdown,omitempty"`
	MatchedTopicDetails    []MatchedTopicDetail `json:"matched_topic_details,omitempty"`
	DistanceKm             *float64             `json:"distance_km"`
	Cached                 bool                 `json:"cached"`
}
