// Package compatibility scores how well two users' topic preferences align.
package compatibility

import (
	"math"
	"sort"
	"strings"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/google/uuid"
)

const (
	maxScore            = 100.0
	categoryBonusCap    = 25.0
	categoryMatchPoints = 2.0
	sharedBonusPerTopic = 2.0
	sharedBonusCap      = 20.0
	mutualLikePoints    = 3.0
)

var categoryWeights = map[string]float64{
	"conversation": 1.5,
	"lifestyle":    1.2,
	"health":       1.1,
	"technology":   1.0,
	"nature":       1.0,
}

// preferenceSet is one side's preferences split into ordered likes and dislikes.
type preferenceSet struct {
	likes    []uuid.UUID
	dislikes []uuid.UUID
	liked    map[uuid.UUID]bool
	disliked map[uuid.UUID]bool
	topics   map[uuid.UUID]domain.TopicPreference
}

func partition(prefs []domain.TopicPreference) preferenceSet {
	s := preferenceSet{
		liked:    make(map[uuid.UUID]bool),
		disliked: make(map[uuid.UUID]bool),
		topics:   make(map[uuid.UUID]domain.TopicPreference, len(prefs)),
	}
	for _, p := range prefs {
		if _, seen := s.topics[p.TopicID]; seen {
			continue
		}
		s.topics[p.TopicID] = p
		switch p.Preference {
		case domain.PreferenceLike:
			s.likes = append(s.likes, p.TopicID)
			s.liked[p.TopicID] = true
		case domain.PreferenceDislike:
			s.dislikes = append(s.dislikes, p.TopicID)
			s.disliked[p.TopicID] = true
		}
	}
	return s
}

func intersect(ids []uuid.UUID, other map[uuid.UUID]bool) []uuid.UUID {
	var out []uuid.UUID
	for _, id := range ids {
		if other[id] {
			out = append(out, id)
		}
	}
	return out
}

// Calculate scores preference set a against preference set b. It is pure and
// symmetric in its score: Calculate(a, b).Score == Calculate(b, a).Score.
func Calculate(a, b []domain.TopicPreference) domain.Compatibility {
	sa, sb := partition(a), partition(b)

	bothLiked := intersect(sa.likes, sb.liked)
	bothDisliked := intersect(sa.dislikes, sb.disliked)
	aLikesBDislikes := intersect(sa.likes, sb.disliked)
	bLikesADislikes := intersect(sb.likes, sa.disliked)

	matched := len(bothLiked) + len(bothDisliked)
	conflicts := len(aLikesBDislikes) + len(bLikesADislikes)
	shared := matched + conflicts

	result := domain.Compatibility{
		SharedTopics:        shared,
		MatchedTopics:       append(append([]uuid.UUID{}, bothLiked...), bothDisliked...),
		ConflictingTopics:   append(append([]uuid.UUID{}, aLikesBDislikes...), bLikesADislikes...),
		CategoryBreakdown:   map[string]int{},
		MatchedTopicDetails: []domain.MatchedTopicDetail{},
	}

	if shared == 0 {
		result.Level = Level(0)
		return result
	}

	bothLikedSet := make(map[uuid.UUID]bool, len(bothLiked))
	for _, id := range bothLiked {
		bothLikedSet[id] = true
	}
	for _, id := range result.MatchedTopics {
		topic, ok := sa.topics[id]
		if !ok {
			topic = sb.topics[id]
		}
		category := strings.ToLower(topic.Category)
		result.CategoryBreakdown[category]++
		result.MatchedTopicDetails = append(result.MatchedTopicDetails, domain.MatchedTopicDetail{
			TopicID:   id,
			Title:     topic.Title,
			Category:  category,
			Icon:      topic.Icon,
			BothLiked: bothLikedSet[id],
		})
	}

	score := float64(matched) / float64(shared) * maxScore
	score += categoryBonus(result.CategoryBreakdown)
	score += math.Min(float64(shared)*sharedBonusPerTopic, sharedBonusCap)
	score += float64(len(bothLiked)) * mutualLikePoints
	score = math.Min(score, maxScore)

	result.Score = int(math.Round(score))
	result.Level = Level(result.Score)
	return result
}

func categoryBonus(matchesByCategory map[string]int) float64 {
	categories := make([]string, 0, len(matchesByCategory))
	for category := range matchesByCategory {
		categories = append(categories, category)
	}
	// fixed summation order keeps the score identical for (a, b) and (b, a)
	sort.Strings(categories)

	bonus := 0.0
	for _, category := range categories {
		weight, ok := categoryWeights[category]
		if !ok {
			weight = 1.0
		}
		bonus += float64(matchesByCategory[category]) * weight * categoryMatchPoints
	}

	switch n := len(matchesByCategory); {
	case n >= 3:
		bonus += 10
	case n == 2:
		bonus += 5
	}

	return math.Min(bonus, categoryBonusCap)
}
