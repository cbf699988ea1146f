package compatibility

import "github.com/gdugdh24/topicmatch-backend/internal/domain"

// Level maps a score to its display band.
func Level(score int) domain.CompatibilityLevel {
	switch {
	case score >= 85:
		return domain.LevelPerfectMatch
	case score >= 70:
		return domain.LevelGreatMatch
	case score >= 55:
		return domain.LevelGoodMatch
	case score >= 40:
		return domain.LevelModerateMatch
	default:
		return domain.LevelDifferentVibe
	}
}
