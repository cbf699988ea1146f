package match

import (
	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/gdugdh24/topicmatch-backend/internal/geo"
)

// Candidate is a profile that passed the distance filter.
type Candidate struct {
	Profile    *domain.Profile
	DistanceKm *float64
}

// FilterCandidates keeps candidates within limit of the requester. A missing
// location on either side makes the candidate eligible with an unknown
// distance. Distances are only reported under a bounded limit.
func FilterCandidates(requester *domain.Profile, candidates []*domain.Profile, limit geo.Limit) []Candidate {
	origin, hasOrigin := requester.Location()

	eligible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.UserID == requester.UserID {
			continue
		}

		point, ok := c.Location()
		if !hasOrigin || !ok || !limit.IsBounded() {
			eligible = append(eligible, Candidate{Profile: c})
			continue
		}

		d := geo.Distance(origin, point)
		if !limit.Admits(d) {
			continue
		}
		eligible = append(eligible, Candidate{Profile: c, DistanceKm: &d})
	}
	return eligible
}
