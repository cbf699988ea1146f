package match

import (
	"math"
	"testing"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/gdugdh24/topicmatch-backend/internal/geo"
	"github.com/gdugdh24/topicmatch-backend/internal/testinfra"
)

func profileAt(n int, coords ...float64) *domain.Profile {
	p := &domain.Profile{UserID: testinfra.UserID(n), IsActive: true}
	if len(coords) == 2 {
		lat, lon := coords[0], coords[1]
		p.Latitude, p.Longitude = &lat, &lon
	}
	return p
}

func TestFilterCandidates(t *testing.T) {
	amsterdam := profileAt(1, 52.3676, 4.9041)
	utrecht := profileAt(2, 52.0907, 5.1214)
	paris := profileAt(3, 48.8566, 2.3522)
	hidden := profileAt(4)
	sentinel := profileAt(5, geo.LegacySentinel, geo.LegacySentinel)

	tests := []struct {
		name      string
		requester *domain.Profile
		limit     geo.Limit
		wantIDs   []int
		wantDist  map[int]bool
	}{
		{
			name:      "bounded limit excludes far candidates",
			requester: amsterdam,
			limit:     geo.Bounded(50),
			wantIDs:   []int{2, 4, 5},
			wantDist:  map[int]bool{2: true},
		},
		{
			name:      "unbounded admits everyone without distance",
			requester: amsterdam,
			limit:     geo.Unbounded(),
			wantIDs:   []int{2, 3, 4, 5},
			wantDist:  map[int]bool{},
		},
		{
			name:      "requester without location admits everyone",
			requester: hidden,
			limit:     geo.Bounded(1),
			wantIDs:   []int{1, 2, 3, 5},
			wantDist:  map[int]bool{},
		},
		{
			name:      "wide bound reports every distance",
			requester: amsterdam,
			limit:     geo.Bounded(1000),
			wantIDs:   []int{2, 3, 4, 5},
			wantDist:  map[int]bool{2: true, 3: true},
		},
	}

	pool := []*domain.Profile{amsterdam, utrecht, paris, hidden, sentinel}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterCandidates(tt.requester, pool, tt.limit)

			if len(got) != len(tt.wantIDs) {
				t.Fatalf("FilterCandidates() returned %d candidates, want %d", len(got), len(tt.wantIDs))
			}
			for i, n := range tt.wantIDs {
				c := got[i]
				if c.Profile.UserID != testinfra.UserID(n) {
					t.Errorf("candidate %d = %s, want user %d", i, c.Profile.UserID, n)
				}
				if tt.wantDist[n] != (c.DistanceKm != nil) {
					t.Errorf("user %d distance = %v, want reported=%v", n, c.DistanceKm, tt.wantDist[n])
				}
			}
		})
	}
}

func TestFilterCandidates_BoundaryIsInclusive(t *testing.T) {
	amsterdam := profileAt(1, 52.3676, 4.9041)
	utrecht := profileAt(2, 52.0907, 5.1214)

	a, _ := amsterdam.Location()
	u, _ := utrecht.Location()
	d := geo.Distance(a, u)

	got := FilterCandidates(amsterdam, []*domain.Profile{utrecht}, geo.Bounded(d))
	if len(got) != 1 {
		t.Fatalf("candidate at exactly the limit was excluded")
	}
	if math.Abs(*got[0].DistanceKm-d) > 1e-9 {
		t.Errorf("DistanceKm = %v, want %v", *got[0].DistanceKm, d)
	}
}
