package match

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/gdugdh24/topicmatch-backend/internal/geo"
	"github.com/gdugdh24/topicmatch-backend/internal/logging"
	"github.com/gdugdh24/topicmatch-backend/internal/metrics"
	"github.com/gdugdh24/topicmatch-backend/internal/repository"
	"github.com/gdugdh24/topicmatch-backend/internal/usecase/compatibility"
	"github.com/google/uuid"
)

const (
	DefaultMaxDistanceKm    = 50
	DefaultMinCompatibility = 40
	DefaultLimit            = 20
)

type Options struct {
	// CacheMaxAge bounds how old a cached score may be before it is ignored.
	CacheMaxAge  time.Duration
	QueryTimeout time.Duration
}

type MatchUseCase struct {
	profileRepo repository.ProfileRepository
	prefRepo    repository.PreferenceRepository
	scoreCache  repository.ScoreCache
	opts        Options
	now         func() time.Time
}

func NewMatchUseCase(
	profileRepo repository.ProfileRepository,
	prefRepo repository.PreferenceRepository,
	scoreCache repository.ScoreCache,
	opts Options,
) *MatchUseCase {
	return &MatchUseCase{
		profileRepo: profileRepo,
		prefRepo:    prefRepo,
		scoreCache:  scoreCache,
		opts:        opts,
		now:         time.Now,
	}
}

// MatchQuery holds the parameters of FindMatches. MaxDistanceKm is
// overridden by the requester's stored distance preference when one is set.
type MatchQuery struct {
	UserID           uuid.UUID
	MaxDistanceKm    int
	MinCompatibility int
	Limit            int
}

// Filters echoes the effective query parameters.
type Filters struct {
	MaxDistanceKm    geo.Limit `json:"max_distance_km"`
	MinCompatibility int       `json:"min_compatibility"`
	Limit            int       `json:"limit"`
}

type MatchesResponse struct {
	Matches []domain.MatchCandidate `json:"matches"`
	Count   int                     `json:"count"`
	Reason  domain.EmptyReason      `json:"reason,omitempty"`
	Filters Filters                 `json:"filters"`
}

func queryFailed(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrMatchQueryFailed, step, err)
}

// FindMatches returns the requester's best candidates ordered by score
// (descending), then distance (ascending, unknown last).
func (uc *MatchUseCase) FindMatches(ctx context.Context, q MatchQuery) (*MatchesResponse, error) {
	start := time.Now()
	defer func() {
		metrics.MatchQueryDuration.Observe(time.Since(start).Seconds())
	}()

	if uc.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.opts.QueryTimeout)
		defer cancel()
	}

	resp, err := uc.findMatches(ctx, q)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		metrics.MatchQueriesTotal.WithLabelValues("profile_not_found").Inc()
	case err != nil:
		metrics.MatchQueriesTotal.WithLabelValues("error").Inc()
		logging.Ctx(ctx).Error().Err(err).Str("user_id", q.UserID.String()).Msg("match query failed")
	case resp.Reason != domain.ReasonNone:
		metrics.MatchQueriesTotal.WithLabelValues(string(resp.Reason)).Inc()
	default:
		metrics.MatchQueriesTotal.WithLabelValues("ok").Inc()
	}
	return resp, err
}

func (uc *MatchUseCase) findMatches(ctx context.Context, q MatchQuery) (*MatchesResponse, error) {
	q.MinCompatibility = clamp(q.MinCompatibility, 0, 100)
	if q.MaxDistanceKm <= 0 {
		q.MaxDistanceKm = DefaultMaxDistanceKm
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}

	requester, err := uc.profileRepo.GetByUserID(ctx, q.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, err
		}
		return nil, queryFailed("load requester profile", err)
	}

	limit := geo.Bounded(float64(q.MaxDistanceKm))
	if stored, ok := requester.DistanceLimit(); ok {
		limit = stored
	}

	resp := &MatchesResponse{
		Matches: []domain.MatchCandidate{},
		Filters: Filters{MaxDistanceKm: limit, MinCompatibility: q.MinCompatibility, Limit: q.Limit},
	}

	myPrefs, err := uc.prefRepo.GetAll(ctx, q.UserID)
	if err != nil {
		return nil, queryFailed("load requester preferences", err)
	}
	if len(myPrefs) == 0 {
		resp.Reason = domain.ReasonNoPreferences
		return resp, nil
	}

	pool, err := uc.profileRepo.ListActiveExcept(ctx, q.UserID)
	if err != nil {
		return nil, queryFailed("list candidates", err)
	}

	eligible := FilterCandidates(requester, pool, limit)
	if len(eligible) == 0 {
		resp.Reason = domain.ReasonNoCandidatesInRange
		return resp, nil
	}

	ids := make([]uuid.UUID, len(eligible))
	for i, c := range eligible {
		ids[i] = c.Profile.UserID
	}
	prefsByUser, err := uc.prefRepo.GetAllForUsers(ctx, ids)
	if err != nil {
		return nil, queryFailed("load candidate preferences", err)
	}

	cached := uc.cachedScores(ctx, q.UserID)
	myChange := latestChange(myPrefs)
	now := uc.now()

	scored := make([]domain.MatchCandidate, 0, len(eligible))
	hits, stale := 0, 0
	for _, c := range eligible {
		theirs := prefsByUser[c.Profile.UserID]

		var m domain.MatchCandidate
		s, ok := cached[c.Profile.UserID]
		if ok && uc.usable(s, now, myChange, latestChange(theirs)) {
			m = fromCache(s)
			hits++
		} else {
			if ok {
				stale++
			}
			m = fromResult(compatibility.Calculate(myPrefs, theirs))
			metrics.CompatibilityScores.Observe(float64(m.Score))
		}

		if m.Score < q.MinCompatibility {
			continue
		}
		m.UserID = c.Profile.UserID
		m.Profile = c.Profile
		m.DistanceKm = c.DistanceKm
		scored = append(scored, m)
	}

	metrics.CandidatesEvaluated.Observe(float64(len(eligible)))
	metrics.ScoreCacheLookups.WithLabelValues(metrics.LayerScoreCache, metrics.ResultHit).Add(float64(hits))
	metrics.ScoreCacheLookups.WithLabelValues(metrics.LayerScoreCache, metrics.ResultStale).Add(float64(stale))
	metrics.ScoreCacheLookups.WithLabelValues(metrics.LayerScoreCache, metrics.ResultMiss).Add(float64(len(eligible) - hits - stale))

	if err := ctx.Err(); err != nil {
		return nil, queryFailed("score candidates", err)
	}

	if len(scored) == 0 {
		resp.Reason = domain.ReasonBelowMinCompatibility
		return resp, nil
	}

	rankCandidates(scored)
	if len(scored) > q.Limit {
		scored = scored[:q.Limit]
	}

	logging.Ctx(ctx).Debug().
		Str("user_id", q.UserID.String()).
		Int("eligible", len(eligible)).
		Int("cache_hits", hits).
		Int("returned", len(scored)).
		Msg("matches ranked")

	resp.Matches = scored
	resp.Count = len(scored)
	return resp, nil
}

// cachedScores never fails the query: on error the ranker scores on demand.
func (uc *MatchUseCase) cachedScores(ctx context.Context, userID uuid.UUID) map[uuid.UUID]*domain.CompatibilityScore {
	if uc.scoreCache == nil {
		return nil
	}
	scores, err := uc.scoreCache.GetForUser(ctx, userID)
	if err != nil {
		metrics.ScoreCacheLookups.WithLabelValues(metrics.LayerScoreCache, metrics.ResultError).Inc()
		logging.Ctx(ctx).Warn().Err(err).Msg("score cache unavailable, scoring on demand")
		return nil
	}
	return scores
}

// usable reports whether a cached score is within max age and newer than
// both users' latest preference change.
func (uc *MatchUseCase) usable(s *domain.CompatibilityScore, now, mine, theirs time.Time) bool {
	if !s.IsFresh(now, uc.opts.CacheMaxAge) {
		return false
	}
	return !s.CalculatedAt.Before(mine) && !s.CalculatedAt.Before(theirs)
}

func latestChange(prefs []domain.TopicPreference) time.Time {
	var latest time.Time
	for _, p := range prefs {
		if p.CreatedAt.After(latest) {
			latest = p.CreatedAt
		}
	}
	return latest
}

func fromCache(s *domain.CompatibilityScore) domain.MatchCandidate {
	return domain.MatchCandidate{
		Score:                  s.Score,
		Level:                  compatibility.Level(s.Score),
		SharedTopics:           s.SharedTopics,
		MatchedTopicsCount:     s.MatchedTopics,
		ConflictingTopicsCount: s.ConflictingTopics,
		Cached:                 true,
	}
}

func fromResult(r domain.Compatibility) domain.MatchCandidate {
	return domain.MatchCandidate{
		Score:                  r.Score,
		Level:                  r.Level,
		SharedTopics:           r.SharedTopics,
		MatchedTopicsCount:     len(r.MatchedTopics),
		ConflictingTopicsCount: len(r.ConflictingTopics),
		MatchedTopics:          r.MatchedTopics,
		ConflictingTopics:      r.ConflictingTopics,
		CategoryBreakdown:      r.CategoryBreakdown,
		MatchedTopicDetails:    r.MatchedTopicDetails,
	}
}

func rankCandidates(c []domain.MatchCandidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Score != c[j].Score {
			return c[i].Score > c[j].Score
		}
		di, dj := c[i].DistanceKm, c[j].DistanceKm
		switch {
		case di != nil && dj != nil && *di != *dj:
			return *di < *dj
		case di != nil && dj == nil:
			return true
		case di == nil && dj != nil:
			return false
		}
		return c[i].UserID.String() < c[j].UserID.String()
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
