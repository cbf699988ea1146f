package score

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/gdugdh24/topicmatch-backend/internal/geo"
	"github.com/gdugdh24/topicmatch-backend/internal/logging"
	"github.com/gdugdh24/topicmatch-backend/internal/metrics"
	"github.com/gdugdh24/topicmatch-backend/internal/repository"
	"github.com/gdugdh24/topicmatch-backend/internal/usecase/compatibility"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// Async runs recomputation triggered by a preference save in the background.
	Async            bool
	Concurrency      int
	RecomputeTimeout time.Duration
	SweepBatchSize   int
}

type ScoreUseCase struct {
	profileRepo repository.ProfileRepository
	prefRepo    repository.PreferenceRepository
	cache       repository.ScoreCache
	staleFinder repository.StaleScoreFinder
	opts        Options

	mu   sync.Mutex
	runs map[uuid.UUID]*recomputeRun
	wg   sync.WaitGroup
	now  func() time.Time
}

// recomputeRun is the in-flight recompute of one user. A request arriving
// while it runs sets dirty; the owner then makes one more pass, so every
// request is answered by a pass that started after it.
type recomputeRun struct {
	dirty bool
	// skipped is set when the owner stopped with dirty still set.
	skipped bool
	done    chan struct{}
	count   int
	err     error
}

func NewScoreUseCase(
	profileRepo repository.ProfileRepository,
	prefRepo repository.PreferenceRepository,
	cache repository.ScoreCache,
	staleFinder repository.StaleScoreFinder,
	opts Options,
) *ScoreUseCase {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.SweepBatchSize <= 0 {
		opts.SweepBatchSize = 50
	}
	return &ScoreUseCase{
		profileRepo: profileRepo,
		prefRepo:    prefRepo,
		cache:       cache,
		staleFinder: staleFinder,
		opts:        opts,
		runs:        make(map[uuid.UUID]*recomputeRun),
		now:         time.Now,
	}
}

// CompareResponse is an on-demand pairwise score.
type CompareResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	OtherUserID uuid.UUID `json:"other_user_id"`
	domain.Compatibility
	DistanceKm *float64 `json:"distance_km"`
}

// Compare scores two users from their current preferences and stores the
// result in the cache.
func (uc *ScoreUseCase) Compare(ctx context.Context, userID, otherID uuid.UUID) (*CompareResponse, error) {
	me, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	other, err := uc.profileRepo.GetByUserID(ctx, otherID)
	if err != nil {
		return nil, err
	}

	calculatedAt := uc.now()
	prefs, err := uc.prefRepo.GetAllForUsers(ctx, []uuid.UUID{userID, otherID})
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	result := compatibility.Calculate(prefs[userID], prefs[otherID])
	metrics.CompatibilityScores.Observe(float64(result.Score))
	distance := distanceBetween(me, other)

	entry := newScore(userID, otherID, result, distance, calculatedAt)
	if err := uc.cache.Put(ctx, entry); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to cache compatibility score")
	}

	return &CompareResponse{
		UserID:        userID,
		OtherUserID:   otherID,
		Compatibility: result,
		DistanceKm:    distance,
	}, nil
}

func distanceBetween(a, b *domain.Profile) *float64 {
	pa, ok := a.Location()
	if !ok {
		return nil
	}
	pb, ok := b.Location()
	if !ok {
		return nil
	}
	d := geo.Distance(pa, pb)
	return &d
}

func newScore(a, b uuid.UUID, result domain.Compatibility, distance *float64, at time.Time) *domain.CompatibilityScore {
	s := &domain.CompatibilityScore{
		User1ID:           a,
		User2ID:           b,
		Score:             result.Score,
		SharedTopics:      result.SharedTopics,
		MatchedTopics:     len(result.MatchedTopics),
		ConflictingTopics: len(result.ConflictingTopics),
		DistanceKm:        distance,
		CalculatedAt:      at,
	}
	s.Canonicalize()
	return s
}

// Trigger recomputes a user's scores after a preference save. Failures are
// logged and never returned; in async mode the work outlives ctx.
func (uc *ScoreUseCase) Trigger(ctx context.Context, userID uuid.UUID) {
	if !uc.opts.Async {
		if _, err := uc.RecomputeFor(ctx, userID); err != nil {
			logging.Ctx(ctx).Error().Err(err).Str("user_id", userID.String()).Msg("score recompute failed")
		}
		return
	}

	requestID := logging.RequestIDFromContext(ctx)
	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()

		bgCtx := logging.ContextWithRequestID(context.Background(), requestID)
		if uc.opts.RecomputeTimeout > 0 {
			var cancel context.CancelFunc
			bgCtx, cancel = context.WithTimeout(bgCtx, uc.opts.RecomputeTimeout)
			defer cancel()
		}

		if _, err := uc.RecomputeFor(bgCtx, userID); err != nil {
			logging.Ctx(bgCtx).Error().Err(err).Str("user_id", userID.String()).Msg("async score recompute failed")
		}
	}()
}

// Wait blocks until background recomputations finish.
func (uc *ScoreUseCase) Wait() {
	uc.wg.Wait()
}

// RecomputeFor scores userID against every other user with preferences and
// upserts the results. Calls for a user already being recomputed wait for a
// pass that starts after them instead of running in parallel.
func (uc *ScoreUseCase) RecomputeFor(ctx context.Context, userID uuid.UUID) (int, error) {
	uc.mu.Lock()
	if run, ok := uc.runs[userID]; ok {
		run.dirty = true
		uc.mu.Unlock()

		select {
		case <-run.done:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
		if run.skipped {
			return uc.RecomputeFor(ctx, userID)
		}
		return run.count, run.err
	}
	run := &recomputeRun{done: make(chan struct{})}
	uc.runs[userID] = run
	uc.mu.Unlock()

	for {
		count, err := uc.recompute(ctx, userID)

		uc.mu.Lock()
		if run.dirty && ctx.Err() == nil {
			run.dirty = false
			uc.mu.Unlock()
			continue
		}
		run.skipped = run.dirty
		run.count, run.err = count, err
		delete(uc.runs, userID)
		uc.mu.Unlock()

		close(run.done)
		return count, err
	}
}

func (uc *ScoreUseCase) recompute(ctx context.Context, userID uuid.UUID) (int, error) {
	start := uc.now()
	defer func() {
		metrics.RecomputeDuration.Observe(time.Since(start).Seconds())
	}()

	count, err := uc.recomputeAll(ctx, userID)
	if err != nil {
		metrics.RecomputeFailures.Inc()
		return count, err
	}

	logging.Ctx(ctx).Debug().
		Str("user_id", userID.String()).
		Int("pairs", count).
		Dur("took", time.Since(start)).
		Msg("scores recomputed")
	return count, nil
}

func (uc *ScoreUseCase) recomputeAll(ctx context.Context, userID uuid.UUID) (int, error) {
	// taken before reading preferences so a save racing this run leaves the
	// written scores older than the new preferences
	calculatedAt := uc.now()

	mine, err := uc.prefRepo.GetAll(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load preferences: %w", err)
	}
	if len(mine) == 0 {
		if err := uc.cache.InvalidateAllFor(ctx, userID); err != nil {
			return 0, fmt.Errorf("failed to invalidate scores: %w", err)
		}
		return 0, nil
	}

	userIDs, err := uc.prefRepo.ListUsersWithPreferences(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}
	others := make([]uuid.UUID, 0, len(userIDs))
	for _, id := range userIDs {
		if id != userID {
			others = append(others, id)
		}
	}
	if len(others) == 0 {
		return 0, nil
	}

	prefsByUser, err := uc.prefRepo.GetAllForUsers(ctx, others)
	if err != nil {
		return 0, fmt.Errorf("failed to load candidate preferences: %w", err)
	}

	profiles, err := uc.profilesByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	me := profiles[userID]

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.Concurrency)

	for _, otherID := range others {
		theirs, ok := prefsByUser[otherID]
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result := compatibility.Calculate(mine, theirs)
			metrics.CompatibilityScores.Observe(float64(result.Score))

			var distance *float64
			if other, ok := profiles[otherID]; ok && me != nil {
				distance = distanceBetween(me, other)
			}

			if err := uc.cache.Put(gctx, newScore(userID, otherID, result, distance, calculatedAt)); err != nil {
				return fmt.Errorf("failed to store score for %s: %w", otherID, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(prefsByUser), nil
}

// profilesByID returns userID's profile and every other active profile.
func (uc *ScoreUseCase) profilesByID(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]*domain.Profile, error) {
	out := make(map[uuid.UUID]*domain.Profile)

	me, err := uc.profileRepo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		out[userID] = me
	case errors.Is(err, domain.ErrProfileNotFound):
	default:
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	others, err := uc.profileRepo.ListActiveExcept(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	for _, p := range others {
		out[p.UserID] = p
	}
	return out, nil
}

// SweepStale recomputes users whose preferences changed after their newest
// cached score. It returns the number of users recomputed.
func (uc *ScoreUseCase) SweepStale(ctx context.Context) (int, error) {
	if uc.staleFinder == nil {
		return 0, nil
	}

	ids, err := uc.staleFinder.ListUsersWithStaleScores(ctx, uc.opts.SweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale users: %w", err)
	}

	done := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if _, err := uc.RecomputeFor(ctx, id); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("user_id", id.String()).Msg("stale score recompute failed")
			continue
		}
		done++
	}

	if done > 0 {
		logging.Ctx(ctx).Info().Int("users", done).Msg("stale scores recomputed")
	}
	return done, nil
}
