package score

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/gdugdh24/topicmatch-backend/internal/repository/memory"
	"github.com/gdugdh24/topicmatch-backend/internal/testinfra"
	"github.com/google/uuid"
)

var errBoom = errors.New("boom")

type failingCache struct {
	*memory.Store
}

func (c failingCache) Put(context.Context, *domain.CompatibilityScore) error {
	return errBoom
}

// gatedPrefs holds the first GetAll open until release is closed.
type gatedPrefs struct {
	*memory.Store
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (g *gatedPrefs) GetAll(ctx context.Context, userID uuid.UUID) ([]domain.TopicPreference, error) {
	prefs, err := g.Store.GetAll(ctx, userID)
	g.once.Do(func() {
		close(g.read)
		<-g.release
	})
	return prefs, err
}

// lockedClock is a settable time source safe to read from recompute goroutines.
type lockedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *lockedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *lockedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newUseCase(f *testinfra.Fixture, opts Options) *ScoreUseCase {
	uc := NewScoreUseCase(f.Store, f.Store, f.Store, f.Store, opts)
	uc.now = func() time.Time { return f.Now }
	return uc
}

// seedTrio creates user 1 and 2 in full agreement and user 3 in full conflict with both.
func seedTrio(t *testing.T, f *testinfra.Fixture) (uuid.UUID, uuid.UUID, uuid.UUID) {
	u1 := f.AddUser(1, testinfra.At(52.3676, 4.9041))
	u2 := f.AddUser(2, testinfra.At(52.0907, 5.1214))
	u3 := f.AddUser(3)
	f.AddUser(4)

	f.SetPreferences(t, u1, []int{1, 2, 3}, nil)
	f.SetPreferences(t, u2, []int{1, 2, 3}, nil)
	f.SetPreferences(t, u3, nil, []int{1, 2, 3})
	return u1, u2, u3
}

func TestRecomputeFor_StoresCanonicalScores(t *testing.T) {
	f := testinfra.NewFixture(10)
	u1, u2, u3 := seedTrio(t, f)
	uc := newUseCase(f, Options{Concurrency: 2})

	n, err := uc.RecomputeFor(context.Background(), u1)
	if err != nil {
		t.Fatalf("RecomputeFor() error: %v", err)
	}
	if n != 2 {
		t.Errorf("RecomputeFor() = %d pairs, want 2", n)
	}
	if got := f.Store.ScoreCount(); got != 2 {
		t.Errorf("ScoreCount() = %d, want 2", got)
	}

	s, err := f.Store.Get(context.Background(), u2, u1)
	if err != nil {
		t.Fatalf("Get(u2, u1) error: %v", err)
	}
	if s.User1ID != u1 || s.User2ID != u2 {
		t.Errorf("pair = (%s, %s), want canonical (%s, %s)", s.User1ID, s.User2ID, u1, u2)
	}
	if s.Score != 100 || s.MatchedTopics != 3 || s.SharedTopics != 3 {
		t.Errorf("score = %+v, want 100 with 3 matched", s)
	}
	if s.DistanceKm == nil || math.Abs(*s.DistanceKm-35.9) > 1 {
		t.Errorf("DistanceKm = %v, want ~35.9", s.DistanceKm)
	}
	if !s.CalculatedAt.Equal(f.Now) {
		t.Errorf("CalculatedAt = %v, want %v", s.CalculatedAt, f.Now)
	}

	s, err = f.Store.Get(context.Background(), u1, u3)
	if err != nil {
		t.Fatalf("Get(u1, u3) error: %v", err)
	}
	if s.Score != 6 || s.ConflictingTopics != 3 {
		t.Errorf("conflict score = %+v, want 6 with 3 conflicts", s)
	}
	if s.DistanceKm != nil {
		t.Errorf("DistanceKm = %v, want nil for user without location", *s.DistanceKm)
	}
}

func TestRecomputeFor_SaveDuringRunGetsFreshPass(t *testing.T) {
	f := testinfra.NewFixture(10)
	u1 := f.AddUser(1)
	u2 := f.AddUser(2)
	f.SetPreferences(t, u1, []int{1, 2, 3}, nil)
	f.SetPreferences(t, u2, []int{1, 2, 3}, nil)

	prefs := &gatedPrefs{Store: f.Store, read: make(chan struct{}), release: make(chan struct{})}
	clock := &lockedClock{now: f.Now}
	uc := NewScoreUseCase(f.Store, prefs, f.Store, f.Store, Options{Concurrency: 2})
	uc.now = clock.Now
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		_, err := uc.RecomputeFor(ctx, u1)
		first <- err
	}()
	// The first pass has read the old likes and is held there.
	<-prefs.read

	f.Advance(time.Minute)
	clock.Set(f.Now)
	f.SetPreferences(t, u1, nil, []int{1, 2, 3})

	second := make(chan error, 1)
	go func() {
		_, err := uc.RecomputeFor(ctx, u1)
		second <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		uc.mu.Lock()
		run := uc.runs[u1]
		marked := run != nil && run.dirty
		uc.mu.Unlock()
		if marked {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("second RecomputeFor never joined the running pass")
		}
		time.Sleep(time.Millisecond)
	}
	close(prefs.release)

	for name, ch := range map[string]chan error{"first": first, "second": second} {
		select {
		case err := <-ch:
			if err != nil {
				t.Errorf("%s RecomputeFor() error: %v", name, err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("%s RecomputeFor() did not return", name)
		}
	}

	s, err := f.Store.Get(ctx, u1, u2)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if s.Score != 6 || s.ConflictingTopics != 3 {
		t.Errorf("score = %d with %d conflicts, want 6 with 3 from the second save", s.Score, s.ConflictingTopics)
	}
	if s.CalculatedAt.Before(f.Now) {
		t.Errorf("CalculatedAt = %v, before preference change at %v", s.CalculatedAt, f.Now)
	}
	if len(uc.runs) != 0 {
		t.Errorf("runs left in flight: %d", len(uc.runs))
	}
}

func TestRecomputeFor_ClearedPreferencesInvalidate(t *testing.T) {
	f := testinfra.NewFixture(10)
	u1, _, _ := seedTrio(t, f)
	uc := newUseCase(f, Options{Concurrency: 2})

	if _, err := uc.RecomputeFor(context.Background(), u1); err != nil {
		t.Fatalf("RecomputeFor() error: %v", err)
	}

	f.SetPreferences(t, u1, nil, nil)
	n, err := uc.RecomputeFor(context.Background(), u1)
	if err != nil {
		t.Fatalf("RecomputeFor() error: %v", err)
	}
	if n != 0 {
		t.Errorf("RecomputeFor() = %d, want 0", n)
	}
	if got := f.Store.ScoreCount(); got != 0 {
		t.Errorf("ScoreCount() = %d, want 0 after invalidation", got)
	}
}

func TestRecomputeFor_CacheFailure(t *testing.T) {
	f := testinfra.NewFixture(10)
	u1, _, _ := seedTrio(t, f)
	uc := NewScoreUseCase(f.Store, f.Store, failingCache{f.Store}, f.Store, Options{Concurrency: 2})

	_, err := uc.RecomputeFor(context.Background(), u1)
	if !errors.Is(err, errBoom) {
		t.Errorf("RecomputeFor() error = %v, want wrapped errBoom", err)
	}
}

func TestTrigger(t *testing.T) {
	for _, async := range []bool{false, true} {
		f := testinfra.NewFixture(10)
		u1, _, _ := seedTrio(t, f)
		uc := newUseCase(f, Options{Async: async, Concurrency: 4, RecomputeTimeout: time.Second})

		uc.Trigger(context.Background(), u1)
		uc.Wait()

		if got := f.Store.ScoreCount(); got != 2 {
			t.Errorf("async=%v: ScoreCount() = %d, want 2", async, got)
		}
	}
}

func TestTrigger_SwallowsFailure(t *testing.T) {
	f := testinfra.NewFixture(10)
	u1, _, _ := seedTrio(t, f)
	uc := NewScoreUseCase(f.Store, f.Store, failingCache{f.Store}, f.Store, Options{Async: true, Concurrency: 1})

	uc.Trigger(context.Background(), u1)
	uc.Wait()
}

func TestSweepStale(t *testing.T) {
	f := testinfra.NewFixture(10)
	u1 := f.AddUser(1)
	u2 := f.AddUser(2)
	f.SetPreferences(t, u1, []int{1, 2}, nil)
	f.SetPreferences(t, u2, []int{1}, []int{2})
	uc := newUseCase(f, Options{Concurrency: 2, SweepBatchSize: 10})

	n, err := uc.SweepStale(context.Background())
	if err != nil {
		t.Fatalf("SweepStale() error: %v", err)
	}
	if n != 2 {
		t.Errorf("first sweep recomputed %d users, want 2", n)
	}

	n, err = uc.SweepStale(context.Background())
	if err != nil {
		t.Fatalf("SweepStale() error: %v", err)
	}
	if n != 0 {
		t.Errorf("second sweep recomputed %d users, want 0", n)
	}

	f.Advance(time.Minute)
	f.SetPreferences(t, u2, []int{1, 2}, nil)

	stale, err := f.Store.ListUsersWithStaleScores(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListUsersWithStaleScores() error: %v", err)
	}
	if len(stale) != 1 || stale[0] != u2 {
		t.Errorf("stale users = %v, want [%s]", stale, u2)
	}

	n, err = uc.SweepStale(context.Background())
	if err != nil || n != 1 {
		t.Errorf("SweepStale() = %d, %v; want 1, nil", n, err)
	}
	s, err := f.Store.Get(context.Background(), u1, u2)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if s.Score != 100 {
		t.Errorf("score after sweep = %d, want 100", s.Score)
	}
}

func TestCompare(t *testing.T) {
	f := testinfra.NewFixture(10)
	u1, u2, _ := seedTrio(t, f)
	uc := newUseCase(f, Options{})

	resp, err := uc.Compare(context.Background(), u1, u2)
	if err != nil {
		t.Fatalf("Compare() error: %v", err)
	}
	if resp.Score != 100 || resp.Level != domain.LevelPerfectMatch {
		t.Errorf("Compare() = %d %s, want 100 perfect_match", resp.Score, resp.Level)
	}
	if len(resp.MatchedTopicDetails) != 3 {
		t.Errorf("MatchedTopicDetails = %+v, want 3 entries", resp.MatchedTopicDetails)
	}
	if resp.DistanceKm == nil || math.Abs(*resp.DistanceKm-35.9) > 1 {
		t.Errorf("DistanceKm = %v, want ~35.9", resp.DistanceKm)
	}
	if _, err := f.Store.Get(context.Background(), u1, u2); err != nil {
		t.Errorf("Compare() did not cache the score: %v", err)
	}

	_, err = uc.Compare(context.Background(), u1, testinfra.UserID(99))
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("Compare() with unknown user error = %v, want ErrProfileNotFound", err)
	}
}
