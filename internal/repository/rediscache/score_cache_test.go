package rediscache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/gdugdh24/topicmatch-backend/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	userA = uuid.MustParse("10000000-0000-0000-0000-000000000001")
	userB = uuid.MustParse("10000000-0000-0000-0000-000000000002")
	userC = uuid.MustParse("10000000-0000-0000-0000-000000000003")
)

func newScore(a, b uuid.UUID, value int, at time.Time) *domain.CompatibilityScore {
	return &domain.CompatibilityScore{
		User1ID:      a,
		User2ID:      b,
		Score:        value,
		SharedTopics: 4,
		CalculatedAt: at,
	}
}

// unreachableClient fails every command without retrying.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestScoreCache_FallsBackWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	backing := memory.NewStore()
	cache := NewScoreCache(unreachableClient(t), backing, time.Minute)
	now := time.Now().UTC()

	if err := cache.Put(ctx, newScore(userA, userB, 72, now)); err != nil {
		t.Fatalf("Put() error = %v, want nil with redis down", err)
	}
	if backing.ScoreCount() != 1 {
		t.Fatalf("backing scores = %d, want 1", backing.ScoreCount())
	}

	got, err := cache.Get(ctx, userB, userA)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Score != 72 {
		t.Errorf("Get().Score = %d, want 72", got.Score)
	}

	all, err := cache.GetForUser(ctx, userA)
	if err != nil {
		t.Fatalf("GetForUser() error = %v", err)
	}
	if s, ok := all[userB]; !ok || s.Score != 72 {
		t.Errorf("GetForUser()[B] = %+v, want score 72", s)
	}

	if err := cache.InvalidateAllFor(ctx, userA); err != nil {
		t.Fatalf("InvalidateAllFor() error = %v", err)
	}
	if backing.ScoreCount() != 0 {
		t.Errorf("backing scores = %d, want 0 after invalidation", backing.ScoreCount())
	}
}

func TestScoreCache_MissingPair(t *testing.T) {
	cache := NewScoreCache(unreachableClient(t), memory.NewStore(), time.Minute)

	_, err := cache.Get(context.Background(), userA, userC)
	if !errors.Is(err, domain.ErrScoreNotFound) {
		t.Errorf("Get() error = %v, want ErrScoreNotFound", err)
	}
}

func TestDecodeHash(t *testing.T) {
	fields := map[string]string{
		completeField:  "1",
		userB.String(): `{"user1_id":"` + userA.String() + `","user2_id":"` + userB.String() + `","score":55}`,
	}

	scores, ok := decodeHash(fields)
	if !ok {
		t.Fatal("decodeHash() ok = false")
	}
	if len(scores) != 1 || scores[userB].Score != 55 {
		t.Errorf("decodeHash() = %+v, want one score of 55", scores)
	}

	fields["not-a-uuid"] = "{}"
	if _, ok := decodeHash(fields); ok {
		t.Error("decodeHash() ok = true for a malformed field")
	}
}

// TestScoreCache_Redis runs against a live server when TOPICMATCH_TEST_REDIS_ADDR is set.
func TestScoreCache_Redis(t *testing.T) {
	addr := os.Getenv("TOPICMATCH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TOPICMATCH_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() {
		client.Del(ctx, userKey(userA), userKey(userB), userKey(userC))
	})

	backing := memory.NewStore()
	cache := NewScoreCache(client, backing, time.Minute)
	now := time.Now().UTC()

	if err := cache.Put(ctx, newScore(userA, userB, 80, now)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	// First read fills the hash, the second is served from it.
	if _, err := cache.GetForUser(ctx, userA); err != nil {
		t.Fatalf("GetForUser() error = %v", err)
	}
	exists, err := client.HExists(ctx, userKey(userA), completeField).Result()
	if err != nil || !exists {
		t.Fatalf("complete marker missing after fill (err %v)", err)
	}

	// Put drops both users' hashes.
	if err := cache.Put(ctx, newScore(userA, userB, 60, now.Add(time.Second))); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	n, err := client.Exists(ctx, userKey(userA), userKey(userB)).Result()
	if err != nil || n != 0 {
		t.Errorf("hashes still present after Put: n=%d err=%v", n, err)
	}

	all, err := cache.GetForUser(ctx, userB)
	if err != nil {
		t.Fatalf("GetForUser() error = %v", err)
	}
	if all[userA].Score != 60 {
		t.Errorf("score = %d, want 60", all[userA].Score)
	}
}
