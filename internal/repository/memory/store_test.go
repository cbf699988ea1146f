package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/google/uuid"
)

var (
	alice = uuid.MustParse("10000000-0000-0000-0000-000000000001")
	bob   = uuid.MustParse("10000000-0000-0000-0000-000000000002")
	carol = uuid.MustParse("10000000-0000-0000-0000-000000000003")
	topic = uuid.MustParse("20000000-0000-0000-0000-000000000001")
)

func TestStore_PutIsOrderIndependent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := s.Put(ctx, &domain.CompatibilityScore{User1ID: bob, User2ID: alice, Score: 50, CalculatedAt: at}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, alice, bob)
	if err != nil {
		t.Fatalf("Get(alice, bob) error = %v", err)
	}
	if got.User1ID != alice || got.User2ID != bob {
		t.Errorf("stored pair = (%s, %s), want canonical order", got.User1ID, got.User2ID)
	}
	if s.ScoreCount() != 1 {
		t.Errorf("ScoreCount() = %d, want 1", s.ScoreCount())
	}
}

func TestStore_PutKeepsNewest(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	_ = s.Put(ctx, &domain.CompatibilityScore{User1ID: alice, User2ID: bob, Score: 80, CalculatedAt: at})
	_ = s.Put(ctx, &domain.CompatibilityScore{User1ID: alice, User2ID: bob, Score: 20, CalculatedAt: at.Add(-time.Minute)})

	got, _ := s.Get(ctx, alice, bob)
	if got.Score != 80 {
		t.Errorf("Score = %d, want 80 (older write must not win)", got.Score)
	}
}

func TestStore_InvalidateAllFor(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	at := time.Now()

	_ = s.Put(ctx, &domain.CompatibilityScore{User1ID: alice, User2ID: bob, CalculatedAt: at})
	_ = s.Put(ctx, &domain.CompatibilityScore{User1ID: bob, User2ID: carol, CalculatedAt: at})
	_ = s.Put(ctx, &domain.CompatibilityScore{User1ID: alice, User2ID: carol, CalculatedAt: at})

	if err := s.InvalidateAllFor(ctx, alice); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, alice, bob); !errors.Is(err, domain.ErrScoreNotFound) {
		t.Errorf("Get(alice, bob) error = %v, want ErrScoreNotFound", err)
	}
	if _, err := s.Get(ctx, bob, carol); err != nil {
		t.Errorf("Get(bob, carol) error = %v, want unaffected pair", err)
	}
}

func TestStore_ReplaceAllRejectsUnknownTopic(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.AddProfile(&domain.Profile{UserID: alice, IsActive: true})
	s.AddTopic(&domain.Topic{ID: topic, Category: "health", IsActive: true})

	err := s.ReplaceAll(ctx, alice, []domain.PreferenceInput{
		{TopicID: uuid.New(), Preference: domain.PreferenceLike},
	}, time.Now())
	if !errors.Is(err, domain.ErrTopicNotFound) {
		t.Errorf("ReplaceAll() error = %v, want ErrTopicNotFound", err)
	}

	changedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := s.ReplaceAll(ctx, alice, []domain.PreferenceInput{{TopicID: topic, Preference: domain.PreferenceDislike}}, changedAt); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	prefs, _ := s.GetAll(ctx, alice)
	if len(prefs) != 1 || prefs[0].Category != "health" || prefs[0].Preference != domain.PreferenceDislike {
		t.Errorf("GetAll() = %+v, want one health dislike", prefs)
	}
	if !prefs[0].CreatedAt.Equal(changedAt) {
		t.Errorf("CreatedAt = %v, want the caller's %v", prefs[0].CreatedAt, changedAt)
	}
}

func TestStore_ListActiveExcept(t *testing.T) {
	s := NewStore()
	s.AddProfile(&domain.Profile{UserID: alice, IsActive: true})
	s.AddProfile(&domain.Profile{UserID: bob, IsActive: true})
	s.AddProfile(&domain.Profile{UserID: carol, IsActive: false})

	got, err := s.ListActiveExcept(context.Background(), alice)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].UserID != bob {
		t.Errorf("ListActiveExcept() = %v, want only bob", got)
	}
}
