// Package testinfra seeds in-memory stores with deterministic users, topics
// and preferences for package tests.
package testinfra

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/gdugdh24/topicmatch-backend/internal/repository/memory"
	"github.com/google/uuid"
)

// Categories seeded as topics 1..5, in this order.
var Categories = []string{"conversation", "lifestyle", "health", "technology", "nature"}

func UserID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("10000000-0000-0000-0000-%012d", n))
}

// TopicID returns the id of seeded topic n. Topic n has category
// Categories[(n-1)%len(Categories)].
func TopicID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("20000000-0000-0000-0000-%012d", n))
}

// Fixture wraps a memory store with a controllable clock.
type Fixture struct {
	Store *memory.Store
	Now   time.Time
}

// NewFixture returns a store seeded with topics 1..topics.
func NewFixture(topics int) *Fixture {
	f := &Fixture{
		Store: memory.NewStore(),
		Now:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.Store.SetClock(func() time.Time { return f.Now })

	for n := 1; n <= topics; n++ {
		f.Store.AddTopic(&domain.Topic{
			ID:       TopicID(n),
			Title:    fmt.Sprintf("Topic %d", n),
			Category: Categories[(n-1)%len(Categories)],
			IsActive: true,
		})
	}
	return f
}

func (f *Fixture) Advance(d time.Duration) {
	f.Now = f.Now.Add(d)
}

// UserOption customizes a seeded profile.
type UserOption func(*domain.Profile)

func At(lat, lon float64) UserOption {
	return func(p *domain.Profile) {
		p.Latitude, p.Longitude = &lat, &lon
		p.ShareLocation = true
	}
}

func MaxDistance(km int) UserOption {
	return func(p *domain.Profile) {
		p.MaxDistancePreference = &km
	}
}

func Inactive() UserOption {
	return func(p *domain.Profile) {
		p.IsActive = false
	}
}

func (f *Fixture) AddUser(n int, opts ...UserOption) uuid.UUID {
	p := &domain.Profile{
		UserID:    UserID(n),
		Name:      fmt.Sprintf("User %d", n),
		IsActive:  true,
		CreatedAt: f.Now,
		UpdatedAt: f.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	f.Store.AddProfile(p)
	return p.UserID
}

// SetPreferences replaces the user's preferences with likes and dislikes
// given as topic numbers.
func (f *Fixture) SetPreferences(t testing.TB, user uuid.UUID, likes, dislikes []int) {
	t.Helper()

	var prefs []domain.PreferenceInput
	for _, n := range likes {
		prefs = append(prefs, domain.PreferenceInput{TopicID: TopicID(n), Preference: domain.PreferenceLike})
	}
	for _, n := range dislikes {
		prefs = append(prefs, domain.PreferenceInput{TopicID: TopicID(n), Preference: domain.PreferenceDislike})
	}
	if err := f.Store.ReplaceAll(context.Background(), user, prefs, f.Now); err != nil {
		t.Fatalf("ReplaceAll(%s) error: %v", user, err)
	}
}

func Ints(from, to int) []int {
	var out []int
	for n := from; n <= to; n++ {
		out = append(out, n)
	}
	return out
}
