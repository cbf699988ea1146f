// Package memory is an in-process implementation of the repository
// interfaces, used by tests and local tooling.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/gdugdh24/topicmatch-backend/internal/repository"
	"github.com/google/uuid"
)

type pairKey [2]uuid.UUID

type Store struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*domain.Profile
	topics   map[uuid.UUID]*domain.Topic
	prefs    map[uuid.UUID][]domain.TopicPreference
	scores   map[pairKey]*domain.CompatibilityScore
	now      func() time.Time
}

var (
	_ repository.ProfileRepository    = (*Store)(nil)
	_ repository.PreferenceRepository = (*Store)(nil)
	_ repository.TopicRepository      = (*Store)(nil)
	_ repository.ScoreCache           = (*Store)(nil)
	_ repository.StaleScoreFinder     = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		profiles: make(map[uuid.UUID]*domain.Profile),
		topics:   make(map[uuid.UUID]*domain.Topic),
		prefs:    make(map[uuid.UUID][]domain.TopicPreference),
		scores:   make(map[pairKey]*domain.CompatibilityScore),
		now:      time.Now,
	}
}

// SetClock overrides the time source used for created_at and calculated_at.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) AddProfile(p *domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.profiles[p.UserID] = &cp
}

func (s *Store) AddTopic(t *domain.Topic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.topics[t.ID] = &cp
}

// ScoreCount returns the number of cached pairs.
func (s *Store) ScoreCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scores)
}

func (s *Store) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) ListActiveExcept(_ context.Context, userID uuid.UUID) ([]*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Profile
	for id, p := range s.profiles {
		if id == userID || !p.IsActive {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID.String() < out[j].UserID.String() })
	return out, nil
}

func (s *Store) UpdateLocation(_ context.Context, update *domain.LocationUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[update.UserID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.Latitude, p.Longitude = nil, nil
	if update.Point != nil {
		lat, lon := update.Point.Lat, update.Point.Lon
		p.Latitude, p.Longitude = &lat, &lon
	}
	p.City = update.City
	p.Country = update.Country
	p.ShareLocation = update.ShareLocation
	p.MaxDistancePreference = nil
	if update.MaxDistance != nil {
		v := update.MaxDistance.Stored()
		p.MaxDistancePreference = &v
	}
	p.UpdatedAt = s.now()
	return nil
}

func (s *Store) GetAll(_ context.Context, userID uuid.UUID) ([]domain.TopicPreference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.TopicPreference(nil), s.prefs[userID]...), nil
}

func (s *Store) GetAllForUsers(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]domain.TopicPreference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID][]domain.TopicPreference, len(userIDs))
	for _, id := range userIDs {
		if prefs, ok := s.prefs[id]; ok {
			out[id] = append([]domain.TopicPreference(nil), prefs...)
		}
	}
	return out, nil
}

func (s *Store) ReplaceAll(_ context.Context, userID uuid.UUID, prefs []domain.PreferenceInput, changedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := changedAt
	if now.IsZero() {
		now = s.now()
	}
	rows := make([]domain.TopicPreference, 0, len(prefs))
	for _, p := range prefs {
		topic, ok := s.topics[p.TopicID]
		if !ok {
			return fmt.Errorf("topic %s: %w", p.TopicID, domain.ErrTopicNotFound)
		}
		rows = append(rows, domain.TopicPreference{
			UserID:     userID,
			TopicID:    p.TopicID,
			Preference: p.Preference,
			Category:   topic.Category,
			Title:      topic.Title,
			Icon:       topic.Icon,
			CreatedAt:  now,
		})
	}

	if len(rows) == 0 {
		delete(s.prefs, userID)
		return nil
	}
	s.prefs[userID] = rows
	return nil
}

func (s *Store) ListUsersWithPreferences(_ context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(s.prefs))
	for id := range s.prefs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (s *Store) ExistingIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if t, ok := s.topics[id]; ok && t.IsActive {
			out[id] = true
		}
	}
	return out, nil
}

func (s *Store) ListActive(_ context.Context, category string) ([]*domain.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Topic
	for _, t := range s.topics {
		if !t.IsActive {
			continue
		}
		if category != "" && !strings.EqualFold(t.Category, category) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

func key(a, b uuid.UUID) pairKey {
	u1, u2 := domain.CanonicalPair(a, b)
	return pairKey{u1, u2}
}

func (s *Store) Get(_ context.Context, a, b uuid.UUID) (*domain.CompatibilityScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[key(a, b)]
	if !ok {
		return nil, domain.ErrScoreNotFound
	}
	cp := *score
	return &cp, nil
}

func (s *Store) GetForUser(_ context.Context, userID uuid.UUID) (map[uuid.UUID]*domain.CompatibilityScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]*domain.CompatibilityScore)
	for _, score := range s.scores {
		if other, ok := score.OtherUser(userID); ok {
			cp := *score
			out[other] = &cp
		}
	}
	return out, nil
}

func (s *Store) Put(_ context.Context, score *domain.CompatibilityScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	score.Canonicalize()
	k := pairKey{score.User1ID, score.User2ID}
	if existing, ok := s.scores[k]; ok && existing.CalculatedAt.After(score.CalculatedAt) {
		return nil
	}
	cp := *score
	s.scores[k] = &cp
	return nil
}

func (s *Store) InvalidateAllFor(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, score := range s.scores {
		if score.HasUser(userID) {
			delete(s.scores, k)
		}
	}
	return nil
}

func (s *Store) ListUsersWithStaleScores(_ context.Context, limit int) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.prefs) < 2 {
		return nil, nil
	}

	type staleUser struct {
		id        uuid.UUID
		changedAt time.Time
	}
	var stale []staleUser
	for id, prefs := range s.prefs {
		var changedAt, calculatedAt time.Time
		for _, p := range prefs {
			if p.CreatedAt.After(changedAt) {
				changedAt = p.CreatedAt
			}
		}
		for _, score := range s.scores {
			if score.HasUser(id) && score.CalculatedAt.After(calculatedAt) {
				calculatedAt = score.CalculatedAt
			}
		}
		if calculatedAt.IsZero() || calculatedAt.Before(changedAt) {
			stale = append(stale, staleUser{id: id, changedAt: changedAt})
		}
	}

	sort.Slice(stale, func(i, j int) bool {
		if !stale[i].changedAt.Equal(stale[j].changedAt) {
			return stale[i].changedAt.Before(stale[j].changedAt)
		}
		return stale[i].id.String() < stale[j].id.String()
	})

	ids := make([]uuid.UUID, 0, len(stale))
	for i, u := range stale {
		if limit > 0 && i >= limit {
			break
		}
		ids = append(ids, u.id)
	}
	return ids, nil
}
