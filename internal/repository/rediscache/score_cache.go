// Package rediscache is a read-through Redis layer over a durable ScoreCache.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/gdugdh24/topicmatch-backend/internal/logging"
	"github.com/gdugdh24/topicmatch-backend/internal/metrics"
	"github.com/gdugdh24/topicmatch-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "topicmatch:compat:"
	// completeField marks a user hash filled from the backing store, so a
	// HGETALL on it is authoritative.
	completeField = "_complete"
)

// ScoreCache keeps one hash per user (field = other user id, value = JSON
// score). Writes go to the backing store first and then drop the affected
// hashes.
type ScoreCache struct {
	client  redis.UniversalClient
	backing repository.ScoreCache
	ttl     time.Duration
}

var _ repository.ScoreCache = (*ScoreCache)(nil)

func NewScoreCache(client redis.UniversalClient, backing repository.ScoreCache, ttl time.Duration) *ScoreCache {
	return &ScoreCache{client: client, backing: backing, ttl: ttl}
}

func userKey(id uuid.UUID) string {
	return keyPrefix + id.String()
}

func (c *ScoreCache) Get(ctx context.Context, a, b uuid.UUID) (*domain.CompatibilityScore, error) {
	raw, err := c.client.HGet(ctx, userKey(a), b.String()).Bytes()
	switch {
	case err == nil:
		var score domain.CompatibilityScore
		if jsonErr := json.Unmarshal(raw, &score); jsonErr == nil {
			metrics.ScoreCacheLookups.WithLabelValues(metrics.LayerRedis, metrics.ResultHit).Inc()
			return &score, nil
		}
	case errors.Is(err, redis.Nil):
		metrics.ScoreCacheLookups.WithLabelValues(metrics.LayerRedis, metrics.ResultMiss).Inc()
	default:
		metrics.ScoreCacheLookups.WithLabelValues(metrics.LayerRedis, metrics.ResultError).Inc()
		logging.Ctx(ctx).Warn().Err(err).Msg("redis score lookup failed")
	}

	score, err := c.backing.Get(ctx, a, b)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(score); err == nil {
		_, err = c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, userKey(a), b.String(), raw)
			pipe.Expire(ctx, userKey(a), c.ttl)
			return nil
		})
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("redis score fill failed")
		}
	}
	return score, nil
}

func (c *ScoreCache) GetForUser(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]*domain.CompatibilityScore, error) {
	fields, err := c.client.HGetAll(ctx, userKey(userID)).Result()
	if err != nil {
		metrics.ScoreCacheLookups.WithLabelValues(metrics.LayerRedis, metrics.ResultError).Inc()
		logging.Ctx(ctx).Warn().Err(err).Msg("redis score hash lookup failed")
	} else if _, ok := fields[completeField]; ok {
		if scores, ok := decodeHash(fields); ok {
			metrics.ScoreCacheLookups.WithLabelValues(metrics.LayerRedis, metrics.ResultHit).Inc()
			return scores, nil
		}
	} else {
		metrics.ScoreCacheLookups.WithLabelValues(metrics.LayerRedis, metrics.ResultMiss).Inc()
	}

	scores, err := c.backing.GetForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.fillUser(ctx, userID, scores)
	return scores, nil
}

func decodeHash(fields map[string]string) (map[uuid.UUID]*domain.CompatibilityScore, bool) {
	scores := make(map[uuid.UUID]*domain.CompatibilityScore, len(fields))
	for field, value := range fields {
		if field == completeField {
			continue
		}
		other, err := uuid.Parse(field)
		if err != nil {
			return nil, false
		}
		var score domain.CompatibilityScore
		if err := json.Unmarshal([]byte(value), &score); err != nil {
			return nil, false
		}
		scores[other] = &score
	}
	return scores, true
}

func (c *ScoreCache) fillUser(ctx context.Context, userID uuid.UUID, scores map[uuid.UUID]*domain.CompatibilityScore) {
	values := make(map[string]interface{}, len(scores)+1)
	for other, score := range scores {
		raw, err := json.Marshal(score)
		if err != nil {
			return
		}
		values[other.String()] = raw
	}
	values[completeField] = "1"

	key := userKey(userID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", userID.String()).Msg("redis score hash fill failed")
	}
}

func (c *ScoreCache) Put(ctx context.Context, score *domain.CompatibilityScore) error {
	if err := c.backing.Put(ctx, score); err != nil {
		return err
	}
	if err := c.client.Del(ctx, userKey(score.User1ID), userKey(score.User2ID)).Err(); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("redis score invalidation failed")
	}
	return nil
}

func (c *ScoreCache) InvalidateAllFor(ctx context.Context, userID uuid.UUID) error {
	others, err := c.backing.GetForUser(ctx, userID)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(others)+1)
	keys = append(keys, userKey(userID))
	for other := range others {
		keys = append(keys, userKey(other))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("redis score invalidation failed")
	}

	return c.backing.InvalidateAllFor(ctx, userID)
}
