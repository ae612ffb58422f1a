// Package store holds the three shared resources named in §5: the
// narrative Cache Store, the Critique Log Store, and the in-memory Report
// Store. All three are optional except the Report Store; absence of the
// first two disables them silently rather than failing the pipeline.
package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omjain/venture-lens/internal/model"
)

const narrativeCacheTTL = 86400 * time.Second

// CacheStore is the narrow interface the Narrative Agent consumes; it is
// satisfied by RedisCacheStore and, in tests, by an in-memory fake.
type CacheStore interface {
	GetNarrative(ctx context.Context, key string) (model.Narrative, bool)
	SetNarrative(ctx context.Context, key string, n model.Narrative) error
	Delete(ctx context.Context, key string) error
}

// RedisCacheStore is the production CacheStore. A nil client makes every
// method a no-op (cache miss on read, silently-ignored write) so the agent
// can use the same store regardless of whether CACHE_URL was configured.
type RedisCacheStore struct {
	client *redis.Client
}

func NewRedisCacheStore(client *redis.Client) *RedisCacheStore {
	return &RedisCacheStore{client: client}
}

func cacheKey(key string) string { return "narrative:" + key }

func (s *RedisCacheStore) GetNarrative(ctx context.Context, key string) (model.Narrative, bool) {
	if s.client == nil {
		return model.Narrative{}, false
	}
	raw, err := s.client.Get(ctx, cacheKey(key)).Result()
	if err == redis.Nil {
		return model.Narrative{}, false
	}
	if err != nil {
		slog.Warn("cache read failed", "key", key, "error", err)
		return model.Narrative{}, false
	}
	var n model.Narrative
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		slog.Warn("cache value corrupt", "key", key, "error", err)
		return model.Narrative{}, false
	}
	return n, true
}

func (s *RedisCacheStore) SetNarrative(ctx context.Context, key string, n model.Narrative) error {
	if s.client == nil {
		return nil
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, cacheKey(key), payload, narrativeCacheTTL).Err(); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
		return err
	}
	return nil
}

func (s *RedisCacheStore) Delete(ctx context.Context, key string) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Del(ctx, cacheKey(key)).Err(); err != nil {
		slog.Warn("cache delete failed", "key", key, "error", err)
		return err
	}
	return nil
}
