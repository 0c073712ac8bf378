// internal/pkg/cache/recommendation_cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "planwise-service/internal/domain/recommendation"

	"github.com/redis/go-redis/v9"
)

// RecommendationCache stores ranked results in Redis, keyed by the model
// build id so a rebuild naturally invalidates every cached entry without
// an explicit flush. Entries expire after TTL regardless.
type RecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRecommendationCache(client *redis.Client, ttl time.Duration) *RecommendationCache {
	return &RecommendationCache{client: client, ttl: ttl}
}

func key(buildID string, userID int64, k int) string {
	return fmt.Sprintf("reco:%s:%d:%d", buildID, userID, k)
}

// Get returns the cached list for the key, or nil on a miss.
func (c *RecommendationCache) Get(ctx context.Context, buildID string, userID int64, k int) ([]domain.Recommendation, error) {
	raw, err := c.client.Get(ctx, key(buildID, userID, k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var recs []domain.Recommendation
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("decode cached recommendations: %w", err)
	}
	return recs, nil
}

func (c *RecommendationCache) Set(ctx context.Context, buildID string, userID int64, k int, recs []domain.Recommendation) error {
	raw, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	if err := c.client.Set(ctx, key(buildID, userID, k), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
