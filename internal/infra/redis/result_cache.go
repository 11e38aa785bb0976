package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"exam-scoring-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ResultCache keeps rendered cohort results in Redis so repeated leaderboard
// reads skip the ranking pass. Entries are dropped whenever an attempt of the
// exam becomes evaluated.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

func (c *ResultCache) Get(ctx context.Context, examID string) (domain.CohortResults, bool, error) {
	data, err := c.client.Get(ctx, c.key(examID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CohortResults{}, false, nil
	}
	if err != nil {
		return domain.CohortResults{}, false, err
	}
	var results domain.CohortResults
	if err := json.Unmarshal(data, &results); err != nil {
		return domain.CohortResults{}, false, fmt.Errorf("decode cached results: %w", err)
	}
	return results, true, nil
}

func (c *ResultCache) Set(ctx context.Context, examID string, results domain.CohortResults) error {
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(examID), data, c.ttl).Err()
}

func (c *ResultCache) Invalidate(ctx context.Context, examID string) error {
	return c.client.Del(ctx, c.key(examID)).Err()
}

func (c *ResultCache) key(examID string) string {
	return "exam:results:" + examID
}
