package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nflstats/predictor/internal/entity"
)

const statisticsKey = "api:statistics"

// StatisticsCacheImpl caches the rows served by /api/statistics.
type StatisticsCacheImpl struct {
	client *redis.Client
}

// NewStatisticsCache creates a new instance of StatisticsCacheImpl.
func NewStatisticsCache(client *redis.Client) *StatisticsCacheImpl {
	return &StatisticsCacheImpl{client: client}
}

// Get returns the cached rows, or ok=false when nothing is cached.
func (c *StatisticsCacheImpl) Get(ctx context.Context) ([]entity.StoredPrediction, bool, error) {
	raw, err := c.client.Get(ctx, statisticsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var rows []entity.StoredPrediction
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, false, fmt.Errorf("decode cached statistics: %w", err)
	}
	return rows, true, nil
}

// Put stores rows for ttl.
func (c *StatisticsCacheImpl) Put(ctx context.Context, rows []entity.StoredPrediction, ttl time.Duration) error {
	raw, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statisticsKey, raw, ttl).Err()
}

// Invalidate drops the cached rows.
func (c *StatisticsCacheImpl) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, statisticsKey).Err()
}
