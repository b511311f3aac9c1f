package repository

import (
	"context"
	"time"

	"github.com/nflstats/predictor/internal/entity"
)

// LinkCache remembers the box-score links found on a team's game-log page.
type LinkCache interface {
	// Get returns cached links; ok is false on a miss.
	Get(ctx context.Context, team string, season int) (links []string, ok bool, err error)
	Put(ctx context.Context, team string, season int, links []string, ttl time.Duration) error
}

// StatisticsCache holds the last rendered contents of player_stats.
type StatisticsCache interface {
	Get(ctx context.Context) (rows []entity.StoredPrediction, ok bool, err error)
	Put(ctx context.Context, rows []entity.StoredPrediction, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}
