package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nflstats/predictor/internal/entity"
	"github.com/nflstats/predictor/internal/repository"
)

// Statistics serves stored predictions to the API.
type Statistics interface {
	List(ctx context.Context) ([]entity.StoredPrediction, error)
	Health(ctx context.Context) error
}

type statisticsUseCase struct {
	repo   repository.PredictionRepository
	cache  repository.StatisticsCache // optional
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatisticsUseCase creates a new Statistics use case. cache may be nil.
func NewStatisticsUseCase(
	repo repository.PredictionRepository,
	cache repository.StatisticsCache,
	ttl time.Duration,
	logger *zap.Logger,
) Statistics {
	return &statisticsUseCase{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// List returns every stored row ordered by id, from the cache when possible.
// Cache errors are logged and otherwise ignored.
func (uc *statisticsUseCase) List(ctx context.Context) ([]entity.StoredPrediction, error) {
	if uc.cache != nil {
		rows, ok, err := uc.cache.Get(ctx)
		if err != nil {
			uc.logger.Warn("statistics cache read failed", zap.Error(err))
		} else if ok {
			return rows, nil
		}
	}

	rows, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []entity.StoredPrediction{}
	}

	if uc.cache != nil && uc.ttl > 0 {
		if err := uc.cache.Put(ctx, rows, uc.ttl); err != nil {
			uc.logger.Warn("statistics cache write failed", zap.Error(err))
		}
	}
	return rows, nil
}

// Health reports whether the prediction store is reachable.
func (uc *statisticsUseCase) Health(ctx context.Context) error {
	return uc.repo.Ping(ctx)
}
