package repository

import (
	"context"

	"github.com/nflstats/predictor/internal/entity"
)

// PredictionRepository defines the interface for the player_stats table.
type PredictionRepository interface {
	// EnsureSchema creates the table (and any missing columns).
	EnsureSchema(ctx context.Context) error
	// Append inserts predictions tagged with runID, keeping older rows.
	Append(ctx context.Context, runID string, predictions []entity.Prediction) error
	// Replace clears the table and inserts predictions in one transaction.
	Replace(ctx context.Context, runID string, predictions []entity.Prediction) error
	// ListAll returns every row ordered by id.
	ListAll(ctx context.Context) ([]entity.StoredPrediction, error)
	Ping(ctx context.Context) error
	Close()
}
