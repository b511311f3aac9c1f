package repository

import (
	"context"

	"github.com/nflstats/predictor/internal/entity"
)

// GameTableRepository persists the aggregated games table.
type GameTableRepository interface {
	// Replace writes records as the whole table, discarding previous content.
	Replace(ctx context.Context, records []entity.GameRecord) error
	// Load reads every record of the table.
	Load(ctx context.Context) ([]entity.GameRecord, error)
}
