package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nflstats/predictor/internal/entity"
)

const createTable = `
CREATE TABLE IF NOT EXISTS player_stats (
	id SERIAL PRIMARY KEY,
	player TEXT NOT NULL,
	passyds DOUBLE PRECISION,
	passtd DOUBLE PRECISION,
	ints DOUBLE PRECISION,
	rushyds DOUBLE PRECISION,
	rushtds DOUBLE PRECISION,
	catches DOUBLE PRECISION,
	recyds DOUBLE PRECISION,
	rectds DOUBLE PRECISION,
	fumbles DOUBLE PRECISION,
	fantasyppr DOUBLE PRECISION,
	fantasynonppr DOUBLE PRECISION,
	run_id TEXT,
	created_at TIMESTAMPTZ DEFAULT NOW()
);`

// Tables created by older tooling lack the run metadata.
var migrations = []string{
	`ALTER TABLE player_stats ADD COLUMN IF NOT EXISTS run_id TEXT;`,
	`ALTER TABLE player_stats ADD COLUMN IF NOT EXISTS created_at TIMESTAMPTZ DEFAULT NOW();`,
}

var valueColumns = func() []string {
	cols := make([]string, 0, entity.NumStats+2)
	for _, s := range entity.StatColumns {
		cols = append(cols, entity.StorageColumn(s))
	}
	return append(cols, "fantasyppr", "fantasynonppr")
}()

var (
	insertQuery = func() string {
		cols := append([]string{"player"}, valueColumns...)
		cols = append(cols, "run_id")
		params := make([]string, len(cols))
		for i := range params {
			params[i] = fmt.Sprintf("$%d", i+1)
		}
		return fmt.Sprintf("INSERT INTO player_stats (%s) VALUES (%s);",
			strings.Join(cols, ", "), strings.Join(params, ", "))
	}()
	selectQuery = fmt.Sprintf("SELECT id, player, %s, run_id, created_at FROM player_stats ORDER BY id;",
		strings.Join(valueColumns, ", "))
)

// PredictionRepoImpl stores predictions in PostgreSQL.
type PredictionRepoImpl struct {
	db *pgxpool.Pool
}

// NewPredictionRepo opens a connection pool for dsn.
func NewPredictionRepo(ctx context.Context, dsn string) (*PredictionRepoImpl, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return &PredictionRepoImpl{db: pool}, nil
}

// EnsureSchema creates player_stats and adds any missing run columns.
func (r *PredictionRepoImpl) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("create player_stats: %w", err)
	}
	for _, m := range migrations {
		if _, err := r.db.Exec(ctx, m); err != nil {
			return fmt.Errorf("migrate player_stats: %w", err)
		}
	}
	return nil
}

// Append inserts predictions, keeping earlier rows.
func (r *PredictionRepoImpl) Append(ctx context.Context, runID string, predictions []entity.Prediction) error {
	return r.write(ctx, runID, predictions, false)
}

// Replace deletes every row and inserts predictions in the same transaction.
func (r *PredictionRepoImpl) Replace(ctx context.Context, runID string, predictions []entity.Prediction) error {
	return r.write(ctx, runID, predictions, true)
}

func (r *PredictionRepoImpl) write(ctx context.Context, runID string, predictions []entity.Prediction, clear bool) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if clear {
			if _, err := tx.Exec(ctx, `DELETE FROM player_stats;`); err != nil {
				return fmt.Errorf("clear player_stats: %w", err)
			}
		}
		if len(predictions) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, p := range predictions {
			batch.Queue(insertQuery, insertArgs(runID, p)...)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert predictions: %w", err)
		}
		return nil
	})
}

func insertArgs(runID string, p entity.Prediction) []any {
	args := make([]any, 0, len(valueColumns)+2)
	args = append(args, p.Player)
	for _, v := range p.Stats.Values() {
		args = append(args, v)
	}
	return append(args, p.FantasyPPR, p.FantasyNonPPR, runID)
}

// ListAll returns every stored row ordered by id.
func (r *PredictionRepoImpl) ListAll(ctx context.Context) ([]entity.StoredPrediction, error) {
	rows, err := r.db.Query(ctx, selectQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.StoredPrediction
	for rows.Next() {
		var sp entity.StoredPrediction
		if err := rows.Scan(
			&sp.ID,
			&sp.Player,
			&sp.PassYds,
			&sp.PassTD,
			&sp.Ints,
			&sp.RushYds,
			&sp.RushTDs,
			&sp.Catches,
			&sp.RecYds,
			&sp.RecTDs,
			&sp.Fumbles,
			&sp.FantasyPPR,
			&sp.FantasyNonPPR,
			&sp.RunID,
			&sp.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// Ping checks that the database is reachable.
func (r *PredictionRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Close releases the pool.
func (r *PredictionRepoImpl) Close() {
	r.db.Close()
}
