// Package sqlite stores predictions in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nflstats/predictor/internal/entity"

	_ "modernc.org/sqlite" // SQLite driver.
)

// DSNPrefix selects this adapter in DATABASE_URL.
const DSNPrefix = "sqlite://"

const createTable = `
CREATE TABLE IF NOT EXISTS player_stats (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	player TEXT NOT NULL,
	passyds REAL,
	passtd REAL,
	ints REAL,
	rushyds REAL,
	rushtds REAL,
	catches REAL,
	recyds REAL,
	rectds REAL,
	fumbles REAL,
	fantasyppr REAL,
	fantasynonppr REAL,
	run_id TEXT,
	created_at TEXT
);`

var valueColumns = func() []string {
	cols := make([]string, 0, entity.NumStats+2)
	for _, s := range entity.StatColumns {
		cols = append(cols, entity.StorageColumn(s))
	}
	return append(cols, "fantasyppr", "fantasynonppr")
}()

var (
	insertQuery = fmt.Sprintf("INSERT INTO player_stats (player, %s, run_id, created_at) VALUES (?%s, ?, ?);",
		strings.Join(valueColumns, ", "), strings.Repeat(", ?", len(valueColumns)))
	selectQuery = fmt.Sprintf("SELECT id, player, %s, run_id, created_at FROM player_stats ORDER BY id;",
		strings.Join(valueColumns, ", "))
)

// PredictionRepoImpl stores predictions through database/sql.
type PredictionRepoImpl struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the database named by dsn, which may carry the sqlite:// prefix.
func Open(dsn string) (*PredictionRepoImpl, error) {
	path := strings.TrimPrefix(dsn, DSNPrefix)
	if path == "" {
		return nil, errors.New("sqlite: empty database path")
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Every connection to :memory: would see its own database.
	db.SetMaxOpenConns(1)
	return &PredictionRepoImpl{db: db, now: time.Now}, nil
}

// EnsureSchema creates player_stats and adds the run columns to older tables.
func (r *PredictionRepoImpl) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("create player_stats: %w", err)
	}
	existing, err := r.columns(ctx)
	if err != nil {
		return err
	}
	for _, col := range []string{"run_id", "created_at"} {
		if existing[col] {
			continue
		}
		if _, err := r.db.ExecContext(ctx, "ALTER TABLE player_stats ADD COLUMN "+col+" TEXT;"); err != nil {
			return fmt.Errorf("add column %s: %w", col, err)
		}
	}
	return nil
}

func (r *PredictionRepoImpl) columns(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM pragma_table_info('player_stats');`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
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
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if clear {
		if _, err := tx.ExecContext(ctx, `DELETE FROM player_stats;`); err != nil {
			return fmt.Errorf("clear player_stats: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return err
	}
	defer stmt.Close()

	createdAt := r.now().UTC().Format(time.RFC3339)
	for _, p := range predictions {
		args := make([]any, 0, len(valueColumns)+3)
		args = append(args, p.Player)
		for _, v := range p.Stats.Values() {
			args = append(args, v)
		}
		args = append(args, p.FantasyPPR, p.FantasyNonPPR, runID, createdAt)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert prediction for %s: %w", p.Player, err)
		}
	}
	return tx.Commit()
}

// ListAll returns every stored row ordered by id.
func (r *PredictionRepoImpl) ListAll(ctx context.Context) ([]entity.StoredPrediction, error) {
	rows, err := r.db.QueryContext(ctx, selectQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.StoredPrediction
	for rows.Next() {
		var (
			sp        entity.StoredPrediction
			values    [entity.NumStats + 2]sql.NullFloat64
			runID     sql.NullString
			createdAt sql.NullString
		)
		dest := []any{&sp.ID, &sp.Player}
		for i := range values {
			dest = append(dest, &values[i])
		}
		dest = append(dest, &runID, &createdAt)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		targets := []**float64{
			&sp.PassYds, &sp.PassTD, &sp.Ints, &sp.RushYds, &sp.RushTDs,
			&sp.Catches, &sp.RecYds, &sp.RecTDs, &sp.Fumbles,
			&sp.FantasyPPR, &sp.FantasyNonPPR,
		}
		for i, v := range values {
			if v.Valid {
				f := v.Float64
				*targets[i] = &f
			}
		}
		if runID.Valid {
			s := runID.String
			sp.RunID = &s
		}
		if createdAt.Valid {
			if ts, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
				sp.CreatedAt = &ts
			}
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// Ping checks that the database is reachable.
func (r *PredictionRepoImpl) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the underlying database.
func (r *PredictionRepoImpl) Close() {
	_ = r.db.Close()
}
