package filesystem

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/nflstats/predictor/internal/dataset"
	"github.com/nflstats/predictor/internal/entity"
)

// GameTableImpl keeps the aggregated games table in a single CSV file.
type GameTableImpl struct {
	fs   afero.Fs
	path string
}

// NewGameTable returns a table stored at path.
func NewGameTable(fs afero.Fs, path string) *GameTableImpl {
	return &GameTableImpl{fs: fs, path: path}
}

// Replace overwrites the file with records.
func (t *GameTableImpl) Replace(_ context.Context, records []entity.GameRecord) error {
	var buf bytes.Buffer
	if err := dataset.WriteGames(&buf, records); err != nil {
		return fmt.Errorf("encode games table: %w", err)
	}
	if dir := filepath.Dir(t.path); dir != "." {
		if err := t.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := writeAtomic(t.fs, t.path, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", t.path, err)
	}
	return nil
}

// Load reads every record from the file.
func (t *GameTableImpl) Load(_ context.Context) ([]entity.GameRecord, error) {
	f, err := t.fs.Open(t.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", t.path, err)
	}
	defer f.Close()

	records, err := dataset.ReadGames(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t.path, err)
	}
	return records, nil
}
