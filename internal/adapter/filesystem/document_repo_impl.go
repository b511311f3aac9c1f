package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// DocumentRepoImpl stores raw box-score documents as files in one directory.
type DocumentRepoImpl struct {
	fs  afero.Fs
	dir string
}

// NewDocumentRepo creates the directory if needed and returns the repository.
func NewDocumentRepo(fs afero.Fs, dir string) (*DocumentRepoImpl, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	return &DocumentRepoImpl{fs: fs, dir: dir}, nil
}

func (r *DocumentRepoImpl) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid document name %q", name)
	}
	return filepath.Join(r.dir, name), nil
}

// Exists reports whether a document is already stored.
func (r *DocumentRepoImpl) Exists(_ context.Context, name string) (bool, error) {
	p, err := r.path(name)
	if err != nil {
		return false, err
	}
	return afero.Exists(r.fs, p)
}

// Save writes content under name. An existing file is left alone and
// os.ErrExist is returned.
func (r *DocumentRepoImpl) Save(_ context.Context, name, content string) error {
	p, err := r.path(name)
	if err != nil {
		return err
	}
	exists, err := afero.Exists(r.fs, p)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("document %s: %w", name, os.ErrExist)
	}
	return writeAtomic(r.fs, p, []byte(content))
}

// List returns the stored document names in lexical order.
func (r *DocumentRepoImpl) List(_ context.Context) ([]string, error) {
	infos, err := afero.ReadDir(r.fs, r.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() || isTemp(info.Name()) {
			continue
		}
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the content of a stored document.
func (r *DocumentRepoImpl) Read(_ context.Context, name string) (string, error) {
	p, err := r.path(name)
	if err != nil {
		return "", err
	}
	b, err := afero.ReadFile(r.fs, p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("document %s: %w", name, err)
		}
		return "", err
	}
	return string(b), nil
}
