package filesystem

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const tempPrefix = ".tmp-"

func isTemp(name string) bool {
	return strings.HasPrefix(name, tempPrefix)
}

// writeAtomic writes data to a temp file next to path and renames it into
// place, so readers never see a partial file.
func writeAtomic(fs afero.Fs, path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := afero.TempFile(fs, dir, tempPrefix+base+"-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		fs.Remove(tmp)
		return err
	}
	if err := fs.Rename(tmp, path); err != nil {
		fs.Remove(tmp)
		return err
	}
	return nil
}
