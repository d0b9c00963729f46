package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// FileBackend keeps each collection in its own JSON file.
type FileBackend struct {
	dir   string
	paths map[string]string
}

// NewFileBackend creates a FileBackend rooted at dir.
// A collection is stored at <dir>/<name>.json unless overrides maps its
// name to an explicit path.
func NewFileBackend(dir string, overrides map[string]string) *FileBackend {
	paths := make(map[string]string, len(overrides))
	for name, path := range overrides {
		if path != "" {
			paths[name] = path
		}
	}
	return &FileBackend{dir: dir, paths: paths}
}

// Path returns the file backing the named collection.
func (b *FileBackend) Path(name string) string {
	if p, ok := b.paths[name]; ok {
		return p
	}
	return filepath.Join(b.dir, name+".json")
}

// Read returns the file contents.
func (b *FileBackend) Read(_ context.Context, name string) ([]byte, error) {
	path := b.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCollectionMissing, path)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// Write replaces the file through a temp file and rename.
func (b *FileBackend) Write(_ context.Context, name string, data []byte) error {
	if err := renameio.WriteFile(b.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}
	return nil
}

// Ensure creates the file holding an empty array if it does not exist.
func (b *FileBackend) Ensure(_ context.Context, name string) error {
	path := b.Path(name)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return renameio.WriteFile(path, []byte("[]\n"), 0o644)
}

// Ping checks the directory holding each collection file is accessible.
func (b *FileBackend) Ping(_ context.Context) error {
	seen := make(map[string]bool, 2)
	for _, name := range []string{UsersCollection, ProductsCollection} {
		dir := filepath.Dir(b.Path(name))
		if seen[dir] {
			continue
		}
		seen[dir] = true

		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("stat %s dir: %w", name, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s dir %s is not a directory", name, dir)
		}
	}
	return nil
}

// Close is a no-op.
func (b *FileBackend) Close() error {
	return nil
}
