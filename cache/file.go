package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/teranos/fbstubs/errors"
)

const (
	blobSuffix = ".blob"
	tempPrefix = ".tmp-"
)

// DefaultDir is the file store location when none is configured.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), "fbstubs-cache")
}

// FileStore keeps one file per entry in a directory. Writes go to a temp file
// that is renamed into place, so readers never see partial entries.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create cache dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+blobSuffix)
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	body, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "read cache entry %s", key)
	}
	return body, true, nil
}

func (s *FileStore) Put(_ context.Context, key string, body []byte) error {
	return WriteFileAtomic(s.path(key), body, 0o644)
}

func (s *FileStore) Clear(_ context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "list cache dir %s", s.dir)
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(name, blobSuffix) && !strings.HasPrefix(name, tempPrefix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, errors.Wrapf(err, "remove %s", name)
		}
		if strings.HasSuffix(name, blobSuffix) {
			removed++
		}
	}
	return removed, nil
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it over path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return errors.Wrapf(err, "create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "close %s", tmpName)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "chmod %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "rename into %s", path)
	}
	return nil
}
