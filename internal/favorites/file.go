package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// FileStorage persists each favorite set as a JSON array of session codes in
// "<key>.json" under a state directory. It is the single-process analog of
// the browser's per-event local storage entry.
type FileStorage struct {
	dir string
}

// NewFileStorage creates the state directory if needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if dir == "" {
		return nil, errors.New("file storage: directory is empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("file storage: create %s: %w", dir, err)
	}
	return &FileStorage{dir: dir}, nil
}

// Load reads the stored set for key. A missing file or malformed contents
// both read as an empty set; the file is rewritten wholesale on the next
// Save, so nothing is eagerly wiped.
func (f *FileStorage) Load(_ context.Context, key string) ([]string, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		log.Printf("[WARN] favorites file for %q is malformed, treating as empty: %v", key, err)
		return nil, nil
	}
	return ids, nil
}

// Save atomically replaces the stored set via a temp file and rename.
func (f *FileStorage) Save(_ context.Context, key string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, ".favs-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, f.path(key))
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}
