package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// FileStore keeps the document in a single file. Saves are written to a
// temporary file and renamed into place.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Location names the backing file.
func (f *FileStore) Location() string { return f.Path }

// Load reads the saved document.
func (f *FileStore) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("load %s: %w", f.Path, err)
	}
	return data, nil
}

// Save replaces the saved document with data.
func (f *FileStore) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save %s: create directory: %w", f.Path, err)
	}
	tmp, err := os.CreateTemp(dir, ".autosave-*")
	if err != nil {
		return fmt.Errorf("save %s: %w", f.Path, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		closeWithLog(tmpPath, tmp)
		removeWithLog(tmpPath)
		return fmt.Errorf("save %s: %w", f.Path, err)
	}
	if err := tmp.Close(); err != nil {
		removeWithLog(tmpPath)
		return fmt.Errorf("save %s: closing file: %w", f.Path, err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		removeWithLog(tmpPath)
		return fmt.Errorf("save %s: %w", f.Path, err)
	}
	return nil
}

func closeWithLog(name string, f *os.File) {
	if err := f.Close(); err != nil {
		log.Printf("%s: close: %v", name, err)
	}
}

func removeWithLog(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("remove %s: %v", path, err)
	}
}
