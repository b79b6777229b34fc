// Package store persists the single autosaved document.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotExist is returned by Load when nothing has been saved yet.
var ErrNotExist = errors.New("no saved document")

// Store loads and saves serialized documents at one well-known location.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Locator is implemented by stores that can name where they write.
type Locator interface {
	Location() string
}

const (
	// Filename is the name of the autosave file inside the data directory.
	Filename = "Autosaved.emojiart"
	// DatabaseName is the SQLite file used by the sqlite backend.
	DatabaseName = "emojiart.db"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// DefaultDir returns the directory documents are stored in when none is
// configured: $XDG_DATA_HOME/emojiart, falling back to
// ~/.local/share/emojiart.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "emojiart"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "emojiart"), nil
}

// Open returns the store for backend rooted at dir. An empty dir selects
// DefaultDir. The returned close function releases backend resources.
func Open(backend, dir string) (Store, func() error, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, nil, err
		}
		dir = d
	}
	switch backend {
	case "", BackendFile:
		return NewFileStore(filepath.Join(dir, Filename)), func() error { return nil }, nil
	case BackendSQLite:
		s, err := OpenSQLite(filepath.Join(dir, DatabaseName))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
