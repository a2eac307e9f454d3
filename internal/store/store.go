package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/inovacc/gitroster/internal/model"
)

var (
	// ErrNotFound is returned by Load when nothing has been saved yet.
	ErrNotFound = errors.New("registry store not found")

	// ErrStoreIO wraps read, write and decode failures.
	ErrStoreIO = errors.New("registry store i/o failure")
)

// Backend names accepted by Open.
const (
	BackendFile = "file"
	BackendBolt = "bolt"
)

// Store loads and saves the full ordered list of repository records.
type Store interface {
	Load() ([]model.Record, error)
	Save(records []model.Record) error
	// SavedAt returns the time of the last successful Save, or ErrNotFound.
	SavedAt() (time.Time, error)
	Close() error
}

// Open creates the store for backend at path. The parent directory is
// created if needed.
func Open(backend, path string) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, ioError("create directory for", path, err)
	}

	switch backend {
	case "", BackendFile:
		return NewFile(path), nil
	case BackendBolt:
		return NewBolt(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// DefaultFileName returns the file name used for backend inside the
// application directory.
func DefaultFileName(backend string) string {
	if backend == BackendBolt {
		return "repositories.db"
	}

	return "repositories.yaml"
}

func ioError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrStoreIO, op, path, err)
}

func validate(records []model.Record) error {
	for i, rec := range records {
		if _, err := model.ParseStatus(string(rec.Status)); err != nil {
			return fmt.Errorf("record %d (%s): %w", i, rec.Name, err)
		}
	}

	return nil
}
