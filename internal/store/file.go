package store

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/inovacc/gitroster/internal/model"
	"gopkg.in/yaml.v3"
)

type document struct {
	Repositories []model.Record `yaml:"repositories"`
}

// File stores records as a YAML document on disk.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile returns a file store at path. Nothing is touched until the
// first Load or Save.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the document location.
func (f *File) Path() string {
	return f.path
}

// Load reads the document. A missing file yields ErrNotFound; an empty file
// is an empty registry.
func (f *File) Load() ([]model.Record, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, ioError("read", f.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []model.Record{}, nil
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ioError("decode", f.path, err)
	}

	if err := validate(doc.Repositories); err != nil {
		return nil, ioError("decode", f.path, err)
	}

	if doc.Repositories == nil {
		return []model.Record{}, nil
	}

	return doc.Repositories, nil
}

// Save replaces the document atomically.
func (f *File) Save(records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(document{Repositories: records}); err != nil {
		return ioError("encode", f.path, err)
	}

	if err := enc.Close(); err != nil {
		return ioError("encode", f.path, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return writeAtomic(f.path, buf.Bytes())
}

// SavedAt returns the modification time of the document.
func (f *File) SavedAt() (time.Time, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, ErrNotFound
		}

		return time.Time{}, ioError("stat", f.path, err)
	}

	return info.ModTime(), nil
}

// Close is a no-op; the file is opened per call.
func (f *File) Close() error {
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return ioError("create temp file for", path, err)
	}

	tmpName := tmp.Name()
	committed := false

	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return ioError("write", tmpName, err)
	}

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return ioError("chmod", tmpName, err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return ioError("sync", tmpName, err)
	}

	if err := tmp.Close(); err != nil {
		return ioError("close", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return ioError("replace", path, err)
	}

	committed = true

	return nil
}
