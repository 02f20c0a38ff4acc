package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// File implements Provider backed by a single JSON file on the local
// file system.
type File struct {
	path string
	now  func() time.Time
}

// NewFile creates a File provider for the given path. The parent
// directory is created if it does not exist; the file itself is
// created lazily on first Save.
func NewFile(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir: %w", err)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return nil, fmt.Errorf("storage: path is a directory: %s", abs)
	}
	return &File{path: abs, now: time.Now}, nil
}

// Path returns the absolute path of the backing file.
func (f *File) Path() string {
	return f.path
}

// Load reads and heals the persisted document. Shape problems are
// never surfaced: a missing, unreadable, or corrupt file yields an
// empty client collection.
func (f *File) Load() (*models.Document, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return models.NewDocument(), nil
	}
	return models.DecodeDocument(data, f.now()), nil
}

// Save persists the full document atomically: tmp file → fsync →
// rename. A nil client sequence is coerced to an empty one before
// writing; a nil document is rejected rather than silently written
// as an empty store.
func (f *File) Save(doc *models.Document) error {
	if doc == nil {
		return fmt.Errorf("storage: save: %w", apperr.ErrInvalidInput)
	}
	if doc.Clients == nil {
		doc.Clients = []models.Client{}
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("storage: encode document: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".raido-tmp-*")
	if err != nil {
		return storageErr("create temp", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return storageErr("write temp", err)
	}
	if err := tmp.Sync(); err != nil {
		return storageErr("fsync", err)
	}
	if err := tmp.Close(); err != nil {
		return storageErr("close temp", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return storageErr("rename", err)
	}
	success = true
	return nil
}

// ReadRaw returns the persisted bytes for backup purposes. When no
// file exists yet, it returns an encoded empty document so a backup
// of a fresh store is still a valid document.
func (f *File) ReadRaw() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			empty, _ := json.MarshalIndent(models.NewDocument(), "", "    ")
			return append(empty, '\n'), nil
		}
		return nil, storageErr("read", err)
	}
	return data, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("storage: %s: %v: %w", op, err, apperr.ErrStorageUnavailable)
}
