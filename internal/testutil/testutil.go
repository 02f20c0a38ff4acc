// Package testutil provides shared test helpers for setting up stores and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a file provider backed by a temporary directory.
func TestStore(t *testing.T) *storage.File {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFile(filepath.Join(dir, "crm_data.json"))
	if err != nil {
		t.Fatal(err)
	}
	return store
}
