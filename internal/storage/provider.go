// Package storage defines the persisted-document abstraction.
package storage

import "github.com/starford/raido/internal/models"

// Provider is the interface for record-store operations. The store
// holds a single JSON document with the entire client collection.
type Provider interface {
	// Load reads the persisted document. An absent, unreadable, or
	// malformed file loads as an empty document, never an error.
	Load() (*models.Document, error)
	// Save atomically persists the full document.
	Save(doc *models.Document) error
	// ReadRaw returns the persisted document byte-for-byte. An absent
	// file reads as an encoded empty document.
	ReadRaw() ([]byte, error)
	// Path returns the absolute path of the backing file.
	Path() string
}
