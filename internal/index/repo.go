package index

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClientRow represents a row in the clients table. The body column
// (notes plus task text) is passed separately to UpsertClient.
type ClientRow struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Status    string
	Tags      []string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Snippet string `json:"snippet"`
}

const docChecksumKey = "doc_checksum"

// UpsertClient inserts or replaces a client row and its FTS entry
// within a transaction.
func (db *DB) UpsertClient(row ClientRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(row.Tags)

	// Upsert clients table (includes body for fallback search).
	_, err = tx.Exec(`
		INSERT INTO clients (id, name, email, phone, status, tags, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name       = excluded.name,
			email      = excluded.email,
			phone      = excluded.phone,
			status     = excluded.status,
			tags       = excluded.tags,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, row.ID, row.Name, row.Email, row.Phone, row.Status, string(tagsJSON), body, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert client: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, row, body); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteClient removes a client row and its FTS entry.
func (db *DB) DeleteClient(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM clients WHERE id = ?`, id)

	return tx.Commit()
}

// AllIDs returns every indexed client id.
func (db *DB) AllIDs() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT id FROM clients`)
	if err != nil {
		return nil, fmt.Errorf("index: all ids: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

// DocChecksum returns the checksum of the last synced document, or
// empty string when the index has never been synced.
func (db *DB) DocChecksum() (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT value FROM meta WHERE key = ?`, docChecksumKey).Scan(&cs)
	if err != nil {
		return "", nil // never synced is fine
	}
	return cs, nil
}

// SetDocChecksum records the checksum of the document the index now
// reflects.
func (db *DB) SetDocChecksum(cs string) error {
	_, err := db.conn.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, docChecksumKey, cs)
	if err != nil {
		return fmt.Errorf("index: set doc checksum: %w", err)
	}
	return nil
}
