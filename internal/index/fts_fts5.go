//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS clients_fts USING fts5(
			id UNINDEXED,
			name,
			email,
			phone,
			tags,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, row ClientRow, body string) error {
	_, _ = tx.Exec(`DELETE FROM clients_fts WHERE id = ?`, row.ID)
	_, err := tx.Exec(`INSERT INTO clients_fts (id, name, email, phone, tags, body) VALUES (?, ?, ?, ?, ?, ?)`,
		row.ID, row.Name, row.Email, row.Phone, strings.Join(row.Tags, " "), body)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM clients_fts WHERE id = ?`, id)
}

// Search performs an FTS5 full-text search and returns matching
// clients with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id,
		       name,
		       snippet(clients_fts, 5, '<b>', '</b>', '...', 64)
		FROM clients_fts
		WHERE clients_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Name, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
