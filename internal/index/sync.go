package index

import (
	"log/slog"
	"strings"
	"time"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/storage"
)

// Sync brings the index up to date with the persisted document:
//   - every client in the document is upserted
//   - index entries for deleted clients are removed
//
// The whole pass is skipped when the document checksum matches the
// one recorded at the previous sync.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	raw, err := store.ReadRaw()
	if err != nil {
		return err
	}
	cs := checksum.Sum(raw)

	prev, err := db.DocChecksum()
	if err != nil {
		return err
	}
	if prev == cs {
		return nil
	}

	doc, err := store.Load()
	if err != nil {
		return err
	}

	indexed, err := db.AllIDs()
	if err != nil {
		return err
	}

	now := time.Now()
	live := make(map[string]struct{}, len(doc.Clients))
	for _, c := range doc.Clients {
		live[c.ID] = struct{}{}
		if err := db.UpsertClient(clientRow(c, now), clientBody(c)); err != nil {
			logger.Warn("sync: upsert failed", slog.String("id", c.ID), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("id", c.ID))
		}
	}

	// Remove stale entries.
	for id := range indexed {
		if _, ok := live[id]; !ok {
			if err := db.DeleteClient(id); err != nil {
				logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("id", id))
			}
		}
	}

	return db.SetDocChecksum(cs)
}

func clientRow(c models.Client, now time.Time) ClientRow {
	return ClientRow{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Status:    c.Status,
		Tags:      c.Tags,
		UpdatedAt: now,
	}
}

// clientBody concatenates the searchable free text of a client:
// note text first, then task descriptions.
func clientBody(c models.Client) string {
	var b strings.Builder
	for _, n := range c.Notes {
		b.WriteString(n.Text)
		b.WriteString("\n")
	}
	for _, t := range c.Tasks {
		b.WriteString(t.Description)
		b.WriteString("\n")
	}
	return b.String()
}
