// Package export renders client collections for external consumers:
// CSV exports and backup file naming.
package export

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/starford/raido/internal/models"
)

var csvHeader = []string{"ID", "Name", "Phone", "Email", "Status", "Date Added", "Value", "Source"}

// CSV renders clients as a CSV document, one row per client in the
// order supplied. An empty collection produces exactly the header row.
func CSV(clients []models.Client) (string, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("export: write header: %w", err)
	}
	for _, c := range clients {
		row := []string{
			c.ID,
			c.Name,
			c.Phone,
			c.Email,
			c.Status,
			c.DateAdded,
			strconv.Itoa(c.Value),
			c.Source,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("export: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("export: flush: %w", err)
	}
	return buf.String(), nil
}

// BackupFilename returns the timestamp-suffixed name for a backup of
// the persisted document.
func BackupFilename(t time.Time) string {
	return "crm_backup_" + t.Format("20060102_150405") + ".json"
}
