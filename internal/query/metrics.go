package query

import (
	"sort"

	"github.com/starford/raido/internal/models"
)

// Metrics holds the dashboard aggregates.
type Metrics struct {
	TotalClients int            `json:"total_clients"`
	StatusCounts map[string]int `json:"status_counts"`
	SourceCounts map[string]int `json:"source_counts"`
	TotalValue   int            `json:"total_value"`
}

// Activity is one entry in the merged recent-activity feed.
type Activity struct {
	ClientName string `json:"client"`
	Type       string `json:"type"` // "Note" or "Task"
	Date       string `json:"date"`
	Content    string `json:"content"`
	Completed  bool   `json:"completed,omitempty"`
}

// activityContentLimit is the truncation threshold for note text in
// the activity feed.
const activityContentLimit = 50

// DashboardMetrics computes the dashboard aggregates. Statuses count
// under their own label (an empty status counts as "Unknown");
// a missing source counts as Direct.
func DashboardMetrics(clients []models.Client) Metrics {
	m := Metrics{
		TotalClients: len(clients),
		StatusCounts: map[string]int{},
		SourceCounts: map[string]int{},
	}
	for _, c := range clients {
		status := c.Status
		if status == "" {
			status = "Unknown"
		}
		m.StatusCounts[status]++

		source := c.Source
		if source == "" {
			source = models.SourceDirect
		}
		m.SourceCounts[source]++

		m.TotalValue += c.Value
	}
	return m
}

// TopClientsByValue returns the clients with value > 0, sorted by
// value descending, first n. n <= 0 defaults to 10.
func TopClientsByValue(clients []models.Client, n int) []models.Client {
	if n <= 0 {
		n = 10
	}
	var out []models.Client
	for _, c := range clients {
		if c.Value > 0 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// RecentActivity merges all notes and tasks across clients into one
// feed sorted by date descending, first n (default 10). The date
// strings are fixed-width and zero-padded, so plain string comparison
// orders chronologically even though notes carry a timestamp and
// tasks only a date.
func RecentActivity(clients []models.Client, n int) []Activity {
	if n <= 0 {
		n = 10
	}
	var feed []Activity
	for _, c := range clients {
		for _, note := range c.Notes {
			feed = append(feed, Activity{
				ClientName: c.Name,
				Type:       "Note",
				Date:       note.Date,
				Content:    truncate(note.Text, activityContentLimit),
			})
		}
		for _, task := range c.Tasks {
			feed = append(feed, Activity{
				ClientName: c.Name,
				Type:       "Task",
				Date:       task.CreatedAt,
				Content:    task.Description,
				Completed:  task.Completed,
			})
		}
	}
	sort.SliceStable(feed, func(i, j int) bool { return feed[i].Date > feed[j].Date })
	if len(feed) > n {
		feed = feed[:n]
	}
	return feed
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
