// Package query implements the read-only query and aggregation layer:
// search, filtering, sorting, dashboard metrics, and activity feeds.
// Nothing in this package mutates or persists client records.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/starford/raido/internal/models"
)

// Client sort keys.
const (
	SortName      = "name"
	SortStatus    = "status"
	SortValue     = "value"
	SortDateAdded = "date_added" // default
)

// Search keeps clients whose name, email, or phone contains q
// (case-insensitive). An empty query matches all.
func Search(clients []models.Client, q string) []models.Client {
	if q == "" {
		return clients
	}
	needle := strings.ToLower(q)
	var out []models.Client
	for _, c := range clients {
		if strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.Contains(strings.ToLower(c.Email), needle) ||
			strings.Contains(strings.ToLower(c.Phone), needle) {
			out = append(out, c)
		}
	}
	return out
}

// FilterByStatus keeps clients whose status is in statuses. An empty
// status set applies no filtering.
func FilterByStatus(clients []models.Client, statuses []string) []models.Client {
	if len(statuses) == 0 {
		return clients
	}
	want := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		want[s] = struct{}{}
	}
	var out []models.Client
	for _, c := range clients {
		if _, ok := want[c.Status]; ok {
			out = append(out, c)
		}
	}
	return out
}

// FilterByTags keeps clients having at least one tag in tags (OR
// semantics). An empty tag set applies no filtering.
func FilterByTags(clients []models.Client, tags []string) []models.Client {
	if len(tags) == 0 {
		return clients
	}
	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		want[t] = struct{}{}
	}
	var out []models.Client
	for _, c := range clients {
		for _, t := range c.Tags {
			if _, ok := want[t]; ok {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// SortClients returns a sorted copy of clients. Name and Status sort
// lexicographically ascending, Value descending, DateAdded (the
// default for unknown keys) descending. All sorts are stable.
func SortClients(clients []models.Client, key string) []models.Client {
	out := make([]models.Client, len(clients))
	copy(out, clients)
	switch key {
	case SortName:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	case SortStatus:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	case SortValue:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].DateAdded > out[j].DateAdded })
	}
	return out
}

// Task list filters.
const (
	TaskFilterAll       = "all"
	TaskFilterPending   = "pending"
	TaskFilterCompleted = "completed"
	TaskFilterDueToday  = "due_today"
)

// Task list sort keys.
const (
	TaskSortPriority   = "priority"
	TaskSortDueDate    = "due_date"
	TaskSortClientName = "client_name"
)

// TaskEntry is one row of the flattened cross-client task list.
type TaskEntry struct {
	ClientID   string      `json:"client_id"`
	ClientName string      `json:"client_name"`
	Task       models.Task `json:"task"`
}

// Unknown priorities rank as Medium.
var priorityRank = map[string]int{
	models.PriorityHigh:   0,
	models.PriorityMedium: 1,
	models.PriorityLow:    2,
}

func rankPriority(p string) int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return priorityRank[models.PriorityMedium]
}

// Missing due dates sort after every real date.
const missingDueDate = "9999-99-99"

func dueKey(t models.Task) string {
	if t.DueDate == "" {
		return missingDueDate
	}
	return t.DueDate
}

// Tasks flattens tasks across all clients, filters, and sorts. now
// supplies "today" for the due-today filter. All sorts are stable, so
// ties keep the original client/task order.
func Tasks(clients []models.Client, filter, sortKey string, now time.Time) []TaskEntry {
	var all []TaskEntry
	for _, c := range clients {
		for _, t := range c.Tasks {
			all = append(all, TaskEntry{ClientID: c.ID, ClientName: c.Name, Task: t})
		}
	}

	today := now.Format(models.DateLayout)
	var out []TaskEntry
	for _, e := range all {
		switch filter {
		case TaskFilterPending:
			if e.Task.Completed {
				continue
			}
		case TaskFilterCompleted:
			if !e.Task.Completed {
				continue
			}
		case TaskFilterDueToday:
			if e.Task.DueDate != today || e.Task.Completed {
				continue
			}
		}
		out = append(out, e)
	}

	switch sortKey {
	case TaskSortPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return rankPriority(out[i].Task.Priority) < rankPriority(out[j].Task.Priority)
		})
	case TaskSortDueDate:
		sort.SliceStable(out, func(i, j int) bool {
			return dueKey(out[i].Task) < dueKey(out[j].Task)
		})
	case TaskSortClientName:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ClientName < out[j].ClientName
		})
	}
	return out
}
