package query

import (
	"strings"
	"testing"

	"github.com/starford/raido/internal/models"
)

func TestDashboardMetrics(t *testing.T) {
	clients := []models.Client{
		{Status: models.StatusLead, Source: models.SourceReferral, Value: 100},
		{Status: models.StatusLead, Source: "", Value: 250},
		{Status: "", Source: models.SourceWebsite, Value: 0},
	}
	m := DashboardMetrics(clients)

	if m.TotalClients != 3 {
		t.Errorf("total = %d, want 3", m.TotalClients)
	}
	if m.StatusCounts[models.StatusLead] != 2 {
		t.Errorf("lead count = %d, want 2", m.StatusCounts[models.StatusLead])
	}
	if m.StatusCounts["Unknown"] != 1 {
		t.Errorf("unknown status count = %d, want 1", m.StatusCounts["Unknown"])
	}
	if m.SourceCounts[models.SourceDirect] != 1 {
		t.Errorf("missing source should count as Direct, got %d", m.SourceCounts[models.SourceDirect])
	}
	if m.TotalValue != 350 {
		t.Errorf("total value = %d, want 350", m.TotalValue)
	}
}

func TestDashboardMetrics_Empty(t *testing.T) {
	m := DashboardMetrics(nil)
	if m.TotalClients != 0 || m.TotalValue != 0 {
		t.Errorf("empty metrics = %+v", m)
	}
	if m.StatusCounts == nil || m.SourceCounts == nil {
		t.Error("count maps should be non-nil")
	}
}

func TestTopClientsByValue(t *testing.T) {
	clients := []models.Client{
		{ID: "1", Value: 100},
		{ID: "2", Value: 0},
		{ID: "3", Value: 500},
		{ID: "4", Value: 250},
	}
	got := TopClientsByValue(clients, 2)
	if len(got) != 2 {
		t.Fatalf("top = %d, want 2", len(got))
	}
	if got[0].ID != "3" || got[1].ID != "4" {
		t.Errorf("top order = %s,%s, want 3,4", got[0].ID, got[1].ID)
	}

	// Zero-value clients are never listed even with room to spare.
	all := TopClientsByValue(clients, 10)
	if len(all) != 3 {
		t.Errorf("zero-value clients should be excluded, got %d", len(all))
	}
}

func TestRecentActivity_MergeAndOrder(t *testing.T) {
	clients := []models.Client{
		{Name: "Ana", Notes: []models.Note{
			{Text: "newest note", Date: "2024-01-10 15:00"},
		}},
		{Name: "Bob", Tasks: []models.Task{
			{Description: "older task", CreatedAt: "2024-01-08"},
			{Description: "newer task", CreatedAt: "2024-01-12", Completed: true},
		}},
	}
	feed := RecentActivity(clients, 10)
	if len(feed) != 3 {
		t.Fatalf("feed = %d entries, want 3", len(feed))
	}
	if feed[0].Content != "newer task" || feed[0].Type != "Task" || !feed[0].Completed {
		t.Errorf("feed[0] = %+v, want newer task", feed[0])
	}
	if feed[1].Content != "newest note" || feed[1].Type != "Note" {
		t.Errorf("feed[1] = %+v, want newest note", feed[1])
	}
	if feed[2].Content != "older task" {
		t.Errorf("feed[2] = %+v, want older task", feed[2])
	}
}

func TestRecentActivity_TruncatesNoteText(t *testing.T) {
	long := strings.Repeat("x", 80)
	clients := []models.Client{
		{Name: "Ana", Notes: []models.Note{{Text: long, Date: "2024-01-10 15:00"}}},
	}
	feed := RecentActivity(clients, 10)
	want := strings.Repeat("x", 50) + "..."
	if feed[0].Content != want {
		t.Errorf("content = %q (len %d), want 50 chars plus ellipsis", feed[0].Content, len(feed[0].Content))
	}
}

func TestRecentActivity_Limit(t *testing.T) {
	var clients []models.Client
	for i := 0; i < 15; i++ {
		clients = append(clients, models.Client{
			Name:  "C",
			Tasks: []models.Task{{Description: "t", CreatedAt: "2024-01-01"}},
		})
	}
	if got := RecentActivity(clients, 0); len(got) != 10 {
		t.Errorf("default limit = %d, want 10", len(got))
	}
	if got := RecentActivity(clients, 3); len(got) != 3 {
		t.Errorf("limit 3 = %d", len(got))
	}
}
