package crm

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/query"
	"github.com/starford/raido/internal/testutil"
)

var fixedNow = time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC)

func testService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(testutil.TestStore(t))
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestAddClient_Defaults(t *testing.T) {
	svc := testService(t)

	c, err := svc.AddClient(ClientFields{Name: "Ana", Phone: "555-1111", Email: "ana@x.com"})
	if err != nil {
		t.Fatalf("AddClient: %v", err)
	}
	if len(c.ID) != 8 {
		t.Errorf("id = %q, want 8-character token", c.ID)
	}
	if c.Status != models.StatusLead {
		t.Errorf("status = %q, want Lead", c.Status)
	}
	if c.Value != 0 {
		t.Errorf("value = %d, want 0", c.Value)
	}
	if c.Source != models.SourceDirect {
		t.Errorf("source = %q, want Direct", c.Source)
	}
	if c.DateAdded != "2024-01-05" {
		t.Errorf("date_added = %q, want 2024-01-05", c.DateAdded)
	}
	if c.FollowUpDate != "2024-01-12" {
		t.Errorf("follow_up_date = %q, want one week out", c.FollowUpDate)
	}
	if c.Tags == nil || len(c.Tags) != 0 {
		t.Errorf("tags = %v, want empty slice", c.Tags)
	}
	if len(c.Tasks) != 0 || len(c.Notes) != 0 {
		t.Error("new client should start with no tasks or notes")
	}
}

func TestAddClient_Validation(t *testing.T) {
	svc := testService(t)

	cases := []struct {
		name   string
		fields ClientFields
	}{
		{"missing name", ClientFields{Phone: "555", Email: "a@x.com"}},
		{"missing phone", ClientFields{Name: "Ana", Email: "a@x.com"}},
		{"missing email", ClientFields{Name: "Ana", Phone: "555"}},
		{"negative value", ClientFields{Name: "Ana", Phone: "555", Email: "a@x.com", Value: -1}},
		{"bad follow-up date", ClientFields{Name: "Ana", Phone: "555", Email: "a@x.com", FollowUpDate: "Jan 5"}},
	}
	for _, tc := range cases {
		if _, err := svc.AddClient(tc.fields); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("%s: err = %v, want ErrInvalidInput", tc.name, err)
		}
	}
}

func TestGetClient(t *testing.T) {
	svc := testService(t)
	created, err := svc.AddClient(ClientFields{Name: "Ana", Phone: "555-1111", Email: "ana@x.com"})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.GetClient(created.ID)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if got.ID != created.ID || got.Name != "Ana" || got.Phone != "555-1111" {
		t.Errorf("round-trip mismatch: %+v", got)
	}

	if _, err := svc.GetClient("missing1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing client err = %v, want ErrNotFound", err)
	}
}

func TestUpdateClient(t *testing.T) {
	svc := testService(t)
	created, _ := svc.AddClient(ClientFields{Name: "Ana", Phone: "555-1111", Email: "ana@x.com", Tags: []string{"VIP"}})

	updated, err := svc.UpdateClient(created.ID, ClientFields{
		Name:   "Ana Torres",
		Phone:  "555-9999",
		Email:  "ana@x.com",
		Status: models.StatusActive,
		Value:  1200,
	})
	if err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	if updated.ID != created.ID {
		t.Error("id must never change on update")
	}
	if updated.DateAdded != created.DateAdded {
		t.Error("date_added must never change on update")
	}
	if updated.Name != "Ana Torres" || updated.Value != 1200 {
		t.Errorf("updated = %+v", updated)
	}
	// Nil tags in the update leaves existing tags alone.
	if len(updated.Tags) != 1 || updated.Tags[0] != "VIP" {
		t.Errorf("tags = %v, want existing tags kept", updated.Tags)
	}

	if _, err := svc.UpdateClient("missing1", ClientFields{Name: "X", Phone: "1", Email: "x@x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing client err = %v, want ErrNotFound", err)
	}
}

func TestDeleteClient_ConfirmGuard(t *testing.T) {
	svc := testService(t)
	created, _ := svc.AddClient(ClientFields{Name: "Ana", Phone: "555-1111", Email: "ana@x.com"})

	if err := svc.DeleteClient(created.ID, "wrong name"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("name mismatch err = %v, want ErrConflict", err)
	}
	// Client survives a refused delete.
	if _, err := svc.GetClient(created.ID); err != nil {
		t.Fatalf("client should survive refused delete: %v", err)
	}

	if err := svc.DeleteClient(created.ID, "Ana"); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}
	if _, err := svc.GetClient(created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("deleted client err = %v, want ErrNotFound", err)
	}

	if err := svc.DeleteClient("missing1", "Ana"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing client err = %v, want ErrNotFound", err)
	}
}

func TestListClients_FiltersAndSort(t *testing.T) {
	svc := testService(t)
	_, _ = svc.AddClient(ClientFields{Name: "Ana", Phone: "1", Email: "ana@x.com", Status: models.StatusActive, Tags: []string{"VIP"}, Value: 100})
	_, _ = svc.AddClient(ClientFields{Name: "Bob", Phone: "2", Email: "bob@x.com", Value: 300})
	_, _ = svc.AddClient(ClientFields{Name: "Mia", Phone: "3", Email: "mia@x.com", Status: models.StatusActive, Value: 200})

	active, err := svc.ListClients(ListOptions{Statuses: []string{models.StatusActive}})
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 2 {
		t.Errorf("active = %d, want 2", len(active))
	}

	vip, _ := svc.ListClients(ListOptions{Tags: []string{"VIP"}})
	if len(vip) != 1 || vip[0].Name != "Ana" {
		t.Errorf("vip = %+v", vip)
	}

	byValue, _ := svc.ListClients(ListOptions{Sort: query.SortValue})
	if byValue[0].Name != "Bob" || byValue[2].Name != "Ana" {
		t.Errorf("value sort = %s..%s", byValue[0].Name, byValue[2].Name)
	}

	none, _ := svc.ListClients(ListOptions{Search: "zzz"})
	if none == nil || len(none) != 0 {
		t.Errorf("no-match list should be an empty slice, got %v", none)
	}
}

func TestTaskLifecycle(t *testing.T) {
	svc := testService(t)
	c, _ := svc.AddClient(ClientFields{Name: "Ana", Phone: "555-1111", Email: "ana@x.com"})

	task, err := svc.AddTask(c.ID, "Call back", models.PriorityHigh, "2024-01-05")
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if task.ID == "" || task.Completed {
		t.Errorf("new task = %+v", task)
	}
	if task.CreatedAt != "2024-01-05" {
		t.Errorf("created_at = %q", task.CreatedAt)
	}

	pending, err := svc.ListAllTasks(query.TaskFilterPending, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ClientName != "Ana" || pending[0].Task.Description != "Call back" {
		t.Fatalf("pending = %+v", pending)
	}

	dueToday, _ := svc.ListAllTasks(query.TaskFilterDueToday, "")
	if len(dueToday) != 1 {
		t.Errorf("due_today = %d, want 1", len(dueToday))
	}

	if err := svc.SetTaskCompleted(c.ID, task.ID, true); err != nil {
		t.Fatalf("SetTaskCompleted: %v", err)
	}
	completed, _ := svc.ListAllTasks(query.TaskFilterCompleted, "")
	if len(completed) != 1 {
		t.Errorf("completed = %d, want 1", len(completed))
	}
	pending, _ = svc.ListAllTasks(query.TaskFilterPending, "")
	if len(pending) != 0 {
		t.Errorf("pending after completion = %d, want 0", len(pending))
	}

	if err := svc.DeleteTask(c.ID, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	all, _ := svc.ListAllTasks(query.TaskFilterAll, "")
	if len(all) != 0 {
		t.Errorf("tasks after delete = %d, want 0", len(all))
	}
}

func TestAddTask_DefaultPriorityAndValidation(t *testing.T) {
	svc := testService(t)
	c, _ := svc.AddClient(ClientFields{Name: "Ana", Phone: "555-1111", Email: "ana@x.com"})

	task, err := svc.AddTask(c.ID, "Send proposal", "", "")
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if task.Priority != models.PriorityMedium {
		t.Errorf("priority = %q, want Medium", task.Priority)
	}

	if _, err := svc.AddTask(c.ID, "", "", ""); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("empty description err = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.AddTask(c.ID, "x", "", "not-a-date"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("bad due date err = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.AddTask("missing1", "x", "", ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing client err = %v, want ErrNotFound", err)
	}
}

func TestClearAllTasks(t *testing.T) {
	svc := testService(t)
	a, _ := svc.AddClient(ClientFields{Name: "Ana", Phone: "1", Email: "a@x.com"})
	b, _ := svc.AddClient(ClientFields{Name: "Bob", Phone: "2", Email: "b@x.com"})
	_, _ = svc.AddTask(a.ID, "one", "", "")
	_, _ = svc.AddTask(b.ID, "two", "", "")

	if err := svc.ClearAllTasks(); err != nil {
		t.Fatalf("ClearAllTasks: %v", err)
	}
	all, _ := svc.ListAllTasks(query.TaskFilterAll, "")
	if len(all) != 0 {
		t.Errorf("tasks after clear = %d, want 0", len(all))
	}
	// Clients themselves survive.
	clients, _ := svc.ListClients(ListOptions{})
	if len(clients) != 2 {
		t.Errorf("clients after clear = %d, want 2", len(clients))
	}
}

func TestAddNote_NewestFirst(t *testing.T) {
	svc := testService(t)
	c, _ := svc.AddClient(ClientFields{Name: "Ana", Phone: "555-1111", Email: "ana@x.com"})

	first, err := svc.AddNote(c.ID, "first note")
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if first.Date != "2024-01-05 10:30" {
		t.Errorf("note date = %q", first.Date)
	}
	second, _ := svc.AddNote(c.ID, "second note")

	got, _ := svc.GetClient(c.ID)
	if len(got.Notes) != 2 {
		t.Fatalf("notes = %d, want 2", len(got.Notes))
	}
	if got.Notes[0].ID != second.ID || got.Notes[1].ID != first.ID {
		t.Error("newest note should be at position 0")
	}

	if _, err := svc.AddNote(c.ID, ""); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("empty text err = %v, want ErrInvalidInput", err)
	}

	if err := svc.DeleteNote(c.ID, first.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	got, _ = svc.GetClient(c.ID)
	if len(got.Notes) != 1 || got.Notes[0].ID != second.ID {
		t.Errorf("notes after delete = %+v", got.Notes)
	}
	if err := svc.DeleteNote(c.ID, "missing1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing note err = %v, want ErrNotFound", err)
	}
}

func TestMetricsAndTopClients(t *testing.T) {
	svc := testService(t)
	_, _ = svc.AddClient(ClientFields{Name: "Ana", Phone: "1", Email: "a@x.com", Value: 500})
	_, _ = svc.AddClient(ClientFields{Name: "Bob", Phone: "2", Email: "b@x.com", Status: models.StatusActive, Value: 200})
	_, _ = svc.AddClient(ClientFields{Name: "Mia", Phone: "3", Email: "m@x.com"})

	m, err := svc.Metrics()
	if err != nil {
		t.Fatal(err)
	}
	if m.TotalClients != 3 || m.TotalValue != 700 {
		t.Errorf("metrics = %+v", m)
	}
	if m.StatusCounts[models.StatusLead] != 2 || m.StatusCounts[models.StatusActive] != 1 {
		t.Errorf("status counts = %v", m.StatusCounts)
	}

	top, _ := svc.TopClients(10)
	if len(top) != 2 || top[0].Name != "Ana" {
		t.Errorf("top = %+v", top)
	}
}

func TestRecentActivityFeed(t *testing.T) {
	svc := testService(t)
	c, _ := svc.AddClient(ClientFields{Name: "Ana", Phone: "1", Email: "a@x.com"})
	_, _ = svc.AddNote(c.ID, strings.Repeat("n", 60))
	_, _ = svc.AddTask(c.ID, "Call back", "", "")

	feed, err := svc.RecentActivity(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 2 {
		t.Fatalf("feed = %d entries, want 2", len(feed))
	}
	// Notes carry a timestamp, tasks only a date; the note sorts first.
	if feed[0].Type != "Note" {
		t.Errorf("feed[0].Type = %q, want Note", feed[0].Type)
	}
	if len([]rune(feed[0].Content)) != 53 {
		t.Errorf("note content should be truncated to 50 runes plus ellipsis, got %d", len([]rune(feed[0].Content)))
	}
}

func TestExportCSV(t *testing.T) {
	svc := testService(t)
	out, err := svc.ExportCSV()
	if err != nil {
		t.Fatal(err)
	}
	if out != "ID,Name,Phone,Email,Status,Date Added,Value,Source\n" {
		t.Errorf("empty export = %q", out)
	}

	_, _ = svc.AddClient(ClientFields{Name: "Ana", Phone: "555-1111", Email: "ana@x.com"})
	out, _ = svc.ExportCSV()
	if !strings.Contains(out, "Ana,555-1111,ana@x.com,Lead,2024-01-05,0,Direct") {
		t.Errorf("export missing client row: %q", out)
	}
}

func TestBackup(t *testing.T) {
	svc := testService(t)
	_, _ = svc.AddClient(ClientFields{Name: "Ana", Phone: "1", Email: "a@x.com"})

	raw, filename, err := svc.Backup()
	if err != nil {
		t.Fatal(err)
	}
	if filename != "crm_backup_20240105_103000.json" {
		t.Errorf("filename = %q", filename)
	}
	if !strings.Contains(string(raw), `"Ana"`) {
		t.Error("backup should hold the persisted document")
	}
}

func TestRestore(t *testing.T) {
	svc := testService(t)
	_, _ = svc.AddClient(ClientFields{Name: "Old", Phone: "1", Email: "o@x.com"})

	if err := svc.Restore([]byte("{broken")); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("invalid JSON err = %v, want ErrInvalidInput", err)
	}
	// A refused restore leaves existing data untouched.
	clients, _ := svc.ListClients(ListOptions{})
	if len(clients) != 1 || clients[0].Name != "Old" {
		t.Fatalf("data after refused restore = %+v", clients)
	}

	// A valid foreign document replaces everything, with record gaps healed.
	if err := svc.Restore([]byte(`{"clients":[{"name":"New"},{"name":"Also New"}]}`)); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	clients, _ = svc.ListClients(ListOptions{})
	if len(clients) != 2 {
		t.Fatalf("clients after restore = %d, want 2", len(clients))
	}
	for _, c := range clients {
		if c.ID == "" || c.Source != models.SourceDirect {
			t.Errorf("restored client should be healed: %+v", c)
		}
	}
}

func TestReset(t *testing.T) {
	svc := testService(t)
	_, _ = svc.AddClient(ClientFields{Name: "Ana", Phone: "1", Email: "a@x.com"})

	if err := svc.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	clients, _ := svc.ListClients(ListOptions{})
	if len(clients) != 0 {
		t.Errorf("clients after reset = %d, want 0", len(clients))
	}
}
