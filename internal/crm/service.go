// Package crm implements the client repository and its task and note
// subsystems. Every mutating operation follows the same cycle: load
// the document, mutate in memory, persist the whole document. On a
// save failure the in-memory mutation is discarded with it, so an
// operation either fully succeeds or leaves persisted state unchanged.
package crm

import (
	"encoding/json"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/export"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/query"
	"github.com/starford/raido/internal/storage"
)

// followUpDefaultDays is added to "today" when a new client carries
// no follow-up date.
const followUpDefaultDays = 7

// Service coordinates all mutations of the client collection.
type Service struct {
	store storage.Provider
	now   func() time.Time
}

// NewService creates a new CRM service over the given record store.
func NewService(store storage.Provider) *Service {
	return &Service{store: store, now: time.Now}
}

// ClientFields carries the caller-editable fields of a client record.
type ClientFields struct {
	Name         string   `json:"name"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	Status       string   `json:"status"`
	Value        int      `json:"value"`
	Source       string   `json:"source"`
	Tags         []string `json:"tags"`
	FollowUpDate string   `json:"follow_up_date"`
}

// Validate checks the required fields and date shape.
func (f ClientFields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required),
		validation.Field(&f.Phone, validation.Required),
		validation.Field(&f.Email, validation.Required),
		validation.Field(&f.Value, validation.Min(0)),
		validation.Field(&f.FollowUpDate, validation.Date(models.DateLayout)),
	)
}

// AddClient validates fields, mints an id, applies defaults, appends
// the client, and persists.
func (s *Service) AddClient(fields ClientFields) (*models.Client, error) {
	if err := fields.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	now := s.now()
	c := models.Client{
		ID:           models.NewID(),
		Name:         fields.Name,
		Phone:        fields.Phone,
		Email:        fields.Email,
		Status:       fields.Status,
		Value:        fields.Value,
		Source:       fields.Source,
		Tags:         fields.Tags,
		DateAdded:    now.Format(models.DateLayout),
		FollowUpDate: fields.FollowUpDate,
		Tasks:        []models.Task{},
		Notes:        []models.Note{},
	}
	if c.Status == "" {
		c.Status = models.StatusLead
	}
	if c.Source == "" {
		c.Source = models.SourceDirect
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.FollowUpDate == "" {
		c.FollowUpDate = now.AddDate(0, 0, followUpDefaultDays).Format(models.DateLayout)
	}

	doc.Clients = append(doc.Clients, c)
	if err := s.store.Save(doc); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateClient overwrites the editable fields of an existing client.
// ID and DateAdded never change.
func (s *Service) UpdateClient(id string, fields ClientFields) (*models.Client, error) {
	if err := fields.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	c := doc.FindClient(id)
	if c == nil {
		return nil, fmt.Errorf("client %s: %w", id, apperr.ErrNotFound)
	}

	c.Name = fields.Name
	c.Phone = fields.Phone
	c.Email = fields.Email
	c.Status = fields.Status
	c.Value = fields.Value
	c.Source = fields.Source
	c.FollowUpDate = fields.FollowUpDate
	if fields.Tags != nil {
		c.Tags = fields.Tags
	}

	if err := s.store.Save(doc); err != nil {
		return nil, err
	}
	updated := *c
	return &updated, nil
}

// DeleteClient removes a client and everything it owns. confirmName
// must exactly match the client's current name; this is the guard
// against accidental deletion.
func (s *Service) DeleteClient(id, confirmName string) error {
	doc, err := s.store.Load()
	if err != nil {
		return err
	}
	idx := -1
	for i := range doc.Clients {
		if doc.Clients[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("client %s: %w", id, apperr.ErrNotFound)
	}
	if doc.Clients[idx].Name != confirmName {
		return fmt.Errorf("confirmation name mismatch: %w", apperr.ErrConflict)
	}

	doc.Clients = append(doc.Clients[:idx], doc.Clients[idx+1:]...)
	return s.store.Save(doc)
}

// GetClient returns a copy of the client with the given id.
func (s *Service) GetClient(id string) (*models.Client, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	c := doc.FindClient(id)
	if c == nil {
		return nil, fmt.Errorf("client %s: %w", id, apperr.ErrNotFound)
	}
	found := *c
	return &found, nil
}

// ListOptions selects and orders clients for listing.
type ListOptions struct {
	Search   string
	Statuses []string
	Tags     []string
	Sort     string
}

// ListClients applies search, status and tag filters, then sorts.
func (s *Service) ListClients(opts ListOptions) ([]models.Client, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	out := query.Search(doc.Clients, opts.Search)
	out = query.FilterByStatus(out, opts.Statuses)
	out = query.FilterByTags(out, opts.Tags)
	out = query.SortClients(out, opts.Sort)
	return nonNilClients(out), nil
}

// AddTask appends a task to a client. An empty priority defaults to
// Medium; a due date, when present, must be a YYYY-MM-DD string.
func (s *Service) AddTask(clientID, description, priority, dueDate string) (*models.Task, error) {
	if err := validation.Validate(description, validation.Required); err != nil {
		return nil, invalidInput(fmt.Errorf("description: %v", err))
	}
	if err := validation.Validate(dueDate, validation.Date(models.DateLayout)); err != nil {
		return nil, invalidInput(fmt.Errorf("due_date: %v", err))
	}

	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	c := doc.FindClient(clientID)
	if c == nil {
		return nil, fmt.Errorf("client %s: %w", clientID, apperr.ErrNotFound)
	}

	if priority == "" {
		priority = models.PriorityMedium
	}
	t := models.Task{
		ID:          models.NewID(),
		Description: description,
		Completed:   false,
		Priority:    priority,
		DueDate:     dueDate,
		CreatedAt:   s.now().Format(models.DateLayout),
	}
	c.Tasks = append(c.Tasks, t)

	if err := s.store.Save(doc); err != nil {
		return nil, err
	}
	return &t, nil
}

// SetTaskCompleted sets the completion flag of a task.
func (s *Service) SetTaskCompleted(clientID, taskID string, completed bool) error {
	doc, err := s.store.Load()
	if err != nil {
		return err
	}
	c := doc.FindClient(clientID)
	if c == nil {
		return fmt.Errorf("client %s: %w", clientID, apperr.ErrNotFound)
	}
	t := c.FindTask(taskID)
	if t == nil {
		return fmt.Errorf("task %s: %w", taskID, apperr.ErrNotFound)
	}
	t.Completed = completed
	return s.store.Save(doc)
}

// DeleteTask removes a task from a client.
func (s *Service) DeleteTask(clientID, taskID string) error {
	doc, err := s.store.Load()
	if err != nil {
		return err
	}
	c := doc.FindClient(clientID)
	if c == nil {
		return fmt.Errorf("client %s: %w", clientID, apperr.ErrNotFound)
	}
	idx := -1
	for i := range c.Tasks {
		if c.Tasks[i].ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("task %s: %w", taskID, apperr.ErrNotFound)
	}
	c.Tasks = append(c.Tasks[:idx], c.Tasks[idx+1:]...)
	return s.store.Save(doc)
}

// ListAllTasks flattens tasks across all clients with the given
// filter and sort (see the query package for accepted values).
func (s *Service) ListAllTasks(filter, sortKey string) ([]query.TaskEntry, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	out := query.Tasks(doc.Clients, filter, sortKey, s.now())
	if out == nil {
		out = []query.TaskEntry{}
	}
	return out, nil
}

// ClearAllTasks empties every client's task list in one persisted
// operation. Destructive and irreversible.
func (s *Service) ClearAllTasks() error {
	doc, err := s.store.Load()
	if err != nil {
		return err
	}
	for i := range doc.Clients {
		doc.Clients[i].Tasks = []models.Task{}
	}
	return s.store.Save(doc)
}

// AddNote inserts a note at position 0 of the client's note list;
// most-recent-first ordering is a structural invariant.
func (s *Service) AddNote(clientID, text string) (*models.Note, error) {
	if err := validation.Validate(text, validation.Required); err != nil {
		return nil, invalidInput(fmt.Errorf("text: %v", err))
	}

	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	c := doc.FindClient(clientID)
	if c == nil {
		return nil, fmt.Errorf("client %s: %w", clientID, apperr.ErrNotFound)
	}

	n := models.Note{
		ID:   models.NewID(),
		Text: text,
		Date: s.now().Format(models.TimestampLayout),
	}
	c.Notes = append([]models.Note{n}, c.Notes...)

	if err := s.store.Save(doc); err != nil {
		return nil, err
	}
	return &n, nil
}

// DeleteNote removes a note from a client.
func (s *Service) DeleteNote(clientID, noteID string) error {
	doc, err := s.store.Load()
	if err != nil {
		return err
	}
	c := doc.FindClient(clientID)
	if c == nil {
		return fmt.Errorf("client %s: %w", clientID, apperr.ErrNotFound)
	}
	idx := -1
	for i := range c.Notes {
		if c.Notes[i].ID == noteID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("note %s: %w", noteID, apperr.ErrNotFound)
	}
	c.Notes = append(c.Notes[:idx], c.Notes[idx+1:]...)
	return s.store.Save(doc)
}

// Metrics computes the dashboard aggregates over the current document.
func (s *Service) Metrics() (query.Metrics, error) {
	doc, err := s.store.Load()
	if err != nil {
		return query.Metrics{}, err
	}
	return query.DashboardMetrics(doc.Clients), nil
}

// TopClients returns the top-n clients by value (value > 0 only).
func (s *Service) TopClients(n int) ([]models.Client, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return nonNilClients(query.TopClientsByValue(doc.Clients, n)), nil
}

// RecentActivity returns the merged note/task feed, newest first.
func (s *Service) RecentActivity(n int) ([]query.Activity, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	out := query.RecentActivity(doc.Clients, n)
	if out == nil {
		out = []query.Activity{}
	}
	return out, nil
}

// ExportCSV renders every client as CSV in stored order.
func (s *Service) ExportCSV() (string, error) {
	doc, err := s.store.Load()
	if err != nil {
		return "", err
	}
	return export.CSV(doc.Clients)
}

// Backup returns the persisted document byte-for-byte along with its
// timestamp-suffixed download filename.
func (s *Service) Backup() ([]byte, string, error) {
	raw, err := s.store.ReadRaw()
	if err != nil {
		return nil, "", err
	}
	return raw, export.BackupFilename(s.now()), nil
}

// Restore overwrites the store wholesale with an uploaded document.
// The payload must be valid JSON; beyond that only the minimal shape
// coercion applies, so a foreign document fully replaces existing
// data. Destructive by design.
func (s *Service) Restore(raw []byte) error {
	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return invalidInput(fmt.Errorf("restore: %v", err))
	}
	doc.Normalize(s.now())
	return s.store.Save(&doc)
}

// Reset replaces the document with an empty client sequence.
// Destructive and irreversible.
func (s *Service) Reset() error {
	return s.store.Save(models.NewDocument())
}

func invalidInput(err error) error {
	return fmt.Errorf("%v: %w", err, apperr.ErrInvalidInput)
}

func nonNilClients(cs []models.Client) []models.Client {
	if cs == nil {
		return []models.Client{}
	}
	return cs
}
