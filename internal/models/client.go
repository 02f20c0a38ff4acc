// Package models defines the domain types for Raido.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Date layouts used throughout the persisted document. Both are
// fixed-width and zero-padded, so lexicographic comparison on the
// stored strings orders chronologically.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04"
)

// Recommended status vocabulary. Statuses are an open set: unknown
// values load without error and aggregate under their own label.
const (
	StatusLead     = "Lead"
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Recommended lead-source vocabulary. SourceDirect doubles as the
// default for records that carry no source at all.
const (
	SourceDirect   = "Direct"
	SourceReferral = "Referral"
	SourceWebsite  = "Website"
	SourceSocial   = "Social Media"
	SourceEvent    = "Event"
	SourceOther    = "Other"
)

// Task priorities.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Default option vocabularies offered to presentation collaborators.
// These are suggestions, not enforced schema.
var (
	DefaultStatuses   = []string{StatusLead, StatusActive, StatusInactive}
	DefaultSources    = []string{SourceDirect, SourceReferral, SourceWebsite, SourceSocial, SourceEvent, SourceOther}
	DefaultPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
	DefaultTags       = []string{"VIP", "New", "Priority", "Follow-up", "Onboarding", "Long-term"}
)

// Document is the single persisted structure holding the entire
// client collection.
type Document struct {
	Clients []Client `json:"clients"`
}

// Client is a customer/lead record and the aggregation root for its
// tasks and notes. ID and DateAdded are set once at creation and
// never change.
type Client struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	Status       string   `json:"status"`
	Value        int      `json:"value"`
	Source       string   `json:"source"`
	Tags         []string `json:"tags"`
	DateAdded    string   `json:"date_added"`
	FollowUpDate string   `json:"follow_up_date"`
	Tasks        []Task   `json:"tasks"`
	Notes        []Note   `json:"notes"`
}

// Task is a unit of work attached to a client. The JSON key for the
// description is "task" for compatibility with existing documents.
type Task struct {
	ID          string `json:"id"`
	Description string `json:"task"`
	Completed   bool   `json:"completed"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
	CreatedAt   string `json:"created_at"`
}

// Note is a timestamped text entry attached to a client. The newest
// note is always at position 0.
type Note struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Date string `json:"date"`
}

// NewID mints an 8-character opaque token.
func NewID() string {
	return uuid.NewString()[:8]
}

// NewDocument returns an empty, well-formed document.
func NewDocument() *Document {
	return &Document{Clients: []Client{}}
}

// DecodeDocument parses raw JSON into a healed document. A malformed
// payload or one without a client sequence decodes to an empty
// document rather than failing; record-level gaps are filled by
// Normalize. now supplies the healing date for missing date_added.
func DecodeDocument(data []byte, now time.Time) *Document {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return NewDocument()
	}
	doc.Normalize(now)
	return &doc
}

// Normalize heals every client in place: missing id, date_added,
// source, follow_up_date, tags, tasks and notes get their documented
// defaults, and tasks loaded without an id have one minted.
func (d *Document) Normalize(now time.Time) {
	if d.Clients == nil {
		d.Clients = []Client{}
	}
	for i := range d.Clients {
		d.Clients[i].normalize(now)
	}
}

func (c *Client) normalize(now time.Time) {
	if c.ID == "" {
		c.ID = NewID()
	}
	if c.DateAdded == "" {
		c.DateAdded = now.Format(DateLayout)
	}
	if c.Source == "" {
		c.Source = SourceDirect
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Tasks == nil {
		c.Tasks = []Task{}
	}
	if c.Notes == nil {
		c.Notes = []Note{}
	}
	for j := range c.Tasks {
		if c.Tasks[j].ID == "" {
			c.Tasks[j].ID = NewID()
		}
		if c.Tasks[j].Priority == "" {
			c.Tasks[j].Priority = PriorityMedium
		}
	}
	for j := range c.Notes {
		if c.Notes[j].ID == "" {
			c.Notes[j].ID = NewID()
		}
	}
}

// FindClient returns a pointer to the client with the given id, or
// nil when absent.
func (d *Document) FindClient(id string) *Client {
	for i := range d.Clients {
		if d.Clients[i].ID == id {
			return &d.Clients[i]
		}
	}
	return nil
}

// FindTask returns a pointer to the task with the given id, or nil.
func (c *Client) FindTask(id string) *Task {
	for i := range c.Tasks {
		if c.Tasks[i].ID == id {
			return &c.Tasks[i]
		}
	}
	return nil
}
