package api

import (
	"github.com/starford/raido/internal/crm"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/query"
)

// ClientPayload is the request body for creating or updating a client
// (aliased from the domain layer).
type ClientPayload = crm.ClientFields

// CreateTaskRequest is the request body for adding a task.
type CreateTaskRequest struct {
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

// SetTaskCompletedRequest is the request body for toggling a task.
// Completed is a pointer so an absent field is distinguishable from
// an explicit false.
type SetTaskCompletedRequest struct {
	Completed *bool `json:"completed"`
}

// CreateNoteRequest is the request body for adding a note.
type CreateNoteRequest struct {
	Text string `json:"text"`
}

// ClientListResponse wraps client listings.
type ClientListResponse struct {
	Clients []models.Client `json:"clients"`
	Total   int             `json:"total"`
}

// TaskListResponse wraps the flattened cross-client task list.
type TaskListResponse struct {
	Tasks []query.TaskEntry `json:"tasks"`
	Total int               `json:"total"`
}

// DashboardResponse bundles everything a dashboard view renders.
type DashboardResponse struct {
	Metrics        query.Metrics    `json:"metrics"`
	TopClients     []models.Client  `json:"top_clients"`
	RecentActivity []query.Activity `json:"recent_activity"`
}

// SearchResponse wraps full-text search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// OptionsResponse lists the recommended vocabularies for form
// enumerations. These are suggestions, not enforced schema.
type OptionsResponse struct {
	Statuses   []string `json:"statuses"`
	Sources    []string `json:"sources"`
	Priorities []string `json:"priorities"`
	Tags       []string `json:"tags"`
}

func optionVocabularies() OptionsResponse {
	return OptionsResponse{
		Statuses:   models.DefaultStatuses,
		Sources:    models.DefaultSources,
		Priorities: models.DefaultPriorities,
		Tags:       models.DefaultTags,
	}
}
