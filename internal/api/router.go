package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/crm"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// idx may be nil (search reports unavailability); broker may be nil
// (no SSE endpoint, no event publishing).
func NewRouter(svc *crm.Service, idx index.ClientIndex, authEnabled bool, token string, broker *sse.Broker) chi.Router {
	h := NewHandler(svc, idx, broker)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Clients CRUD.
	r.Get("/clients", h.ListClients)
	r.Post("/clients", h.CreateClient)
	r.Get("/clients/{id}", h.GetClient)
	r.Put("/clients/{id}", h.UpdateClient)
	r.Delete("/clients/{id}", h.DeleteClient)

	// Tasks.
	r.Post("/clients/{id}/tasks", h.CreateTask)
	r.Patch("/clients/{id}/tasks/{taskID}", h.SetTaskCompleted)
	r.Delete("/clients/{id}/tasks/{taskID}", h.DeleteTask)
	r.Get("/tasks", h.ListTasks)
	r.Post("/tasks/clear", h.ClearTasks)

	// Notes.
	r.Post("/clients/{id}/notes", h.CreateNote)
	r.Delete("/clients/{id}/notes/{noteID}", h.DeleteNote)

	// Dashboard and search.
	r.Get("/dashboard", h.Dashboard)
	r.Get("/search", h.Search)
	r.Get("/options", h.Options)

	// Data management.
	r.Get("/export/csv", h.ExportCSV)
	r.Get("/backup", h.Backup)
	r.Post("/restore", h.Restore)
	r.Post("/reset", h.Reset)

	// SSE endpoint (protected by the same auth middleware).
	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	return r
}
