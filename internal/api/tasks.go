package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/sse"
)

// CreateTask handles POST /api/clients/{id}/tasks.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	clientID := chi.URLParam(r, "id")
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	task, err := h.svc.AddTask(clientID, req.Description, req.Priority, req.DueDate)
	if err != nil {
		respondError(w, err)
		return
	}
	h.publish(sse.EventTasksChanged, clientID)
	writeJSON(w, http.StatusCreated, task)
}

// SetTaskCompleted handles PATCH /api/clients/{id}/tasks/{taskID}.
func (h *Handler) SetTaskCompleted(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	clientID := chi.URLParam(r, "id")
	taskID := chi.URLParam(r, "taskID")
	var req SetTaskCompletedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Completed == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("completed is required"))
		return
	}
	if err := h.svc.SetTaskCompleted(clientID, taskID, *req.Completed); err != nil {
		respondError(w, err)
		return
	}
	h.publish(sse.EventTasksChanged, clientID)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTask handles DELETE /api/clients/{id}/tasks/{taskID}.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	taskID := chi.URLParam(r, "taskID")
	if err := h.svc.DeleteTask(clientID, taskID); err != nil {
		respondError(w, err)
		return
	}
	h.publish(sse.EventTasksChanged, clientID)
	w.WriteHeader(http.StatusNoContent)
}

// ListTasks handles GET /api/tasks?filter=&sort= — the flattened
// cross-client task list.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tasks, err := h.svc.ListAllTasks(q.Get("filter"), q.Get("sort"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TaskListResponse{Tasks: tasks, Total: len(tasks)})
}

// ClearTasks handles POST /api/tasks/clear?confirm=true. The confirm
// parameter carries the presentation layer's double-confirm state;
// without it the operation is refused.
func (h *Handler) ClearTasks(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeJSON(w, http.StatusConflict, errorBody("confirmation required: pass confirm=true"))
		return
	}
	if err := h.svc.ClearAllTasks(); err != nil {
		respondError(w, err)
		return
	}
	h.publish(sse.EventTasksChanged, "")
	w.WriteHeader(http.StatusNoContent)
}
