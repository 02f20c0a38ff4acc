package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/crm"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/sse"
)

const maxBodyBytes = 1 << 20 // 1 MB

// Handler holds API route handlers.
type Handler struct {
	svc    *crm.Service
	idx    index.ClientIndex
	broker *sse.Broker
}

// NewHandler creates a new Handler. idx and broker may be nil; the
// search endpoint then reports unavailability and no events are
// published.
func NewHandler(svc *crm.Service, idx index.ClientIndex, broker *sse.Broker) *Handler {
	return &Handler{svc: svc, idx: idx, broker: broker}
}

// publish emits a record event when a broker is wired.
func (h *Handler) publish(kind, id string) {
	if h.broker != nil {
		h.broker.PublishRecordEvent(kind, id)
	}
}

// respondError maps domain sentinels to HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrStorageUnavailable):
		slog.Error("storage unavailable", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, errorBody("storage unavailable"))
	default:
		slog.Error("internal error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListClients handles GET /api/clients with optional q, status, tag,
// and sort query parameters (status and tag repeat).
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clients, err := h.svc.ListClients(crm.ListOptions{
		Search:   q.Get("q"),
		Statuses: q["status"],
		Tags:     q["tag"],
		Sort:     q.Get("sort"),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ClientListResponse{Clients: clients, Total: len(clients)})
}

// CreateClient handles POST /api/clients.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req ClientPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	client, err := h.svc.AddClient(req)
	if err != nil {
		respondError(w, err)
		return
	}
	h.publish(sse.EventClientCreated, client.ID)
	writeJSON(w, http.StatusCreated, client)
}

// GetClient handles GET /api/clients/{id}.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	client, err := h.svc.GetClient(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// UpdateClient handles PUT /api/clients/{id}.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	id := chi.URLParam(r, "id")
	var req ClientPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	client, err := h.svc.UpdateClient(id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	h.publish(sse.EventClientUpdated, id)
	writeJSON(w, http.StatusOK, client)
}

// DeleteClient handles DELETE /api/clients/{id}?confirm_name=<name>.
// The confirm_name parameter must exactly match the client's current
// name; this is the guard against accidental deletion.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	confirmName := r.URL.Query().Get("confirm_name")
	if err := h.svc.DeleteClient(id, confirmName); err != nil {
		respondError(w, err)
		return
	}
	h.publish(sse.EventClientDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

// Options handles GET /api/options: the recommended form vocabularies.
func (h *Handler) Options(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, optionVocabularies())
}
