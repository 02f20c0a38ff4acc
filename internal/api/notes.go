package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/sse"
)

// CreateNote handles POST /api/clients/{id}/notes. The new note is
// inserted at position 0 of the client's note list.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	clientID := chi.URLParam(r, "id")
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	note, err := h.svc.AddNote(clientID, req.Text)
	if err != nil {
		respondError(w, err)
		return
	}
	h.publish(sse.EventNotesChanged, clientID)
	writeJSON(w, http.StatusCreated, note)
}

// DeleteNote handles DELETE /api/clients/{id}/notes/{noteID}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	noteID := chi.URLParam(r, "noteID")
	if err := h.svc.DeleteNote(clientID, noteID); err != nil {
		respondError(w, err)
		return
	}
	h.publish(sse.EventNotesChanged, clientID)
	w.WriteHeader(http.StatusNoContent)
}
