package api

import (
	"io"
	"net/http"

	"github.com/starford/raido/internal/sse"
)

// maxRestoreBytes bounds the size of an uploaded backup document.
const maxRestoreBytes = 50 << 20 // 50 MB

// ExportCSV handles GET /api/export/csv: all clients in stored order.
func (h *Handler) ExportCSV(w http.ResponseWriter, _ *http.Request) {
	data, err := h.svc.ExportCSV()
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="crm_clients.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(data))
}

// Backup handles GET /api/backup: a byte-for-byte dump of the
// persisted document with a timestamp-suffixed download filename.
func (h *Handler) Backup(w http.ResponseWriter, _ *http.Request) {
	raw, filename, err := h.svc.Backup()
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// Restore handles POST /api/restore (multipart/form-data, field
// "file"). The uploaded document overwrites the store wholesale after
// the minimal shape coercion; restoring a foreign document fully
// replaces existing data.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRestoreBytes)

	if err := r.ParseMultipartForm(maxRestoreBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
		return
	}

	if err := h.svc.Restore(raw); err != nil {
		respondError(w, err)
		return
	}
	h.publish(sse.EventDocumentReload, "")
	w.WriteHeader(http.StatusNoContent)
}

// Reset handles POST /api/reset?confirm=true: replaces the document
// with an empty client sequence. The confirm parameter carries the
// presentation layer's double-confirm state.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeJSON(w, http.StatusConflict, errorBody("confirmation required: pass confirm=true"))
		return
	}
	if err := h.svc.Reset(); err != nil {
		respondError(w, err)
		return
	}
	h.publish(sse.EventDocumentReload, "")
	w.WriteHeader(http.StatusNoContent)
}
