package api

import (
	"net/http"
	"strconv"
)

// Dashboard handles GET /api/dashboard: aggregates, top clients by
// value, and the recent-activity feed in one payload.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	metrics, err := h.svc.Metrics()
	if err != nil {
		respondError(w, err)
		return
	}
	top, err := h.svc.TopClients(n)
	if err != nil {
		respondError(w, err)
		return
	}
	activity, err := h.svc.RecentActivity(n)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DashboardResponse{
		Metrics:        metrics,
		TopClients:     top,
		RecentActivity: activity,
	})
}

// Search handles GET /api/search?q=&limit= — full-text search over
// names, contact fields, tags, notes, and task descriptions via the
// SQLite index.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	if h.idx == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("search index unavailable"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.idx.Search(q, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
