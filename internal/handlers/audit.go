package handlers

import (
	"net/http"
	"strconv"

	"github.com/crucial707/microblog/internal/app"
	"github.com/crucial707/microblog/internal/middleware"
)

// AuditHandler serves the signed-in user's activity log.
type AuditHandler struct {
	App *app.App
}

// ListActivity returns recent activity of the current user. Query: limit (default 50), offset (default 0).
func (h *AuditHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 200 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	entries, err := h.App.Activity(r.Context(), middleware.CurrentUser(r.Context()), limit, offset)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
