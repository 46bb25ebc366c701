package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/crucial707/reminders/internal/repo"
)

// AuditHandler serves audit log endpoints.
type AuditHandler struct {
	Repo repo.AuditStore
	Log  *zap.Logger
}

// ListAudit returns recent audit log entries, newest first. Query: limit (default 50, max 200), offset (default 0).
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r, 50, 200)

	entries, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		h.Log.Error("list audit", zap.Error(err))
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// pageParams reads limit and offset, falling back to defaults on missing or out-of-range values.
func pageParams(r *http.Request, defLimit, maxLimit int) (int, int) {
	limit, offset := defLimit, 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= maxLimit {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}
	return limit, offset
}
