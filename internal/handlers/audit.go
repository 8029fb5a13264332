package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/andrei-iacobb/neatplan-sub001/internal/middleware"
	"github.com/andrei-iacobb/neatplan-sub001/internal/repo"
)

// AuditHandler serves GET /audit.
type AuditHandler struct {
	Repo *repo.AuditRepo
}

// ListAudit returns audit entries newest first.
// Query: resource_type, resource_id, user_id, limit (default 50, max 200), offset.
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := page(r, 50, 200)
	f := repo.AuditFilter{ResourceType: q.Get("resource_type"), Limit: limit, Offset: offset}
	for name, dst := range map[string]*int{"resource_id": &f.ResourceID, "user_id": &f.UserID} {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				JSONValidationError(w, "validation failed", map[string]string{name: "must be a positive integer"}, http.StatusBadRequest)
				return
			}
			*dst = n
		}
	}

	entries, err := h.Repo.List(r.Context(), f)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	total, err := h.Repo.Count(r.Context(), f)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: entries, Total: total, Limit: limit, Offset: offset})
}

// recordAudit logs an action by the authenticated user. Failures are logged only.
func recordAudit(ctx context.Context, ar *repo.AuditRepo, action, resourceType string, resourceID int, details string) {
	if ar == nil {
		return
	}
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		return
	}
	if err := ar.Log(ctx, userID, action, resourceType, resourceID, details); err != nil {
		slog.WarnContext(ctx, "audit log failed", "error", err)
	}
}
