package handlers

import (
	"net/http"
	"strconv"

	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
	"github.com/andrei-iacobb/neatplan-sub001/internal/repo"
)

// ActivityHandler serves the completion feed.
type ActivityHandler struct {
	Logs *repo.CompletionLogRepo
}

// ListActivity returns completion logs, newest first.
// Query: kind (room, equipment), assignment_id, user_id, limit, offset.
func (h *ActivityHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := page(r, 50, 200)
	f := repo.CompletionFilter{Limit: limit, Offset: offset}

	switch k := models.SubjectKind(q.Get("kind")); k {
	case "":
	case models.SubjectRoom, models.SubjectEquipment:
		f.Kind = k
	default:
		JSONValidationError(w, "validation failed", map[string]string{"kind": "must be room or equipment"}, http.StatusBadRequest)
		return
	}
	if v := q.Get("assignment_id"); v != "" {
		f.AssignmentID, _ = strconv.Atoi(v)
	}
	if v := q.Get("user_id"); v != "" {
		f.UserID, _ = strconv.Atoi(v)
	}

	logs, err := h.Logs.List(r.Context(), f)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []models.CompletionLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}
