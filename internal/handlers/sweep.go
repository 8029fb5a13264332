package handlers

import (
	"log/slog"
	"net/http"

	"github.com/andrei-iacobb/neatplan-sub001/internal/scheduler"
)

// SweepHandler lets an admin run the overdue sweep on demand.
type SweepHandler struct {
	Sweeper *scheduler.Sweeper
}

// RunSweep runs one sweep synchronously and reports what changed.
func (h *SweepHandler) RunSweep(w http.ResponseWriter, r *http.Request) {
	res, err := h.Sweeper.Run(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "manual sweep failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	type ref struct {
		Kind string `json:"kind"`
		ID   int    `json:"id"`
	}
	ids := make([]ref, 0, len(res.NewOverdue))
	for _, a := range res.NewOverdue {
		ids = append(ids, ref{Kind: string(a.Kind), ID: a.ID})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"checked":     res.Checked,
		"transitions": res.Transitions,
		"new_overdue": ids,
	})
}
