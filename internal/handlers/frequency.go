package handlers

import (
	"net/http"
	"time"

	"github.com/andrei-iacobb/neatplan-sub001/internal/cycle"
)

type FrequencyHandler struct {
	Now func() time.Time
}

// SuggestFrequency maps free text and per-task frequencies to a Frequency without
// touching storage. Body: {"text": "Monthly deep clean", "tasks": [{"frequency": "weekly"}]}.
func (h *FrequencyHandler) SuggestFrequency(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Text  string `json:"text" validate:"max=500"`
		Tasks []struct {
			Frequency string `json:"frequency" validate:"max=100"`
		} `json:"tasks" validate:"max=500,dive"`
	}
	if !decodeAndValidate(w, r, &input) {
		return
	}

	tasks := make([]cycle.Text, len(input.Tasks))
	for i, t := range input.Tasks {
		tasks[i] = cycle.Text(t.Frequency)
	}
	f := cycle.SuggestFrequency(input.Text, tasks)
	next, err := cycle.CalculateNextDueDate(f, currentTime(h.Now))
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"frequency":        f,
		"example_next_due": next.UTC(),
	})
}
