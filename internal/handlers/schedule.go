package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/andrei-iacobb/neatplan-sub001/internal/cycle"
	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
	"github.com/andrei-iacobb/neatplan-sub001/internal/repo"
)

// ScheduleHandler handles cleaning checklists and their tasks.
// suggested_frequency is always computed server-side and never accepted from clients.
type ScheduleHandler struct {
	Repo      *repo.ScheduleRepo
	AuditRepo *repo.AuditRepo
}

type taskInput struct {
	Description string  `json:"description" validate:"required,max=500"`
	Frequency   *string `json:"frequency" validate:"omitempty,max=100"`
	Notes       *string `json:"notes" validate:"omitempty,max=1000"`
}

func (t taskInput) toNewTask() repo.NewTask {
	return repo.NewTask{Description: t.Description, Frequency: t.Frequency, Notes: t.Notes}
}

func detectedText(d *string) string {
	if d == nil {
		return ""
	}
	return *d
}

// ListSchedules returns paginated schedules without their tasks (query: limit, offset).
func (h *ScheduleHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r, 50, 100)

	list, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	total, err := h.Repo.Count(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.Schedule{}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: total, Limit: limit, Offset: offset})
}

// GetSchedule returns one schedule with its tasks.
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "schedule")
	if !ok {
		return
	}

	s, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if s == nil {
		JSONError(w, "schedule not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// CreateSchedule creates a schedule with its tasks.
// Body: {"title": "...", "detected_frequency": "Weekly", "tasks": [{"description": "...", "frequency": "daily"}]}.
func (h *ScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title             string      `json:"title" validate:"required,max=255"`
		DetectedFrequency *string     `json:"detected_frequency" validate:"omitempty,max=100"`
		Tasks             []taskInput `json:"tasks" validate:"max=500,dive"`
	}
	if !decodeAndValidate(w, r, &input) {
		return
	}

	tasks := make([]repo.NewTask, len(input.Tasks))
	for i, t := range input.Tasks {
		tasks[i] = t.toNewTask()
	}
	suggested := cycle.SuggestFrequency(detectedText(input.DetectedFrequency), tasks)

	s, err := h.Repo.Create(r.Context(), repo.NewSchedule{
		Title:              strings.TrimSpace(input.Title),
		DetectedFrequency:  input.DetectedFrequency,
		SuggestedFrequency: &suggested,
		Tasks:              tasks,
	})
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.AuditRepo, "create", "schedule", s.ID, s.Title)
	writeJSON(w, http.StatusCreated, s)
}

// UpdateSchedule changes title and detected frequency and recomputes the suggestion.
func (h *ScheduleHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "schedule")
	if !ok {
		return
	}
	var input struct {
		Title             string  `json:"title" validate:"required,max=255"`
		DetectedFrequency *string `json:"detected_frequency" validate:"omitempty,max=100"`
	}
	if !decodeAndValidate(w, r, &input) {
		return
	}

	tasks, err := h.Repo.ListTasks(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	suggested := cycle.SuggestFrequency(detectedText(input.DetectedFrequency), tasks)

	if err := h.Repo.Update(r.Context(), id, strings.TrimSpace(input.Title), input.DetectedFrequency, &suggested); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "schedule not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.AuditRepo, "update", "schedule", id, "")
	h.writeSchedule(w, r, id, http.StatusOK)
}

// DeleteSchedule deletes a schedule, its tasks and every assignment of it.
func (h *ScheduleHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "schedule")
	if !ok {
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "schedule not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.AuditRepo, "delete", "schedule", id, "")
	w.WriteHeader(http.StatusNoContent)
}

// AddTask appends a task and returns the updated schedule.
func (h *ScheduleHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "schedule")
	if !ok {
		return
	}
	var input taskInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	if _, err := h.Repo.AddTask(r.Context(), id, input.toNewTask()); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "schedule not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if err := h.refreshSuggestion(r.Context(), id); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.AuditRepo, "update", "schedule", id, "add task")
	h.writeSchedule(w, r, id, http.StatusCreated)
}

// RemoveTask deletes one task and returns the updated schedule.
func (h *ScheduleHandler) RemoveTask(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "schedule")
	if !ok {
		return
	}
	taskID, ok := urlID(w, r, "taskID", "task")
	if !ok {
		return
	}

	if err := h.Repo.RemoveTask(r.Context(), id, taskID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "task not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if err := h.refreshSuggestion(r.Context(), id); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.AuditRepo, "update", "schedule", id, "remove task")
	h.writeSchedule(w, r, id, http.StatusOK)
}

// refreshSuggestion recomputes suggested_frequency after the task list changed.
func (h *ScheduleHandler) refreshSuggestion(ctx context.Context, id int) error {
	s, err := h.Repo.GetByID(ctx, id)
	if err != nil || s == nil {
		return err
	}
	suggested := cycle.SuggestFrequency(detectedText(s.DetectedFrequency), s.Tasks)
	if s.SuggestedFrequency != nil && *s.SuggestedFrequency == suggested {
		return nil
	}
	return h.Repo.SetSuggestedFrequency(ctx, id, suggested)
}

func (h *ScheduleHandler) writeSchedule(w http.ResponseWriter, r *http.Request, id, status int) {
	s, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if s == nil {
		JSONError(w, "schedule not found", http.StatusNotFound)
		return
	}
	writeJSON(w, status, s)
}
