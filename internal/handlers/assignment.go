package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andrei-iacobb/neatplan-sub001/internal/cycle"
	"github.com/andrei-iacobb/neatplan-sub001/internal/metrics"
	"github.com/andrei-iacobb/neatplan-sub001/internal/middleware"
	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
	"github.com/andrei-iacobb/neatplan-sub001/internal/repo"
)

// AssignmentHandler serves /room-schedules or /equipment-schedules depending on the
// kind of its Repo. The same type is mounted twice.
type AssignmentHandler struct {
	Repo      *repo.AssignmentRepo
	Schedules *repo.ScheduleRepo
	Logs      *repo.CompletionLogRepo
	AuditRepo *repo.AuditRepo
	Now       func() time.Time
}

// historyLimit is how many completion logs GetAssignment includes.
const historyLimit = 20

func (h *AssignmentHandler) resourceType() string {
	return string(h.Repo.Kind) + "_schedule"
}

func view(a models.Assignment, now time.Time) models.AssignmentView {
	return models.AssignmentView{Assignment: a, EffectiveStatus: cycle.DeriveStatus(a.State(), now)}
}

// ListAssignments returns assignments soonest-due first.
// Query: status (stored status), subject_id, schedule_id, limit, offset.
func (h *AssignmentHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := page(r, 50, 200)
	f := repo.AssignmentFilter{Limit: limit, Offset: offset}

	if s := q.Get("status"); s != "" {
		st := cycle.Status(strings.ToUpper(strings.TrimSpace(s)))
		if !st.Valid() {
			JSONValidationError(w, "validation failed", map[string]string{"status": "must be PENDING, OVERDUE or COMPLETED"}, http.StatusBadRequest)
			return
		}
		f.Status = st
	}
	for name, dst := range map[string]*int{"subject_id": &f.SubjectID, "schedule_id": &f.ScheduleID} {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				JSONValidationError(w, "validation failed", map[string]string{name: "must be a positive integer"}, http.StatusBadRequest)
				return
			}
			*dst = n
		}
	}

	list, err := h.Repo.List(r.Context(), f)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	total, err := h.Repo.Count(r.Context(), f)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	now := currentTime(h.Now)
	items := make([]models.AssignmentView, 0, len(list))
	for _, a := range list {
		items = append(items, view(a, now))
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: total, Limit: limit, Offset: offset})
}

type assignmentDetail struct {
	models.AssignmentView
	History []models.CompletionLog `json:"history"`
}

// GetAssignment returns one assignment with its recent completion history.
func (h *AssignmentHandler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "assignment")
	if !ok {
		return
	}

	a, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if a == nil {
		JSONError(w, "assignment not found", http.StatusNotFound)
		return
	}

	history := []models.CompletionLog{}
	if h.Logs != nil {
		logs, err := h.Logs.ListByAssignment(r.Context(), h.Repo.Kind, id, historyLimit)
		if err != nil {
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		if logs != nil {
			history = logs
		}
	}
	writeJSON(w, http.StatusOK, assignmentDetail{AssignmentView: view(*a, currentTime(h.Now)), History: history})
}

// parseFrequencyField validates an optional client-supplied frequency. It writes the
// 400 itself and reports false on failure.
func parseFrequencyField(w http.ResponseWriter, s string) (cycle.Frequency, bool) {
	f, err := cycle.ParseFrequency(s)
	if err != nil {
		JSONValidationError(w, "validation failed", map[string]string{
			"frequency": "must be one of DAILY, WEEKLY, BIWEEKLY, MONTHLY, QUARTERLY, YEARLY, CUSTOM",
		}, http.StatusBadRequest)
		return "", false
	}
	return f, true
}

// CreateAssignment assigns a schedule to a room or piece of equipment.
// Body: {"subject_id": 1, "schedule_id": 2, "frequency": "MONTHLY"}. Without a frequency
// the schedule's suggested frequency is used, and WEEKLY when it has none.
func (h *AssignmentHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var input struct {
		SubjectID  int     `json:"subject_id" validate:"required,gt=0"`
		ScheduleID int     `json:"schedule_id" validate:"required,gt=0"`
		Frequency  *string `json:"frequency"`
	}
	if !decodeAndValidate(w, r, &input) {
		return
	}

	var freq cycle.Frequency
	if input.Frequency != nil && strings.TrimSpace(*input.Frequency) != "" {
		f, ok := parseFrequencyField(w, *input.Frequency)
		if !ok {
			return
		}
		freq = f
	} else {
		s, err := h.Schedules.GetByID(r.Context(), input.ScheduleID)
		if err != nil {
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		if s == nil {
			JSONError(w, "schedule not found", http.StatusNotFound)
			return
		}
		freq = cycle.DefaultFrequency
		if s.SuggestedFrequency != nil && s.SuggestedFrequency.Valid() {
			freq = *s.SuggestedFrequency
		}
	}

	nextDue, err := cycle.CalculateNextDueDate(freq, currentTime(h.Now))
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	a, err := h.Repo.Create(r.Context(), input.SubjectID, input.ScheduleID, freq, nextDue)
	switch {
	case errors.Is(err, repo.ErrDuplicateAssignment):
		JSONError(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, repo.ErrNotFound):
		JSONError(w, string(h.Repo.Kind)+" or schedule not found", http.StatusNotFound)
		return
	case err != nil:
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.AuditRepo, "create", h.resourceType(), a.ID, string(freq))
	writeJSON(w, http.StatusCreated, view(*a, currentTime(h.Now)))
}

// UpdateAssignment changes the frequency; the cycle restarts from now.
func (h *AssignmentHandler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "assignment")
	if !ok {
		return
	}
	var input struct {
		Frequency string `json:"frequency" validate:"required"`
	}
	if !decodeAndValidate(w, r, &input) {
		return
	}
	freq, ok := parseFrequencyField(w, input.Frequency)
	if !ok {
		return
	}

	now := currentTime(h.Now)
	nextDue, err := cycle.CalculateNextDueDate(freq, now)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if err := h.Repo.UpdateFrequency(r.Context(), id, freq, nextDue); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "assignment not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.AuditRepo, "update", h.resourceType(), id, string(freq))

	a, err := h.Repo.GetByID(r.Context(), id)
	if err != nil || a == nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, view(*a, now))
}

// DeleteAssignment removes an assignment. Its completion history is kept.
func (h *AssignmentHandler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "assignment")
	if !ok {
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "assignment not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.AuditRepo, "delete", h.resourceType(), id, "")
	w.WriteHeader(http.StatusNoContent)
}

type completeResponse struct {
	Assignment models.AssignmentView `json:"assignment"`
	Log        *models.CompletionLog `json:"log"`
}

// CompleteAssignment records that the schedule was carried out now.
// Body (optional): {"completed_task_ids": [1, 2], "notes": "..."}. Task ids must belong
// to the assigned schedule.
func (h *AssignmentHandler) CompleteAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "assignment")
	if !ok {
		return
	}
	var input struct {
		CompletedTaskIDs []int64 `json:"completed_task_ids" validate:"max=500,dive,gt=0"`
		Notes            string  `json:"notes" validate:"max=2000"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err, input), http.StatusBadRequest)
		return
	}

	a, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if a == nil {
		JSONError(w, "assignment not found", http.StatusNotFound)
		return
	}

	if len(input.CompletedTaskIDs) > 0 {
		if bad, err := h.unknownTasks(r, a.ScheduleID, input.CompletedTaskIDs); err != nil {
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		} else if len(bad) > 0 {
			JSONValidationError(w, "validation failed", map[string]string{
				"completed_task_ids": fmt.Sprintf("tasks %v are not part of schedule %d", bad, a.ScheduleID),
			}, http.StatusBadRequest)
			return
		}
	}

	now := currentTime(h.Now)
	next, err := cycle.Complete(a.Frequency, now)
	if err != nil {
		slog.ErrorContext(r.Context(), "complete: stored frequency rejected", "kind", h.Repo.Kind, "assignment_id", id, "frequency", a.Frequency, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	in := repo.CompletionInput{
		AssignmentID:     id,
		Frequency:        a.Frequency,
		Next:             next,
		CompletedTaskIDs: input.CompletedTaskIDs,
		Notes:            strings.TrimSpace(input.Notes),
	}
	if uid, ok := middleware.GetUserID(r.Context()); ok {
		in.UserID = &uid
	}

	entry, err := h.Repo.Complete(r.Context(), in)
	switch {
	case errors.Is(err, repo.ErrConflict):
		JSONError(w, "assignment changed while completing, retry", http.StatusConflict)
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "complete assignment", "kind", h.Repo.Kind, "assignment_id", id, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncCompletions(string(h.Repo.Kind))
	recordAudit(r.Context(), h.AuditRepo, "complete", h.resourceType(), id, "")

	a.Status = next.Status
	a.NextDue = next.NextDue
	a.LastCompleted = next.LastCompleted
	writeJSON(w, http.StatusOK, completeResponse{Assignment: view(*a, now), Log: entry})
}

// unknownTasks returns the ids in ids that are not tasks of scheduleID.
func (h *AssignmentHandler) unknownTasks(r *http.Request, scheduleID int, ids []int64) ([]int64, error) {
	tasks, err := h.Schedules.ListTasks(r.Context(), scheduleID)
	if err != nil {
		return nil, err
	}
	known := make(map[int64]bool, len(tasks))
	for _, t := range tasks {
		known[int64(t.ID)] = true
	}
	var bad []int64
	for _, id := range ids {
		if !known[id] {
			bad = append(bad, id)
		}
	}
	return bad, nil
}
