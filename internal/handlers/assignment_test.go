package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/andrei-iacobb/neatplan-sub001/internal/repo"
	"github.com/lib/pq"
)

var roomAssignmentCols = []string{"id", "room_id", "name", "schedule_id", "title", "frequency", "next_due", "status", "last_completed", "created_at"}

func TestAssignmentHandler_ListAssignments_EffectiveStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM room_schedules a .* ORDER BY a.next_due, a.id LIMIT \$1 OFFSET \$2`).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows(roomAssignmentCols).
			// monthly, due four days ago, sweep has not run yet
			AddRow(1, 4, "Room 101", 2, "Turnover", "MONTHLY", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), "PENDING", nil, now).
			// due in an hour
			AddRow(2, 5, "Room 102", 2, "Turnover", "DAILY", now.Add(time.Hour), "PENDING", nil, now))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM room_schedules a`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	h := &AssignmentHandler{Repo: repo.NewRoomScheduleRepo(db), Now: func() time.Time { return now }}
	rr := httptest.NewRecorder()
	h.ListAssignments(rr, httptest.NewRequest("GET", "/room-schedules", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("ListAssignments status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	var out struct {
		Items []struct {
			ID              int    `json:"id"`
			Kind            string `json:"kind"`
			Status          string `json:"status"`
			EffectiveStatus string `json:"effective_status"`
		} `json:"items"`
		Total int `json:"total"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Items) != 2 || out.Total != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if out.Items[0].Status != "PENDING" || out.Items[0].EffectiveStatus != "OVERDUE" || out.Items[0].Kind != "room" {
		t.Errorf("item 1: %+v", out.Items[0])
	}
	if out.Items[1].EffectiveStatus != "PENDING" {
		t.Errorf("item 2: %+v", out.Items[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssignmentHandler_ListAssignments_BadStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &AssignmentHandler{Repo: repo.NewRoomScheduleRepo(db)}
	rr := httptest.NewRecorder()
	h.ListAssignments(rr, httptest.NewRequest("GET", "/room-schedules?status=dirty", nil))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("ListAssignments status: got %d, want 400", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// Completing a WEEKLY assignment at T leaves it PENDING, due at T+7 days, with T as
// last completion and exactly one log row.
func TestAssignmentHandler_CompleteAssignment_Weekly(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2024, time.June, 3, 8, 15, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM room_schedules a .* WHERE a.id = \$1`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(roomAssignmentCols).
			AddRow(5, 4, "Room 101", 2, "Turnover", "WEEKLY", now.Add(-2*time.Hour), "PENDING", nil, now))
	mock.ExpectQuery(`FROM schedule_tasks WHERE schedule_id = \$1`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(taskCols).
			AddRow(10, 2, 0, "Vacuum", nil, nil).
			AddRow(11, 2, 1, "Towels", nil, nil))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE room_schedules SET status = \$1, next_due = \$2, last_completed = \$3 WHERE id = \$4 AND frequency = \$5`).
		WithArgs("PENDING", now.AddDate(0, 0, 7), now, 5, "WEEKLY").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO completion_logs`).
		WithArgs("room", 5, 9, pq.Array([]int64{10, 11}), "all good", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
	mock.ExpectCommit()
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(9, "complete", "room_schedule", 5, "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	h := &AssignmentHandler{
		Repo:      repo.NewRoomScheduleRepo(db),
		Schedules: repo.NewScheduleRepo(db),
		AuditRepo: repo.NewAuditRepo(db),
		Now:       func() time.Time { return now },
	}
	body := []byte(`{"completed_task_ids":[10,11],"notes":" all good "}`)
	req := asUser(requestWithChiURLParams("POST", "/room-schedules/5/complete", body, map[string]string{"id": "5"}), 9, "cleaner")
	rr := httptest.NewRecorder()
	h.CompleteAssignment(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("CompleteAssignment status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	var out struct {
		Assignment struct {
			Status          string    `json:"status"`
			EffectiveStatus string    `json:"effective_status"`
			NextDue         time.Time `json:"next_due"`
			LastCompleted   time.Time `json:"last_completed"`
		} `json:"assignment"`
		Log struct {
			ID     int   `json:"id"`
			UserID int   `json:"user_id"`
			Tasks  []int `json:"completed_task_ids"`
		} `json:"log"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Assignment.Status != "PENDING" || out.Assignment.EffectiveStatus != "PENDING" {
		t.Errorf("unexpected status: %+v", out.Assignment)
	}
	if !out.Assignment.NextDue.Equal(now.AddDate(0, 0, 7)) || !out.Assignment.LastCompleted.Equal(now) {
		t.Errorf("unexpected dates: %+v", out.Assignment)
	}
	if out.Log.ID != 100 || out.Log.UserID != 9 || len(out.Log.Tasks) != 2 {
		t.Errorf("unexpected log: %+v", out.Log)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// A MONTHLY assignment due 2024-03-01 and completed on 2024-03-05 is next due one
// month after the completion, not one month after the old due date.
func TestAssignmentHandler_CompleteAssignment_MonthlyLate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	due := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM equipment_schedules a .* WHERE a.id = \$1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(roomAssignmentCols).
			AddRow(3, 1, "Ice machine", 2, "Sanitize", "MONTHLY", due, "OVERDUE", nil, due))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE equipment_schedules SET status`).
		WithArgs("PENDING", time.Date(2024, time.April, 5, 0, 0, 0, 0, time.UTC), now, 3, "MONTHLY").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO completion_logs`).
		WithArgs("equipment", 3, nil, sqlmock.AnyArg(), "", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	h := &AssignmentHandler{
		Repo:      repo.NewEquipmentScheduleRepo(db),
		Schedules: repo.NewScheduleRepo(db),
		Now:       func() time.Time { return now },
	}
	rr := httptest.NewRecorder()
	h.CompleteAssignment(rr, requestWithChiURLParams("POST", "/equipment-schedules/3/complete", nil, map[string]string{"id": "3"}))

	if rr.Code != http.StatusOK {
		t.Fatalf("CompleteAssignment status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssignmentHandler_CompleteAssignment_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM room_schedules a`).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows(roomAssignmentCols))

	h := &AssignmentHandler{Repo: repo.NewRoomScheduleRepo(db), Schedules: repo.NewScheduleRepo(db)}
	rr := httptest.NewRecorder()
	h.CompleteAssignment(rr, requestWithChiURLParams("POST", "/room-schedules/404/complete", nil, map[string]string{"id": "404"}))

	if rr.Code != http.StatusNotFound {
		t.Errorf("CompleteAssignment status: got %d, want 404", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssignmentHandler_CompleteAssignment_ForeignTask(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM room_schedules a`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(roomAssignmentCols).
			AddRow(5, 4, "Room 101", 2, "Turnover", "DAILY", now, "PENDING", nil, now))
	mock.ExpectQuery(`FROM schedule_tasks WHERE schedule_id = \$1`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(taskCols).AddRow(10, 2, 0, "Vacuum", nil, nil))

	h := &AssignmentHandler{Repo: repo.NewRoomScheduleRepo(db), Schedules: repo.NewScheduleRepo(db)}
	body := []byte(`{"completed_task_ids":[10,99]}`)
	rr := httptest.NewRecorder()
	h.CompleteAssignment(rr, requestWithChiURLParams("POST", "/room-schedules/5/complete", body, map[string]string{"id": "5"}))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("CompleteAssignment status: got %d, want 400", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssignmentHandler_CompleteAssignment_Conflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM room_schedules a`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(roomAssignmentCols).
			AddRow(5, 4, "Room 101", 2, "Turnover", "DAILY", now, "PENDING", nil, now))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE room_schedules SET status`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	h := &AssignmentHandler{Repo: repo.NewRoomScheduleRepo(db), Schedules: repo.NewScheduleRepo(db)}
	rr := httptest.NewRecorder()
	h.CompleteAssignment(rr, requestWithChiURLParams("POST", "/room-schedules/5/complete", []byte(`{}`), map[string]string{"id": "5"}))

	if rr.Code != http.StatusConflict {
		t.Errorf("CompleteAssignment status: got %d, want 409", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssignmentHandler_CreateAssignment_ExplicitFrequency(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2024, time.January, 31, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO room_schedules`).
		WithArgs(4, 2, "MONTHLY", time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC), "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(8, now))

	h := &AssignmentHandler{Repo: repo.NewRoomScheduleRepo(db), Schedules: repo.NewScheduleRepo(db), Now: func() time.Time { return now }}
	body := []byte(`{"subject_id":4,"schedule_id":2,"frequency":"monthly"}`)
	rr := httptest.NewRecorder()
	h.CreateAssignment(rr, requestWithChiURLParams("POST", "/room-schedules", body, nil))

	if rr.Code != http.StatusCreated {
		t.Fatalf("CreateAssignment status: got %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssignmentHandler_CreateAssignment_UsesScheduleSuggestion(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM schedules WHERE id = \$1`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(scheduleCols).AddRow(2, "Deep clean", "Quarterly", "QUARTERLY", now))
	mock.ExpectQuery(`FROM schedule_tasks WHERE schedule_id = \$1`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(taskCols))
	mock.ExpectQuery(`INSERT INTO room_schedules`).
		WithArgs(4, 2, "QUARTERLY", time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(9, now))

	h := &AssignmentHandler{Repo: repo.NewRoomScheduleRepo(db), Schedules: repo.NewScheduleRepo(db), Now: func() time.Time { return now }}
	rr := httptest.NewRecorder()
	h.CreateAssignment(rr, requestWithChiURLParams("POST", "/room-schedules", []byte(`{"subject_id":4,"schedule_id":2}`), nil))

	if rr.Code != http.StatusCreated {
		t.Fatalf("CreateAssignment status: got %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssignmentHandler_CreateAssignment_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO room_schedules`).
		WillReturnError(&pq.Error{Code: "23505"})

	h := &AssignmentHandler{Repo: repo.NewRoomScheduleRepo(db), Schedules: repo.NewScheduleRepo(db)}
	rr := httptest.NewRecorder()
	h.CreateAssignment(rr, requestWithChiURLParams("POST", "/room-schedules", []byte(`{"subject_id":4,"schedule_id":2,"frequency":"DAILY"}`), nil))

	if rr.Code != http.StatusConflict {
		t.Errorf("CreateAssignment status: got %d, want 409", rr.Code)
	}
}

func TestAssignmentHandler_CreateAssignment_BadFrequency(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &AssignmentHandler{Repo: repo.NewRoomScheduleRepo(db), Schedules: repo.NewScheduleRepo(db)}
	rr := httptest.NewRecorder()
	h.CreateAssignment(rr, requestWithChiURLParams("POST", "/room-schedules", []byte(`{"subject_id":4,"schedule_id":2,"frequency":"FORTNIGHTLY"}`), nil))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("CreateAssignment status: got %d, want 400", rr.Code)
	}
	var out struct {
		Fields map[string]string `json:"fields"`
	}
	json.NewDecoder(rr.Body).Decode(&out)
	if out.Fields["frequency"] == "" {
		t.Errorf("expected frequency field error, got %v", out.Fields)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssignmentHandler_UpdateAssignment(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE room_schedules SET frequency = \$1, next_due = \$2, status = \$3 WHERE id = \$4`).
		WithArgs("DAILY", now.AddDate(0, 0, 1), "PENDING", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM room_schedules a .* WHERE a.id = \$1`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(roomAssignmentCols).
			AddRow(5, 4, "Room 101", 2, "Turnover", "DAILY", now.AddDate(0, 0, 1), "PENDING", nil, now))

	h := &AssignmentHandler{Repo: repo.NewRoomScheduleRepo(db), Now: func() time.Time { return now }}
	rr := httptest.NewRecorder()
	h.UpdateAssignment(rr, requestWithChiURLParams("PUT", "/room-schedules/5", []byte(`{"frequency":"daily"}`), map[string]string{"id": "5"}))

	if rr.Code != http.StatusOK {
		t.Fatalf("UpdateAssignment status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssignmentHandler_GetAssignment_WithHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM room_schedules a .* WHERE a.id = \$1`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(roomAssignmentCols).
			AddRow(5, 4, "Room 101", 2, "Turnover", "WEEKLY", now.AddDate(0, 0, 3), "PENDING", now.AddDate(0, 0, -4), now))
	mock.ExpectQuery(`FROM completion_logs WHERE subject_type = \$1 AND assignment_id = \$2`).
		WithArgs("room", 5, historyLimit, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "subject_type", "assignment_id", "user_id", "completed_task_ids", "notes", "completed_at"}).
			AddRow(1, "room", 5, 9, "{}", "", now.AddDate(0, 0, -4)))

	h := &AssignmentHandler{Repo: repo.NewRoomScheduleRepo(db), Logs: repo.NewCompletionLogRepo(db), Now: func() time.Time { return now }}
	rr := httptest.NewRecorder()
	h.GetAssignment(rr, requestWithChiURLParams("GET", "/room-schedules/5", nil, map[string]string{"id": "5"}))

	if rr.Code != http.StatusOK {
		t.Fatalf("GetAssignment status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	var out struct {
		ID      int   `json:"id"`
		History []any `json:"history"`
	}
	json.NewDecoder(rr.Body).Decode(&out)
	if out.ID != 5 || len(out.History) != 1 {
		t.Errorf("unexpected response: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
