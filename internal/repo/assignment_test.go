package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/andrei-iacobb/neatplan-sub001/internal/cycle"
	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
	"github.com/lib/pq"
)

var assignmentCols = []string{"id", "room_id", "name", "schedule_id", "title", "frequency", "next_due", "status", "last_completed", "created_at"}

func TestAssignmentRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	due := time.Date(2024, time.March, 8, 9, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO room_schedules \(room_id, schedule_id, frequency, next_due, status\)`).
		WithArgs(4, 2, "WEEKLY", due, "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, now))

	r := NewRoomScheduleRepo(db)
	a, err := r.Create(context.Background(), 4, 2, cycle.Weekly, due)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID != 11 || a.Kind != models.SubjectRoom || a.Status != cycle.Pending || !a.NextDue.Equal(due) {
		t.Errorf("unexpected assignment: %+v", a)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssignmentRepo_Create_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO equipment_schedules \(equipment_id, schedule_id`).
		WillReturnError(&pq.Error{Code: "23505"})

	r := NewEquipmentScheduleRepo(db)
	_, err = r.Create(context.Background(), 1, 1, cycle.Daily, time.Now())
	if !errors.Is(err, ErrDuplicateAssignment) {
		t.Errorf("expected ErrDuplicateAssignment, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssignmentRepo_Create_MissingSubject(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO room_schedules`).
		WillReturnError(&pq.Error{Code: "23503"})

	r := NewRoomScheduleRepo(db)
	_, err = r.Create(context.Background(), 99, 1, cycle.Daily, time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAssignmentRepo_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	due := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM room_schedules a JOIN rooms s ON s.id = a.room_id JOIN schedules sc .* WHERE a.id = \$1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow(3, 4, "Room 101", 2, "Standard turnover", "MONTHLY", due, "PENDING", nil, due))

	r := NewRoomScheduleRepo(db)
	a, err := r.GetByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if a == nil {
		t.Fatal("expected assignment, got nil")
	}
	if a.SubjectName != "Room 101" || a.ScheduleTitle != "Standard turnover" || a.Frequency != cycle.Monthly || a.LastCompleted != nil {
		t.Errorf("unexpected assignment: %+v", a)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssignmentRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM room_schedules a`).
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)

	r := NewRoomScheduleRepo(db)
	a, err := r.GetByID(context.Background(), 404)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if a != nil {
		t.Errorf("expected nil, got %+v", a)
	}
}

func TestAssignmentRepo_List_Filtered(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	due := time.Now()
	mock.ExpectQuery(`FROM room_schedules a .* WHERE a.status = \$1 AND a.room_id = \$2 ORDER BY a.next_due, a.id LIMIT \$3 OFFSET \$4`).
		WithArgs("OVERDUE", 4, 20, 0).
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow(1, 4, "Room 101", 2, "Deep clean", "QUARTERLY", due, "OVERDUE", nil, due))

	r := NewRoomScheduleRepo(db)
	list, err := r.List(context.Background(), AssignmentFilter{Status: cycle.Overdue, SubjectID: 4, Limit: 20})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Status != cycle.Overdue || list[0].Kind != models.SubjectRoom {
		t.Errorf("unexpected list: %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssignmentRepo_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM equipment_schedules a$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	r := NewEquipmentScheduleRepo(db)
	n, err := r.Count(context.Background(), AssignmentFilter{})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 7 {
		t.Errorf("expected 7, got %d", n)
	}
}

func TestAssignmentRepo_Complete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	at := time.Date(2024, time.June, 3, 8, 15, 0, 0, time.UTC)
	next, err := cycle.Complete(cycle.Weekly, at)
	if err != nil {
		t.Fatalf("cycle.Complete: %v", err)
	}
	userID := 3

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE room_schedules SET status = \$1, next_due = \$2, last_completed = \$3 WHERE id = \$4 AND frequency = \$5`).
		WithArgs("PENDING", at.AddDate(0, 0, 7), at, 5, "WEEKLY").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO completion_logs`).
		WithArgs("room", 5, 3, pq.Array([]int64{10, 11}), "bathroom done", at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(77))
	mock.ExpectCommit()

	r := NewRoomScheduleRepo(db)
	entry, err := r.Complete(context.Background(), CompletionInput{
		AssignmentID:     5,
		Frequency:        cycle.Weekly,
		Next:             next,
		UserID:           &userID,
		CompletedTaskIDs: []int64{10, 11},
		Notes:            "bathroom done",
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if entry.ID != 77 || entry.AssignmentID != 5 || entry.Kind != models.SubjectRoom || !entry.CompletedAt.Equal(at) {
		t.Errorf("unexpected log entry: %+v", entry)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssignmentRepo_Complete_LogInsertFailsRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	at := time.Date(2024, time.June, 3, 8, 15, 0, 0, time.UTC)
	next, _ := cycle.Complete(cycle.Daily, at)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE equipment_schedules SET status`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO completion_logs`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	r := NewEquipmentScheduleRepo(db)
	_, err = r.Complete(context.Background(), CompletionInput{AssignmentID: 1, Frequency: cycle.Daily, Next: next})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssignmentRepo_Complete_Conflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	next, _ := cycle.Complete(cycle.Monthly, time.Now())

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE room_schedules SET status`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	r := NewRoomScheduleRepo(db)
	_, err = r.Complete(context.Background(), CompletionInput{AssignmentID: 9, Frequency: cycle.Monthly, Next: next})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssignmentRepo_ListSweepCandidates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM room_schedules a .* WHERE a.next_due <= \$1 OR a.status <> \$2 ORDER BY a.id`).
		WithArgs(now, "PENDING").
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow(1, 4, "Room 101", 2, "Turnover", "MONTHLY", now.AddDate(0, 0, -4), "PENDING", nil, now))

	r := NewRoomScheduleRepo(db)
	list, err := r.ListSweepCandidates(context.Background(), now)
	if err != nil {
		t.Fatalf("ListSweepCandidates: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(list))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssignmentRepo_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	due := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE room_schedules SET status = \$1 WHERE id = \$2 AND status = \$3 AND next_due = \$4`).
		WithArgs("OVERDUE", 1, "PENDING", due).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// completed since it was listed: next_due moved, nothing matches
	mock.ExpectExec(`UPDATE room_schedules SET status = \$1 WHERE id = \$2 AND status = \$3 AND next_due = \$4`).
		WithArgs("OVERDUE", 2, "PENDING", due).
		WillReturnResult(sqlmock.NewResult(0, 0))

	r := NewRoomScheduleRepo(db)
	listed := models.Assignment{ID: 1, Status: cycle.Pending, NextDue: due}
	changed, err := r.UpdateStatus(context.Background(), listed, cycle.Overdue)
	if err != nil || !changed {
		t.Errorf("UpdateStatus(1): changed=%v err=%v", changed, err)
	}
	listed.ID = 2
	changed, err = r.UpdateStatus(context.Background(), listed, cycle.Overdue)
	if err != nil || changed {
		t.Errorf("UpdateStatus(2): changed=%v err=%v", changed, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssignmentRepo_UpdateFrequency_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	due := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE room_schedules SET frequency = \$1, next_due = \$2, status = \$3 WHERE id = \$4`).
		WithArgs("DAILY", due, "PENDING", 8).
		WillReturnResult(sqlmock.NewResult(0, 0))

	r := NewRoomScheduleRepo(db)
	if err := r.UpdateFrequency(context.Background(), 8, cycle.Daily, due); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNewAssignmentRepo_UnknownKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown kind")
		}
	}()
	NewAssignmentRepo(nil, models.SubjectKind("closet"))
}
