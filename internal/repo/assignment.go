package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/andrei-iacobb/neatplan-sub001/internal/cycle"
	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
	"github.com/lib/pq"
)

// assignmentTable maps a subject kind to its SQL names. Only these fixed strings are
// ever interpolated into queries.
type assignmentTable struct {
	table        string
	subjectCol   string
	subjectTable string
}

var assignmentTables = map[models.SubjectKind]assignmentTable{
	models.SubjectRoom:      {table: "room_schedules", subjectCol: "room_id", subjectTable: "rooms"},
	models.SubjectEquipment: {table: "equipment_schedules", subjectCol: "equipment_id", subjectTable: "equipment"},
}

// AssignmentRepo persists RoomSchedule or EquipmentSchedule rows, depending on Kind.
type AssignmentRepo struct {
	DB   *sql.DB
	Kind models.SubjectKind
	t    assignmentTable
}

// NewAssignmentRepo returns a repo for the given kind. It panics on an unknown kind.
func NewAssignmentRepo(db *sql.DB, kind models.SubjectKind) *AssignmentRepo {
	t, ok := assignmentTables[kind]
	if !ok {
		panic(fmt.Sprintf("repo: unknown subject kind %q", kind))
	}
	return &AssignmentRepo{DB: db, Kind: kind, t: t}
}

// NewRoomScheduleRepo returns the repo for room_schedules.
func NewRoomScheduleRepo(db *sql.DB) *AssignmentRepo {
	return NewAssignmentRepo(db, models.SubjectRoom)
}

// NewEquipmentScheduleRepo returns the repo for equipment_schedules.
func NewEquipmentScheduleRepo(db *sql.DB) *AssignmentRepo {
	return NewAssignmentRepo(db, models.SubjectEquipment)
}

func (r *AssignmentRepo) selectSQL() string {
	return fmt.Sprintf(`
		SELECT a.id, a.%[2]s, s.name, a.schedule_id, sc.title, a.frequency, a.next_due, a.status, a.last_completed, a.created_at
		FROM %[1]s a
		JOIN %[3]s s ON s.id = a.%[2]s
		JOIN schedules sc ON sc.id = a.schedule_id`,
		r.t.table, r.t.subjectCol, r.t.subjectTable)
}

func (r *AssignmentRepo) scan(row interface{ Scan(...any) error }) (models.Assignment, error) {
	a := models.Assignment{Kind: r.Kind}
	err := row.Scan(&a.ID, &a.SubjectID, &a.SubjectName, &a.ScheduleID, &a.ScheduleTitle,
		&a.Frequency, &a.NextDue, &a.Status, &a.LastCompleted, &a.CreatedAt)
	return a, err
}

func (r *AssignmentRepo) query(ctx context.Context, q string, args ...any) ([]models.Assignment, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Assignment
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Create assigns scheduleID to subjectID with status PENDING.
// It returns ErrDuplicateAssignment when the pair already exists and ErrNotFound when
// the subject or schedule does not exist.
func (r *AssignmentRepo) Create(ctx context.Context, subjectID, scheduleID int, freq cycle.Frequency, nextDue time.Time) (*models.Assignment, error) {
	q := fmt.Sprintf(`
		INSERT INTO %s (%s, schedule_id, frequency, next_due, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`, r.t.table, r.t.subjectCol)

	a := &models.Assignment{
		Kind:       r.Kind,
		SubjectID:  subjectID,
		ScheduleID: scheduleID,
		Frequency:  freq,
		NextDue:    nextDue,
		Status:     cycle.Pending,
	}
	err := r.DB.QueryRowContext(ctx, q, subjectID, scheduleID, string(freq), nextDue, string(cycle.Pending)).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		switch pqCode(err) {
		case pgUniqueViolation:
			return nil, ErrDuplicateAssignment
		case pgForeignKeyViolation:
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// GetByID returns one assignment, or nil if not found.
func (r *AssignmentRepo) GetByID(ctx context.Context, id int) (*models.Assignment, error) {
	a, err := r.scan(r.DB.QueryRowContext(ctx, r.selectSQL()+` WHERE a.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AssignmentFilter narrows List and Count. Zero fields are ignored.
type AssignmentFilter struct {
	Status     cycle.Status
	SubjectID  int
	ScheduleID int
	Limit      int
	Offset     int
}

func (r *AssignmentRepo) where(f AssignmentFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if f.SubjectID > 0 {
		args = append(args, f.SubjectID)
		conds = append(conds, fmt.Sprintf("a.%s = $%d", r.t.subjectCol, len(args)))
	}
	if f.ScheduleID > 0 {
		args = append(args, f.ScheduleID)
		conds = append(conds, fmt.Sprintf("a.schedule_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns assignments soonest-due first.
func (r *AssignmentRepo) List(ctx context.Context, f AssignmentFilter) ([]models.Assignment, error) {
	where, args := r.where(f)
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Offset)
	q := r.selectSQL() + where + fmt.Sprintf(` ORDER BY a.next_due, a.id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	return r.query(ctx, q, args...)
}

// Count returns the number of assignments matching f (Limit and Offset are ignored).
func (r *AssignmentRepo) Count(ctx context.Context, f AssignmentFilter) (int, error) {
	where, args := r.where(f)
	var n int
	err := r.DB.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s a`, r.t.table)+where, args...).Scan(&n)
	return n, err
}

// UpdateFrequency changes the frequency and restarts the cycle at nextDue.
func (r *AssignmentRepo) UpdateFrequency(ctx context.Context, id int, freq cycle.Frequency, nextDue time.Time) error {
	q := fmt.Sprintf(`UPDATE %s SET frequency = $1, next_due = $2, status = $3 WHERE id = $4`, r.t.table)
	res, err := r.DB.ExecContext(ctx, q, string(freq), nextDue, string(cycle.Pending), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes an assignment. Its completion logs are kept.
func (r *AssignmentRepo) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.t.table), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CompletionInput is everything needed to persist one completion. Next is computed by
// the cycle engine before the transaction starts; Frequency is the value it was
// computed from.
type CompletionInput struct {
	AssignmentID     int
	Frequency        cycle.Frequency
	Next             cycle.State
	UserID           *int
	CompletedTaskIDs []int64
	Notes            string
}

// Complete updates the assignment to in.Next and appends a completion log in one
// transaction. If the assignment is gone or its frequency changed since it was read,
// nothing is written and ErrConflict is returned.
func (r *AssignmentRepo) Complete(ctx context.Context, in CompletionInput) (*models.CompletionLog, error) {
	if in.Next.LastCompleted == nil {
		return nil, fmt.Errorf("complete assignment %d: missing completion time", in.AssignmentID)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET status = $1, next_due = $2, last_completed = $3 WHERE id = $4 AND frequency = $5`, r.t.table),
		string(in.Next.Status), in.Next.NextDue, *in.Next.LastCompleted, in.AssignmentID, string(in.Frequency),
	)
	if err != nil {
		return nil, fmt.Errorf("update assignment: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrConflict
	}

	taskIDs := in.CompletedTaskIDs
	if taskIDs == nil {
		taskIDs = []int64{}
	}
	entry := &models.CompletionLog{
		Kind:             r.Kind,
		AssignmentID:     in.AssignmentID,
		UserID:           in.UserID,
		CompletedTaskIDs: taskIDs,
		Notes:            in.Notes,
		CompletedAt:      *in.Next.LastCompleted,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO completion_logs (subject_type, assignment_id, user_id, completed_task_ids, notes, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		string(r.Kind), in.AssignmentID, in.UserID, pq.Array(taskIDs), in.Notes, entry.CompletedAt,
	).Scan(&entry.ID)
	if err != nil {
		return nil, fmt.Errorf("insert completion log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListSweepCandidates returns every assignment whose status might change at now:
// anything already due, plus anything not resting in PENDING.
func (r *AssignmentRepo) ListSweepCandidates(ctx context.Context, now time.Time) ([]models.Assignment, error) {
	q := r.selectSQL() + ` WHERE a.next_due <= $1 OR a.status <> $2 ORDER BY a.id`
	return r.query(ctx, q, now, string(cycle.Pending))
}

// UpdateStatus moves a listed assignment to status to. The row must still carry the
// status and next_due it was listed with; a completion always moves next_due, so one
// that landed after the listing is never overwritten. It reports false in that case.
func (r *AssignmentRepo) UpdateStatus(ctx context.Context, listed models.Assignment, to cycle.Status) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET status = $1 WHERE id = $2 AND status = $3 AND next_due = $4`, r.t.table),
		string(to), listed.ID, string(listed.Status), listed.NextDue,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
