package repo

import (
	"context"
	"database/sql"

	"github.com/andrei-iacobb/neatplan-sub001/internal/cycle"
	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
)

// ScheduleRepo persists cleaning checklists and their tasks.
type ScheduleRepo struct {
	DB *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{DB: db}
}

// NewTask is the input for one checklist line.
type NewTask struct {
	Description string
	Frequency   *string
	Notes       *string
}

// FrequencyText implements cycle.TaskFrequency.
func (t NewTask) FrequencyText() string {
	if t.Frequency == nil {
		return ""
	}
	return *t.Frequency
}

// NewSchedule is the input for Create.
type NewSchedule struct {
	Title              string
	DetectedFrequency  *string
	SuggestedFrequency *cycle.Frequency
	Tasks              []NewTask
}

func nullFrequency(f *cycle.Frequency) any {
	if f == nil {
		return nil
	}
	return string(*f)
}

// Count returns the total number of schedules.
func (r *ScheduleRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM schedules").Scan(&n)
	return n, err
}

// List returns schedules without their tasks, most recent first.
func (r *ScheduleRepo) List(ctx context.Context, limit, offset int) ([]models.Schedule, error) {
	query := `
		SELECT id, title, detected_frequency, suggested_frequency, created_at
		FROM schedules
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Schedule
	for rows.Next() {
		var s models.Schedule
		if err := rows.Scan(&s.ID, &s.Title, &s.DetectedFrequency, &s.SuggestedFrequency, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// GetByID returns one schedule with its tasks in order, or nil if not found.
func (r *ScheduleRepo) GetByID(ctx context.Context, id int) (*models.Schedule, error) {
	query := `
		SELECT id, title, detected_frequency, suggested_frequency, created_at
		FROM schedules
		WHERE id = $1
	`
	s := &models.Schedule{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&s.ID, &s.Title, &s.DetectedFrequency, &s.SuggestedFrequency, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.Tasks, err = r.ListTasks(ctx, id)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListTasks returns the tasks of a schedule ordered by position.
func (r *ScheduleRepo) ListTasks(ctx context.Context, scheduleID int) ([]models.ScheduleTask, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, schedule_id, position, description, frequency, notes
		FROM schedule_tasks
		WHERE schedule_id = $1
		ORDER BY position, id
	`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.ScheduleTask{}
	for rows.Next() {
		var t models.ScheduleTask
		if err := rows.Scan(&t.ID, &t.ScheduleID, &t.Position, &t.Description, &t.Frequency, &t.Notes); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Create inserts a schedule and its tasks in one transaction.
func (r *ScheduleRepo) Create(ctx context.Context, in NewSchedule) (*models.Schedule, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	s := &models.Schedule{
		Title:              in.Title,
		DetectedFrequency:  in.DetectedFrequency,
		SuggestedFrequency: in.SuggestedFrequency,
		Tasks:              []models.ScheduleTask{},
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO schedules (title, detected_frequency, suggested_frequency)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, in.Title, in.DetectedFrequency, nullFrequency(in.SuggestedFrequency)).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return nil, err
	}

	for i, nt := range in.Tasks {
		t := models.ScheduleTask{
			ScheduleID:  s.ID,
			Position:    i,
			Description: nt.Description,
			Frequency:   nt.Frequency,
			Notes:       nt.Notes,
		}
		err := tx.QueryRowContext(ctx, `
			INSERT INTO schedule_tasks (schedule_id, position, description, frequency, notes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, s.ID, i, nt.Description, nt.Frequency, nt.Notes).Scan(&t.ID)
		if err != nil {
			return nil, err
		}
		s.Tasks = append(s.Tasks, t)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces the title and frequency fields of a schedule.
func (r *ScheduleRepo) Update(ctx context.Context, id int, title string, detected *string, suggested *cycle.Frequency) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE schedules SET title = $1, detected_frequency = $2, suggested_frequency = $3 WHERE id = $4`,
		title, detected, nullFrequency(suggested), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetSuggestedFrequency stores a recomputed suggestion.
func (r *ScheduleRepo) SetSuggestedFrequency(ctx context.Context, id int, f cycle.Frequency) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE schedules SET suggested_frequency = $1 WHERE id = $2`, string(f), id)
	return err
}

// Delete removes a schedule; tasks and assignments cascade.
func (r *ScheduleRepo) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// AddTask appends a task at the end of the checklist.
func (r *ScheduleRepo) AddTask(ctx context.Context, scheduleID int, in NewTask) (*models.ScheduleTask, error) {
	t := &models.ScheduleTask{
		ScheduleID:  scheduleID,
		Description: in.Description,
		Frequency:   in.Frequency,
		Notes:       in.Notes,
	}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO schedule_tasks (schedule_id, position, description, frequency, notes)
		VALUES ($1, (SELECT COALESCE(MAX(position) + 1, 0) FROM schedule_tasks WHERE schedule_id = $1), $2, $3, $4)
		RETURNING id, position
	`, scheduleID, in.Description, in.Frequency, in.Notes).Scan(&t.ID, &t.Position)
	if err != nil {
		if pqCode(err) == pgForeignKeyViolation {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// RemoveTask deletes one task of a schedule.
func (r *ScheduleRepo) RemoveTask(ctx context.Context, scheduleID, taskID int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM schedule_tasks WHERE id = $1 AND schedule_id = $2`, taskID, scheduleID)
	if err != nil {
		return err
	}
	return requireRow(res)
}
