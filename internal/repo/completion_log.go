package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
	"github.com/lib/pq"
)

// CompletionLogRepo reads the completion audit trail. Rows are written only by
// AssignmentRepo.Complete and are never updated or deleted.
type CompletionLogRepo struct {
	DB *sql.DB
}

// NewCompletionLogRepo returns a new CompletionLogRepo.
func NewCompletionLogRepo(db *sql.DB) *CompletionLogRepo {
	return &CompletionLogRepo{DB: db}
}

// CompletionFilter narrows List. Zero fields are ignored.
type CompletionFilter struct {
	Kind         models.SubjectKind
	AssignmentID int
	UserID       int
	Limit        int
	Offset       int
}

// List returns completion logs, newest first.
func (r *CompletionLogRepo) List(ctx context.Context, f CompletionFilter) ([]models.CompletionLog, error) {
	var conds []string
	var args []any
	if f.Kind != "" {
		args = append(args, string(f.Kind))
		conds = append(conds, fmt.Sprintf("subject_type = $%d", len(args)))
	}
	if f.AssignmentID > 0 {
		args = append(args, f.AssignmentID)
		conds = append(conds, fmt.Sprintf("assignment_id = $%d", len(args)))
	}
	if f.UserID > 0 {
		args = append(args, f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Offset)

	q := `SELECT id, subject_type, assignment_id, user_id, completed_task_ids, notes, completed_at FROM completion_logs`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += fmt.Sprintf(" ORDER BY completed_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.CompletionLog
	for rows.Next() {
		var c models.CompletionLog
		if err := rows.Scan(&c.ID, &c.Kind, &c.AssignmentID, &c.UserID, pq.Array(&c.CompletedTaskIDs), &c.Notes, &c.CompletedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// ListByAssignment returns the history of one assignment, newest first.
func (r *CompletionLogRepo) ListByAssignment(ctx context.Context, kind models.SubjectKind, assignmentID, limit int) ([]models.CompletionLog, error) {
	return r.List(ctx, CompletionFilter{Kind: kind, AssignmentID: assignmentID, Limit: limit})
}
