package models

import (
	"time"

	"github.com/andrei-iacobb/neatplan-sub001/internal/cycle"
)

// SubjectKind distinguishes room assignments from equipment assignments.
type SubjectKind string

const (
	SubjectRoom      SubjectKind = "room"
	SubjectEquipment SubjectKind = "equipment"
)

// Assignment binds a Schedule to a room or a piece of equipment (a RoomSchedule or
// an EquipmentSchedule row) and carries its own due/status state.
type Assignment struct {
	ID            int             `json:"id"`
	Kind          SubjectKind     `json:"kind"`
	SubjectID     int             `json:"subject_id"`
	SubjectName   string          `json:"subject_name,omitempty"`
	ScheduleID    int             `json:"schedule_id"`
	ScheduleTitle string          `json:"schedule_title,omitempty"`
	Frequency     cycle.Frequency `json:"frequency"`
	NextDue       time.Time       `json:"next_due"`
	Status        cycle.Status    `json:"status"`
	LastCompleted *time.Time      `json:"last_completed,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// State returns the fields the cycle engine works on.
func (a Assignment) State() cycle.State {
	return cycle.State{
		Status:        a.Status,
		NextDue:       a.NextDue,
		LastCompleted: a.LastCompleted,
	}
}

// AssignmentView is an Assignment plus its status as of the request time.
type AssignmentView struct {
	Assignment
	EffectiveStatus cycle.Status `json:"effective_status"`
}

// CompletionLog is the append-only record of one completion.
type CompletionLog struct {
	ID               int         `json:"id"`
	Kind             SubjectKind `json:"kind"`
	AssignmentID     int         `json:"assignment_id"`
	UserID           *int        `json:"user_id,omitempty"`
	CompletedTaskIDs []int64     `json:"completed_task_ids"`
	Notes            string      `json:"notes,omitempty"`
	CompletedAt      time.Time   `json:"completed_at"`
}
