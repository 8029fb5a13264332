package cycle

import "time"

// Status is the lifecycle state of an assignment.
type Status string

const (
	Pending   Status = "PENDING"
	Overdue   Status = "OVERDUE"
	Completed Status = "COMPLETED"
)

// GraceWindow is how long an assignment may sit past its due time before it is
// reported OVERDUE. It also bounds how long an explicit COMPLETED status is kept.
const GraceWindow = 24 * time.Hour

// Valid reports whether s is one of the enum values.
func (s Status) Valid() bool {
	return s == Pending || s == Overdue || s == Completed
}

// State is the part of an assignment the cycle engine reads and writes.
type State struct {
	Status        Status
	NextDue       time.Time
	LastCompleted *time.Time
}

// DeriveStatus recomputes the status of s at now. It only looks at the stored
// fields, so a stale OVERDUE heals itself once NextDue moves past now again.
func DeriveStatus(s State, now time.Time) Status {
	if s.Status == Completed && s.LastCompleted != nil && now.Sub(*s.LastCompleted) < GraceWindow {
		return Completed
	}
	if !s.NextDue.After(now) {
		if now.Sub(s.NextDue) < GraceWindow {
			return Pending
		}
		return Overdue
	}
	return Pending
}

// Complete returns the state after completing an assignment of frequency f at now:
// back to PENDING, due again one interval from now.
func Complete(f Frequency, now time.Time) (State, error) {
	next, err := CalculateNextDueDate(f, now)
	if err != nil {
		return State{}, err
	}
	completedAt := now
	return State{
		Status:        Pending,
		NextDue:       next,
		LastCompleted: &completedAt,
	}, nil
}
