package repo

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned by mutations that matched no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateAssignment is returned when a subject already has the schedule assigned.
	ErrDuplicateAssignment = errors.New("schedule already assigned to this subject")
	// ErrConflict is returned when a row changed between read and write.
	ErrConflict = errors.New("concurrent update")
)

// Postgres error codes used by the repositories.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsUniqueViolation reports whether err is a Postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	return pqCode(err) == pgUniqueViolation
}
