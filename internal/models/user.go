package models

import "time"

const (
	RoleAdmin   = "admin"
	RoleCleaner = "cleaner"
)

// ValidRole reports whether role is one the API accepts.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCleaner
}

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
