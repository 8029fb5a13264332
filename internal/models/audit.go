package models

import "time"

// AuditEntry is one admin or cleaner action recorded in audit_log.
//
// Action is create, update, delete or complete. ResourceType is room, equipment,
// schedule, room_schedule, equipment_schedule or user.
type AuditEntry struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   int       `json:"resource_id"`
	Details      string    `json:"details,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
