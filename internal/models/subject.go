package models

import "time"

// Room is a cleanable space.
type Room struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Floor       *string   `json:"floor,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Equipment is a cleanable or serviceable item (ice machine, vacuum, HVAC unit).
type Equipment struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
