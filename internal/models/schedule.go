package models

import (
	"time"

	"github.com/andrei-iacobb/neatplan-sub001/internal/cycle"
)

// Schedule is a named cleaning checklist.
type Schedule struct {
	ID                 int              `json:"id"`
	Title              string           `json:"title"`
	DetectedFrequency  *string          `json:"detected_frequency,omitempty"`
	SuggestedFrequency *cycle.Frequency `json:"suggested_frequency,omitempty"`
	Tasks              []ScheduleTask   `json:"tasks"`
	CreatedAt          time.Time        `json:"created_at"`
}

// ScheduleTask is one checklist line of a schedule.
type ScheduleTask struct {
	ID          int     `json:"id"`
	ScheduleID  int     `json:"schedule_id"`
	Position    int     `json:"position"`
	Description string  `json:"description"`
	Frequency   *string `json:"frequency,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// FrequencyText implements cycle.TaskFrequency.
func (t ScheduleTask) FrequencyText() string {
	if t.Frequency == nil {
		return ""
	}
	return *t.Frequency
}
