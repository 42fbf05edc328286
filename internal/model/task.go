package model

import "time"

// Priority is the priority string returned by the language model.
// Values outside low/medium/high are carried verbatim.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Task is one actionable item extracted from a transcript.
// DueDate and Priority are untrusted pass-through values from the model.
type Task struct {
	Title    string   `json:"title"`
	DueDate  string   `json:"dueDate,omitempty"`
	Priority Priority `json:"priority,omitempty"`
}

// Reminder fires OffsetMinutes relative to the event start (negative = before).
type Reminder struct {
	OffsetMinutes int `json:"offsetMinutes"`
}

// CalendarEvent is derived from a Task at export time and never persisted here.
type CalendarEvent struct {
	UID         string     `json:"uid"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartAt     time.Time  `json:"startAt"`
	EndAt       time.Time  `json:"endAt"`
	Reminders   []Reminder `json:"reminders"`
}
