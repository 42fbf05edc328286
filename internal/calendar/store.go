package calendar

import (
	"context"
	"time"

	"voicetasks/internal/model"
)

// Calendar describes one calendar a store can write to.
type Calendar struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	SourceName          string `json:"sourceName"`
	SourceType          string `json:"sourceType"`
	AllowsModifications bool   `json:"allowsModifications"`
	IsPrimary           bool   `json:"isPrimary"`
}

// EventRequest is the typed payload for a single calendar write.
type EventRequest struct {
	CalendarID string           `json:"calendarId"`
	Title      string           `json:"title"`
	StartDate  time.Time        `json:"startDate"`
	EndDate    time.Time        `json:"endDate"`
	Alarms     []model.Reminder `json:"alarms"`
	Notes      string           `json:"notes"`
	TimeZone   string           `json:"timeZone,omitempty"`
}

// Store is a writable calendar backend.
type Store interface {
	// RequestPermission reports whether calendar access is granted.
	RequestPermission(ctx context.Context) (bool, error)
	// DefaultCalendar returns the platform-designated default, or nil when there is none.
	DefaultCalendar(ctx context.Context) (*Calendar, error)
	Calendars(ctx context.Context) ([]Calendar, error)
	// CreateEvent writes one event and returns its store-assigned ID.
	CreateEvent(ctx context.Context, req EventRequest) (string, error)
	Name() string
}

func requestFromEvent(calendarID string, ev model.CalendarEvent) EventRequest {
	return EventRequest{
		CalendarID: calendarID,
		Title:      ev.Title,
		StartDate:  ev.StartAt,
		EndDate:    ev.EndAt,
		Alarms:     ev.Reminders,
		Notes:      ev.Description,
		TimeZone:   ev.StartAt.Location().String(),
	}
}
