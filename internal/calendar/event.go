package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"voicetasks/internal/model"
)

const (
	eventStartHour = 9
	eventDuration  = time.Hour
	uidDomain      = "voicetasks"
)

// ErrInvalidDueDate marks a due date the model returned in an unusable form.
var ErrInvalidDueDate = errors.New("invalid due date")

// RemindersFor maps a priority to reminder offsets in minutes before the start.
// Unknown or empty priorities get the low-priority reminder.
func RemindersFor(p model.Priority) []model.Reminder {
	switch model.Priority(strings.ToLower(string(p))) {
	case model.PriorityHigh:
		return []model.Reminder{{OffsetMinutes: -60}, {OffsetMinutes: -1440}}
	case model.PriorityMedium:
		return []model.Reminder{{OffsetMinutes: -60}}
	default:
		return []model.Reminder{{OffsetMinutes: -30}}
	}
}

// EventFromTask builds a one-hour event at 09:00 in loc on the task's due date,
// or tomorrow when the task has none. Each call mints a fresh UID.
func EventFromTask(task model.Task, now time.Time, loc *time.Location) (model.CalendarEvent, error) {
	if loc == nil {
		loc = time.Local
	}

	day, err := dueDay(task.DueDate, now, loc)
	if err != nil {
		return model.CalendarEvent{}, err
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), eventStartHour, 0, 0, 0, loc)
	return model.CalendarEvent{
		UID:         fmt.Sprintf("%s@%s", uuid.NewString(), uidDomain),
		Title:       task.Title,
		Description: describe(task),
		StartAt:     start,
		EndAt:       start.Add(eventDuration),
		Reminders:   RemindersFor(task.Priority),
	}, nil
}

func dueDay(dueDate string, now time.Time, loc *time.Location) (time.Time, error) {
	dueDate = strings.TrimSpace(dueDate)
	if dueDate == "" {
		return now.In(loc).AddDate(0, 0, 1), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", dueDate, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, dueDate); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDueDate, dueDate)
}

func describe(task model.Task) string {
	priority := string(task.Priority)
	if priority == "" {
		priority = "normal"
	}
	return fmt.Sprintf("Priority: %s\nCreated by voicetasks", priority)
}
