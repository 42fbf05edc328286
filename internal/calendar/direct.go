package calendar

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"voicetasks/internal/model"
)

// DirectExporter writes each task as an event into a Store.
type DirectExporter struct {
	store           Store
	primaryProvider string
	now             func() time.Time
	loc             *time.Location
}

// NewDirectExporter creates an exporter that writes into store. primaryProvider names
// the account source (e.g. "Google") preferred when the store has no default calendar.
func NewDirectExporter(store Store, primaryProvider string) *DirectExporter {
	return &DirectExporter{
		store:           store,
		primaryProvider: primaryProvider,
		now:             time.Now,
		loc:             time.Local,
	}
}

func (e *DirectExporter) Mode() string { return ModeDirect }

// ExportAll writes tasks sequentially. A failed write only bumps the failure count.
func (e *DirectExporter) ExportAll(ctx context.Context, tasks []model.Task) (*Result, error) {
	if len(tasks) == 0 {
		return nil, model.ErrEmptyInput
	}

	result := &Result{Mode: ModeDirect}

	granted, err := e.store.RequestPermission(ctx)
	if err != nil || !granted {
		result.Failed = len(tasks)
		if err != nil {
			return result, fmt.Errorf("%w: %v", model.ErrPermissionDenied, err)
		}
		return result, model.ErrPermissionDenied
	}

	cal, err := e.resolveCalendar(ctx)
	if err != nil {
		result.Failed = len(tasks)
		return result, err
	}

	log.Printf("[Calendar] Writing %d task(s) to %q (%s) via %s", len(tasks), cal.Title, cal.SourceName, e.store.Name())

	now := e.now()
	for _, task := range tasks {
		ev, err := EventFromTask(task, now, e.loc)
		if err != nil {
			log.Printf("[Calendar] Skipping task %q: %v", task.Title, err)
			result.Failed++
			continue
		}

		id, err := e.store.CreateEvent(ctx, requestFromEvent(cal.ID, ev))
		if err != nil {
			log.Printf("[Calendar] Failed to create event %q: %v", task.Title, err)
			result.Failed++
			continue
		}

		result.Successful++
		result.EventIDs = append(result.EventIDs, id)
	}

	log.Printf("[Calendar] Export finished: %d successful, %d failed", result.Successful, result.Failed)
	return result, nil
}

// resolveCalendar picks the store default, then the first writable calendar of the
// primary provider, then any writable calendar.
func (e *DirectExporter) resolveCalendar(ctx context.Context) (*Calendar, error) {
	def, err := e.store.DefaultCalendar(ctx)
	if err != nil {
		log.Printf("[Calendar] Warning: default calendar lookup failed: %v", err)
	} else if def != nil {
		return def, nil
	}

	calendars, err := e.store.Calendars(ctx)
	if err != nil {
		log.Printf("[Calendar] Warning: failed to list calendars: %v", err)
		return nil, model.ErrNoWritableCalendar
	}

	for i := range calendars {
		c := calendars[i]
		if c.AllowsModifications && (c.IsPrimary || e.isPrimaryProvider(c)) {
			return &c, nil
		}
	}
	for i := range calendars {
		if calendars[i].AllowsModifications {
			c := calendars[i]
			return &c, nil
		}
	}

	log.Printf("[Calendar] No writable calendar among %d:", len(calendars))
	for _, c := range calendars {
		log.Printf("[Calendar]   - %s (source: %s/%s, writable: %t)", c.Title, c.SourceName, c.SourceType, c.AllowsModifications)
	}
	return nil, model.ErrNoWritableCalendar
}

func (e *DirectExporter) isPrimaryProvider(c Calendar) bool {
	if e.primaryProvider == "" {
		return false
	}
	p := strings.ToLower(e.primaryProvider)
	return strings.ToLower(c.SourceName) == p || strings.Contains(strings.ToLower(c.SourceType), p)
}
