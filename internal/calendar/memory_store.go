package calendar

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// StoredEvent is an event held by MemoryStore.
type StoredEvent struct {
	ID string
	EventRequest
}

// MemoryStore is an in-process calendar store.
type MemoryStore struct {
	mu        sync.Mutex
	granted   bool
	defaultID string
	calendars []Calendar
	events    map[string][]StoredEvent
}

// NewMemoryStore creates a store with access granted. Without calendars it holds
// a single writable default calendar.
func NewMemoryStore(calendars ...Calendar) *MemoryStore {
	s := &MemoryStore{
		granted: true,
		events:  make(map[string][]StoredEvent),
	}
	if len(calendars) == 0 {
		calendars = []Calendar{{
			ID:                  "local",
			Title:               "Tasks",
			SourceName:          "Local",
			SourceType:          "local",
			AllowsModifications: true,
			IsPrimary:           true,
		}}
		s.defaultID = "local"
	}
	s.calendars = append([]Calendar(nil), calendars...)
	return s
}

func (s *MemoryStore) Name() string { return "memory" }

// SetPermission grants or revokes calendar access.
func (s *MemoryStore) SetPermission(granted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.granted = granted
}

// SetDefault marks id as the default calendar. Empty clears it.
func (s *MemoryStore) SetDefault(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultID = id
}

func (s *MemoryStore) RequestPermission(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.granted, nil
}

func (s *MemoryStore) DefaultCalendar(ctx context.Context) (*Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.defaultID == "" {
		return nil, nil
	}
	for _, c := range s.calendars {
		if c.ID == s.defaultID {
			cal := c
			return &cal, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) Calendars(ctx context.Context) ([]Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Calendar(nil), s.calendars...), nil
}

func (s *MemoryStore) CreateEvent(ctx context.Context, req EventRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.writable(req.CalendarID) {
		return "", fmt.Errorf("calendar %q is not writable", req.CalendarID)
	}

	id := uuid.NewString()
	s.events[req.CalendarID] = append(s.events[req.CalendarID], StoredEvent{ID: id, EventRequest: req})
	return id, nil
}

// Events returns a copy of the events written to a calendar.
func (s *MemoryStore) Events(calendarID string) []StoredEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StoredEvent(nil), s.events[calendarID]...)
}

func (s *MemoryStore) writable(id string) bool {
	for _, c := range s.calendars {
		if c.ID == id {
			return c.AllowsModifications
		}
	}
	return false
}
