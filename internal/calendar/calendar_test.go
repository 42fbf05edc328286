package calendar

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicetasks/internal/config"
	"voicetasks/internal/model"
)

var fixedNow = time.Date(2025, 3, 10, 15, 4, 5, 0, time.UTC)

func TestRemindersFor(t *testing.T) {
	tests := []struct {
		priority model.Priority
		want     []int
	}{
		{model.PriorityHigh, []int{-60, -1440}},
		{"HIGH", []int{-60, -1440}},
		{model.PriorityMedium, []int{-60}},
		{model.PriorityLow, []int{-30}},
		{"", []int{-30}},
		{"urgent", []int{-30}},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			var got []int
			for _, r := range RemindersFor(tt.priority) {
				got = append(got, r.OffsetMinutes)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEventFromTask(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)

	t.Run("due date at nine local", func(t *testing.T) {
		ev, err := EventFromTask(model.Task{Title: "Call mom", DueDate: "2025-03-14", Priority: model.PriorityHigh}, fixedNow, loc)
		require.NoError(t, err)

		assert.Equal(t, time.Date(2025, 3, 14, 9, 0, 0, 0, loc), ev.StartAt)
		assert.Equal(t, time.Hour, ev.EndAt.Sub(ev.StartAt))
		assert.Equal(t, "Call mom", ev.Title)
		assert.Equal(t, "Priority: high\nCreated by voicetasks", ev.Description)
		assert.Len(t, ev.Reminders, 2)
		assert.True(t, strings.HasSuffix(ev.UID, "@voicetasks"))
	})

	t.Run("no due date means tomorrow", func(t *testing.T) {
		ev, err := EventFromTask(model.Task{Title: "Buy milk"}, fixedNow, loc)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 11, 9, 0, 0, 0, loc), ev.StartAt)
		assert.Contains(t, ev.Description, "Priority: normal")
	})

	t.Run("rfc3339 due date uses its day", func(t *testing.T) {
		ev, err := EventFromTask(model.Task{Title: "x", DueDate: "2025-04-01T18:30:00+02:00"}, fixedNow, loc)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 4, 1, 9, 0, 0, 0, loc), ev.StartAt)
	})

	t.Run("garbage due date", func(t *testing.T) {
		_, err := EventFromTask(model.Task{Title: "x", DueDate: "next blursday"}, fixedNow, loc)
		assert.ErrorIs(t, err, ErrInvalidDueDate)
	})

	t.Run("fresh uid per call", func(t *testing.T) {
		task := model.Task{Title: "same"}
		a, err := EventFromTask(task, fixedNow, loc)
		require.NoError(t, err)
		b, err := EventFromTask(task, fixedNow, loc)
		require.NoError(t, err)
		assert.NotEqual(t, a.UID, b.UID)
	})
}

// parseICS unfolds content lines and groups VEVENT properties.
func parseICS(t *testing.T, payload []byte) (header []string, events []map[string]string) {
	t.Helper()

	raw := string(payload)
	require.True(t, strings.HasSuffix(raw, "\r\n"))
	raw = strings.ReplaceAll(raw, "\r\n ", "")

	var current map[string]string
	for _, line := range strings.Split(strings.TrimSuffix(raw, "\r\n"), "\r\n") {
		require.NotContains(t, line, "\n", "bare LF in content line")
		switch {
		case line == "BEGIN:VEVENT":
			current = map[string]string{}
		case line == "END:VEVENT":
			events = append(events, current)
			current = nil
		case current != nil:
			key, value, _ := strings.Cut(line, ":")
			if _, seen := current[key]; !seen {
				current[key] = value
			}
		default:
			header = append(header, line)
		}
	}
	return header, events
}

func unescapeICS(s string) string {
	return strings.NewReplacer(`\\`, `\`, `\;`, ";", `\,`, ",", `\n`, "\n").Replace(s)
}

func TestBuildICS(t *testing.T) {
	titles := []string{
		"Buy milk",
		"Call mom; then dad, maybe",
		"Line one\nline two",
		strings.Repeat("اتصل بأمي غدا ", 12),
	}

	var events []model.CalendarEvent
	for _, title := range titles {
		ev, err := EventFromTask(model.Task{Title: title, DueDate: "2025-03-14", Priority: model.PriorityHigh}, fixedNow, time.UTC)
		require.NoError(t, err)
		events = append(events, ev)
	}

	payload := BuildICS(events, fixedNow)

	for _, line := range strings.Split(string(payload), "\r\n") {
		assert.LessOrEqual(t, len(line), 75)
	}

	header, parsed := parseICS(t, payload)
	assert.Equal(t, []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//voicetasks//Voice to Tasks//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"END:VCALENDAR",
	}, header)

	require.Len(t, parsed, len(titles))
	for i, ev := range parsed {
		assert.Equal(t, titles[i], unescapeICS(ev["SUMMARY"]))
		assert.Equal(t, "20250314T090000Z", ev["DTSTART"])
		assert.Equal(t, "20250314T100000Z", ev["DTEND"])
		assert.Equal(t, "20250310T150405Z", ev["DTSTAMP"])
		assert.Equal(t, "Priority: high\nCreated by voicetasks", unescapeICS(ev["DESCRIPTION"]))
		assert.Equal(t, events[i].UID, ev["UID"])
	}

	assert.Equal(t, len(titles), strings.Count(string(payload), "TRIGGER:-PT60M"))
	assert.Equal(t, len(titles), strings.Count(string(payload), "TRIGGER:-PT1440M"))
	assert.Equal(t, 2*len(titles), strings.Count(string(payload), "ACTION:DISPLAY"))
}

func newTestFileExporter(dir string) *FileExporter {
	e := NewFileExporter(dir)
	e.now = func() time.Time { return fixedNow }
	e.loc = time.UTC
	return e
}

func TestFileExporter(t *testing.T) {
	tasks := []model.Task{
		{Title: "Buy milk", DueDate: "2025-03-11", Priority: model.PriorityMedium},
		{Title: "Call mom", Priority: model.PriorityLow},
	}

	t.Run("writes one document", func(t *testing.T) {
		dir := t.TempDir()
		res, err := newTestFileExporter(dir).ExportAll(context.Background(), tasks)
		require.NoError(t, err)

		assert.Equal(t, ModeFile, res.Mode)
		assert.Equal(t, 2, res.Successful)
		assert.Equal(t, 0, res.Failed)
		assert.Regexp(t, regexp.MustCompile(`^voicetasks-tasks-\d+\.ics$`), res.FileName)
		assert.Equal(t, filepath.Join(dir, res.FileName), res.FilePath)

		onDisk, err := os.ReadFile(res.FilePath)
		require.NoError(t, err)
		assert.Equal(t, res.Payload, onDisk)

		_, events := parseICS(t, onDisk)
		require.Len(t, events, 2)
		assert.Equal(t, "Buy milk", events[0]["SUMMARY"])
		assert.Equal(t, "Call mom", events[1]["SUMMARY"])
	})

	t.Run("two exports never share a uid", func(t *testing.T) {
		e := newTestFileExporter("")
		first, err := e.ExportAll(context.Background(), tasks)
		require.NoError(t, err)
		second, err := e.ExportAll(context.Background(), tasks)
		require.NoError(t, err)

		assert.Empty(t, first.FilePath)
		for _, id := range first.EventIDs {
			assert.NotContains(t, second.EventIDs, id)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		dir := t.TempDir()
		res, err := newTestFileExporter(dir).ExportAll(context.Background(), nil)
		assert.ErrorIs(t, err, model.ErrEmptyInput)
		assert.Nil(t, res)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("all or nothing", func(t *testing.T) {
		bad := append([]model.Task{{Title: "broken", DueDate: "someday"}}, tasks...)
		res, err := newTestFileExporter(t.TempDir()).ExportAll(context.Background(), bad)
		assert.ErrorIs(t, err, ErrInvalidDueDate)
		require.NotNil(t, res)
		assert.Equal(t, 0, res.Successful)
		assert.Equal(t, 3, res.Failed)
	})
}

type fakeStore struct {
	granted    bool
	permErr    error
	def        *Calendar
	calendars  []Calendar
	listErr    error
	failTitles map[string]bool
	calls      int
	created    []EventRequest
}

func (f *fakeStore) Name() string { return "fake" }

func (f *fakeStore) RequestPermission(ctx context.Context) (bool, error) {
	f.calls++
	return f.granted, f.permErr
}

func (f *fakeStore) DefaultCalendar(ctx context.Context) (*Calendar, error) {
	f.calls++
	return f.def, nil
}

func (f *fakeStore) Calendars(ctx context.Context) ([]Calendar, error) {
	f.calls++
	return f.calendars, f.listErr
}

func (f *fakeStore) CreateEvent(ctx context.Context, req EventRequest) (string, error) {
	f.calls++
	if f.failTitles[req.Title] {
		return "", errors.New("write rejected")
	}
	f.created = append(f.created, req)
	return "evt-" + req.Title, nil
}

func newTestDirectExporter(store Store) *DirectExporter {
	e := NewDirectExporter(store, "Google")
	e.now = func() time.Time { return fixedNow }
	e.loc = time.UTC
	return e
}

func TestDirectExporter_EmptyInputTouchesNothing(t *testing.T) {
	store := &fakeStore{granted: true}
	res, err := newTestDirectExporter(store).ExportAll(context.Background(), []model.Task{})
	assert.ErrorIs(t, err, model.ErrEmptyInput)
	assert.Nil(t, res)
	assert.Zero(t, store.calls)
}

func TestDirectExporter_PermissionDenied(t *testing.T) {
	tasks := []model.Task{{Title: "a"}, {Title: "b"}}

	for name, store := range map[string]*fakeStore{
		"denied": {granted: false},
		"error":  {permErr: errors.New("bridge offline")},
	} {
		t.Run(name, func(t *testing.T) {
			res, err := newTestDirectExporter(store).ExportAll(context.Background(), tasks)
			assert.ErrorIs(t, err, model.ErrPermissionDenied)
			require.NotNil(t, res)
			assert.Equal(t, 0, res.Successful)
			assert.Equal(t, 2, res.Failed)
			assert.Empty(t, store.created)
		})
	}
}

func TestDirectExporter_CalendarPrecedence(t *testing.T) {
	readOnly := Calendar{ID: "holidays", Title: "Holidays", SourceName: "Google", AllowsModifications: false}
	local := Calendar{ID: "local", Title: "Local", SourceName: "Local", AllowsModifications: true}
	google := Calendar{ID: "google", Title: "Work", SourceName: "Google", AllowsModifications: true}
	exchange := Calendar{ID: "exchange", Title: "Exchange", SourceName: "Exchange", AllowsModifications: true, IsPrimary: true}
	def := Calendar{ID: "default", Title: "Default", AllowsModifications: true}

	tests := []struct {
		name  string
		store *fakeStore
		want  string
	}{
		{"platform default wins", &fakeStore{def: &def, calendars: []Calendar{local, google}}, "default"},
		{"primary provider next", &fakeStore{calendars: []Calendar{readOnly, local, google}}, "google"},
		{"primary flag counts as primary", &fakeStore{calendars: []Calendar{local, exchange}}, "exchange"},
		{"first writable last", &fakeStore{calendars: []Calendar{readOnly, local}}, "local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.store.granted = true
			res, err := newTestDirectExporter(tt.store).ExportAll(context.Background(), []model.Task{{Title: "t"}})
			require.NoError(t, err)
			assert.Equal(t, 1, res.Successful)
			require.Len(t, tt.store.created, 1)
			assert.Equal(t, tt.want, tt.store.created[0].CalendarID)
		})
	}
}

func TestDirectExporter_NoWritableCalendar(t *testing.T) {
	tasks := []model.Task{{Title: "a"}, {Title: "b"}, {Title: "c"}}

	for name, store := range map[string]*fakeStore{
		"read only":   {granted: true, calendars: []Calendar{{ID: "ro", Title: "Birthdays"}}},
		"list failed": {granted: true, listErr: errors.New("boom")},
	} {
		t.Run(name, func(t *testing.T) {
			res, err := newTestDirectExporter(store).ExportAll(context.Background(), tasks)
			assert.ErrorIs(t, err, model.ErrNoWritableCalendar)
			require.NotNil(t, res)
			assert.Equal(t, 0, res.Successful)
			assert.Equal(t, 3, res.Failed)
		})
	}
}

func TestDirectExporter_PartialFailure(t *testing.T) {
	store := &fakeStore{
		granted:    true,
		calendars:  []Calendar{{ID: "c1", Title: "Tasks", AllowsModifications: true}},
		failTitles: map[string]bool{"second": true},
	}
	tasks := []model.Task{
		{Title: "first", Priority: model.PriorityHigh, DueDate: "2025-03-12"},
		{Title: "second"},
		{Title: "third", DueDate: "not a date"},
		{Title: "fourth", Priority: model.PriorityMedium},
	}

	res, err := newTestDirectExporter(store).ExportAll(context.Background(), tasks)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Successful)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, []string{"evt-first", "evt-fourth"}, res.EventIDs)

	require.Len(t, store.created, 2)
	first := store.created[0]
	assert.Equal(t, time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC), first.StartDate)
	assert.Equal(t, time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC), first.EndDate)
	assert.Equal(t, []model.Reminder{{OffsetMinutes: -60}, {OffsetMinutes: -1440}}, first.Alarms)
	assert.Equal(t, "Priority: high\nCreated by voicetasks", first.Notes)
	assert.Equal(t, []model.Reminder{{OffsetMinutes: -60}}, store.created[1].Alarms)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	e := newTestDirectExporter(store)

	res, err := e.ExportAll(context.Background(), []model.Task{{Title: "Buy milk"}, {Title: "Call mom"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Successful)

	events := store.Events("local")
	require.Len(t, events, 2)
	assert.Equal(t, "Buy milk", events[0].Title)
	assert.Equal(t, res.EventIDs[0], events[0].ID)

	store.SetPermission(false)
	_, err = e.ExportAll(context.Background(), []model.Task{{Title: "x"}})
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
	assert.Len(t, store.Events("local"), 2)
}

func TestNewFromConfig(t *testing.T) {
	t.Run("file by default", func(t *testing.T) {
		exp, closeFn, err := NewFromConfig(&config.Config{CalendarBackend: config.CalendarFile, ExportDir: t.TempDir()})
		require.NoError(t, err)
		defer closeFn()
		assert.Equal(t, ModeFile, exp.Mode())
	})

	t.Run("memory store is direct", func(t *testing.T) {
		exp, closeFn, err := NewFromConfig(&config.Config{CalendarBackend: config.CalendarMemory})
		require.NoError(t, err)
		defer closeFn()
		assert.Equal(t, ModeDirect, exp.Mode())
	})

	t.Run("unreachable bridge falls back to file", func(t *testing.T) {
		exp, closeFn, err := NewFromConfig(&config.Config{CalendarBackend: config.CalendarMQTT, ExportDir: t.TempDir()})
		require.NoError(t, err)
		defer closeFn()
		assert.Equal(t, ModeFile, exp.Mode())
	})
}
