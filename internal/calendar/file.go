package calendar

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"voicetasks/internal/model"
)

// FileExporter renders every task into one .ics document. It is all-or-nothing.
type FileExporter struct {
	dir string
	now func() time.Time
	loc *time.Location
}

// NewFileExporter writes exports into dir. An empty dir only returns the payload.
func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{dir: dir, now: time.Now, loc: time.Local}
}

func (e *FileExporter) Mode() string { return ModeFile }

func (e *FileExporter) ExportAll(ctx context.Context, tasks []model.Task) (*Result, error) {
	if len(tasks) == 0 {
		return nil, model.ErrEmptyInput
	}

	failed := &Result{Mode: ModeFile, Failed: len(tasks)}
	now := e.now()

	events := make([]model.CalendarEvent, 0, len(tasks))
	for _, task := range tasks {
		ev, err := EventFromTask(task, now, e.loc)
		if err != nil {
			return failed, fmt.Errorf("task %q: %w", task.Title, err)
		}
		events = append(events, ev)
	}

	if err := ctx.Err(); err != nil {
		return failed, err
	}

	payload := BuildICS(events, now)
	name := fmt.Sprintf("voicetasks-tasks-%d.ics", now.UnixMilli())

	result := &Result{
		Mode:       ModeFile,
		Successful: len(tasks),
		FileName:   name,
		Payload:    payload,
	}
	for _, ev := range events {
		result.EventIDs = append(result.EventIDs, ev.UID)
	}

	if e.dir != "" {
		path := filepath.Join(e.dir, name)
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			return failed, fmt.Errorf("failed to write calendar file: %w", err)
		}
		result.FilePath = path
		log.Printf("[Calendar] Wrote %d event(s) to %s", len(events), path)
	}

	return result, nil
}
