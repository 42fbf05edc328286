package output

import (
	"fmt"
	"io"
	"time"

	"voicetasks/internal/model"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) RecordingStarted(lang model.Language, recorder string) {
	fmt.Fprintf(f.w, "🎙️  Recording in %s via %s. Press Ctrl+C to stop.\n", lang.Name(), recorder)
}

func (f *Formatter) RecordingStopped(duration time.Duration) {
	fmt.Fprintf(f.w, "⏹️  Recording stopped (%s)\n", formatDuration(duration))
}

func (f *Formatter) Processing() {
	fmt.Fprintf(f.w, "📝 Transcribing and extracting tasks...\n")
}

func (f *Formatter) Transcript(text string) {
	fmt.Fprintf(f.w, "\n🗣️  %s\n", text)
}

func (f *Formatter) Tasks(tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Fprintf(f.w, "\n📋 No tasks found.\n")
		return
	}

	fmt.Fprintf(f.w, "\n📋 Tasks:\n\n")
	for i, t := range tasks {
		line := fmt.Sprintf("  %d. %s%s", i+1, priorityMark(t.Priority), t.Title)
		if t.DueDate != "" {
			line += fmt.Sprintf(" (due %s)", t.DueDate)
		}
		fmt.Fprintln(f.w, line)
	}
}

func (f *Formatter) ExportSaved(path string) {
	fmt.Fprintf(f.w, "📁 Calendar file saved: %s\n", path)
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s: %s\n", name, detail)
	}
}

func priorityMark(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "🔴 "
	case model.PriorityMedium:
		return "🟠 "
	case model.PriorityLow:
		return "🟢 "
	default:
		return ""
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
