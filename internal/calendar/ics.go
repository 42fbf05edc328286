package calendar

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"voicetasks/internal/model"
)

const (
	icsProdID       = "-//voicetasks//Voice to Tasks//EN"
	icsLineMaxBytes = 75
	icsDateLayout   = "20060102T150405Z"
)

// BuildICS renders events as a single VCALENDAR 2.0 document with CRLF line endings.
func BuildICS(events []model.CalendarEvent, stamp time.Time) []byte {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(foldLine(s))
		b.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:" + icsProdID)
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")

	for _, ev := range events {
		line("BEGIN:VEVENT")
		line("UID:" + ev.UID)
		line("DTSTAMP:" + formatICalDate(stamp))
		line("DTSTART:" + formatICalDate(ev.StartAt))
		line("DTEND:" + formatICalDate(ev.EndAt))
		line("SUMMARY:" + escapeText(ev.Title))
		line("DESCRIPTION:" + escapeText(ev.Description))
		for _, r := range ev.Reminders {
			minutes := r.OffsetMinutes
			if minutes < 0 {
				minutes = -minutes
			}
			line("BEGIN:VALARM")
			line(fmt.Sprintf("TRIGGER:-PT%dM", minutes))
			line("ACTION:DISPLAY")
			line("DESCRIPTION:" + alarmDescription(minutes))
			line("END:VALARM")
		}
		line("END:VEVENT")
	}

	line("END:VCALENDAR")
	return []byte(b.String())
}

func alarmDescription(minutes int) string {
	if minutes == 1440 {
		return "Task reminder (1 day before)"
	}
	return "Task reminder"
}

// formatICalDate formats t in UTC as YYYYMMDDTHHMMSSZ.
func formatICalDate(t time.Time) string {
	return t.UTC().Format(icsDateLayout)
}

var icsEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

func escapeText(s string) string {
	return icsEscaper.Replace(s)
}

// foldLine splits content lines longer than 75 octets without breaking UTF-8 sequences.
func foldLine(s string) string {
	if len(s) <= icsLineMaxBytes {
		return s
	}

	var b strings.Builder
	limit := icsLineMaxBytes
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		b.WriteString(s[:cut])
		b.WriteString("\r\n ")
		s = s[cut:]
		// continuation lines lose one octet to the leading space
		limit = icsLineMaxBytes - 1
	}
	b.WriteString(s)
	return b.String()
}
