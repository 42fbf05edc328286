package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"voicetasks/internal/calendar"
	"voicetasks/internal/model"
)

// UserMessage turns a pipeline error into text fit for an end user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	if se, ok := model.AsServiceError(err); ok {
		if se.StatusCode == 0 {
			return "Could not reach the service. Check your connection and try again."
		}
		if se.Message != "" {
			return se.Message
		}
		return fmt.Sprintf("The service returned an error (%d).", se.StatusCode)
	}

	switch {
	case errors.Is(err, model.ErrPermissionDenied):
		return "Permission required: microphone or calendar access was denied."
	case errors.Is(err, model.ErrDeviceUnavailable):
		return "No audio input device is available."
	case errors.Is(err, model.ErrNoActiveSession):
		return "No recording in progress."
	case errors.Is(err, model.ErrSessionActive):
		return "A recording is already in progress."
	case errors.Is(err, model.ErrBusy):
		return "Still processing the previous recording. Try again in a moment."
	case errors.Is(err, model.ErrEmptyCapture):
		return "The recording was empty. Hold to record a little longer."
	case errors.Is(err, model.ErrClipTooLarge):
		return "The recording is too long. Audio is limited to 25MB."
	case errors.Is(err, model.ErrAuthenticationMissing):
		return "OpenAI API key not configured."
	case errors.Is(err, model.ErrEmptyResponse):
		return "No speech was recognized in the recording."
	case errors.Is(err, model.ErrMalformedResponse):
		return "Could not understand the task list returned by the assistant."
	case errors.Is(err, model.ErrNoWritableCalendar):
		return "Could not find a calendar to add events to."
	case errors.Is(err, model.ErrEmptyInput):
		return "There are no tasks to add to calendar."
	case errors.Is(err, model.ErrUnsupportedLanguage):
		return "Unsupported language. Choose English, French or Arabic."
	case errors.Is(err, calendar.ErrInvalidDueDate):
		return "A task has a due date that could not be read."
	case errors.Is(err, ErrChunksUnsupported):
		return "This recorder captures from a local device and does not accept uploaded audio."
	}

	return "Something went wrong: " + err.Error()
}

// ExportMessage summarizes an export for the user.
func ExportMessage(res *calendar.Result) string {
	if res == nil || res.Successful == 0 {
		return "Failed to add tasks to calendar"
	}

	if res.Mode == calendar.ModeFile {
		return fmt.Sprintf("A calendar file with %s has been created. Open it to import into Google Calendar or any calendar app.", plural(res.Successful, "task"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s added to calendar", plural(res.Successful, "task"))
	if res.Failed > 0 {
		fmt.Fprintf(&b, "\n%d failed", res.Failed)
	}
	return b.String()
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
