package model

import (
	"errors"
	"fmt"
)

var (
	ErrPermissionDenied      = errors.New("permission denied")
	ErrDeviceUnavailable     = errors.New("audio input device unavailable")
	ErrNoActiveSession       = errors.New("no recording in progress")
	ErrEmptyCapture          = errors.New("recording captured no audio")
	ErrClipTooLarge          = errors.New("recording exceeds the size limit")
	ErrSessionActive         = errors.New("a recording is already in progress")
	ErrAuthenticationMissing = errors.New("API credential not configured")
	ErrEmptyResponse         = errors.New("transcription service returned no text")
	ErrMalformedResponse     = errors.New("malformed task extraction response")
	ErrNoWritableCalendar    = errors.New("no writable calendar found")
	ErrEmptyInput            = errors.New("no tasks to export")
	ErrBusy                  = errors.New("pipeline is busy")
	ErrUnsupportedLanguage   = errors.New("unsupported language")
)

// ServiceError is a non-success answer from a remote API.
// StatusCode is 0 when the request never got an HTTP response.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("service unreachable: %s", e.Message)
	}
	return fmt.Sprintf("service returned status %d: %s", e.StatusCode, e.Message)
}

// AsServiceError unwraps err into a *ServiceError when possible.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
