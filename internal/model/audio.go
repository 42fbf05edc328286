package model

import "time"

// RecordingSession is the live capture owned by a recorder.
type RecordingSession struct {
	Active    bool      `json:"active"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

// AudioClip is a finalized recording ready for transcription.
type AudioClip struct {
	Locator               string `json:"locator"` // file path of the clip
	MimeType              string `json:"mime_type"`
	ApproximateDurationMs int64  `json:"approximate_duration_ms"`
	SizeBytes             int64  `json:"size_bytes"`
}

// Transcript is the speech-to-text result, tagged with the requested language.
type Transcript struct {
	Text     string   `json:"text"`
	Language Language `json:"language"`
}
