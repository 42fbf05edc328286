package model

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses
const (
	RunStatusProcessing = "processing"
	RunStatusProcessed  = "processed"
	RunStatusFailed     = "failed"
)

// PipelineRun records one pass through transcribe and extract
type PipelineRun struct {
	ID               uuid.UUID `json:"id"`
	Language         Language  `json:"language"`
	AudioLocator     string    `json:"audio_locator"`
	AudioFormat      *string   `json:"audio_format,omitempty"`
	AudioDurationMs  *int64    `json:"audio_duration_ms,omitempty"`
	AudioSizeBytes   *int64    `json:"audio_size_bytes,omitempty"`
	Provider         string    `json:"stt_provider"`
	Transcript       *string   `json:"transcript,omitempty"`
	Tasks            []Task    `json:"tasks"`
	Status           string    `json:"status"`
	ErrorMessage     *string   `json:"error_message,omitempty"`
	ProcessingTimeMs *int64    `json:"processing_time_ms,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
