package repository

import (
	"github.com/google/uuid"

	"voicetasks/internal/model"
)

// RunRepository defines data access for pipeline runs
type RunRepository interface {
	// Create registers a run in processing state
	Create(clip *model.AudioClip, lang model.Language, provider string) *model.PipelineRun

	// MarkProcessed stores the transcript and extracted tasks and closes the run
	MarkProcessed(id uuid.UUID, transcript string, tasks []model.Task)

	// MarkFailed records the error and closes the run without any partial results
	MarkFailed(id uuid.UUID, errorMsg string)

	// Get retrieves a run by ID
	Get(id uuid.UUID) (*model.PipelineRun, bool)

	// List returns the most recent runs first
	List(limit int) []model.PipelineRun
}
