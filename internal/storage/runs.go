package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"voicetasks/internal/model"
	"voicetasks/internal/repository"
)

var _ repository.RunRepository = (*RunStore)(nil)

// RunStore keeps pipeline runs in memory for the lifetime of the process.
type RunStore struct {
	mu   sync.Mutex
	runs map[uuid.UUID]*model.PipelineRun
	now  func() time.Time
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[uuid.UUID]*model.PipelineRun),
		now:  time.Now,
	}
}

// Create registers a run in processing state and returns a copy of it.
func (s *RunStore) Create(clip *model.AudioClip, lang model.Language, provider string) *model.PipelineRun {
	run := &model.PipelineRun{
		ID:           uuid.New(),
		Language:     lang,
		AudioLocator: clip.Locator,
		Provider:     provider,
		Tasks:        []model.Task{},
		Status:       model.RunStatusProcessing,
		CreatedAt:    s.now(),
	}
	if clip.MimeType != "" {
		format := clip.MimeType
		run.AudioFormat = &format
	}
	if clip.ApproximateDurationMs > 0 {
		d := clip.ApproximateDurationMs
		run.AudioDurationMs = &d
	}
	if clip.SizeBytes > 0 {
		size := clip.SizeBytes
		run.AudioSizeBytes = &size
	}

	s.mu.Lock()
	s.runs[run.ID] = run
	s.mu.Unlock()

	return copyRun(run)
}

// Get retrieves a run by ID
func (s *RunStore) Get(id uuid.UUID) (*model.PipelineRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, false
	}
	return copyRun(run), true
}

// List returns up to limit runs, newest first. limit <= 0 returns all.
func (s *RunStore) List(limit int) []model.PipelineRun {
	s.mu.Lock()
	out := make([]model.PipelineRun, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, *copyRun(run))
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// MarkProcessed stores the transcript and extracted tasks and closes the run
func (s *RunStore) MarkProcessed(id uuid.UUID, transcript string, tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		run.Transcript = &transcript
		run.Tasks = append([]model.Task{}, tasks...)
		run.Status = model.RunStatusProcessed
		s.finish(run)
	}
}

// MarkFailed records the failure and closes the run. A failed run keeps
// neither transcript nor tasks.
func (s *RunStore) MarkFailed(id uuid.UUID, errorMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		run.Transcript = nil
		run.Tasks = []model.Task{}
		run.Status = model.RunStatusFailed
		run.ErrorMessage = &errorMsg
		s.finish(run)
	}
}

func (s *RunStore) finish(run *model.PipelineRun) {
	elapsed := s.now().Sub(run.CreatedAt).Milliseconds()
	run.ProcessingTimeMs = &elapsed
}

func copyRun(run *model.PipelineRun) *model.PipelineRun {
	c := *run
	c.Tasks = append([]model.Task{}, run.Tasks...)
	return &c
}
