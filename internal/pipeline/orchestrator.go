// Package pipeline drives one voice memo from capture through transcription
// and task extraction, and hands the tasks to the calendar exporter.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"voicetasks/internal/calendar"
	"voicetasks/internal/capture"
	"voicetasks/internal/model"
	"voicetasks/internal/repository"
	"voicetasks/internal/storage"
	"voicetasks/internal/stt"
)

// State of the orchestrator
type State string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StateProcessing State = "processing"
)

// ErrChunksUnsupported is returned when the recorder reads a local device
// and cannot accept audio pushed by a client.
var ErrChunksUnsupported = errors.New("recorder does not accept audio chunks")

// TaskExtractor turns a transcript into tasks.
type TaskExtractor interface {
	Extract(ctx context.Context, transcript *model.Transcript) ([]model.Task, error)
}

// Result is the outcome of one processed recording.
type Result struct {
	RunID      uuid.UUID      `json:"run_id"`
	Transcript string         `json:"transcript"`
	Language   model.Language `json:"language"`
	Tasks      []model.Task   `json:"tasks"`
}

// Status is a point-in-time view of the orchestrator.
type Status struct {
	State       State                  `json:"state"`
	Language    model.Language         `json:"language,omitempty"`
	Session     model.RecordingSession `json:"session"`
	Recorder    string                 `json:"recorder"`
	STTProvider string                 `json:"stt_provider"`
	ExportMode  string                 `json:"export_mode"`
}

// Orchestrator serializes gestures: requests arriving outside Idle are rejected, never queued.
type Orchestrator struct {
	recorder  capture.Recorder
	stt       stt.Provider
	extractor TaskExtractor
	exporter  calendar.Exporter
	runs      repository.RunRepository

	mu    sync.Mutex
	state State
	lang  model.Language
}

func New(recorder capture.Recorder, provider stt.Provider, extractor TaskExtractor, exporter calendar.Exporter, runs repository.RunRepository) *Orchestrator {
	if runs == nil {
		runs = storage.NewRunStore()
	}
	return &Orchestrator{
		recorder:  recorder,
		stt:       provider,
		extractor: extractor,
		exporter:  exporter,
		runs:      runs,
		state:     StateIdle,
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	st := Status{State: o.state, Language: o.lang}
	o.mu.Unlock()

	st.Recorder = o.recorder.Name()
	st.Session = o.recorder.Session()
	st.STTProvider = o.stt.Name()
	st.ExportMode = o.exporter.Mode()
	return st
}

// Runs exposes the run history.
func (o *Orchestrator) Runs() repository.RunRepository {
	return o.runs
}

// StartCapture moves Idle to Recording. The language is kept for the stop gesture.
func (o *Orchestrator) StartCapture(ctx context.Context, lang model.Language) error {
	lang, err := model.ParseLanguage(string(lang))
	if err != nil {
		return err
	}

	o.mu.Lock()
	if err := o.busyErr(); err != nil {
		o.mu.Unlock()
		return err
	}
	o.state = StateRecording
	o.lang = lang
	o.mu.Unlock()

	if err := o.recorder.Start(ctx); err != nil {
		o.reset()
		return fmt.Errorf("failed to start recording: %w", err)
	}

	log.Printf("[Pipeline] Recording started (%s, %s)", o.recorder.Name(), lang.Name())
	return nil
}

// WriteChunk forwards client audio to a stream recorder while Recording.
func (o *Orchestrator) WriteChunk(p []byte, mimeType string) error {
	if o.State() != StateRecording {
		return model.ErrNoActiveSession
	}
	w, ok := o.recorder.(capture.ChunkWriter)
	if !ok {
		return ErrChunksUnsupported
	}
	return w.WriteChunk(p, mimeType)
}

// StopCapture ends the recording and runs transcription then extraction.
// The orchestrator is Idle again when it returns, whatever the outcome.
func (o *Orchestrator) StopCapture(ctx context.Context) (*Result, error) {
	o.mu.Lock()
	switch o.state {
	case StateIdle:
		o.mu.Unlock()
		return nil, model.ErrNoActiveSession
	case StateProcessing:
		o.mu.Unlock()
		return nil, model.ErrBusy
	}
	o.state = StateProcessing
	lang := o.lang
	o.mu.Unlock()
	defer o.reset()

	clip, err := o.recorder.Stop(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to stop recording: %w", err)
	}

	return o.process(ctx, clip, lang)
}

// Process runs transcription then extraction on a clip recorded elsewhere.
func (o *Orchestrator) Process(ctx context.Context, clip *model.AudioClip, lang model.Language) (*Result, error) {
	lang, err := model.ParseLanguage(string(lang))
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return nil, model.ErrBusy
	}
	o.state = StateProcessing
	o.lang = lang
	o.mu.Unlock()
	defer o.reset()

	return o.process(ctx, clip, lang)
}

// Export hands tasks to the calendar exporter.
func (o *Orchestrator) Export(ctx context.Context, tasks []model.Task) (*calendar.Result, error) {
	return o.exporter.ExportAll(ctx, tasks)
}

// ExportMode reports whether exports write to a calendar or produce a file.
func (o *Orchestrator) ExportMode() string {
	return o.exporter.Mode()
}

func (o *Orchestrator) process(ctx context.Context, clip *model.AudioClip, lang model.Language) (*Result, error) {
	start := time.Now()
	run := o.runs.Create(clip, lang, o.stt.Name())

	log.Printf("[Pipeline] Run %s: transcribing %s with %s (language: %s)", run.ID, clip.Locator, o.stt.Name(), lang)
	transcript, err := o.stt.Transcribe(ctx, clip, lang)
	if err != nil {
		o.runs.MarkFailed(run.ID, err.Error())
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	tasks, err := o.extractor.Extract(ctx, transcript)
	if err != nil {
		o.runs.MarkFailed(run.ID, err.Error())
		return nil, fmt.Errorf("task extraction failed: %w", err)
	}
	o.runs.MarkProcessed(run.ID, transcript.Text, tasks)

	log.Printf("[Pipeline] Run %s: %d task(s) extracted in %v", run.ID, len(tasks), time.Since(start))
	return &Result{
		RunID:      run.ID,
		Transcript: transcript.Text,
		Language:   transcript.Language,
		Tasks:      tasks,
	}, nil
}

// busyErr must be called with mu held.
func (o *Orchestrator) busyErr() error {
	switch o.state {
	case StateRecording:
		return model.ErrSessionActive
	case StateProcessing:
		return model.ErrBusy
	}
	return nil
}

func (o *Orchestrator) reset() {
	o.mu.Lock()
	o.state = StateIdle
	o.mu.Unlock()
}
