// Package capture records audio clips from a microphone or from chunks
// pushed by a client, behind a single Recorder interface.
package capture

import (
	"context"
	"fmt"
	"log"

	"voicetasks/internal/config"
	"voicetasks/internal/model"
)

// Recorder starts and stops one recording session at a time.
type Recorder interface {
	// Start opens the input. A second Start while active fails with model.ErrSessionActive.
	Start(ctx context.Context) error
	// Stop finalizes the buffered audio into a clip and releases the input.
	Stop(ctx context.Context) (*model.AudioClip, error)
	// Session reports the live session, if any.
	Session() model.RecordingSession
	// Name identifies the backend, e.g. "ffmpeg".
	Name() string
}

// ChunkWriter is implemented by recorders fed by the client instead of a device.
type ChunkWriter interface {
	WriteChunk(p []byte, mimeType string) error
}

// New returns the recorder selected by cfg.CaptureBackend.
func New(cfg *config.Config) (Recorder, error) {
	switch cfg.CaptureBackend {
	case "", config.CaptureStream:
		log.Printf("[Capture] Using stream recorder (dir: %s)", cfg.CaptureDir)
		return NewStreamRecorder(cfg.CaptureDir), nil
	case config.CaptureFFmpeg:
		log.Printf("[Capture] Using ffmpeg recorder (%s %s)", cfg.FFmpegInputFormat, cfg.FFmpegInputDevice)
		return NewFFmpegRecorder(cfg.FFmpegPath, cfg.FFmpegInputFormat, cfg.FFmpegInputDevice, cfg.CaptureDir), nil
	default:
		return nil, fmt.Errorf("unsupported capture backend: %s. Supported: stream, ffmpeg", cfg.CaptureBackend)
	}
}
