package capture

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"voicetasks/internal/model"
)

// MaxClipBytes is the largest clip the transcription endpoint accepts.
const MaxClipBytes = 25 * 1024 * 1024

// StreamRecorder buffers audio chunks uploaded by a client between Start and Stop,
// the server-side half of a browser MediaRecorder session.
type StreamRecorder struct {
	mu       sync.Mutex
	dir      string
	session  model.RecordingSession
	buf      bytes.Buffer
	mimeType string
	maxBytes int
	now      func() time.Time
}

// NewStreamRecorder creates a recorder that writes finished clips into dir
func NewStreamRecorder(dir string) *StreamRecorder {
	return &StreamRecorder{dir: dir, maxBytes: MaxClipBytes, now: time.Now}
}

// SetMaxBytes limits the total size of one recording.
func (r *StreamRecorder) SetMaxBytes(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maxBytes = n
}

func (r *StreamRecorder) Name() string {
	return "stream"
}

func (r *StreamRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session.Active {
		return model.ErrSessionActive
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", model.ErrDeviceUnavailable, err)
	}

	r.buf.Reset()
	r.mimeType = ""
	r.session = model.RecordingSession{Active: true, StartedAt: r.now()}
	log.Printf("[Capture stream] Session started")
	return nil
}

// WriteChunk appends audio data. The first chunk's MIME type wins.
// A chunk that would push the recording past the size limit is rejected
// and the session keeps what was already received.
func (r *StreamRecorder) WriteChunk(p []byte, mimeType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.session.Active {
		return model.ErrNoActiveSession
	}
	if r.maxBytes > 0 && r.buf.Len()+len(p) > r.maxBytes {
		return fmt.Errorf("%w: %d bytes buffered, chunk of %d bytes rejected", model.ErrClipTooLarge, r.buf.Len(), len(p))
	}
	if r.mimeType == "" && mimeType != "" {
		r.mimeType = normalizeMime(mimeType)
	}
	r.buf.Write(p)
	return nil
}

func (r *StreamRecorder) Stop(ctx context.Context) (*model.AudioClip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.session.Active {
		return nil, model.ErrNoActiveSession
	}
	startedAt := r.session.StartedAt
	r.session = model.RecordingSession{}

	if r.buf.Len() == 0 {
		return nil, model.ErrEmptyCapture
	}

	mimeType := r.mimeType
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	path := filepath.Join(r.dir, fmt.Sprintf("rec_%d%s", r.now().UnixNano(), extensionFor(mimeType)))
	if err := os.WriteFile(path, r.buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write clip: %w", err)
	}

	clip := &model.AudioClip{
		Locator:               path,
		MimeType:              mimeType,
		ApproximateDurationMs: r.now().Sub(startedAt).Milliseconds(),
		SizeBytes:             int64(r.buf.Len()),
	}
	r.buf.Reset()

	log.Printf("[Capture stream] Clip saved: %s (%d bytes)", clip.Locator, clip.SizeBytes)
	return clip, nil
}

func (r *StreamRecorder) Session() model.RecordingSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

func normalizeMime(m string) string {
	// "audio/webm;codecs=opus" -> "audio/webm"
	if i := strings.Index(m, ";"); i >= 0 {
		m = m[:i]
	}
	return strings.ToLower(strings.TrimSpace(m))
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/m4a", "audio/mp4", "audio/x-m4a":
		return ".m4a"
	case "audio/mpeg":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "audio/aac":
		return ".aac"
	default:
		return ".webm"
	}
}
