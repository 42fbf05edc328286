package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"voicetasks/internal/model"
)

// wavHeaderSize is the size of a WAV file with no samples.
const wavHeaderSize = 44

var (
	startupGrace = 300 * time.Millisecond
	stopTimeout  = 5 * time.Second
)

// FFmpegRecorder records the default microphone to a 16 kHz mono WAV via ffmpeg.
type FFmpegRecorder struct {
	ffmpegPath  string
	inputFormat string
	inputDevice string
	dir         string

	mu      sync.Mutex
	session model.RecordingSession
	cmd     *exec.Cmd
	done    chan error
	stderr  *bytes.Buffer
	path    string
}

// NewFFmpegRecorder creates a microphone recorder
func NewFFmpegRecorder(ffmpegPath, inputFormat, inputDevice, dir string) *FFmpegRecorder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegRecorder{
		ffmpegPath:  ffmpegPath,
		inputFormat: inputFormat,
		inputDevice: inputDevice,
		dir:         dir,
	}
}

func (r *FFmpegRecorder) Name() string {
	return "ffmpeg"
}

// CheckFFmpeg reports whether the ffmpeg binary can be found.
func (r *FFmpegRecorder) CheckFFmpeg() error {
	if _, err := exec.LookPath(r.ffmpegPath); err != nil {
		return fmt.Errorf("%w: ffmpeg not found (%s). Install with: brew install ffmpeg / apt install ffmpeg",
			model.ErrDeviceUnavailable, r.ffmpegPath)
	}
	return nil
}

func (r *FFmpegRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session.Active {
		return model.ErrSessionActive
	}
	if err := r.CheckFFmpeg(); err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", model.ErrDeviceUnavailable, err)
	}

	now := time.Now()
	path := filepath.Join(r.dir, fmt.Sprintf("rec_%d.wav", now.UnixNano()))

	// Not tied to ctx: the recording outlives the request that started it.
	cmd := exec.Command(r.ffmpegPath,
		"-hide_banner",
		"-loglevel", "error",
		"-f", r.inputFormat,
		"-i", r.inputDevice,
		"-ac", "1",
		"-ar", "16000",
		"-y",
		path,
	)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrDeviceUnavailable, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	// ffmpeg exits almost immediately when the input cannot be opened
	select {
	case err := <-done:
		return classifyStartFailure(err, stderr.String())
	case <-time.After(startupGrace):
	}

	r.cmd = cmd
	r.done = done
	r.stderr = stderr
	r.path = path
	r.session = model.RecordingSession{Active: true, StartedAt: now}

	log.Printf("[Capture ffmpeg] Recording to %s (pid %d)", path, cmd.Process.Pid)
	return nil
}

func (r *FFmpegRecorder) Stop(ctx context.Context) (*model.AudioClip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.session.Active {
		return nil, model.ErrNoActiveSession
	}
	startedAt := r.session.StartedAt
	path := r.path
	r.session = model.RecordingSession{}

	if err := interrupt(r.cmd.Process); err != nil {
		log.Printf("[Capture ffmpeg] Interrupt failed, killing: %v", err)
		_ = r.cmd.Process.Kill()
	}

	select {
	case err := <-r.done:
		if err != nil {
			// ffmpeg exits 255 on SIGINT after writing the trailer
			log.Printf("[Capture ffmpeg] ffmpeg exited: %v", err)
		}
	case <-time.After(stopTimeout):
		_ = r.cmd.Process.Kill()
		<-r.done
	}
	r.cmd = nil

	info, err := os.Stat(path)
	if err != nil || info.Size() <= wavHeaderSize {
		return nil, model.ErrEmptyCapture
	}

	clip := &model.AudioClip{
		Locator:               path,
		MimeType:              "audio/wav",
		ApproximateDurationMs: time.Since(startedAt).Milliseconds(),
		SizeBytes:             info.Size(),
	}
	log.Printf("[Capture ffmpeg] Clip saved: %s (%d bytes)", clip.Locator, clip.SizeBytes)
	return clip, nil
}

func (r *FFmpegRecorder) Session() model.RecordingSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

func interrupt(p *os.Process) error {
	if runtime.GOOS == "windows" {
		return errors.New("interrupt not supported on windows")
	}
	return p.Signal(os.Interrupt)
}

func classifyStartFailure(exitErr error, stderr string) error {
	msg := strings.TrimSpace(stderr)
	lower := strings.ToLower(msg)
	for _, marker := range []string{"permission denied", "not authorized", "operation not permitted"} {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("%w: %s", model.ErrPermissionDenied, msg)
		}
	}
	if msg == "" && exitErr != nil {
		msg = exitErr.Error()
	}
	return fmt.Errorf("%w: %s", model.ErrDeviceUnavailable, msg)
}
