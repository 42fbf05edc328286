package capture

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicetasks/internal/config"
	"voicetasks/internal/model"
)

func TestStreamRecorderLifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewStreamRecorder(t.TempDir())

	_, err := r.Stop(ctx)
	assert.ErrorIs(t, err, model.ErrNoActiveSession)
	assert.ErrorIs(t, r.WriteChunk([]byte("x"), "audio/webm"), model.ErrNoActiveSession)

	require.NoError(t, r.Start(ctx))
	assert.True(t, r.Session().Active)
	assert.ErrorIs(t, r.Start(ctx), model.ErrSessionActive, "second session is a precondition violation")

	require.NoError(t, r.WriteChunk([]byte("abc"), "audio/webm;codecs=opus"))
	require.NoError(t, r.WriteChunk([]byte("def"), "audio/ogg"))

	clip, err := r.Stop(ctx)
	require.NoError(t, err)
	assert.False(t, r.Session().Active)
	assert.Equal(t, "audio/webm", clip.MimeType)
	assert.Equal(t, int64(6), clip.SizeBytes)
	assert.Equal(t, ".webm", filepath.Ext(clip.Locator))

	data, err := os.ReadFile(clip.Locator)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(data))
}

func TestStreamRecorderEmptyCapture(t *testing.T) {
	ctx := context.Background()
	r := NewStreamRecorder(t.TempDir())

	require.NoError(t, r.Start(ctx))
	_, err := r.Stop(ctx)
	assert.ErrorIs(t, err, model.ErrEmptyCapture)
	assert.False(t, r.Session().Active, "session ends even when empty")

	// a fresh session can start afterwards
	require.NoError(t, r.Start(ctx))
}

func TestStreamRecorderSizeLimit(t *testing.T) {
	ctx := context.Background()
	r := NewStreamRecorder(t.TempDir())
	r.SetMaxBytes(10)

	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.WriteChunk([]byte("123456"), "audio/webm"))
	require.NoError(t, r.WriteChunk([]byte("7890"), "audio/webm"), "reaching the limit exactly is allowed")

	err := r.WriteChunk([]byte("x"), "audio/webm")
	assert.ErrorIs(t, err, model.ErrClipTooLarge)
	assert.True(t, r.Session().Active, "a rejected chunk does not end the session")

	clip, err := r.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), clip.SizeBytes)

	// the limit applies per recording
	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.WriteChunk([]byte("0123456789"), "audio/webm"))
	_, err = r.Stop(ctx)
	require.NoError(t, err)
}

func TestStreamRecorderDefaultLimit(t *testing.T) {
	r := NewStreamRecorder(t.TempDir())
	assert.Equal(t, MaxClipBytes, r.maxBytes)
}

func TestFFmpegRecorderMissingBinary(t *testing.T) {
	r := NewFFmpegRecorder(filepath.Join(t.TempDir(), "no-such-ffmpeg"), "pulse", "default", t.TempDir())
	err := r.Start(context.Background())
	assert.ErrorIs(t, err, model.ErrDeviceUnavailable)
	assert.False(t, r.Session().Active)

	_, err = r.Stop(context.Background())
	assert.ErrorIs(t, err, model.ErrNoActiveSession)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake ffmpeg needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestFFmpegRecorderPermissionDenied(t *testing.T) {
	script := writeScript(t, "echo 'Input/output error: Permission denied' >&2\nexit 1\n")
	r := NewFFmpegRecorder(script, "pulse", "default", t.TempDir())

	err := r.Start(context.Background())
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
	assert.False(t, r.Session().Active)
}

func TestFFmpegRecorderRecordsUntilStopped(t *testing.T) {
	// last argument is the output path
	script := writeScript(t, `for a; do out="$a"; done
printf 'RIFF0000WAVEfmt 0000000000000000000000000000000000000000000000000000000000000000' > "$out"
trap 'exit 0' INT
while true; do sleep 0.05; done
`)
	r := NewFFmpegRecorder(script, "pulse", "default", t.TempDir())
	ctx := context.Background()

	require.NoError(t, r.Start(ctx))
	assert.True(t, r.Session().Active)
	assert.ErrorIs(t, r.Start(ctx), model.ErrSessionActive)

	time.Sleep(50 * time.Millisecond)
	clip, err := r.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "audio/wav", clip.MimeType)
	assert.Greater(t, clip.SizeBytes, int64(wavHeaderSize))
	assert.FileExists(t, clip.Locator)
}

func TestFFmpegRecorderEmptyCapture(t *testing.T) {
	script := writeScript(t, `for a; do out="$a"; done
: > "$out"
trap 'exit 0' INT
while true; do sleep 0.05; done
`)
	r := NewFFmpegRecorder(script, "pulse", "default", t.TempDir())
	require.NoError(t, r.Start(context.Background()))

	_, err := r.Stop(context.Background())
	assert.ErrorIs(t, err, model.ErrEmptyCapture)
}

func TestNewSelectsBackend(t *testing.T) {
	rec, err := New(&config.Config{CaptureBackend: config.CaptureStream, CaptureDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "stream", rec.Name())
	_, ok := rec.(ChunkWriter)
	assert.True(t, ok)

	rec, err = New(&config.Config{CaptureBackend: config.CaptureFFmpeg, CaptureDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "ffmpeg", rec.Name())
	_, ok = rec.(ChunkWriter)
	assert.False(t, ok)

	_, err = New(&config.Config{CaptureBackend: "webrtc"})
	assert.Error(t, err)
}

func TestClipFromFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "memo.M4A")
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0o644))
	clip, err := ClipFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "audio/m4a", clip.MimeType)
	assert.Equal(t, int64(5), clip.SizeBytes)

	empty := filepath.Join(dir, "empty.wav")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = ClipFromFile(empty)
	assert.ErrorIs(t, err, model.ErrEmptyCapture)

	_, err = ClipFromFile(filepath.Join(dir, "missing.wav"))
	assert.Error(t, err)
}
