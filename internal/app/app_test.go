package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicetasks/internal/calendar"
	"voicetasks/internal/config"
	"voicetasks/internal/pipeline"
)

func TestNewWiresDefaults(t *testing.T) {
	cfg := &config.Config{
		OpenAIBaseURL:   "http://localhost:1/v1",
		STTProvider:     "openai",
		CaptureBackend:  config.CaptureStream,
		CaptureDir:      t.TempDir(),
		CalendarBackend: config.CalendarMemory,
	}

	a, err := New(cfg)
	require.NoError(t, err)
	defer a.Close()

	st := a.Orchestrator.Status()
	assert.Equal(t, pipeline.StateIdle, st.State)
	assert.Equal(t, "stream", st.Recorder)
	assert.Equal(t, "openai", st.STTProvider)
	assert.Equal(t, calendar.ModeDirect, st.ExportMode)
}

func TestNewRejectsUnknownBackends(t *testing.T) {
	_, err := New(&config.Config{CaptureBackend: "tape"})
	assert.Error(t, err)

	_, err = New(&config.Config{CaptureBackend: config.CaptureStream, STTProvider: "carrier-pigeon"})
	assert.Error(t, err)
}
