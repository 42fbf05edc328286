package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("VOICETASKS_CONFIG", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CAPTURE_DIR", filepath.Join(dir, "rec"))
	t.Setenv("EXPORT_DIR", filepath.Join(dir, "out"))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.OpenAIKey, "missing key is not a load error")
	assert.Equal(t, "whisper-1", cfg.TranscriptionModel)
	assert.Equal(t, "gpt-4o-mini", cfg.ExtractionModel)
	assert.Equal(t, CalendarFile, cfg.CalendarBackend)
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout)

	assert.DirExists(t, filepath.Join(dir, "rec"))
	assert.DirExists(t, filepath.Join(dir, "out"))
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := isolate(t)
	cfgDir := filepath.Join(dir, "voicetasks")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	content := `
openai_api_key = "file-key"
calendar_backend = "memory"
default_language = "fr"
`
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(content), 0o644))

	t.Setenv("DEFAULT_LANGUAGE", "ar")
	t.Setenv("REQUEST_TIMEOUT", "15")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.OpenAIKey)
	assert.Equal(t, CalendarMemory, cfg.CalendarBackend)
	assert.Equal(t, "ar", cfg.DefaultLanguage, "env overrides file")
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestLoadFileCoversEnvOnlySettings(t *testing.T) {
	dir := isolate(t)
	for _, key := range []string{"STT_AUTH_HEADER", "REQUEST_TIMEOUT", "FFMPEG_PATH", "MQTT_CLIENT_ID", "MQTT_USERNAME", "MQTT_PASSWORD"} {
		t.Setenv(key, "")
	}
	cfgDir := filepath.Join(dir, "voicetasks")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	content := `
stt_auth_header = "api-key"
request_timeout = "2m"
ffmpeg_path = "/opt/ffmpeg/bin/ffmpeg"
mqtt_client_id = "kitchen-tablet"
mqtt_username = "bridge"
mqtt_password = "s3cret"
`
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "api-key", cfg.STTAuthHeader)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, "kitchen-tablet", cfg.MQTTClientID)
	assert.Equal(t, "bridge", cfg.MQTTUsername)
	assert.Equal(t, "s3cret", cfg.MQTTPassword)
}

func TestGetEnvDurationFallback(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "soon")
	assert.Equal(t, time.Minute, getEnvDuration("SOME_TIMEOUT", time.Minute))
	t.Setenv("SOME_TIMEOUT", "2m")
	assert.Equal(t, 2*time.Minute, getEnvDuration("SOME_TIMEOUT", time.Minute))
}
