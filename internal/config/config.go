package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Capture backends
const (
	CaptureFFmpeg = "ffmpeg"
	CaptureStream = "stream"
)

// Calendar backends
const (
	CalendarFile   = "file"
	CalendarMemory = "memory"
	CalendarMQTT   = "mqtt"
)

type Config struct {
	Port string

	// OpenAI credential shared by transcription and extraction.
	// Empty is allowed here; each client refuses to run without it.
	OpenAIKey     string
	OpenAIBaseURL string

	STTProvider        string // openai | http
	STTURL             string // http provider only
	STTAuthHeader      string // http provider only: "Authorization" or "api-key"
	TranscriptionModel string
	ExtractionModel    string
	RequestTimeout     time.Duration

	DefaultLanguage string

	CaptureBackend    string
	CaptureDir        string
	FFmpegPath        string
	FFmpegInputFormat string // avfoundation, pulse, alsa, dshow
	FFmpegInputDevice string

	CalendarBackend         string
	CalendarPrimaryProvider string
	ExportDir               string

	MQTTBroker      string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string
}

type fileConfig struct {
	Port                    string `toml:"port"`
	OpenAIKey               string `toml:"openai_api_key"`
	OpenAIBaseURL           string `toml:"openai_base_url"`
	STTProvider             string `toml:"stt_provider"`
	STTURL                  string `toml:"stt_url"`
	STTAuthHeader           string `toml:"stt_auth_header"`
	RequestTimeout          string `toml:"request_timeout"`
	TranscriptionModel      string `toml:"transcription_model"`
	ExtractionModel         string `toml:"extraction_model"`
	DefaultLanguage         string `toml:"default_language"`
	CaptureBackend          string `toml:"capture_backend"`
	CaptureDir              string `toml:"capture_dir"`
	FFmpegPath              string `toml:"ffmpeg_path"`
	FFmpegInputFormat       string `toml:"ffmpeg_input_format"`
	FFmpegInputDevice       string `toml:"ffmpeg_input_device"`
	CalendarBackend         string `toml:"calendar_backend"`
	CalendarPrimaryProvider string `toml:"calendar_primary_provider"`
	ExportDir               string `toml:"export_dir"`
	MQTTBroker              string `toml:"mqtt_broker"`
	MQTTClientID            string `toml:"mqtt_client_id"`
	MQTTUsername            string `toml:"mqtt_username"`
	MQTTPassword            string `toml:"mqtt_password"`
	MQTTTopicPrefix         string `toml:"mqtt_topic_prefix"`
}

// Load loads configuration from the optional TOML file, then environment variables
func Load() (*Config, error) {
	cfg := defaults()

	if path := configFilePath(); path != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			log.Printf("Warning: ignoring config file %s: %v", path, err)
		} else {
			applyFile(cfg, &fc)
		}
	}

	applyEnv(cfg)

	if err := os.MkdirAll(cfg.CaptureDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port:                    "8080",
		OpenAIBaseURL:           "https://api.openai.com/v1",
		STTProvider:             "openai",
		STTAuthHeader:           "Authorization",
		TranscriptionModel:      "whisper-1",
		ExtractionModel:         "gpt-4o-mini",
		RequestTimeout:          90 * time.Second,
		DefaultLanguage:         "en",
		CaptureBackend:          CaptureStream,
		CaptureDir:              filepath.Join(os.TempDir(), "voicetasks", "recordings"),
		FFmpegPath:              "ffmpeg",
		FFmpegInputFormat:       defaultInputFormat(),
		FFmpegInputDevice:       defaultInputDevice(),
		CalendarBackend:         CalendarFile,
		CalendarPrimaryProvider: "Google",
		ExportDir:               "exports",
		MQTTClientID:            "voicetasks",
		MQTTTopicPrefix:         "voicetasks/device",
	}
}

func applyFile(cfg *Config, fc *fileConfig) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Port, fc.Port)
	set(&cfg.OpenAIKey, fc.OpenAIKey)
	set(&cfg.OpenAIBaseURL, fc.OpenAIBaseURL)
	set(&cfg.STTProvider, fc.STTProvider)
	set(&cfg.STTURL, fc.STTURL)
	set(&cfg.STTAuthHeader, fc.STTAuthHeader)
	if fc.RequestTimeout != "" {
		if d, err := parseDuration(fc.RequestTimeout); err == nil {
			cfg.RequestTimeout = d
		} else {
			log.Printf("Warning: failed to parse request_timeout, using default: %v", err)
		}
	}
	set(&cfg.TranscriptionModel, fc.TranscriptionModel)
	set(&cfg.ExtractionModel, fc.ExtractionModel)
	set(&cfg.DefaultLanguage, fc.DefaultLanguage)
	set(&cfg.CaptureBackend, fc.CaptureBackend)
	set(&cfg.CaptureDir, expandTilde(fc.CaptureDir))
	set(&cfg.FFmpegPath, expandTilde(fc.FFmpegPath))
	set(&cfg.FFmpegInputFormat, fc.FFmpegInputFormat)
	set(&cfg.FFmpegInputDevice, fc.FFmpegInputDevice)
	set(&cfg.CalendarBackend, fc.CalendarBackend)
	set(&cfg.CalendarPrimaryProvider, fc.CalendarPrimaryProvider)
	set(&cfg.ExportDir, expandTilde(fc.ExportDir))
	set(&cfg.MQTTBroker, fc.MQTTBroker)
	set(&cfg.MQTTClientID, fc.MQTTClientID)
	set(&cfg.MQTTUsername, fc.MQTTUsername)
	set(&cfg.MQTTPassword, fc.MQTTPassword)
	set(&cfg.MQTTTopicPrefix, fc.MQTTTopicPrefix)
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.OpenAIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIKey)
	cfg.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.STTProvider = strings.ToLower(getEnv("STT_PROVIDER", cfg.STTProvider))
	cfg.STTURL = getEnv("STT_URL", cfg.STTURL)
	cfg.STTAuthHeader = getEnv("STT_AUTH_HEADER", cfg.STTAuthHeader)
	cfg.TranscriptionModel = getEnv("TRANSCRIPTION_MODEL", cfg.TranscriptionModel)
	cfg.ExtractionModel = getEnv("EXTRACTION_MODEL", cfg.ExtractionModel)
	cfg.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.DefaultLanguage = getEnv("DEFAULT_LANGUAGE", cfg.DefaultLanguage)
	cfg.CaptureBackend = strings.ToLower(getEnv("CAPTURE_BACKEND", cfg.CaptureBackend))
	cfg.CaptureDir = expandTilde(getEnv("CAPTURE_DIR", cfg.CaptureDir))
	cfg.FFmpegPath = getEnv("FFMPEG_PATH", cfg.FFmpegPath)
	cfg.FFmpegInputFormat = getEnv("FFMPEG_INPUT_FORMAT", cfg.FFmpegInputFormat)
	cfg.FFmpegInputDevice = getEnv("FFMPEG_INPUT_DEVICE", cfg.FFmpegInputDevice)
	cfg.CalendarBackend = strings.ToLower(getEnv("CALENDAR_BACKEND", cfg.CalendarBackend))
	cfg.CalendarPrimaryProvider = getEnv("CALENDAR_PRIMARY_PROVIDER", cfg.CalendarPrimaryProvider)
	cfg.ExportDir = expandTilde(getEnv("EXPORT_DIR", cfg.ExportDir))
	cfg.MQTTBroker = getEnv("MQTT_BROKER", cfg.MQTTBroker)
	cfg.MQTTClientID = getEnv("MQTT_CLIENT_ID", cfg.MQTTClientID)
	cfg.MQTTUsername = getEnv("MQTT_USERNAME", cfg.MQTTUsername)
	cfg.MQTTPassword = getEnv("MQTT_PASSWORD", cfg.MQTTPassword)
	cfg.MQTTTopicPrefix = getEnv("MQTT_TOPIC_PREFIX", cfg.MQTTTopicPrefix)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := parseDuration(v)
	if err != nil {
		log.Printf("Warning: failed to parse %s as duration, using default: %v", key, err)
		return fallback
	}
	return d
}

// parseDuration accepts Go durations ("90s") and plain integers as seconds.
func parseDuration(v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		secs, convErr := strconv.Atoi(v)
		if convErr != nil {
			return 0, err
		}
		return time.Duration(secs) * time.Second, nil
	}
	return d, nil
}

func configFilePath() string {
	if p := os.Getenv("VOICETASKS_CONFIG"); p != "" {
		return p
	}

	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "voicetasks")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "voicetasks")
	} else {
		return ""
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
