package stt

import (
	"fmt"
	"log"
	"strings"

	"voicetasks/internal/config"
)

// CreateProvider creates an STT provider based on configuration.
// A missing credential is not an error here; Transcribe reports it.
func CreateProvider(cfg *config.Config) (Provider, error) {
	providerName := strings.ToLower(cfg.STTProvider)

	// Default to OpenAI if not specified
	if providerName == "" {
		providerName = "openai"
		log.Printf("[STT Factory] STT_PROVIDER not set, defaulting to 'openai'")
	}

	switch providerName {
	case "openai":
		log.Printf("[STT Factory] Creating OpenAI STT provider (model: %s)", cfg.TranscriptionModel)
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.TranscriptionModel, cfg.RequestTimeout), nil
	case "http":
		if cfg.STTURL == "" {
			return nil, fmt.Errorf("STT_URL is required for the http STT provider")
		}
		log.Printf("[STT Factory] Creating HTTP STT provider: %s", cfg.STTURL)
		return NewHTTPProvider(cfg.OpenAIKey, cfg.STTURL, cfg.STTAuthHeader, cfg.TranscriptionModel, cfg.RequestTimeout), nil
	default:
		return nil, fmt.Errorf("unsupported STT provider: %s. Supported: openai, http", providerName)
	}
}
