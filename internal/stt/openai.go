package stt

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"voicetasks/internal/model"
	"voicetasks/internal/openaiclient"
)

// OpenAIProvider implements STT using the OpenAI audio transcription endpoint
type OpenAIProvider struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI STT provider
func NewOpenAIProvider(apiKey, baseURL, modelName string, timeout time.Duration) *OpenAIProvider {
	if modelName == "" {
		modelName = openai.Whisper1
	}
	return &OpenAIProvider{
		apiKey: apiKey,
		model:  modelName,
		client: openaiclient.New(apiKey, baseURL, timeout),
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Transcribe uploads the clip as multipart form data and returns the transcript
func (p *OpenAIProvider) Transcribe(ctx context.Context, clip *model.AudioClip, language model.Language) (*model.Transcript, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set: %w", model.ErrAuthenticationMissing)
	}
	startTime := time.Now()

	f, err := os.Open(clip.Locator)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio clip: %w", err)
	}
	defer f.Close()

	log.Printf("[STT OpenAI] Processing clip: %s, size: %d bytes, mime: %s, language: %s",
		clip.Locator, clip.SizeBytes, clip.MimeType, language)

	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.model,
		FilePath: uploadName(clip),
		Reader:   f,
		Language: string(language),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		log.Printf("[STT OpenAI] API error: %v", err)
		return nil, fmt.Errorf("transcription failed: %w", openaiclient.ToServiceError(err))
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		log.Printf("[STT OpenAI] Empty transcript returned")
		return nil, model.ErrEmptyResponse
	}

	log.Printf("[STT OpenAI] Transcription successful: length=%d, duration=%v", len(text), time.Since(startTime))

	return &model.Transcript{Text: text, Language: language}, nil
}

// uploadName is the filename sent with the clip; the service infers the format from it.
func uploadName(clip *model.AudioClip) string {
	name := filepath.Base(clip.Locator)
	if filepath.Ext(name) == "" {
		name += extensionForMime(clip.MimeType)
	}
	return name
}

func extensionForMime(mime string) string {
	switch strings.ToLower(mime) {
	case "audio/webm":
		return ".webm"
	case "audio/m4a", "audio/mp4", "audio/x-m4a":
		return ".m4a"
	case "audio/mpeg":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "audio/aac":
		return ".aac"
	default:
		return ".wav"
	}
}
