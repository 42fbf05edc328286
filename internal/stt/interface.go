package stt

import (
	"context"

	"voicetasks/internal/model"
)

// Provider defines the interface for speech-to-text providers
type Provider interface {
	// Transcribe sends the clip with a language hint and returns the transcript
	Transcribe(ctx context.Context, clip *model.AudioClip, language model.Language) (*model.Transcript, error)

	// Name returns the name of the provider (e.g., "openai", "http")
	Name() string
}
