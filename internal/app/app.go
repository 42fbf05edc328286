package app

import (
	"fmt"
	"log"

	"voicetasks/internal/ai"
	"voicetasks/internal/calendar"
	"voicetasks/internal/capture"
	"voicetasks/internal/config"
	"voicetasks/internal/pipeline"
	"voicetasks/internal/storage"
	"voicetasks/internal/stt"
)

type App struct {
	Orchestrator *pipeline.Orchestrator
	Recorder     capture.Recorder
	Exporter     calendar.Exporter

	closeExporter func()
}

func New(cfg *config.Config) (*App, error) {
	recorder, err := capture.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating recorder: %w", err)
	}

	provider, err := stt.CreateProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating STT provider: %w", err)
	}
	log.Printf("STT provider initialized: %s", provider.Name())

	extractor := ai.NewExtractor(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.ExtractionModel, cfg.RequestTimeout)

	exporter, closeExporter, err := calendar.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating calendar exporter: %w", err)
	}

	return &App{
		Orchestrator:  pipeline.New(recorder, provider, extractor, exporter, storage.NewRunStore()),
		Recorder:      recorder,
		Exporter:      exporter,
		closeExporter: closeExporter,
	}, nil
}

// Close releases the calendar backend connection, if any.
func (a *App) Close() {
	if a.closeExporter != nil {
		a.closeExporter()
	}
}
