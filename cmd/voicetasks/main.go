package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"voicetasks/internal/app"
	"voicetasks/internal/cli"
	"voicetasks/internal/config"
	"voicetasks/internal/output"
)

func main() {
	if err := run(); err != nil {
		formatter := output.NewFormatter(os.Stderr)
		formatter.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	// the CLI records from the local microphone
	if cfg.CaptureBackend == config.CaptureStream {
		cfg.CaptureBackend = config.CaptureFFmpeg
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	defer application.Close()

	deps := &cli.Dependencies{
		App:    application,
		Config: cfg,
	}

	return cli.NewRootCmd(deps).Execute()
}
