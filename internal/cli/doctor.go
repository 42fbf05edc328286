package cli

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"voicetasks/internal/calendar"
	"voicetasks/internal/config"
	"voicetasks/internal/model"
	"voicetasks/internal/output"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(cmd.OutOrStdout())
			cfg := deps.Config
			ok := true

			if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
				f.SetupCheck("ffmpeg", false, "not found. Install with: brew install ffmpeg / apt install ffmpeg")
				ok = false
			} else {
				f.SetupCheck("ffmpeg", true, "installed")
			}

			f.SetupCheck("Microphone", true, fmt.Sprintf("%s %s (permission is requested on first recording)", cfg.FFmpegInputFormat, cfg.FFmpegInputDevice))

			if cfg.OpenAIKey != "" {
				f.SetupCheck("OpenAI API key", true, "configured")
			} else {
				f.SetupCheck("OpenAI API key", false, "not set. Set OPENAI_API_KEY or add openai_api_key to config")
				ok = false
			}

			if lang, err := model.ParseLanguage(cfg.DefaultLanguage); err != nil {
				f.SetupCheck("Default language", false, err.Error())
				ok = false
			} else {
				f.SetupCheck("Default language", true, lang.Name())
			}

			mode := deps.App.Exporter.Mode()
			switch {
			case cfg.CalendarBackend == config.CalendarMQTT && mode != calendar.ModeDirect:
				f.SetupCheck("Calendar", false, "device bridge unreachable at "+cfg.MQTTBroker+", using file export")
				ok = false
			case mode == calendar.ModeDirect:
				f.SetupCheck("Calendar", true, "direct write ("+cfg.CalendarBackend+")")
			default:
				f.SetupCheck("Calendar", true, "file export to "+cfg.ExportDir)
			}

			if ok {
				f.Success("\nAll prerequisites met. Ready to record!")
			} else {
				f.Warning("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}
