package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"voicetasks/internal/output"
)

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	var lang string
	var duration time.Duration
	var export bool
	var save string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a voice memo and extract tasks",
		Long:  "Record from the microphone until Ctrl+C (or --duration), then transcribe the memo and extract tasks.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(cmd.OutOrStdout())

			language, err := resolveLanguage(lang, deps.Config.DefaultLanguage)
			if err != nil {
				return userError(err)
			}

			orch := deps.App.Orchestrator
			if err := orch.StartCapture(cmd.Context(), language); err != nil {
				return userError(err)
			}
			f.RecordingStarted(language, deps.App.Recorder.Name())
			started := time.Now()

			waitForStop(cmd.Context(), duration)
			f.RecordingStopped(time.Since(started))

			f.Processing()
			res, err := orch.StopCapture(context.Background())
			if err != nil {
				return userError(err)
			}
			showResult(f, res)

			if save != "" {
				if err := saveTasks(save, res.Tasks); err != nil {
					return err
				}
				f.Info("Tasks saved: " + save)
			}
			if export && len(res.Tasks) > 0 {
				return exportTasks(cmd.Context(), deps, f, res.Tasks)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "language", "l", "", "Memo language: en, fr or ar (default from config)")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "Stop automatically after this long")
	cmd.Flags().BoolVarP(&export, "export", "e", false, "Add the extracted tasks to the calendar")
	cmd.Flags().StringVarP(&save, "save", "s", "", "Write the extracted tasks to a JSON file")

	return cmd
}

// waitForStop blocks until Ctrl+C, SIGTERM, or the optional duration elapses.
func waitForStop(ctx context.Context, duration time.Duration) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}
	<-ctx.Done()
}
