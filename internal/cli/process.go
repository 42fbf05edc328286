package cli

import (
	"github.com/spf13/cobra"

	"voicetasks/internal/capture"
	"voicetasks/internal/output"
)

func NewProcessCmd(deps *Dependencies) *cobra.Command {
	var lang string
	var export bool
	var save string

	cmd := &cobra.Command{
		Use:   "process <audio-file>",
		Short: "Extract tasks from an existing recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(cmd.OutOrStdout())

			language, err := resolveLanguage(lang, deps.Config.DefaultLanguage)
			if err != nil {
				return userError(err)
			}

			clip, err := capture.ClipFromFile(args[0])
			if err != nil {
				return err
			}

			f.Processing()
			res, err := deps.App.Orchestrator.Process(cmd.Context(), clip, language)
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
	cmd.Flags().BoolVarP(&export, "export", "e", false, "Add the extracted tasks to the calendar")
	cmd.Flags().StringVarP(&save, "save", "s", "", "Write the extracted tasks to a JSON file")

	return cmd
}
