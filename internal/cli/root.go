package cli

import (
	"io"
	"log"

	"github.com/spf13/cobra"

	"voicetasks/internal/app"
	"voicetasks/internal/config"
	"voicetasks/internal/version"
)

type Dependencies struct {
	App    *app.App
	Config *config.Config
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "voicetasks",
		Short:         "Turn spoken memos into calendar tasks",
		Long:          "Record a voice memo, transcribe it with OpenAI, extract actionable tasks, and put them on your calendar.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !verbose {
				log.SetOutput(io.Discard)
			}
		},
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show diagnostic logs")

	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewProcessCmd(deps))
	rootCmd.AddCommand(NewExportCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}
