package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"voicetasks/internal/model"
	"voicetasks/internal/output"
)

func NewExportCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "export <tasks.json>",
		Short: "Add tasks from a JSON file to the calendar",
		Long:  "Read tasks saved with --save (or any {\"tasks\": [...]} document, '-' for stdin) and add them to the calendar.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(cmd.OutOrStdout())

			tasks, err := readTasks(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			f.Tasks(tasks)

			return exportTasks(cmd.Context(), deps, f, tasks)
		},
	}
}

// readTasks accepts either {"tasks": [...]} or a bare array.
func readTasks(path string, stdin io.Reader) ([]model.Task, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading tasks: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var tasks []model.Task
		if err := json.Unmarshal(data, &tasks); err != nil {
			return nil, fmt.Errorf("parsing tasks: %w", err)
		}
		return tasks, nil
	}

	var tf taskFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing tasks: %w", err)
	}
	return tf.Tasks, nil
}
