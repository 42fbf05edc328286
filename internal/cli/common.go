package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"voicetasks/internal/model"
	"voicetasks/internal/output"
	"voicetasks/internal/pipeline"
)

func resolveLanguage(flag, fallback string) (model.Language, error) {
	if flag == "" {
		flag = fallback
	}
	return model.ParseLanguage(flag)
}

// userError replaces err with its user-facing message.
func userError(err error) error {
	return errors.New(pipeline.UserMessage(err))
}

func showResult(f *output.Formatter, res *pipeline.Result) {
	f.Transcript(res.Transcript)
	f.Tasks(res.Tasks)
}

func saveTasks(path string, tasks []model.Task) error {
	data, err := json.MarshalIndent(taskFile{Tasks: tasks}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}
	return nil
}

func exportTasks(ctx context.Context, deps *Dependencies, f *output.Formatter, tasks []model.Task) error {
	res, err := deps.App.Orchestrator.Export(ctx, tasks)
	if err != nil {
		return userError(err)
	}

	if res.FilePath != "" {
		f.ExportSaved(res.FilePath)
	}
	if res.Failed > 0 {
		f.Warning(pipeline.ExportMessage(res))
	} else {
		f.Success(pipeline.ExportMessage(res))
	}
	return nil
}

type taskFile struct {
	Tasks []model.Task `json:"tasks"`
}
