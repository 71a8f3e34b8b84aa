package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/esltool/speakgrader/internal/batch"
	"github.com/esltool/speakgrader/internal/feedback"
	"github.com/esltool/speakgrader/internal/llm"
	"github.com/esltool/speakgrader/internal/model"
	"github.com/esltool/speakgrader/internal/store"
	"github.com/esltool/speakgrader/internal/task"
)

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Grade student transcripts for a task",
		Long: "evaluate reads the task materials and every student transcript under\n" +
			"task{N}_txt/, grades each one against the speaking rubrics, and writes\n" +
			"task{N}_responses.json for the downstream commands.",
		RunE: runEvaluate,
	}
	f := cmd.Flags()
	f.String("llm-url", "", "OpenAI-compatible API base URL (empty for the default endpoint)")
	f.String("llm-key", "", "API key (falls back to OPENAI_API_KEY)")
	f.String("llm-model", "gpt-4o-mini", "Model used for grading")
	f.Int("concurrency", 4, "Maximum in-flight evaluator calls")
	f.Duration("llm-timeout", 2*time.Minute, "Per-request deadline")
	f.String("db", "", "SQLite archive path (empty disables archiving)")
	return cmd
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	dir := v.GetString("dir")
	loadDotenv(dir)

	apiKey := v.GetString("llm-key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set --llm-key or OPENAI_API_KEY")
	}
	modelName := v.GetString("llm-model")
	client := llm.New(v.GetString("llm-url"), apiKey, modelName, v.GetDuration("llm-timeout"))

	ctx := cmd.Context()
	if err := client.Ping(ctx); err != nil {
		return err
	}

	var archive *store.Store
	if dbPath := v.GetString("db"); dbPath != "" {
		var err error
		if archive, err = store.New(dbPath); err != nil {
			return err
		}
		defer archive.Close()
	}

	concurrency := v.GetInt("concurrency")
	return forEachTask(v,
		"Select the task number to grade (1, 2, 3, or 4), or type any other input to quit:",
		func(n int) error {
			return evaluateTask(ctx, client, archive, dir, n, concurrency, modelName)
		})
}

func evaluateTask(ctx context.Context, client llm.Evaluator, archive *store.Store, dir string, n, concurrency int, modelName string) error {
	files, err := task.Load(dir, n)
	if err != nil {
		return err
	}
	students, err := task.StudentResponses(dir, n)
	if err != nil {
		return err
	}
	if len(students) == 0 {
		return fmt.Errorf("no student transcripts in %s", filepath.Join(dir, fmt.Sprintf("task%d_txt", n)))
	}

	responses, summary := batch.Evaluate(ctx, client, files, students, concurrency)

	if archive != nil {
		archiveRuns(archive, n, modelName, responses)
	}

	path := task.ResponsesPath(dir, n)
	if err := batch.WriteResponses(path, responses); err != nil {
		return fmt.Errorf("write responses: %w", err)
	}
	slog.Info("responses written", "task", n, "path", path,
		"evaluated", len(summary.Evaluated), "skipped", len(summary.Skipped))
	for id, err := range summary.Skipped {
		slog.Warn("student skipped", "task", n, "student", id, "error", err)
	}
	return nil
}

// archiveRuns records every graded response in the sqlite archive. Scores are
// stored only when the feedback parses; a raw transcript is archived either
// way. Archive failures never fail the evaluation run.
func archiveRuns(archive *store.Store, taskNum int, modelName string, responses model.TaskResponses) {
	for id, r := range responses {
		run := model.EvaluationRun{
			TaskNumber:       taskNum,
			StudentID:        id,
			Model:            modelName,
			OriginalResponse: r.OriginalResponse,
			Feedback:         r.Feedback,
		}
		if parsed, err := feedback.Parse(r.Feedback, r.OriginalResponse, true); err == nil {
			lu := parsed.LanguageUseScore
			overall := parsed.OverallScore()
			run.LanguageUseScore = &lu
			run.TopicDevelopmentScore = parsed.TopicDevelopmentScore
			run.OverallScore = &overall
		}
		if _, err := archive.RecordRun(run); err != nil {
			slog.Warn("archive write failed", "student", id, "error", err)
		}
	}
}
