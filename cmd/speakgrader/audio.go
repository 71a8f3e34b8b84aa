package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/esltool/speakgrader/internal/audio"
	"github.com/esltool/speakgrader/internal/llm"
	"github.com/esltool/speakgrader/internal/report"
	"github.com/esltool/speakgrader/internal/task"
)

func audioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audio",
		Short: "Synthesize shadowing audio from revised responses",
		Long: "audio reads each student's revised text from the graded responses file\n" +
			"and synthesizes it to speech in a voice matching the student's gender,\n" +
			"writing task{N}_modified_audios/task{N}_{student}_shadowing.wav.",
		RunE: runAudio,
	}
	f := cmd.Flags()
	f.String("gender-map", "student_gender_map.json", "Student-to-gender mapping file (relative to --dir)")
	f.String("llm-url", "", "OpenAI-compatible API base URL (empty for the default endpoint)")
	f.String("llm-key", "", "API key (falls back to OPENAI_API_KEY)")
	f.Duration("llm-timeout", 2*time.Minute, "Per-request deadline")
	return cmd
}

func runAudio(cmd *cobra.Command, _ []string) error {
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
	client := llm.New(v.GetString("llm-url"), apiKey, "", v.GetDuration("llm-timeout"))

	genders, err := audio.LoadGenderMap(resolvePath(dir, v.GetString("gender-map")))
	if err != nil {
		return fmt.Errorf("load gender map: %w", err)
	}

	ctx := cmd.Context()
	return forEachTask(v,
		"Select the task number to process responses (1, 2, 3, or 4), or type any other input to quit:",
		func(n int) error { return audioTask(ctx, client, dir, n, genders) })
}

func audioTask(ctx context.Context, synth llm.Synthesizer, dir string, n int, genders map[string]string) error {
	responses, err := task.ReadResponses(dir, n)
	if err != nil {
		return err
	}

	rows, skipped := report.BuildRows(responses, true)
	for id, err := range skipped {
		slog.Warn("feedback not parseable, no audio for student", "task", n, "student", id, "error", err)
	}

	for _, r := range rows {
		if r.RevisedText == "" {
			continue
		}
		voice, ok := audio.VoiceFor(genders[r.StudentID])
		if !ok {
			slog.Warn("unknown gender, no audio for student", "task", n, "student", r.StudentID)
			continue
		}
		if err := audio.Generate(ctx, synth, dir, n, r.StudentID, r.RevisedText, voice); err != nil {
			slog.Error("audio synthesis failed", "task", n, "student", r.StudentID, "error", err)
			continue
		}
		slog.Info("shadowing audio written", "task", n, "student", r.StudentID,
			"path", audio.OutputPath(dir, n, r.StudentID))
	}
	return nil
}
