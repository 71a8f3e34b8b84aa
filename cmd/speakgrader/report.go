package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	appI18n "github.com/esltool/speakgrader/internal/i18n"
	"github.com/esltool/speakgrader/internal/report"
	"github.com/esltool/speakgrader/internal/task"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build feedback tables and highlighted revisions",
		Long: "report parses the graded responses file for a task and writes the\n" +
			"feedback table (CSV and XLSX) plus the highlighted-changes HTML that\n" +
			"shows each student's revision as a word-level diff.",
		RunE: runReport,
	}
	f := cmd.Flags()
	f.Bool("csv", true, "Write the CSV feedback table")
	f.Bool("xlsx", true, "Write the XLSX feedback table")
	f.Bool("highlights", true, "Write the highlighted-changes HTML")
	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	if err := initI18n(v); err != nil {
		return err
	}
	loc := appI18n.NewLocalizer(v.GetString("lang"))
	dir := v.GetString("dir")

	return forEachTask(v,
		"Select the task number to process responses (1, 2, 3, or 4), or type any other input to quit:",
		func(n int) error { return reportTask(v, dir, n, loc) })
}

func reportTask(v *viper.Viper, dir string, n int, loc *i18n.Localizer) error {
	responses, err := task.ReadResponses(dir, n)
	if err != nil {
		return err
	}

	rows, skipped := report.BuildRows(responses, true)
	for id, err := range skipped {
		slog.Warn("feedback not parseable, row skipped", "task", n, "student", id, "error", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("task %d: no parseable feedback", n)
	}

	if v.GetBool("csv") {
		path := filepath.Join(dir, fmt.Sprintf("StudentFeedback_Task%d.csv", n))
		if err := report.WriteFeedbackCSV(path, rows, loc); err != nil {
			return fmt.Errorf("write feedback CSV: %w", err)
		}
		slog.Info("feedback table written", "task", n, "path", path)
	}
	if v.GetBool("xlsx") {
		path := filepath.Join(dir, fmt.Sprintf("StudentFeedback_Task%d.xlsx", n))
		sheet := fmt.Sprintf("Task%d", n)
		if err := report.WriteFeedbackXLSX(path, rows, sheet, loc); err != nil {
			return fmt.Errorf("write feedback XLSX: %w", err)
		}
		slog.Info("feedback table written", "task", n, "path", path)
	}
	if v.GetBool("highlights") {
		path := filepath.Join(dir, fmt.Sprintf("HighlightedChanges_Task%d.html", n))
		if err := report.WriteHighlights(path, rows); err != nil {
			return fmt.Errorf("write highlights: %w", err)
		}
		slog.Info("highlighted changes written", "task", n, "path", path)
	}
	return nil
}
