package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	appI18n "github.com/esltool/speakgrader/internal/i18n"
	"github.com/esltool/speakgrader/internal/report"
	"github.com/esltool/speakgrader/internal/score"
	"github.com/esltool/speakgrader/internal/task"
)

func scoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Aggregate scores across tasks into the TOEFL roster",
		Long: "score reads every task's graded responses file, sums each student's\n" +
			"overall scores into a raw total, converts it with the speaking-section\n" +
			"conversion table, and writes Student_TOEFL_Scores.csv and .xlsx.",
		RunE: runScore,
	}
}

func runScore(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	if err := initI18n(v); err != nil {
		return err
	}
	loc := appI18n.NewLocalizer(v.GetString("lang"))
	dir := v.GetString("dir")

	perTask := make(map[int]map[string]float64)
	for _, n := range task.Numbers {
		responses, err := task.ReadResponses(dir, n)
		if err != nil {
			if os.IsNotExist(err) {
				slog.Info("no responses file, task skipped", "task", n)
				continue
			}
			return err
		}
		rows, skipped := report.BuildRows(responses, true)
		for id, err := range skipped {
			slog.Warn("feedback not parseable, student excluded from task", "task", n, "student", id, "error", err)
		}
		scores := make(map[string]float64, len(rows))
		for _, r := range rows {
			scores[r.StudentID] = r.Overall
		}
		perTask[n] = scores
	}
	if len(perTask) == 0 {
		return fmt.Errorf("no responses files found in %s", dir)
	}

	totals := score.Aggregate(perTask)
	for _, t := range totals {
		if !score.IsHalfStep(t.RawTotal) {
			slog.Warn("raw total is not a half-point multiple, check upstream scores",
				"student", t.StudentID, "raw", t.RawTotal)
		}
		if t.ScaledScore == nil {
			slog.Warn("raw total outside conversion table, scaled score left blank",
				"student", t.StudentID, "raw", t.RawTotal)
		}
	}

	csvPath := filepath.Join(dir, "Student_TOEFL_Scores.csv")
	if err := report.WriteRosterCSV(csvPath, totals, loc); err != nil {
		return fmt.Errorf("write roster CSV: %w", err)
	}
	xlsxPath := filepath.Join(dir, "Student_TOEFL_Scores.xlsx")
	if err := report.WriteRosterXLSX(xlsxPath, totals, loc); err != nil {
		return fmt.Errorf("write roster XLSX: %w", err)
	}
	slog.Info("roster written", "students", len(totals), "csv", csvPath, "xlsx", xlsxPath)
	return nil
}
