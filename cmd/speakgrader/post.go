package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/spf13/cobra"

	"github.com/esltool/speakgrader/internal/fsx"
	appI18n "github.com/esltool/speakgrader/internal/i18n"
	"github.com/esltool/speakgrader/internal/post"
	"github.com/esltool/speakgrader/internal/report"
	"github.com/esltool/speakgrader/internal/task"
)

func postCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Assemble blog-post markdown for each graded task",
		Long: "post builds one date-stamped markdown page per task from the task\n" +
			"materials, the vocabulary table, and a collapsible block of highlighted\n" +
			"revisions. Tasks with missing input files are reported and skipped.",
		RunE: runPost,
	}
	f := cmd.Flags()
	f.String("tpo", "", "TPO number, with or without the prefix (e.g. 40 or TPO40)")
	f.String("class", "", "Class name shown on the collapsible revisions block")
	f.String("date", "", "Post date as YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("tpo")
	_ = cmd.MarkFlagRequired("class")
	return cmd
}

func runPost(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	if err := initI18n(v); err != nil {
		return err
	}
	loc := appI18n.NewLocalizer(v.GetString("lang"))
	dir := v.GetString("dir")

	p := post.Params{
		TPO:       post.NormalizeTPO(v.GetString("tpo")),
		ClassName: v.GetString("class"),
		Date:      v.GetString("date"),
	}
	if p.TPO == "" {
		return fmt.Errorf("empty TPO number")
	}
	if p.Date == "" {
		p.Date = time.Now().Format("2006-01-02")
	}

	available, missing := task.Detect(dir)
	for n, gaps := range missing {
		slog.Warn("task skipped, input files missing", "task", n, "missing", gaps)
	}
	if only := v.GetInt("task"); only != 0 {
		available = filterTasks(available, only)
	}
	if len(available) == 0 {
		return fmt.Errorf("no tasks with complete input files in %s", dir)
	}

	var written []string
	for _, n := range available {
		path, err := assemblePost(p, dir, n, loc)
		if err != nil {
			slog.Error("post failed", "task", n, "error", err)
			continue
		}
		written = append(written, path)
	}

	fmt.Printf("Processed %d of %d tasks.\n", len(written), len(available))
	for _, path := range written {
		fmt.Println("  " + path)
	}
	return nil
}

func assemblePost(p post.Params, dir string, n int, loc *i18n.Localizer) (string, error) {
	files, err := task.Load(dir, n)
	if err != nil {
		return "", err
	}

	// The post still goes out when grading has not run yet; it just has no
	// revisions block.
	highlight := ""
	responses, err := task.ReadResponses(dir, n)
	switch {
	case err == nil:
		rows, skipped := report.BuildRows(responses, true)
		for id, perr := range skipped {
			slog.Warn("feedback not parseable, student left out of post", "task", n, "student", id, "error", perr)
		}
		highlight = post.HighlightBlock(p, rows, loc)
	case os.IsNotExist(err):
		slog.Info("no responses file, post has no revisions block", "task", n)
	default:
		return "", err
	}

	vocabHTML := ""
	vocabPath := filepath.Join(dir, fmt.Sprintf("task%d_vocabulary_list.html", n))
	if data, err := os.ReadFile(vocabPath); err == nil {
		vocabHTML = string(data)
	}

	doc := post.Assemble(p, files, highlight, vocabHTML)
	out := filepath.Join(dir, post.Filename(p, n))
	if err := fsx.WriteFileAtomic(out, []byte(doc)); err != nil {
		return "", fmt.Errorf("write post: %w", err)
	}
	slog.Info("post written", "task", n, "path", out)
	return out, nil
}

func filterTasks(available []int, only int) []int {
	for _, n := range available {
		if n == only {
			return []int{n}
		}
	}
	return nil
}
