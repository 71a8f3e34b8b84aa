package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/esltool/speakgrader/internal/store"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived evaluation runs",
		Long: "history prints the evaluation runs archived by evaluate --db, newest\n" +
			"first. Use --task to narrow to one task.",
		RunE: runHistory,
	}
	f := cmd.Flags()
	f.String("db", "speakgrader.db", "SQLite archive path")
	f.Int("limit", 0, "Show at most this many runs (0 shows all)")
	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	archive, err := store.New(v.GetString("db"))
	if err != nil {
		return err
	}
	defer archive.Close()

	runs, err := archive.ListRuns(v.GetInt("task"))
	if err != nil {
		return err
	}
	if limit := v.GetInt("limit"); limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	total, err := archive.RunCount()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTASK\tSTUDENT\tMODEL\tLANG USE\tTOPIC DEV\tOVERALL\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.TaskNumber, r.StudentID, r.Model,
			scoreCell(r.LanguageUseScore), scoreCell(r.TopicDevelopmentScore), scoreCell(r.OverallScore),
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("%d of %d archived runs shown.\n", len(runs), total)
	return nil
}

// scoreCell renders an optional score, blank when the feedback never parsed.
func scoreCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
