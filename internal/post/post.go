// Package post assembles the blog-style markdown page published after each
// graded TPO session: front matter, the task materials, the vocabulary
// table, and a collapsible block of highlighted revisions.
package post

import (
	"fmt"
	"html"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/esltool/speakgrader/internal/diff"
	appi18n "github.com/esltool/speakgrader/internal/i18n"
	"github.com/esltool/speakgrader/internal/report"
	"github.com/esltool/speakgrader/internal/task"
)

// Params are the session-level inputs shared by all tasks of one post run.
type Params struct {
	TPO       string // number only, "40" not "TPO40"
	ClassName string
	Date      string // YYYY-MM-DD
}

// NormalizeTPO strips an optional "TPO" prefix so "TPO40" and "40" are
// equivalent inputs.
func NormalizeTPO(input string) string {
	s := strings.TrimSpace(input)
	if len(s) >= 3 && strings.EqualFold(s[:3], "tpo") {
		s = s[3:]
	}
	return s
}

// Filename returns the date-stamped post filename for one task.
func Filename(p Params, taskNum int) string {
	return fmt.Sprintf("%s-ESL-Speaking-TPO%s-Task%d.md", p.Date, p.TPO, taskNum)
}

// HighlightBlock renders the collapsible highlighted-revisions section. The
// summary line is localized; each student gets a bolded name and a
// word-level diff.
func HighlightBlock(p Params, rows []report.Row, loc *i18n.Localizer) string {
	var entries []string
	for _, r := range rows {
		if r.OriginalText == "" || r.RevisedText == "" {
			continue
		}
		entries = append(entries, fmt.Sprintf("<p><strong>%s</strong></p>\n<p>%s</p>\n<hr>\n",
			html.EscapeString(r.StudentID), diff.Render(r.OriginalText, r.RevisedText)))
	}
	if len(entries) == 0 {
		return ""
	}

	summary := appi18n.Td(loc, "highlights.summary", map[string]any{"Class": p.ClassName})
	var sb strings.Builder
	sb.WriteString("<details>\n<summary>" + summary + "</summary>\n\n")
	for _, e := range entries {
		sb.WriteString(e)
	}
	sb.WriteString("</details>")
	return sb.String()
}

// Assemble builds the full markdown document for one task. Empty sections
// are omitted rather than rendered blank.
func Assemble(p Params, files task.Files, highlightBlock, vocabHTML string) string {
	title := fmt.Sprintf("TPO%s Task%d", p.TPO, files.Number)

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("title: %q\n", title))
	sb.WriteString("mathjax: true\n")
	sb.WriteString("layout: post\n")
	sb.WriteString("categories: media\n")
	sb.WriteString("---\n\n")
	sb.WriteString(fmt.Sprintf("# Task%d\n", files.Number))

	if files.Question != "" {
		sb.WriteString("## " + files.Question + "\n\n")
	}
	if files.Reading != "" {
		sb.WriteString("## Reading\n\n" + files.Reading + "\n\n")
	}
	if files.Listening != "" {
		sb.WriteString("## Listening\n\n" + files.Listening + "\n\n")
	}
	if vocabHTML != "" {
		sb.WriteString(vocabHTML + "\n")
	}
	if highlightBlock != "" {
		sb.WriteString(highlightBlock + "\n")
	}
	return sb.String()
}
