package post

import (
	"strings"
	"testing"

	appi18n "github.com/esltool/speakgrader/internal/i18n"
	"github.com/esltool/speakgrader/internal/report"
	"github.com/esltool/speakgrader/internal/task"
)

func TestNormalizeTPO(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"40", "40"},
		{"TPO40", "40"},
		{"tpo40", "40"},
		{" TPO12 ", "12"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTPO(tt.in); got != tt.want {
			t.Errorf("NormalizeTPO(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilename(t *testing.T) {
	p := Params{TPO: "40", Date: "2026-03-15"}
	got := Filename(p, 2)
	want := "2026-03-15-ESL-Speaking-TPO40-Task2.md"
	if got != want {
		t.Errorf("Filename() = %q, want %q", got, want)
	}
}

func TestHighlightBlock(t *testing.T) {
	if err := appi18n.Init("zh"); err != nil {
		t.Fatalf("i18n init: %v", err)
	}
	loc := appi18n.NewLocalizer("zh")
	p := Params{TPO: "40", ClassName: "周六班", Date: "2026-03-15"}

	t.Run("with revisions", func(t *testing.T) {
		rows := []report.Row{
			{StudentID: "alice", OriginalText: "I goes home", RevisedText: "I go home"},
			{StudentID: "bob", OriginalText: "", RevisedText: "unused"},
		}
		block := HighlightBlock(p, rows, loc)

		if !strings.Contains(block, "<details>") || !strings.Contains(block, "</details>") {
			t.Error("block must be collapsible")
		}
		if !strings.Contains(block, "周六班修改文稿点这里") {
			t.Errorf("summary not localized with class name: %q", block)
		}
		if !strings.Contains(block, "<strong>alice</strong>") {
			t.Error("student name missing")
		}
		if strings.Contains(block, "bob") {
			t.Error("students without a transcript must be omitted")
		}
	})

	t.Run("no revisions at all", func(t *testing.T) {
		if block := HighlightBlock(p, nil, loc); block != "" {
			t.Errorf("HighlightBlock() = %q, want empty", block)
		}
	})
}

func TestAssemble(t *testing.T) {
	p := Params{TPO: "40", ClassName: "Sat", Date: "2026-03-15"}

	t.Run("integrated task with everything", func(t *testing.T) {
		files := task.Files{
			Number:    2,
			Question:  "Summarize the announcement.",
			Reading:   "The gym will close.",
			Listening: "The man disagrees.",
		}
		doc := Assemble(p, files, "<details>block</details>", "<table>vocab</table>")

		for _, want := range []string{
			"title: \"TPO40 Task2\"",
			"mathjax: true",
			"layout: post",
			"categories: media",
			"# Task2",
			"## Summarize the announcement.",
			"## Reading\n\nThe gym will close.",
			"## Listening\n\nThe man disagrees.",
			"<table>vocab</table>",
			"<details>block</details>",
		} {
			if !strings.Contains(doc, want) {
				t.Errorf("document missing %q", want)
			}
		}
		if !strings.HasPrefix(doc, "---\n") {
			t.Error("document must start with front matter")
		}
	})

	t.Run("independent task omits empty sections", func(t *testing.T) {
		files := task.Files{Number: 1, Question: "Do you agree?"}
		doc := Assemble(p, files, "", "")

		if strings.Contains(doc, "## Reading") || strings.Contains(doc, "## Listening") {
			t.Error("empty stimulus sections must be omitted")
		}
		if strings.Contains(doc, "<details>") {
			t.Error("empty highlight block must be omitted")
		}
	})
}
