// Package report turns parsed feedback into the reviewer-facing artifacts:
// per-task feedback tables (CSV and XLSX), the highlighted-changes HTML
// document, and the final score roster.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html"
	"sort"
	"strconv"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/xuri/excelize/v2"

	"github.com/esltool/speakgrader/internal/diff"
	"github.com/esltool/speakgrader/internal/feedback"
	"github.com/esltool/speakgrader/internal/fsx"
	appi18n "github.com/esltool/speakgrader/internal/i18n"
	"github.com/esltool/speakgrader/internal/model"
)

// Row is one student's line in the feedback table.
type Row struct {
	StudentID        string
	LanguageUse      float64
	TopicDevelopment *float64
	Overall          float64
	OriginalText     string
	RevisedText      string
}

// BuildRows parses every student's feedback for a task. Records whose
// feedback cannot be parsed are returned in skipped and excluded from the
// table; they are never defaulted to zero. Rows come back sorted by student
// id for stable output.
func BuildRows(responses model.TaskResponses, expectTopic bool) (rows []Row, skipped map[string]error) {
	skipped = make(map[string]error)
	for id, resp := range responses {
		parsed, err := feedback.Parse(resp.Feedback, resp.OriginalResponse, expectTopic)
		if err != nil {
			skipped[id] = err
			continue
		}
		rows = append(rows, Row{
			StudentID:        id,
			LanguageUse:      parsed.LanguageUseScore,
			TopicDevelopment: parsed.TopicDevelopmentScore,
			Overall:          parsed.OverallScore(),
			OriginalText:     parsed.OriginalText,
			RevisedText:      parsed.RevisedText,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].StudentID < rows[j].StudentID })
	return rows, skipped
}

func feedbackHeaders(loc *i18n.Localizer) []string {
	return []string{
		appi18n.T(loc, "report.student_name"),
		appi18n.T(loc, "report.language_use"),
		appi18n.T(loc, "report.topic_development"),
		appi18n.T(loc, "report.overall_score"),
		appi18n.T(loc, "report.original_text"),
		appi18n.T(loc, "report.revised_text"),
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (r Row) record() []string {
	td := ""
	if r.TopicDevelopment != nil {
		td = formatScore(*r.TopicDevelopment)
	}
	return []string{r.StudentID, formatScore(r.LanguageUse), td, formatScore(r.Overall), r.OriginalText, r.RevisedText}
}

// WriteFeedbackCSV writes the per-task feedback table as CSV.
func WriteFeedbackCSV(path string, rows []Row, loc *i18n.Localizer) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(feedbackHeaders(loc)); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(r.record()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return fsx.WriteFileAtomic(path, buf.Bytes())
}

// WriteFeedbackXLSX writes the per-task feedback table as a spreadsheet with
// wrapped text cells, matching how graders review long transcripts.
func WriteFeedbackXLSX(path string, rows []Row, sheet string, loc *i18n.Localizer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headers := feedbackHeaders(loc)
	cells := make([]any, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		return err
	}
	for i, r := range rows {
		rec := r.record()
		vals := make([]any, len(rec))
		vals[0] = rec[0]
		vals[1] = r.LanguageUse
		if r.TopicDevelopment != nil {
			vals[2] = *r.TopicDevelopment
		} else {
			vals[2] = ""
		}
		vals[3] = r.Overall
		vals[4] = r.OriginalText
		vals[5] = r.RevisedText
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return err
		}
		if err := f.SetRowHeight(sheet, i+2, 60); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}
	last := fmt.Sprintf("F%d", len(rows)+1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "E", "F", 60); err != nil {
		return err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(path, buf.Bytes())
}

// RenderHighlights builds the highlighted-changes HTML body: one heading and
// word-level diff per student with a non-empty original transcript.
func RenderHighlights(rows []Row) []byte {
	var buf bytes.Buffer
	buf.WriteString("<html><body>")
	for _, r := range rows {
		if r.OriginalText == "" {
			continue
		}
		buf.WriteString("<h2>" + html.EscapeString(r.StudentID) + "</h2>")
		buf.WriteString("<p>" + diff.Render(r.OriginalText, r.RevisedText) + "</p>")
		buf.WriteString("<hr>")
	}
	buf.WriteString("</body></html>\n")
	return buf.Bytes()
}

// WriteHighlights writes the highlighted-changes document for one task.
func WriteHighlights(path string, rows []Row) error {
	return fsx.WriteFileAtomic(path, RenderHighlights(rows))
}

// WriteRosterCSV writes the final roster: raw total and scaled score per
// student. An unresolvable scaled score is left blank, never fabricated.
func WriteRosterCSV(path string, totals []model.StudentTotal, loc *i18n.Localizer) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{
		appi18n.T(loc, "roster.student_name"),
		appi18n.T(loc, "roster.toefl_score"),
		appi18n.T(loc, "roster.raw_score"),
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, t := range totals {
		scaled := ""
		if t.ScaledScore != nil {
			scaled = formatScore(*t.ScaledScore)
		}
		if err := w.Write([]string{t.StudentID, scaled, formatScore(t.RawTotal)}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return fsx.WriteFileAtomic(path, buf.Bytes())
}

// WriteRosterXLSX writes the roster as a spreadsheet.
func WriteRosterXLSX(path string, totals []model.StudentTotal, loc *i18n.Localizer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Scores"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	header := []any{
		appi18n.T(loc, "roster.student_name"),
		appi18n.T(loc, "roster.toefl_score"),
		appi18n.T(loc, "roster.raw_score"),
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, t := range totals {
		vals := []any{t.StudentID, "", t.RawTotal}
		if t.ScaledScore != nil {
			vals[1] = *t.ScaledScore
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &vals); err != nil {
			return err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(path, buf.Bytes())
}
