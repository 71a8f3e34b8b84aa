package vocab

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	appi18n "github.com/esltool/speakgrader/internal/i18n"
)

//go:embed vocab_table.html.tmpl
var tableTemplate string

type tableData struct {
	Headers []string
	Entries []Entry
}

// RenderHTML renders the vocabulary table as a standalone HTML document with
// inline audio playback, localized column headings.
func RenderHTML(entries []Entry, loc *i18n.Localizer) (string, error) {
	tmpl, err := template.New("vocab").Parse(tableTemplate)
	if err != nil {
		return "", err
	}
	data := tableData{
		Headers: []string{
			appi18n.T(loc, "vocab.new_word"),
			appi18n.T(loc, "vocab.pronunciation"),
			appi18n.T(loc, "vocab.part_of_speech"),
			appi18n.T(loc, "vocab.english_explanation"),
			appi18n.T(loc, "vocab.chinese_explanation"),
			appi18n.T(loc, "vocab.example_sentence"),
		},
		Entries: entries,
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
