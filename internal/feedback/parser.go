// Package feedback extracts structured fields from the evaluator's free-text
// output. The format is only as reliable as the model's instruction
// following, so every field is located independently and a parse failure
// names all missing fields at once.
package feedback

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/esltool/speakgrader/internal/model"
)

// Field names reported by ParseError.
const (
	FieldLanguageUse      = "language_use"
	FieldTopicDevelopment = "topic_development"
	FieldRevision         = "revision"
)

// fieldSpec describes one labeled field of the feedback grammar: a bolded
// label followed by either a one-decimal score or a free-text tail.
type fieldSpec struct {
	name     string
	pattern  *regexp.Regexp
	required bool
}

var (
	languageUseRe = regexp.MustCompile(`\*\*Score for Language Use:\*\* (\d\.\d)`)
	topicDevRe    = regexp.MustCompile(`\*\*Score for Topic Development:\*\* (\d\.\d)`)
	revisedRe     = regexp.MustCompile(`(?s)\*\*Revised Version:\*\*\s*(.*)`)
)

// ParseError reports every field that could not be located or was malformed.
type ParseError struct {
	Missing []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("feedback missing fields: %s", strings.Join(e.Missing, ", "))
}

// Parse extracts the scores and the revised text from one raw feedback blob.
// expectTopic mirrors whether the originating request carried a
// topic-development rubric: when false, that field is optional and its
// absence is not an error. Parse is pure and deterministic.
func Parse(raw, original string, expectTopic bool) (model.ParsedFeedback, error) {
	var parsed model.ParsedFeedback
	var missing []string

	fields := []fieldSpec{
		{name: FieldLanguageUse, pattern: languageUseRe, required: true},
		{name: FieldTopicDevelopment, pattern: topicDevRe, required: expectTopic},
		{name: FieldRevision, pattern: revisedRe, required: true},
	}

	// All lookups run regardless of earlier failures so the caller learns
	// about every missing field in one pass.
	for _, f := range fields {
		m := f.pattern.FindStringSubmatch(raw)
		if m == nil {
			if f.required {
				missing = append(missing, f.name)
			}
			continue
		}
		switch f.name {
		case FieldLanguageUse, FieldTopicDevelopment:
			score, ok := parseScore(m[1])
			if !ok {
				if f.required {
					missing = append(missing, f.name)
				}
				continue
			}
			if f.name == FieldLanguageUse {
				parsed.LanguageUseScore = score
			} else {
				s := score
				parsed.TopicDevelopmentScore = &s
			}
		case FieldRevision:
			parsed.RevisedText = strings.TrimSpace(m[1])
		}
	}

	if len(missing) > 0 {
		return model.ParsedFeedback{}, &ParseError{Missing: missing}
	}

	parsed.OriginalText = strings.TrimSpace(original)
	return parsed, nil
}

// parseScore converts a "d.d" capture to a float and rejects values outside
// the rubric range. Scores are not assumed to be integers.
func parseScore(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0.0 || v > 4.0 {
		return 0, false
	}
	return v, true
}
