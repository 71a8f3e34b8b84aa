// Package prompts holds the natural-language instruction templates sent to
// the model. The evaluation templates pin the exact output format the
// feedback parser expects; edit them and the parser together.
package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"sync"
	"text/template"
)

//go:embed prompts/*.txt
var promptFS embed.FS

var (
	loadOnce      sync.Once
	loadErr       error
	evalWithTopic *template.Template
	evalLangOnly  *template.Template
	vocabDefine   *template.Template
)

// EvalData holds template data for evaluation prompts. An empty
// TopicDevelopmentRubric selects the language-use-only variant.
type EvalData struct {
	Question               string
	StudentResponse        string
	LanguageUseRubric      string
	TopicDevelopmentRubric string
	ReadingTranscript      string
	ListeningTranscript    string
}

// VocabWord is one word plus the sentence it appeared in. Index is filled
// in by BuildVocabPrompt.
type VocabWord struct {
	Index           int
	Word            string
	ContextSentence string
}

func load() error {
	loadOnce.Do(func() {
		parse := func(name string) *template.Template {
			if loadErr != nil {
				return nil
			}
			content, err := promptFS.ReadFile("prompts/" + name)
			if err != nil {
				loadErr = errors.New("read prompt file " + name + ": " + err.Error())
				return nil
			}
			tmpl, err := template.New(name).Parse(string(content))
			if err != nil {
				loadErr = errors.New("parse prompt template " + name + ": " + err.Error())
				return nil
			}
			return tmpl
		}
		evalWithTopic = parse("eval_with_topic.txt")
		evalLangOnly = parse("eval_language_only.txt")
		vocabDefine = parse("vocab_define.txt")
	})
	return loadErr
}

// BuildEvalPrompt renders the evaluation prompt. The variant is selected
// solely by whether a topic-development rubric was supplied.
func BuildEvalPrompt(data EvalData) (string, error) {
	if err := load(); err != nil {
		return "", err
	}
	tmpl := evalLangOnly
	if data.TopicDevelopmentRubric != "" {
		tmpl = evalWithTopic
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute eval template: %w", err)
	}
	return buf.String(), nil
}

// BuildVocabPrompt renders the batch definition prompt for a set of words
// and their context sentences.
func BuildVocabPrompt(words []VocabWord) (string, error) {
	if err := load(); err != nil {
		return "", err
	}
	numbered := make([]VocabWord, len(words))
	for i, w := range words {
		w.Index = i + 1
		numbered[i] = w
	}
	var buf bytes.Buffer
	if err := vocabDefine.Execute(&buf, numbered); err != nil {
		return "", fmt.Errorf("execute vocab template: %w", err)
	}
	return buf.String(), nil
}
