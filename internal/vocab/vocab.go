// Package vocab builds the study-vocabulary list for a task: words from the
// task materials that appear on the TOEFL word list but not on the class's
// basic list, each with a pronunciation link and dictionary-style
// definitions obtained in batches from the model.
package vocab

import (
	"bufio"
	"os"
	"regexp"
	"sort"
	"strings"
)

var wordRe = regexp.MustCompile(`[a-zA-Z]+`)

// Entry is one finished vocabulary row.
type Entry struct {
	Word         string
	AudioURL     string
	PartOfSpeech string
	English      string
	Chinese      string
	Example      string
}

// LoadWordList reads a newline-separated word list into a lowercase set.
func LoadWordList(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	words := make(map[string]bool)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w != "" {
			words[w] = true
		}
	}
	return words, sc.Err()
}

// ExtractWords tokenizes text into distinct lowercase words, sorted. No
// part-of-speech filtering happens here; the word lists do the selection.
func ExtractWords(text string) []string {
	seen := make(map[string]bool)
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len(w) > 2 {
			seen[w] = true
		}
	}
	words := make([]string, 0, len(seen))
	for w := range seen {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Difficult filters extracted words down to study candidates: on the TOEFL
// list, not on the basic list.
func Difficult(words []string, basic, toefl map[string]bool) []string {
	var out []string
	for _, w := range words {
		if toefl[w] && !basic[w] {
			out = append(out, w)
		}
	}
	return out
}

var sentenceEndRe = regexp.MustCompile(`[.!?]+\s+`)

// ContextSentence returns the first sentence of text containing the word,
// or empty if none does.
func ContextSentence(word, text string) string {
	lower := strings.ToLower(text)
	for _, sent := range sentenceEndRe.Split(lower, -1) {
		if strings.Contains(sent, word) {
			return strings.TrimSpace(sent)
		}
	}
	return ""
}

// ParseDefinitions extracts entries from the model's labeled-field response.
// Fields that the model omitted keep placeholder values; a word that cannot
// be matched back to the batch is dropped.
func ParseDefinitions(raw string, audioURLs map[string]string) []Entry {
	var entries []Entry
	blocks := strings.Split(raw, "Word:")
	for _, block := range blocks[1:] {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) == 0 {
			continue
		}
		word := strings.ToLower(strings.TrimSpace(lines[0]))
		audio, ok := audioURLs[word]
		if !ok {
			continue
		}

		e := Entry{
			Word:         capitalize(word),
			AudioURL:     audio,
			PartOfSpeech: "N/A",
			English:      "No definition available.",
			Chinese:      "翻译不可用",
			Example:      "No example provided.",
		}
		for _, line := range lines[1:] {
			switch {
			case hasLabel(line, "Part of Speech:"):
				e.PartOfSpeech = afterLabel(line, "Part of Speech:")
			case hasLabel(line, "English Explanation:"):
				e.English = afterLabel(line, "English Explanation:")
			case hasLabel(line, "Chinese Explanation:"):
				e.Chinese = afterLabel(line, "Chinese Explanation:")
			case hasLabel(line, "Example Sentence:"):
				e.Example = afterLabel(line, "Example Sentence:")
			}
		}
		entries = append(entries, e)
	}
	return entries
}

func hasLabel(line, label string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), strings.ToLower(label))
}

func afterLabel(line, label string) string {
	trimmed := strings.TrimSpace(line)
	return strings.TrimSpace(trimmed[len(label):])
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
