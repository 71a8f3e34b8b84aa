// Package diff renders a word-level edit script between a student's original
// transcript and the evaluator's revised version, for human review.
package diff

import (
	"html"
	"regexp"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

var edgeQuotesRe = regexp.MustCompile(`^"+|"+$`)

// clean normalizes a transcript before comparison: surrounding whitespace is
// trimmed and leading/trailing double-quote runs are removed in one pass.
// Evaluator output often quotes the whole revision.
func clean(s string) string {
	s = strings.TrimSpace(s)
	return edgeQuotesRe.ReplaceAllString(s, "")
}

// Render produces word-level markup reconstructing how an editor would mark
// up the original to arrive at the revised text: unchanged words plain,
// deletions in <del>, insertions in <ins>, in one left-to-right reading
// order. Words are HTML-escaped.
func Render(original, revised string) string {
	origWords := strings.Fields(clean(original))
	revWords := strings.Fields(clean(revised))

	enc1, enc2, vocab := encodeWords(origWords, revWords)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(enc1, enc2, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var parts []string
	for _, d := range diffs {
		words := decodeWords(d.Text, vocab)
		if len(words) == 0 {
			continue
		}
		text := html.EscapeString(strings.Join(words, " "))
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			parts = append(parts, "<del>"+text+"</del>")
		case diffmatchpatch.DiffInsert:
			parts = append(parts, "<ins>"+text+"</ins>")
		default:
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// encodeWords maps each distinct word to a single rune so the character
// diff operates on whole words. Runes start at 1 and skip the surrogate
// range.
func encodeWords(a, b []string) (string, string, []string) {
	index := make(map[string]rune)
	vocab := []string{""} // rune 0 unused
	next := rune(1)

	encode := func(words []string) string {
		var sb strings.Builder
		for _, w := range words {
			r, ok := index[w]
			if !ok {
				if next >= 0xD800 && next <= 0xDFFF {
					next = 0xE000
				}
				r = next
				next++
				index[w] = r
				vocab = append(vocab, w)
			}
			sb.WriteRune(r)
		}
		return sb.String()
	}

	return encode(a), encode(b), vocab
}

func decodeWords(encoded string, vocab []string) []string {
	var words []string
	for _, r := range encoded {
		// Reverse the surrogate-range skip applied while encoding.
		i := int(r)
		if r >= 0xE000 {
			i -= 0xE000 - 0xD800
		}
		if i > 0 && i < len(vocab) {
			words = append(words, vocab[i])
		}
	}
	return words
}
