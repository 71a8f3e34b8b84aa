package diff

import (
	"strconv"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		original string
		revised  string
		want     []string
		notWant  []string
	}{
		{
			name:     "identical text has no markers",
			original: "I go to school every day",
			revised:  "I go to school every day",
			want:     []string{"I go to school every day"},
			notWant:  []string{"<del>", "<ins>"},
		},
		{
			name:     "empty original is all insertions",
			original: "",
			revised:  "completely new text",
			want:     []string{"<ins>completely new text</ins>"},
			notWant:  []string{"<del>"},
		},
		{
			name:     "word substitution",
			original: "I goes to school",
			revised:  "I go to school",
			want:     []string{"<del>goes</del>", "<ins>go</ins>"},
		},
		{
			name:     "surrounding quotes are not a difference",
			original: `"I like apples"`,
			revised:  "I like apples",
			want:     []string{"I like apples"},
			notWant:  []string{"<del>", "<ins>"},
		},
		{
			name:     "words are html escaped",
			original: "a <b> c",
			revised:  "a <b> c",
			want:     []string{"&lt;b&gt;"},
			notWant:  []string{"<b>"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.original, tt.revised)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Render() = %q, missing %q", got, w)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("Render() = %q, should not contain %q", got, nw)
				}
			}
		})
	}
}

func TestRenderKeepsReadingOrder(t *testing.T) {
	got := Render("the cat sat", "the dog sat")
	delIdx := strings.Index(got, "<del>cat</del>")
	insIdx := strings.Index(got, "<ins>dog</ins>")
	if delIdx == -1 || insIdx == -1 {
		t.Fatalf("Render() = %q, expected deletion and insertion", got)
	}
	if !strings.HasPrefix(got, "the ") || !strings.HasSuffix(got, " sat") {
		t.Errorf("Render() = %q, unchanged words should stay plain", got)
	}
}

func TestEncodeWordsRoundTrip(t *testing.T) {
	// Enough distinct words to cross the surrogate range boundary.
	var words []string
	for i := 0; i < 0xE100; i++ {
		words = append(words, "w"+strconv.Itoa(i))
	}
	enc, _, vocab := encodeWords(words, nil)
	decoded := decodeWords(enc, vocab)
	if len(decoded) != len(words) {
		t.Fatalf("decoded %d words, want %d", len(decoded), len(words))
	}
	for i, w := range words {
		if decoded[i] != w {
			t.Fatalf("decoded[%d] = %q, want %q", i, decoded[i], w)
		}
	}
}
