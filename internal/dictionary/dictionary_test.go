package dictionary

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q, want test-key", got)
		}
		word := r.URL.Path[len("/"):]
		body, ok := responses[word]
		if !ok {
			http.Error(w, "no fixture", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func entryJSON(audio string) string {
	return fmt.Sprintf(`[{"hwi":{"prs":[{"sound":{"audio":%q}}]}}]`, audio)
}

func TestAudioURL(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"hello":    entryJSON("hello001"),
		"bixlike":  entryJSON("bixlike01"),
		"ggsound":  entryJSON("ggsound01"),
		"silent":   `[{"hwi":{"prs":[]}}]`,
		"missing":  `["suggestion1","suggestion2"]`,
		"nothing":  `[]`,
		"twoentry": `[{"hwi":{}},{"hwi":{"prs":[{"sound":{"audio":"second01"}}]}}]`,
	})
	c := NewWithBaseURL("test-key", srv.URL)
	ctx := context.Background()

	tests := []struct {
		name    string
		word    string
		want    string
		wantErr error
	}{
		{
			name: "plain code uses first character subdir",
			word: "hello",
			want: "https://media.merriam-webster.com/audio/prons/en/us/mp3/h/hello001.mp3",
		},
		{
			name: "bix prefix",
			word: "bixlike",
			want: "https://media.merriam-webster.com/audio/prons/en/us/mp3/b/bix/bixlike01.mp3",
		},
		{
			name: "gg prefix",
			word: "ggsound",
			want: "https://media.merriam-webster.com/audio/prons/en/us/mp3/g/gg/ggsound01.mp3",
		},
		{
			name: "audio taken from a later entry",
			word: "twoentry",
			want: "https://media.merriam-webster.com/audio/prons/en/us/mp3/s/second01.mp3",
		},
		{name: "suggestions mean not found", word: "missing", wantErr: ErrNotFound},
		{name: "empty response means not found", word: "nothing", wantErr: ErrNotFound},
		{name: "entry without audio means not found", word: "silent", wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.AudioURL(ctx, tt.word)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("AudioURL(%q) error = %v, want %v", tt.word, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("AudioURL(%q) error = %v", tt.word, err)
			}
			if got != tt.want {
				t.Errorf("AudioURL(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestAudioURLServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewWithBaseURL("test-key", srv.URL)
	_, err := c.AudioURL(context.Background(), "word")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("AudioURL() error = %v, want a transport error distinct from not-found", err)
	}
}
