// Package dictionary looks up audio pronunciations in the Merriam-Webster
// Learner's Dictionary API. It is the lexical-lookup port of the vocabulary
// pipeline; tests substitute a fake.
package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.dictionaryapi.com/api/v3/references/learners/json"

// ErrNotFound means the dictionary has no usable entry (or no audio) for the
// word. Callers skip the word rather than failing the batch.
var ErrNotFound = errors.New("word not found")

// LexicalLookup resolves a word to an audio pronunciation URL.
type LexicalLookup interface {
	AudioURL(ctx context.Context, word string) (string, error)
}

// Client is the Merriam-Webster API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates a dictionary client.
func New(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewWithBaseURL is used by tests to point the client at a local server.
func NewWithBaseURL(apiKey, baseURL string) *Client {
	c := New(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// entry mirrors the subset of the MW response we read.
type entry struct {
	HWI struct {
		PRS []struct {
			Sound struct {
				Audio string `json:"audio"`
			} `json:"sound"`
		} `json:"prs"`
	} `json:"hwi"`
}

// AudioURL fetches the word's first audio pronunciation. A response whose
// first element is a bare string is the API's spelling-suggestion shape,
// meaning the word itself was not found.
func (c *Client) AudioURL(ctx context.Context, word string) (string, error) {
	u := fmt.Sprintf("%s/%s?key=%s", c.baseURL, url.PathEscape(word), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("dictionary lookup %q: %w", word, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dictionary lookup %q: status %d", word, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("dictionary lookup %q: parse response: %w", word, err)
	}
	if len(raw) == 0 {
		return "", ErrNotFound
	}

	// Suggestions come back as plain strings instead of entry objects.
	var suggestion string
	if json.Unmarshal(raw[0], &suggestion) == nil {
		return "", ErrNotFound
	}

	for _, msg := range raw {
		var e entry
		if err := json.Unmarshal(msg, &e); err != nil {
			continue
		}
		for _, prs := range e.HWI.PRS {
			if code := prs.Sound.Audio; code != "" {
				return audioFileURL(code), nil
			}
		}
	}
	return "", ErrNotFound
}

// audioFileURL builds the media URL for an audio code. The subdirectory is
// "bix" or "gg" for those prefixes, otherwise the code's first character.
func audioFileURL(code string) string {
	var subdir string
	switch {
	case strings.HasPrefix(code, "bix"):
		subdir = "b/bix"
	case strings.HasPrefix(code, "gg"):
		subdir = "g/gg"
	default:
		subdir = code[:1]
	}
	return fmt.Sprintf("https://media.merriam-webster.com/audio/prons/en/us/mp3/%s/%s.mp3", subdir, code)
}
