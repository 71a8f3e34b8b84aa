// Package llm wraps an OpenAI-compatible API behind the capability
// interfaces the pipeline depends on, so everything deterministic can be
// tested against fakes with zero network access.
package llm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/esltool/speakgrader/internal/llm/prompts"
	"github.com/esltool/speakgrader/internal/model"
	"github.com/esltool/speakgrader/internal/rubric"
)

// NoResponseSentinel is returned verbatim for empty submissions. Downstream
// parsing will reject it as lacking the labeled fields, which is the point:
// a no-show must never acquire a score.
const NoResponseSentinel = "No response provided. Unable to evaluate language use or topic development."

// evalTemperature keeps grading output stable across runs without making it
// fully deterministic.
const evalTemperature = 0.5

// Evaluator grades one student response against the rubrics.
type Evaluator interface {
	Evaluate(ctx context.Context, req model.EvaluationRequest) (string, error)
}

// Definer produces dictionary-style definitions for a batch of words.
type Definer interface {
	Define(ctx context.Context, prompt string) (string, error)
}

// Synthesizer converts text to speech audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice string) (io.ReadCloser, error)
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// New creates a new LLM client. A zero timeout disables the per-request
// deadline.
func New(baseURL, apiKey, modelName string, timeout time.Duration) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   modelName,
		timeout: timeout,
	}
}

// Ping verifies the API endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("LLM endpoint unreachable: %w", err)
	}
	return nil
}

// Evaluate sends one student's transcript to the model for rubric grading
// and returns the raw feedback text verbatim. Whitespace-only responses
// short-circuit to the sentinel without any network call.
func (c *Client) Evaluate(ctx context.Context, req model.EvaluationRequest) (string, error) {
	if strings.TrimSpace(req.StudentResponse) == "" {
		return NoResponseSentinel, nil
	}

	data := prompts.EvalData{
		Question:            req.Question,
		StudentResponse:     strings.TrimSpace(req.StudentResponse),
		LanguageUseRubric:   rubric.Render(req.LanguageUseRubric),
		ReadingTranscript:   req.ReadingTranscript,
		ListeningTranscript: req.ListeningTranscript,
	}
	if req.TopicDevelopmentRubric != nil {
		data.TopicDevelopmentRubric = rubric.Render(*req.TopicDevelopmentRubric)
	}

	prompt, err := prompts.BuildEvalPrompt(data)
	if err != nil {
		return "", fmt.Errorf("build evaluation prompt: %w", err)
	}

	raw, err := c.complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("evaluate %s: %w", req.StudentID, err)
	}
	slog.Debug("evaluator response", "student", req.StudentID, "task", req.TaskNumber, "raw", raw)
	return raw, nil
}

// Define sends a prepared vocabulary-definition prompt to the model.
func (c *Client) Define(ctx context.Context, prompt string) (string, error) {
	raw, err := c.complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("define vocabulary: %w", err)
	}
	return raw, nil
}

// Synthesize renders text as speech using the named voice and returns the
// audio stream.
func (c *Client) Synthesize(ctx context.Context, text string, voice string) (io.ReadCloser, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	return resp, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: evalTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
