package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/spf13/cobra"

	"github.com/esltool/speakgrader/internal/dictionary"
	"github.com/esltool/speakgrader/internal/fsx"
	appI18n "github.com/esltool/speakgrader/internal/i18n"
	"github.com/esltool/speakgrader/internal/llm"
	"github.com/esltool/speakgrader/internal/llm/prompts"
	"github.com/esltool/speakgrader/internal/task"
	"github.com/esltool/speakgrader/internal/vocab"
)

func vocabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Extract study vocabulary from the task materials",
		Long: "vocab collects words from the task question and transcripts that are on\n" +
			"the TOEFL word list but not the class's basic list, attaches dictionary\n" +
			"audio, asks the model for definitions in batches, and writes\n" +
			"task{N}_vocabulary_list.html.",
		RunE: runVocab,
	}
	f := cmd.Flags()
	f.String("basic-words", "basic_words.txt", "Word list the class already knows (relative to --dir)")
	f.String("toefl-words", "toefl_words.txt", "TOEFL word list (relative to --dir)")
	f.Int("batch-size", 10, "Words per definition request")
	f.String("mw-key", "", "Merriam-Webster Learner's API key (falls back to MW_LEARNERS_KEY)")
	f.String("llm-url", "", "OpenAI-compatible API base URL (empty for the default endpoint)")
	f.String("llm-key", "", "API key (falls back to OPENAI_API_KEY)")
	f.String("llm-model", "gpt-4o-mini", "Model used for definitions")
	f.Duration("llm-timeout", 2*time.Minute, "Per-request deadline")
	return cmd
}

func runVocab(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	if err := initI18n(v); err != nil {
		return err
	}
	loc := appI18n.NewLocalizer(v.GetString("lang"))
	dir := v.GetString("dir")
	loadDotenv(dir)

	apiKey := v.GetString("llm-key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set --llm-key or OPENAI_API_KEY")
	}
	mwKey := v.GetString("mw-key")
	if mwKey == "" {
		mwKey = os.Getenv("MW_LEARNERS_KEY")
	}
	if mwKey == "" {
		return fmt.Errorf("no dictionary key: set --mw-key or MW_LEARNERS_KEY")
	}

	client := llm.New(v.GetString("llm-url"), apiKey, v.GetString("llm-model"), v.GetDuration("llm-timeout"))
	dict := dictionary.New(mwKey)

	basic, err := vocab.LoadWordList(resolvePath(dir, v.GetString("basic-words")))
	if err != nil {
		return fmt.Errorf("load basic word list: %w", err)
	}
	toefl, err := vocab.LoadWordList(resolvePath(dir, v.GetString("toefl-words")))
	if err != nil {
		return fmt.Errorf("load TOEFL word list: %w", err)
	}

	ctx := cmd.Context()
	batchSize := v.GetInt("batch-size")
	if batchSize < 1 {
		batchSize = 1
	}

	return forEachTask(v,
		"Select the task number to extract new words for (1, 2, 3, or 4), or type any other key to quit:",
		func(n int) error {
			return vocabTask(ctx, client, dict, dir, n, basic, toefl, batchSize, loc)
		})
}

func vocabTask(ctx context.Context, definer llm.Definer, dict dictionary.LexicalLookup,
	dir string, n int, basic, toefl map[string]bool, batchSize int, loc *i18n.Localizer) error {

	files, err := task.Load(dir, n)
	if err != nil {
		return err
	}
	text := joinNonEmpty(files.Question, files.Reading, files.Listening)

	words := vocab.Difficult(vocab.ExtractWords(text), basic, toefl)
	if len(words) == 0 {
		slog.Info("no new words found", "task", n)
		return nil
	}

	// Words without a dictionary pronunciation are dropped here so the table
	// never carries a dead audio link.
	audioURLs := make(map[string]string, len(words))
	var pending []prompts.VocabWord
	for _, w := range words {
		url, err := dict.AudioURL(ctx, w)
		if err != nil {
			if errors.Is(err, dictionary.ErrNotFound) {
				slog.Debug("no dictionary audio, word dropped", "word", w)
			} else {
				slog.Warn("dictionary lookup failed, word dropped", "word", w, "error", err)
			}
			continue
		}
		audioURLs[w] = url
		pending = append(pending, prompts.VocabWord{
			Word:            w,
			ContextSentence: vocab.ContextSentence(w, text),
		})
	}
	if len(pending) == 0 {
		slog.Info("no words with dictionary audio", "task", n)
		return nil
	}

	var entries []vocab.Entry
	for i := 0; i < len(pending); i += batchSize {
		group := pending[i:min(i+batchSize, len(pending))]
		prompt, err := prompts.BuildVocabPrompt(group)
		if err != nil {
			return fmt.Errorf("build vocabulary prompt: %w", err)
		}
		raw, err := definer.Define(ctx, prompt)
		if err != nil {
			slog.Error("definition batch failed, words dropped", "task", n, "words", len(group), "error", err)
			continue
		}
		entries = append(entries, vocab.ParseDefinitions(raw, audioURLs)...)
	}
	if len(entries) == 0 {
		return fmt.Errorf("task %d: no definitions obtained", n)
	}

	html, err := vocab.RenderHTML(entries, loc)
	if err != nil {
		return fmt.Errorf("render vocabulary table: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("task%d_vocabulary_list.html", n))
	if err := fsx.WriteFileAtomic(path, []byte(html)); err != nil {
		return fmt.Errorf("write vocabulary table: %w", err)
	}
	slog.Info("vocabulary table written", "task", n, "path", path, "words", len(entries))
	return nil
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

// resolvePath leaves absolute paths alone and anchors relative ones at the
// working directory.
func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
