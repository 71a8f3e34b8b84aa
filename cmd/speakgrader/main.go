package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appI18n "github.com/esltool/speakgrader/internal/i18n"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "speakgrader",
		Short: "Grading toolkit for TOEFL-style speaking responses",
		Long: "speakgrader sends speaking-test transcripts to an LLM for rubric grading,\n" +
			"extracts scores and revisions from the feedback, and assembles spreadsheets,\n" +
			"HTML reviews, and blog posts for the class.",
	}

	pf := root.PersistentFlags()
	pf.StringP("dir", "C", ".", "Working directory containing task files and outputs")
	pf.IntP("task", "t", 0, "Task number (1-4); prompts interactively when omitted")
	pf.StringP("lang", "l", "en", "Language for report labels (en, zh)")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text, json)")

	root.AddCommand(
		evaluateCmd(),
		reportCmd(),
		scoreCmd(),
		postCmd(),
		vocabCmd(),
		audioCmd(),
		historyCmd(),
		serveCmd(),
	)
	return root
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())
	_ = v.BindPFlags(cmd.InheritedFlags())

	v.SetEnvPrefix("SPEAKGRADER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("speakgrader")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/speakgrader")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// loadDotenv loads API keys from a .env file in the working directory, the
// way the grading workflow has always kept its secrets. Absence is fine.
func loadDotenv(dir string) {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		slog.Warn("error loading .env file", "path", path, "error", err)
	}
}

// initI18n sets up the translation bundle and returns a localizer for the
// configured language.
func initI18n(v *viper.Viper) error {
	return appI18n.Init(v.GetString("lang"))
}

// forEachTask runs fn for the --task flag when given, otherwise prompts
// interactively in a loop until a non-matching input is entered. Per-task
// failures are reported and the loop continues; they never abort the batch.
func forEachTask(v *viper.Viper, prompt string, fn func(n int) error) error {
	if n := v.GetInt("task"); n != 0 {
		if n < 1 || n > 4 {
			return fmt.Errorf("invalid task number %d: must be 1-4", n)
		}
		return fn(n)
	}

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println(prompt)
		if !sc.Scan() {
			return sc.Err()
		}
		n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
		if err != nil || n < 1 || n > 4 {
			fmt.Println("Exiting the program.")
			return nil
		}
		if err := fn(n); err != nil {
			slog.Error("task failed", "task", n, "error", err)
		}
	}
}
