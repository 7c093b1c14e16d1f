package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/assessly/docgrader/internal/common"
	"github.com/assessly/docgrader/internal/policy"
)

var (
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	cfg    *common.Config
)

var rootCmd = &cobra.Command{
	Use:   "docgrader",
	Short: "Grade submissions against assignment briefs with safety rails",
	Long: `docgrader extracts assignment briefs and student submissions, gates on
extraction quality, and only grades when the readiness and confidence rails
allow it. Every decision is schema-validated and its feedback linted before
anything leaves the tool.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug|info|warn|error); overrides LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format (json|text); overrides LOG_FORMAT")
}

func setup(_ *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	cfg = common.LoadConfig()

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	format := cfg.Log.Format
	if flagLogFormat != "" {
		format = flagLogFormat
	}

	logger = newLogger(level, format)
	slog.SetDefault(logger)
	return nil
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// loadPolicy resolves the effective policy: defaults, then the sqlite store
// if configured; an explicit yaml file wins over both.
func loadPolicy(ctx context.Context) (policy.Policy, error) {
	pol := policy.Default()

	if cfg.Policy.StorePath != "" {
		store, err := policy.NewSQLiteStore(cfg.Policy.StorePath)
		if err != nil {
			return pol, common.WrapError(err, "open policy store")
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				logger.Warn("cli.policy.store_close_error", "error", cerr)
			}
		}()
		pol, err = policy.Load(ctx, store)
		if err != nil {
			return pol, common.WrapError(err, "load policy from store")
		}
	}

	if cfg.Policy.FilePath != "" {
		filePol, err := policy.LoadFile(cfg.Policy.FilePath)
		if err != nil {
			return pol, common.WrapError(err, "load policy file")
		}
		pol = filePol
	}
	return pol, nil
}
