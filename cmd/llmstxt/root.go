package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mercator-hq/llmstxt/pkg/cli"
	"mercator-hq/llmstxt/pkg/config"
	"mercator-hq/llmstxt/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile  string
	envFile  string
	logLevel string
	verbose  bool

	// logger is built by loadConfig and shut down by Execute.
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "llmstxt",
	Short: "llmstxt - llms.txt exporter for published site content",
	Long: `llmstxt writes an llms.txt file that indexes a site's published content
for LLM consumers.

It provides:
  - A deterministic export of the selected content types
  - Scheduled regeneration (hourly, twicedaily, daily) and manual triggers
  - Stored export settings and run history
  - An HTTP admin API with health checks and Prometheus metrics`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a code matching the error.
func Execute() {
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Shutdown()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config (ignored when missing)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (same as --log-level debug)")
}

// loadConfig reads the dotenv file and the configuration, then installs the
// configured logger as the slog default.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, cli.NewConfigError("env-file", err.Error())
		}
	}

	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}

	l, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		File: logging.FileConfig{
			Path:       cfg.Telemetry.Logging.File.Path,
			MaxSizeMB:  cfg.Telemetry.Logging.File.MaxSizeMB,
			MaxBackups: cfg.Telemetry.Logging.File.MaxBackups,
			MaxAgeDays: cfg.Telemetry.Logging.File.MaxAgeDays,
			Compress:   cfg.Telemetry.Logging.File.Compress,
		},
		Writer: os.Stderr,
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	l.SetDefault()
	logger = l

	return cfg, nil
}
