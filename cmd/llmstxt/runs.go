package main

import (
	"github.com/spf13/cobra"

	"mercator-hq/llmstxt/pkg/cli"
)

var runsFlags struct {
	limit  int
	output string
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent export runs",
	Long: `List recorded export runs, newest first.

Examples:
  # Show the default number of runs
  llmstxt runs

  # Export the last 100 runs as CSV
  llmstxt runs --limit 100 --output csv > runs.csv`,
	RunE: listRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().IntVar(&runsFlags.limit, "limit", 0, "max runs (default: settings.history_limit)")
	runsCmd.Flags().StringVarP(&runsFlags.output, "output", "o", "text", "output format: text, json, csv")
}

func listRuns(cmd *cobra.Command, args []string) error {
	if runsFlags.limit < 0 {
		return cli.NewUsageError("--limit must not be negative")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	limit := runsFlags.limit
	if limit == 0 {
		limit = cfg.Settings.HistoryLimit
	}

	runs, err := a.settings.ListRuns(cmd.Context(), limit)
	if err != nil {
		return cli.NewCommandError("runs", err)
	}
	return printOutput(runsFlags.output, runsView(runs))
}
