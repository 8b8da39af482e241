package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/llmstxt/pkg/cli"
	"mercator-hq/llmstxt/pkg/runner"
)

var generateFlags struct {
	output string
	stdout bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Regenerate the llms.txt file once",
	Long: `Regenerate the llms.txt file with the stored settings and exit.

The run is recorded in the run history with the "manual" trigger. A failed
run leaves the previous file in place and exits with a non-zero code.

Examples:
  # Regenerate with the default config
  llmstxt generate

  # Print the report as JSON
  llmstxt generate --output json

  # Print the document without writing the file
  llmstxt generate --stdout`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateFlags.output, "output", "o", "text", "report format: text, json")
	generateCmd.Flags().BoolVar(&generateFlags.stdout, "stdout", false, "print the document instead of writing the file")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Content.FixturePath != "" {
		if _, err := a.importFixture(ctx, cfg.Content.FixturePath); err != nil {
			return err
		}
	}

	if generateFlags.stdout {
		data, _, err := a.preview(ctx)
		if err != nil {
			return cli.NewCommandError("generate", err)
		}
		fmt.Fprintln(stdout, string(data))
		return nil
	}

	r, err := runner.New(runner.Config{
		Job:        a.job,
		Provider:   a.provider,
		History:    a.settings,
		RunTimeout: cfg.Export.RunTimeout,
	})
	if err != nil {
		return err
	}

	report, err := r.OnManualTrigger(ctx)
	if err != nil {
		return cli.NewCommandError("generate", err)
	}

	if generateFlags.output == "text" {
		fmt.Fprintf(stdout, "Generated %s (%d bytes, %d sections, %d items)\n",
			report.Path, report.Bytes, report.Sections, report.Items)
	}
	return printOutput(generateFlags.output, reportView(report))
}
