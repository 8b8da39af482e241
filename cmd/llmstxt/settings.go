package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/llmstxt/pkg/cli"
	"mercator-hq/llmstxt/pkg/export"
	"mercator-hq/llmstxt/pkg/settings"
)

var settingsFlags struct {
	postTypes []string
	interval  string
	output    string
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the export settings",
	Long: `Show or change the stored export settings.

The settings select the content types written to llms.txt and the
regeneration interval. A running service picks up the new interval on its
next tick, or immediately when changed through the admin API.

Subcommands:
  show   - Print the stored settings
  set    - Change the stored settings
  reset  - Delete the stored settings so the config defaults apply`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored settings",
	RunE:  showSettings,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the stored settings",
	Long: `Change the stored settings. Flags that are not given keep their value.

Examples:
  # Export posts and pages hourly
  llmstxt settings set --post-types post,page --interval hourly

  # Only change the interval
  llmstxt settings set --interval twicedaily`,
	RunE: setSettings,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the stored settings",
	RunE:  resetSettings,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsResetCmd)

	settingsShowCmd.Flags().StringVarP(&settingsFlags.output, "output", "o", "text", "output format: text, json, csv")

	settingsSetCmd.Flags().StringSliceVar(&settingsFlags.postTypes, "post-types", nil, "comma-separated content types to export")
	settingsSetCmd.Flags().StringVar(&settingsFlags.interval, "interval", "", "regeneration interval: hourly, twicedaily, daily")
	settingsSetCmd.Flags().StringVarP(&settingsFlags.output, "output", "o", "text", "output format: text, json, csv")
}

func showSettings(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	opts, err := a.provider.Options(cmd.Context())
	if err != nil {
		var cfgErr *export.ConfigError
		if !errors.As(err, &cfgErr) {
			return cli.NewCommandError("settings show", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: stored settings are malformed (%v), defaults apply\n", cfgErr.Cause)
		opts = settings.Options{Interval: string(export.DefaultInterval)}
	}
	return printOutput(settingsFlags.output, optionsView(opts))
}

func setSettings(cmd *cobra.Command, args []string) error {
	postTypesSet := cmd.Flags().Changed("post-types")
	if !postTypesSet && settingsFlags.interval == "" {
		return cli.NewUsageError("nothing to change: pass --post-types or --interval")
	}
	if settingsFlags.interval != "" {
		if _, err := export.ParseInterval(settingsFlags.interval); err != nil {
			return cli.NewUsageError("%v", err)
		}
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

	ctx := cmd.Context()
	current, err := a.provider.Options(ctx)
	if err != nil {
		var cfgErr *export.ConfigError
		if !errors.As(err, &cfgErr) {
			return cli.NewCommandError("settings set", err)
		}
		current = settings.Options{}
	}

	if postTypesSet {
		current.PostTypes = trimAll(settingsFlags.postTypes)
	}
	if settingsFlags.interval != "" {
		current.Interval = settingsFlags.interval
	}

	saved, err := a.provider.Save(ctx, current)
	if err != nil {
		return cli.NewCommandError("settings set", err)
	}
	return printOutput(settingsFlags.output, optionsView(saved))
}

func resetSettings(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.provider.Reset(cmd.Context()); err != nil {
		return cli.NewCommandError("settings reset", err)
	}
	fmt.Fprintln(stdout, "Settings reset to config defaults")
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
