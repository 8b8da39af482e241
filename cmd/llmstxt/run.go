package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"mercator-hq/llmstxt/pkg/cli"
	"mercator-hq/llmstxt/pkg/config"
	"mercator-hq/llmstxt/pkg/export"
	"mercator-hq/llmstxt/pkg/runner"
	"mercator-hq/llmstxt/pkg/scheduler"
	"mercator-hq/llmstxt/pkg/security/secrets"
	"mercator-hq/llmstxt/pkg/server"
	"mercator-hq/llmstxt/pkg/telemetry/health"
	"mercator-hq/llmstxt/pkg/telemetry/metrics"
	"mercator-hq/llmstxt/pkg/telemetry/tracing"
)

// freshnessMaxAge is the oldest a document may get before readiness fails.
// Twice the longest interval leaves room for one skipped tick.
var freshnessMaxAge = 2 * export.IntervalDaily.Duration()

var runFlags struct {
	listenAddress string
	noServer      bool
	noSchedule    bool
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduler and the admin API",
	Long: `Run the export scheduler and the HTTP admin API until interrupted.

The llms.txt file is regenerated on the interval stored in the settings
(hourly, twicedaily or daily) and whenever POST /api/v1/regenerate is called.
Changing the interval through the API or the settings command reschedules
the next run without a restart.

Examples:
  # Start with the default config
  llmstxt run

  # Start with a custom config
  llmstxt run --config /etc/llmstxt/config.yaml

  # Override the listen address
  llmstxt run --listen 127.0.0.1:9090

  # Validate the config without starting
  llmstxt run --dry-run`,
	RunE: runService,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override the admin API listen address")
	runCmd.Flags().BoolVar(&runFlags.noServer, "no-server", false, "do not start the admin API")
	runCmd.Flags().BoolVar(&runFlags.noSchedule, "no-schedule", false, "do not schedule periodic regeneration")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate the config and exit")
}

func runService(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.noServer {
		cfg.Server.Enabled = false
	}
	if runFlags.noSchedule {
		cfg.Export.Schedule = false
	}

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("failed to close stores", "error", err)
		}
	}()

	if cfg.Content.FixturePath != "" {
		if _, err := a.importFixture(ctx, cfg.Content.FixturePath); err != nil {
			return err
		}
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", err.Error())
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			slog.Error("failed to flush traces", "error", err)
		}
	}()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	runnerCfg := runner.Config{
		Job:        a.job,
		Provider:   a.provider,
		History:    a.settings,
		Observer:   collector,
		RunOnStart: cfg.Export.RunOnStart,
		RunTimeout: cfg.Export.RunTimeout,
	}
	if cfg.Export.Schedule {
		runnerCfg.Scheduler = scheduler.New()
	}

	r, err := runner.New(runnerCfg)
	if err != nil {
		return err
	}
	if err := r.Start(ctx); err != nil {
		return fmt.Errorf("failed to start runner: %w", err)
	}
	defer r.Stop()

	slog.Info("llmstxt started",
		"version", Version,
		"output", cfg.OutputPath(),
		"schedule", cfg.Export.Schedule,
		"server", cfg.Server.Enabled,
	)

	if cfg.Watch.Enabled {
		if err := startWatcher(ctx, a, r, config.Path()); err != nil {
			return err
		}
	}

	if !cfg.Server.Enabled {
		<-ctx.Done()
		slog.Info("shutting down")
		return nil
	}

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("content_store", health.PingCheck(a.content))
	checker.RegisterCheck("settings_store", health.PingCheck(a.settings))
	if cfg.Export.Schedule {
		checker.RegisterCheck("export_freshness", health.FreshnessCheck(r.LastSuccess, freshnessMaxAge, freshnessMaxAge))
	}

	deps := server.Dependencies{
		Runner:       r,
		Settings:     a.provider,
		Types:        a.content,
		Runs:         a.settings,
		Health:       checker,
		DocumentPath: cfg.OutputPath(),
		HistoryLimit: cfg.Settings.HistoryLimit,
		Version:      versionInfo(),
	}
	if cfg.Telemetry.Metrics.Enabled {
		deps.Metrics = collector.Handler()
		deps.MetricsPath = cfg.Telemetry.Metrics.Path
	}

	serverCfg := cfg.Server
	serverCfg.AdminToken, err = resolveSecret(ctx, &cfg.Secrets, cfg.Server.AdminToken)
	if err != nil {
		return cli.NewConfigError("server.admin_token", err.Error())
	}

	srv := server.New(&serverCfg, deps)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("admin server failed: %w", err)
	}

	slog.Info("shutting down")
	return nil
}

// startWatcher reloads the configuration and the content fixture when they
// change on disk.
func startWatcher(ctx context.Context, a *app, r *runner.Runner, configPath string) error {
	paths := []string{configPath}
	fixture := ""
	if a.cfg.Content.FixturePath != "" {
		abs, err := filepath.Abs(a.cfg.Content.FixturePath)
		if err != nil {
			return fmt.Errorf("failed to resolve fixture path: %w", err)
		}
		fixture = abs
		paths = append(paths, fixture)
	}

	watcher, err := config.NewFileWatcher(paths, a.cfg.Watch.Debounce)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	go func() {
		defer watcher.Stop()
		err := watcher.Watch(ctx, func(path string) error {
			if path == fixture {
				_, err := a.importFixture(ctx, path)
				return err
			}

			cfg, err := config.ReloadConfig(configPath)
			if err != nil {
				return err
			}
			a.applyConfig(cfg)
			return r.Reschedule(ctx)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("file watcher failed", "error", err)
		}
	}()

	return nil
}

// resolveSecret replaces ${secret:name} references in value.
func resolveSecret(ctx context.Context, cfg *config.SecretsConfig, value string) (string, error) {
	if !secrets.HasReference(value) {
		return value, nil
	}

	providers := []secrets.Provider{secrets.NewEnvProvider(cfg.EnvPrefix)}
	if cfg.Dir != "" {
		files, err := secrets.NewFileProvider(cfg.Dir)
		if err != nil {
			return "", err
		}
		providers = append(providers, files)
	}
	return secrets.NewManager(providers...).Resolve(ctx, value)
}
