package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"mercator-hq/llmstxt/pkg/config"
	"mercator-hq/llmstxt/pkg/content"
	"mercator-hq/llmstxt/pkg/content/storage"
	"mercator-hq/llmstxt/pkg/export"
	"mercator-hq/llmstxt/pkg/export/sink"
	"mercator-hq/llmstxt/pkg/settings"
)

// settingsPruneInterval is how often expired run history is deleted.
const settingsPruneInterval = time.Hour

// app holds the stores and the export job shared by the commands.
type app struct {
	cfg      *config.Config
	content  content.Store
	settings settings.Store
	provider *settings.Provider
	site     *siteSource
	job      *export.Job
}

// newApp opens the stores described by cfg and builds the export job.
func newApp(cfg *config.Config) (*app, error) {
	contentStore, err := storage.New(cfg.Content.Backend, &storage.SQLiteConfig{
		Path:         cfg.Content.SQLite.Path,
		MaxOpenConns: cfg.Content.SQLite.MaxOpenConns,
		MaxIdleConns: cfg.Content.SQLite.MaxIdleConns,
		WALMode:      cfg.Content.SQLite.WALMode,
		BusyTimeout:  cfg.Content.SQLite.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open content store: %w", err)
	}

	settingsStore, err := openSettingsStore(&cfg.Settings)
	if err != nil {
		_ = contentStore.Close()
		return nil, err
	}

	fileSink := sink.NewFile(&sink.Config{
		Atomic:     cfg.Export.AtomicWrite,
		Mode:       cfg.Export.Mode(),
		CreateDirs: cfg.Export.CreateDirs,
	})

	site := newSiteSource(cfg)
	return &app{
		cfg:      cfg,
		content:  contentStore,
		settings: settingsStore,
		provider: settings.NewProvider(settingsStore, fallbackOptions(cfg)),
		site:     site,
		job:      export.NewJob(contentStore, site, fileSink, cfg.OutputPath()),
	}, nil
}

func openSettingsStore(cfg *config.SettingsConfig) (settings.Store, error) {
	switch cfg.Backend {
	case "sqlite", "":
		store, err := settings.NewSQLiteStore(settings.SQLiteConfig{
			Path:          cfg.SQLite.Path,
			BusyTimeout:   cfg.SQLite.BusyTimeout,
			RunRetention:  cfg.RunRetention,
			PruneInterval: settingsPruneInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open settings store: %w", err)
		}
		return store, nil
	case "memory":
		return settings.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported settings backend: %s", cfg.Backend)
	}
}

func fallbackOptions(cfg *config.Config) settings.Options {
	return settings.Options{
		PostTypes: cfg.Export.PostTypes,
		Interval:  cfg.Export.Interval,
	}
}

// siteSource resolves site metadata from the latest loaded configuration.
type siteSource struct {
	mu   sync.RWMutex
	site export.SiteInfo
}

func newSiteSource(cfg *config.Config) *siteSource {
	s := &siteSource{}
	s.set(cfg)
	return s
}

func (s *siteSource) set(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.site = export.SiteInfo{
		Name:        cfg.Site.Name,
		Description: cfg.Site.Description,
		BaseURL:     cfg.Site.BaseURL,
	}
}

// SiteInfo implements export.SiteInfoProvider.
func (s *siteSource) SiteInfo(ctx context.Context) (export.SiteInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.site, nil
}

// applyConfig switches the app to a reloaded configuration. Site metadata
// and the settings fallback apply to the next run. Output file and store
// settings are bound at startup; changes to them are logged and ignored.
func (a *app) applyConfig(cfg *config.Config) {
	a.site.set(cfg)
	a.provider.SetFallback(fallbackOptions(cfg))

	for _, key := range restartRequired(a.cfg, cfg) {
		slog.Warn("configuration change requires a restart", "key", key)
	}
}

// restartRequired lists the keys that differ between old and cur but only
// take effect on startup.
func restartRequired(old, cur *config.Config) []string {
	var keys []string
	if old.OutputPath() != cur.OutputPath() {
		keys = append(keys, "site.root/export.filename")
	}
	if old.Export.AtomicWrite != cur.Export.AtomicWrite {
		keys = append(keys, "export.atomic_write")
	}
	if old.Export.FileMode != cur.Export.FileMode {
		keys = append(keys, "export.file_mode")
	}
	if old.Export.CreateDirs != cur.Export.CreateDirs {
		keys = append(keys, "export.create_dirs")
	}
	if old.Content.Backend != cur.Content.Backend || old.Content.SQLite != cur.Content.SQLite {
		keys = append(keys, "content")
	}
	if old.Settings.Backend != cur.Settings.Backend || old.Settings.SQLite != cur.Settings.SQLite {
		keys = append(keys, "settings")
	}
	slices.Sort(keys)
	return keys
}

// preview renders the document with the stored settings into memory. The
// output file and the run history are left untouched.
func (a *app) preview(ctx context.Context) ([]byte, export.Report, error) {
	exportCfg, err := a.provider.ExportConfig(ctx)
	if err != nil {
		return nil, export.Report{}, fmt.Errorf("failed to load export settings: %w", err)
	}

	mem := sink.NewMemory()
	job := export.NewJob(a.content, a.site, mem, a.job.Path())
	report, err := job.Run(ctx, exportCfg)
	if err != nil {
		return nil, report, err
	}

	data, _ := mem.Get(job.Path())
	return data, report, nil
}

// importFixture loads the YAML fixture at path into the content store.
func (a *app) importFixture(ctx context.Context, path string) (content.ImportResult, error) {
	fixture, err := content.LoadFixture(path)
	if err != nil {
		return content.ImportResult{}, err
	}
	result, err := fixture.Import(ctx, a.content)
	if err != nil {
		return result, fmt.Errorf("failed to import fixture %q: %w", path, err)
	}
	slog.Info("content fixture imported",
		"path", path,
		"types", result.Types,
		"items", result.Items,
	)
	return result, nil
}

// Close releases both stores.
func (a *app) Close() error {
	return errors.Join(a.settings.Close(), a.content.Close())
}
