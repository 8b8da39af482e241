// Package settings stores the export options blob and the export run history.
//
// The options live under a single key, OptionsKey, as JSON:
//
//	{"post_types": ["post", "page"], "interval": "daily"}
//
// Provider turns the blob into an export.ExportConfig for each run. A blob
// that cannot be decoded is logged and read as "no included types, default
// interval" so bad settings never stop the scheduled export.
//
// Two Store backends are provided:
//
//   - MemoryStore: process-local, for tests and dry runs
//   - SQLiteStore: file-backed on modernc.org/sqlite, with run history pruning
//
// # Usage
//
//	store, err := settings.NewSQLiteStore(settings.SQLiteConfig{Path: "data/settings.db"})
//	provider := settings.NewProvider(store, settings.Options{Interval: "daily"})
//
//	cfg, err := provider.ExportConfig(ctx)
//	report, err := job.Run(ctx, cfg)
//	store.RecordRun(ctx, settings.NewRunRecord(settings.TriggerManual, report, err))
package settings
