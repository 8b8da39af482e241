package config

import "time"

// Default values for configuration fields.
const (
	// Site defaults
	DefaultSiteRoot = "."

	// Export defaults
	DefaultExportFilename    = "llms.txt"
	DefaultExportAtomicWrite = true
	DefaultExportFileMode    = 0o644
	DefaultExportInterval    = "daily"
	DefaultExportSchedule    = true
	DefaultExportRunOnStart  = true
	DefaultExportRunTimeout  = 5 * time.Minute

	// Content defaults
	DefaultContentBackend            = "sqlite"
	DefaultContentSQLitePath         = "data/content.db"
	DefaultContentSQLiteMaxOpenConns = 10
	DefaultContentSQLiteMaxIdleConns = 5
	DefaultContentSQLiteWALMode      = true
	DefaultContentSQLiteBusyTimeout  = 5 * time.Second

	// Settings defaults
	DefaultSettingsBackend           = "sqlite"
	DefaultSettingsSQLitePath        = "data/settings.db"
	DefaultSettingsSQLiteBusyTimeout = 5 * time.Second
	DefaultSettingsRunRetention      = 30 * 24 * time.Hour
	DefaultSettingsHistoryLimit      = 20

	// Server defaults
	DefaultServerEnabled         = true
	DefaultListenAddress         = "127.0.0.1:8080"
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 5 * time.Minute
	DefaultServerIdleTimeout     = 120 * time.Second
	DefaultServerShutdownTimeout = 30 * time.Second
	DefaultRegenerateBurst       = 5
	DefaultRegenerateRefill      = 12 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "json"
	DefaultLogFileMaxSizeMB     = 100
	DefaultLogFileMaxBackups    = 5
	DefaultLogFileMaxAgeDays    = 30
	DefaultMetricsEnabled       = true
	DefaultPrometheusPath       = "/metrics"
	DefaultMetricsNamespace     = "llmstxt"
	DefaultMetricsSubsystem     = "export"
	DefaultTracingEnabled       = false
	DefaultTracingServiceName   = "llmstxt"
	DefaultTracingSamplingRate  = 1.0
	DefaultTracingTimeout       = 10 * time.Second
	DefaultHealthCheckTimeout   = 5 * time.Second
	DefaultWatchEnabled         = false
	DefaultWatchDebounce        = 250 * time.Millisecond
	DefaultSecretsEnvPrefix     = "LLMSTXT_SECRET_"
	defaultExportFileModeString = "0644"
)

// DefaultPostTypes is the initial type selection.
var DefaultPostTypes = []string{"post", "page"}

// DefaultRunDurationBuckets are the run duration histogram buckets in seconds.
var DefaultRunDurationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120}

// Default returns a configuration with every field at its default value.
// Loading decodes YAML on top of it, so booleans that default to true can
// still be switched off in the file.
func Default() *Config {
	cfg := &Config{
		Export: ExportConfig{
			AtomicWrite: DefaultExportAtomicWrite,
			Schedule:    DefaultExportSchedule,
			RunOnStart:  DefaultExportRunOnStart,
		},
		Content: ContentConfig{
			SQLite: ContentSQLiteConfig{WALMode: DefaultContentSQLiteWALMode},
		},
		Server: ServerConfig{Enabled: DefaultServerEnabled},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{
				Enabled:     DefaultTracingEnabled,
				SampleRatio: DefaultTracingSamplingRate,
			},
		},
		Watch: WatchConfig{Enabled: DefaultWatchEnabled},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Site defaults
	if cfg.Site.Root == "" {
		cfg.Site.Root = DefaultSiteRoot
	}

	// Export defaults
	if cfg.Export.Filename == "" {
		cfg.Export.Filename = DefaultExportFilename
	}
	if cfg.Export.FileMode == "" {
		cfg.Export.FileMode = defaultExportFileModeString
	}
	if cfg.Export.PostTypes == nil {
		cfg.Export.PostTypes = append([]string(nil), DefaultPostTypes...)
	}
	if cfg.Export.Interval == "" {
		cfg.Export.Interval = DefaultExportInterval
	}
	if cfg.Export.RunTimeout == 0 {
		cfg.Export.RunTimeout = DefaultExportRunTimeout
	}

	// Content defaults
	if cfg.Content.Backend == "" {
		cfg.Content.Backend = DefaultContentBackend
	}
	if cfg.Content.SQLite.Path == "" {
		cfg.Content.SQLite.Path = DefaultContentSQLitePath
	}
	if cfg.Content.SQLite.MaxOpenConns == 0 {
		cfg.Content.SQLite.MaxOpenConns = DefaultContentSQLiteMaxOpenConns
	}
	if cfg.Content.SQLite.MaxIdleConns == 0 {
		cfg.Content.SQLite.MaxIdleConns = DefaultContentSQLiteMaxIdleConns
	}
	if cfg.Content.SQLite.BusyTimeout == 0 {
		cfg.Content.SQLite.BusyTimeout = DefaultContentSQLiteBusyTimeout
	}

	// Settings defaults
	if cfg.Settings.Backend == "" {
		cfg.Settings.Backend = DefaultSettingsBackend
	}
	if cfg.Settings.SQLite.Path == "" {
		cfg.Settings.SQLite.Path = DefaultSettingsSQLitePath
	}
	if cfg.Settings.SQLite.BusyTimeout == 0 {
		cfg.Settings.SQLite.BusyTimeout = DefaultSettingsSQLiteBusyTimeout
	}
	if cfg.Settings.RunRetention == 0 {
		cfg.Settings.RunRetention = DefaultSettingsRunRetention
	}
	if cfg.Settings.HistoryLimit == 0 {
		cfg.Settings.HistoryLimit = DefaultSettingsHistoryLimit
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultServerIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
	if cfg.Server.RegenerateBurst == 0 {
		cfg.Server.RegenerateBurst = DefaultRegenerateBurst
	}
	if cfg.Server.RegenerateRefill == 0 {
		cfg.Server.RegenerateRefill = DefaultRegenerateRefill
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Logging.File.MaxSizeMB == 0 {
		cfg.Telemetry.Logging.File.MaxSizeMB = DefaultLogFileMaxSizeMB
	}
	if cfg.Telemetry.Logging.File.MaxBackups == 0 {
		cfg.Telemetry.Logging.File.MaxBackups = DefaultLogFileMaxBackups
	}
	if cfg.Telemetry.Logging.File.MaxAgeDays == 0 {
		cfg.Telemetry.Logging.File.MaxAgeDays = DefaultLogFileMaxAgeDays
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.RunDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RunDurationBuckets = append([]float64(nil), DefaultRunDurationBuckets...)
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}

	// Watch defaults
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}

	// Secrets defaults
	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = DefaultSecretsEnvPrefix
	}
}
