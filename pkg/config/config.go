package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config is the root configuration structure for llmstxt.
// It contains the site identity, the export job, the content and settings
// stores, the admin HTTP server, telemetry and the file watcher.
type Config struct {
	// Site describes the site whose content is exported.
	Site SiteConfig `yaml:"site"`

	// Export contains the output file and regeneration settings.
	Export ExportConfig `yaml:"export"`

	// Content selects and configures the content store.
	Content ContentConfig `yaml:"content"`

	// Settings selects and configures the settings and run history store.
	Settings SettingsConfig `yaml:"settings"`

	// Server contains the admin HTTP server configuration.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains logging, metrics, tracing and health settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Watch controls hot reloading of the configuration and fixture files.
	Watch WatchConfig `yaml:"watch"`

	// Secrets configures where ${secret:name} references are resolved.
	Secrets SecretsConfig `yaml:"secrets"`
}

// SiteConfig describes the site header and where the artifact is written.
type SiteConfig struct {
	// Name is the site title written as the document heading.
	Name string `yaml:"name"`

	// Description is the tagline written below the heading.
	Description string `yaml:"description"`

	// BaseURL is used to resolve relative permalinks.
	// Example: "https://acme.test"
	BaseURL string `yaml:"base_url"`

	// Root is the directory the artifact is written to.
	// Default: "."
	Root string `yaml:"root"`
}

// ExportConfig contains the export job settings.
type ExportConfig struct {
	// Filename is the artifact name inside site.root.
	// Default: "llms.txt"
	Filename string `yaml:"filename"`

	// AtomicWrite writes a temporary file and renames it into place.
	// When false the artifact is truncated and rewritten.
	// Default: true
	AtomicWrite bool `yaml:"atomic_write"`

	// FileMode is the octal permission of the artifact.
	// Default: "0644"
	FileMode string `yaml:"file_mode"`

	// CreateDirs creates site.root when it does not exist.
	// Default: false
	CreateDirs bool `yaml:"create_dirs"`

	// PostTypes is the initial type selection used until settings are saved.
	// Default: ["post", "page"]
	PostTypes []string `yaml:"post_types"`

	// Interval is the initial regeneration interval used until settings are saved.
	// Options: "hourly", "twicedaily", "daily"
	// Default: "daily"
	Interval string `yaml:"interval"`

	// Schedule enables the periodic regeneration.
	// Default: true
	Schedule bool `yaml:"schedule"`

	// RunOnStart runs one export as soon as the scheduler starts.
	// Default: true
	RunOnStart bool `yaml:"run_on_start"`

	// RunTimeout bounds a single run. Zero means no timeout.
	// Default: 5m
	RunTimeout time.Duration `yaml:"run_timeout"`
}

// OutputPath returns the fixed artifact path.
func (c *Config) OutputPath() string {
	return filepath.Join(c.Site.Root, c.Export.Filename)
}

// Mode parses FileMode. Invalid values yield the default mode.
func (e ExportConfig) Mode() os.FileMode {
	mode, err := strconv.ParseUint(e.FileMode, 8, 32)
	if err != nil {
		return DefaultExportFileMode
	}
	return os.FileMode(mode)
}

// ContentConfig selects the content store backend.
type ContentConfig struct {
	// Backend is the store implementation.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite backend.
	SQLite ContentSQLiteConfig `yaml:"sqlite"`

	// FixturePath is an optional YAML fixture imported at startup.
	FixturePath string `yaml:"fixture_path"`
}

// ContentSQLiteConfig configures the SQLite content database.
type ContentSQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/content.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// SettingsConfig selects the settings store backend.
type SettingsConfig struct {
	// Backend is the store implementation.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite backend.
	SQLite SettingsSQLiteConfig `yaml:"sqlite"`

	// RunRetention is how long run history is kept. Zero keeps everything.
	// Default: 720h (30 days)
	RunRetention time.Duration `yaml:"run_retention"`

	// HistoryLimit is the default number of runs listed.
	// Default: 20
	HistoryLimit int `yaml:"history_limit"`
}

// SettingsSQLiteConfig configures the SQLite settings database.
type SettingsSQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/settings.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// ServerConfig contains the admin HTTP server configuration.
type ServerConfig struct {
	// Enabled starts the HTTP server with the run command.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 15s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing a response, including a synchronous
	// regeneration triggered over HTTP.
	// Default: 5m
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the graceful shutdown deadline.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// AdminToken guards the /api/v1 routes with a bearer token when set.
	// Should be loaded from LLMSTXT_SERVER_ADMIN_TOKEN or written as a
	// ${secret:name} reference.
	AdminToken string `yaml:"admin_token"`

	// RegenerateBurst is how many manual regenerations may be requested
	// back to back over HTTP. A negative value disables the limit.
	// Default: 5
	RegenerateBurst int `yaml:"regenerate_burst"`

	// RegenerateRefill is the time to earn back one regeneration.
	// Default: 12s
	RegenerateRefill time.Duration `yaml:"regenerate_refill"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// File writes logs to a rotating file instead of stdout when Path is set.
	File LogFileConfig `yaml:"file"`
}

// LogFileConfig configures rotating file output.
type LogFileConfig struct {
	// Path is the log file path. Empty logs to stdout.
	Path string `yaml:"path"`

	// MaxSizeMB is the size at which the file is rotated.
	// Default: 100
	MaxSizeMB int `yaml:"max_size_mb"`

	// MaxBackups is the number of rotated files kept.
	// Default: 5
	MaxBackups int `yaml:"max_backups"`

	// MaxAgeDays is how long rotated files are kept.
	// Default: 30
	MaxAgeDays int `yaml:"max_age_days"`

	// Compress gzips rotated files.
	// Default: false
	Compress bool `yaml:"compress"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "llmstxt"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "export"
	Subsystem string `yaml:"subsystem"`

	// RunDurationBuckets defines histogram buckets for run duration (seconds).
	// Default: [0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120]
	RunDurationBuckets []float64 `yaml:"run_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "llmstxt"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of runs traced (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS for the OTLP connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check configuration.
type HealthConfig struct {
	// CheckTimeout is the timeout for individual component checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// WatchConfig controls hot reloading.
type WatchConfig struct {
	// Enabled reloads the configuration file and the content fixture when
	// they change on disk.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Debounce is the quiet period before a reload is triggered.
	// Default: 250ms
	Debounce time.Duration `yaml:"debounce"`
}

// SecretsConfig configures secret resolution for server.admin_token.
type SecretsConfig struct {
	// EnvPrefix is prepended to the upper-cased secret name to form the
	// environment variable name.
	// Default: "LLMSTXT_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// Dir is a directory of mounted secret files, one file per secret.
	// Empty disables file secrets.
	Dir string `yaml:"dir"`
}
