package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "LLMSTXT_"

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded on top of Default(), then defaults are applied to
// fields the file left empty and the result is validated.
// The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// parse decodes YAML onto the defaults. Unknown keys are rejected so typos
// surface at startup.
func parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention LLMSTXT_SECTION_FIELD (e.g., LLMSTXT_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// An empty path skips the file and starts from Default().
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if path == "" {
		cfg = Default()
	} else {
		cfg, err = LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format LLMSTXT_SECTION_FIELD. Values that do
// not parse are ignored.
func applyEnvOverrides(cfg *Config) {
	// Site overrides
	envString("SITE_NAME", &cfg.Site.Name)
	envString("SITE_DESCRIPTION", &cfg.Site.Description)
	envString("SITE_BASE_URL", &cfg.Site.BaseURL)
	envString("SITE_ROOT", &cfg.Site.Root)

	// Export overrides
	envString("EXPORT_FILENAME", &cfg.Export.Filename)
	envBool("EXPORT_ATOMIC_WRITE", &cfg.Export.AtomicWrite)
	envString("EXPORT_FILE_MODE", &cfg.Export.FileMode)
	envBool("EXPORT_CREATE_DIRS", &cfg.Export.CreateDirs)
	if val := os.Getenv(EnvPrefix + "EXPORT_POST_TYPES"); val != "" {
		cfg.Export.PostTypes = splitList(val)
	}
	envString("EXPORT_INTERVAL", &cfg.Export.Interval)
	envBool("EXPORT_SCHEDULE", &cfg.Export.Schedule)
	envBool("EXPORT_RUN_ON_START", &cfg.Export.RunOnStart)
	envDuration("EXPORT_RUN_TIMEOUT", &cfg.Export.RunTimeout)

	// Content overrides
	envString("CONTENT_BACKEND", &cfg.Content.Backend)
	envString("CONTENT_SQLITE_PATH", &cfg.Content.SQLite.Path)
	envString("CONTENT_FIXTURE_PATH", &cfg.Content.FixturePath)

	// Settings overrides
	envString("SETTINGS_BACKEND", &cfg.Settings.Backend)
	envString("SETTINGS_SQLITE_PATH", &cfg.Settings.SQLite.Path)
	envDuration("SETTINGS_RUN_RETENTION", &cfg.Settings.RunRetention)

	// Server overrides
	envBool("SERVER_ENABLED", &cfg.Server.Enabled)
	envString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envString("SERVER_ADMIN_TOKEN", &cfg.Server.AdminToken)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envString("TELEMETRY_LOGGING_FILE_PATH", &cfg.Telemetry.Logging.File.Path)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}

	// Watch overrides
	envBool("WATCH_ENABLED", &cfg.Watch.Enabled)
	envDuration("WATCH_DEBOUNCE", &cfg.Watch.Debounce)

	// Secrets overrides
	envString("SECRETS_DIR", &cfg.Secrets.Dir)
}

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

// splitList splits a comma separated list, dropping blanks.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
