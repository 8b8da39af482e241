package config

import (
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"mercator-hq/llmstxt/pkg/export"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "export.interval").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateSite(&cfg.Site)...)
	errs = append(errs, validateExport(&cfg.Export)...)
	errs = append(errs, validateContent(&cfg.Content)...)
	errs = append(errs, validateSettings(&cfg.Settings)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, FieldError{
			Field:   "watch.debounce",
			Message: "debounce must be non-negative",
		})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateSite validates site configuration.
func validateSite(cfg *SiteConfig) []FieldError {
	var errs []FieldError

	if cfg.Root == "" {
		errs = append(errs, FieldError{
			Field:   "site.root",
			Message: "output directory is required",
		})
	}

	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			errs = append(errs, FieldError{
				Field:   "site.base_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		} else if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "site.base_url",
				Message: "base URL must be an absolute http or https URL",
			})
		}
	}

	return errs
}

// validateExport validates export configuration.
func validateExport(cfg *ExportConfig) []FieldError {
	var errs []FieldError

	if cfg.Filename == "" {
		errs = append(errs, FieldError{
			Field:   "export.filename",
			Message: "filename is required",
		})
	} else if filepath.Base(cfg.Filename) != cfg.Filename || cfg.Filename == "." || cfg.Filename == ".." {
		errs = append(errs, FieldError{
			Field:   "export.filename",
			Message: fmt.Sprintf("filename %q must not contain a directory", cfg.Filename),
		})
	}

	if mode, err := strconv.ParseUint(cfg.FileMode, 8, 32); err != nil || mode > 0o777 {
		errs = append(errs, FieldError{
			Field:   "export.file_mode",
			Message: fmt.Sprintf("invalid octal file mode %q", cfg.FileMode),
		})
	}

	if cfg.Interval != "" {
		if _, err := export.ParseInterval(cfg.Interval); err != nil {
			errs = append(errs, FieldError{
				Field:   "export.interval",
				Message: err.Error(),
			})
		}
	}

	for i, t := range cfg.PostTypes {
		if strings.TrimSpace(t) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("export.post_types[%d]", i),
				Message: "type name must not be empty",
			})
		}
	}

	if cfg.RunTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "export.run_timeout",
			Message: "run timeout must be non-negative",
		})
	}

	return errs
}

// validateContent validates content store configuration.
func validateContent(cfg *ContentConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "content.sqlite.path",
				Message: "path is required for the sqlite backend",
			})
		}
		if cfg.SQLite.MaxOpenConns < 0 {
			errs = append(errs, FieldError{
				Field:   "content.sqlite.max_open_conns",
				Message: "max open connections must be non-negative",
			})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "content.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'sqlite' or 'memory'", cfg.Backend),
		})
	}

	return errs
}

// validateSettings validates settings store configuration.
func validateSettings(cfg *SettingsConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "settings.sqlite.path",
				Message: "path is required for the sqlite backend",
			})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "settings.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'sqlite' or 'memory'", cfg.Backend),
		})
	}

	if cfg.RunRetention < 0 {
		errs = append(errs, FieldError{
			Field:   "settings.run_retention",
			Message: "run retention must be non-negative",
		})
	}
	if cfg.HistoryLimit < 0 {
		errs = append(errs, FieldError{
			Field:   "settings.history_limit",
			Message: "history limit must be non-negative",
		})
	}

	return errs
}

// validateServer validates admin server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: %v", cfg.ListenAddress, err),
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.RegenerateRefill < 0 {
		errs = append(errs, FieldError{
			Field:   "server.regenerate_refill",
			Message: "regenerate refill must be positive",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text' or 'console'", cfg.Logging.Format),
		})
	}

	if cfg.Logging.File.Path != "" && cfg.Logging.File.MaxSizeMB < 0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.file.max_size_mb",
			Message: "max size must be non-negative",
		})
	}

	// Validate metrics prometheus path
	if cfg.Metrics.Enabled {
		if cfg.Metrics.Path == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path is required when metrics are enabled",
			})
		} else if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with /",
			})
		}
	}

	// Validate tracing configuration
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	if cfg.Health.CheckTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.check_timeout",
			Message: "check timeout must be non-negative",
		})
	}

	return errs
}
