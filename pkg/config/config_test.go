package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate(Default()) error = %v", err)
	}
	if cfg.OutputPath() != "llms.txt" {
		t.Errorf("OutputPath() = %q, want llms.txt", cfg.OutputPath())
	}
	if !cfg.Export.AtomicWrite || !cfg.Export.Schedule || !cfg.Export.RunOnStart {
		t.Errorf("export booleans = %+v, want atomic, schedule and run_on_start on", cfg.Export)
	}
	if cfg.Export.Interval != "daily" {
		t.Errorf("Interval = %q, want daily", cfg.Export.Interval)
	}
	if !reflect.DeepEqual(cfg.Export.PostTypes, []string{"post", "page"}) {
		t.Errorf("PostTypes = %v", cfg.Export.PostTypes)
	}
	if cfg.Export.Mode() != 0o644 {
		t.Errorf("Mode() = %o, want 644", cfg.Export.Mode())
	}
	if cfg.Secrets.EnvPrefix != "LLMSTXT_SECRET_" || cfg.Secrets.Dir != "" {
		t.Errorf("Secrets = %+v", cfg.Secrets)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	ApplyDefaults(cfg)

	if !reflect.DeepEqual(first, *cfg) {
		t.Error("ApplyDefaults() is not idempotent")
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
site:
  name: Acme
  description: Widgets
  base_url: https://acme.test
  root: /srv/www
export:
  filename: index.txt
  atomic_write: false
  file_mode: "0600"
  post_types: [post, product]
  interval: hourly
  run_on_start: false
content:
  backend: memory
server:
  listen_address: 0.0.0.0:9090
  admin_token: secret
telemetry:
  logging:
    level: debug
    format: console
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Site.Name != "Acme" || cfg.Site.BaseURL != "https://acme.test" {
		t.Errorf("Site = %+v", cfg.Site)
	}
	if cfg.OutputPath() != filepath.Join("/srv/www", "index.txt") {
		t.Errorf("OutputPath() = %q", cfg.OutputPath())
	}
	if cfg.Export.AtomicWrite {
		t.Error("atomic_write: false was ignored")
	}
	if cfg.Export.RunOnStart {
		t.Error("run_on_start: false was ignored")
	}
	if !cfg.Export.Schedule {
		t.Error("schedule default lost")
	}
	if cfg.Export.Mode() != 0o600 {
		t.Errorf("Mode() = %o, want 600", cfg.Export.Mode())
	}
	if !reflect.DeepEqual(cfg.Export.PostTypes, []string{"post", "product"}) {
		t.Errorf("PostTypes = %v", cfg.Export.PostTypes)
	}
	if cfg.Content.Backend != "memory" {
		t.Errorf("Content.Backend = %q", cfg.Content.Backend)
	}
	if cfg.Settings.Backend != DefaultSettingsBackend {
		t.Errorf("Settings.Backend = %q, want default", cfg.Settings.Backend)
	}
	if cfg.Server.ReadTimeout != DefaultServerReadTimeout {
		t.Errorf("Server.ReadTimeout = %v, want default", cfg.Server.ReadTimeout)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown key",
			content: "export:\n  filenme: llms.txt\n",
			wantErr: "filenme",
		},
		{
			name:    "invalid interval",
			content: "export:\n  interval: weekly\n",
			wantErr: "export.interval",
		},
		{
			name:    "filename with directory",
			content: "export:\n  filename: ../llms.txt\n",
			wantErr: "export.filename",
		},
		{
			name:    "invalid backend",
			content: "content:\n  backend: postgres\n",
			wantErr: "content.backend",
		},
		{
			name:    "relative base url",
			content: "site:\n  base_url: acme.test\n",
			wantErr: "site.base_url",
		},
		{
			name:    "tracing without endpoint",
			content: "telemetry:\n  tracing:\n    enabled: true\n",
			wantErr: "telemetry.tracing.endpoint",
		},
		{
			name:    "malformed yaml",
			content: "site: [",
			wantErr: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfig() succeeded")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadConfig() succeeded for a missing file")
	}
}

func TestLoadConfig_EmptyFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Error("empty file does not load as Default()")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Export.Interval = "weekly"
	cfg.Export.FileMode = "rw-r--r--"
	cfg.Telemetry.Logging.Level = "verbose"

	err := Validate(cfg)

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v, want ValidationError", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("got %d field errors, want 3: %v", len(verr.Errors), verr)
	}
	if !strings.Contains(err.Error(), "with 3 errors") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "site:\n  name: Acme\nexport:\n  interval: daily\n")

	t.Setenv("LLMSTXT_SITE_NAME", "Acme Corp")
	t.Setenv("LLMSTXT_EXPORT_POST_TYPES", "post, page ,,product")
	t.Setenv("LLMSTXT_EXPORT_INTERVAL", "twicedaily")
	t.Setenv("LLMSTXT_EXPORT_ATOMIC_WRITE", "false")
	t.Setenv("LLMSTXT_EXPORT_RUN_TIMEOUT", "30s")
	t.Setenv("LLMSTXT_SERVER_ADMIN_TOKEN", "s3cret")
	t.Setenv("LLMSTXT_TELEMETRY_TRACING_SAMPLE_RATIO", "0.5")
	t.Setenv("LLMSTXT_WATCH_ENABLED", "not-a-bool")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Site.Name != "Acme Corp" {
		t.Errorf("Site.Name = %q", cfg.Site.Name)
	}
	if !reflect.DeepEqual(cfg.Export.PostTypes, []string{"post", "page", "product"}) {
		t.Errorf("PostTypes = %v", cfg.Export.PostTypes)
	}
	if cfg.Export.Interval != "twicedaily" {
		t.Errorf("Interval = %q", cfg.Export.Interval)
	}
	if cfg.Export.AtomicWrite {
		t.Error("AtomicWrite override ignored")
	}
	if cfg.Export.RunTimeout != 30*time.Second {
		t.Errorf("RunTimeout = %v", cfg.Export.RunTimeout)
	}
	if cfg.Server.AdminToken != "s3cret" {
		t.Errorf("AdminToken = %q", cfg.Server.AdminToken)
	}
	if cfg.Telemetry.Tracing.SampleRatio != 0.5 {
		t.Errorf("SampleRatio = %v", cfg.Telemetry.Tracing.SampleRatio)
	}
	if cfg.Watch.Enabled {
		t.Error("unparseable bool override applied")
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverride(t *testing.T) {
	t.Setenv("LLMSTXT_EXPORT_INTERVAL", "monthly")

	if _, err := LoadConfigWithEnvOverrides(""); err == nil {
		t.Error("invalid environment override accepted")
	}
}

func TestSingleton(t *testing.T) {
	path := writeConfig(t, "site:\n  name: First\n")

	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if got := MustGetConfig().Site.Name; got != "First" {
		t.Errorf("Site.Name = %q, want First", got)
	}
	if Path() != path {
		t.Errorf("Path() = %q, want %q", Path(), path)
	}

	if err := os.WriteFile(path, []byte("site:\n  name: Second\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := ReloadConfig(path)
	if err != nil {
		t.Fatalf("ReloadConfig() error = %v", err)
	}
	if cfg.Site.Name != "Second" || GetConfig().Site.Name != "Second" {
		t.Errorf("reloaded name = %q / %q", cfg.Site.Name, GetConfig().Site.Name)
	}

	if err := os.WriteFile(path, []byte("export:\n  interval: weekly\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReloadConfig(path); err == nil {
		t.Error("ReloadConfig() accepted an invalid file")
	}
	if GetConfig().Site.Name != "Second" {
		t.Error("failed reload replaced the configuration")
	}

	SetConfig(nil)
	defer func() {
		if recover() == nil {
			t.Error("MustGetConfig() did not panic without configuration")
		}
	}()
	MustGetConfig()
}
