package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"mercator-hq/llmstxt/pkg/config"
	"mercator-hq/llmstxt/pkg/runner"
)

func writeReloadConfig(t *testing.T, path, root, name string) {
	t.Helper()
	data := fmt.Sprintf(`site:
  name: %q
  description: "Widgets"
  base_url: "https://acme.test"
  root: %q
content:
  backend: memory
settings:
  backend: memory
watch:
  enabled: true
  debounce: 20ms
`, name, root)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func firstLine(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Scan()
	return sc.Text()
}

func TestStartWatcher_ReloadsSiteInfo(t *testing.T) {
	prev := config.GetConfig()
	t.Cleanup(func() { config.SetConfig(prev) })

	dir := t.TempDir()
	root := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	writeReloadConfig(t, cfgPath, root, "Acme")

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	a, err := newApp(cfg)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	r, err := runner.New(runner.Config{Job: a.job, Provider: a.provider, History: a.settings})
	if err != nil {
		t.Fatalf("runner.New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := r.OnManualTrigger(ctx); err != nil {
		t.Fatalf("OnManualTrigger() error = %v", err)
	}
	if got := firstLine(t, cfg.OutputPath()); got != "# Acme" {
		t.Fatalf("first line = %q, want %q", got, "# Acme")
	}

	if err := startWatcher(ctx, a, r, cfgPath); err != nil {
		t.Fatalf("startWatcher() error = %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	writeReloadConfig(t, cfgPath, root, "Renamed")

	deadline := time.Now().Add(5 * time.Second)
	for {
		site, _ := a.site.SiteInfo(ctx)
		if site.Name == "Renamed" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("site name = %q after config change, want %q", site.Name, "Renamed")
		}
		time.Sleep(20 * time.Millisecond)
	}

	if _, err := r.OnManualTrigger(ctx); err != nil {
		t.Fatalf("OnManualTrigger() error = %v", err)
	}
	if got := firstLine(t, cfg.OutputPath()); got != "# Renamed" {
		t.Errorf("first line after reload = %q, want %q", got, "# Renamed")
	}
}

func TestApp_ApplyConfig(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	next := *a.cfg
	next.Site.Name = "Renamed"
	next.Site.Description = "Gadgets"
	next.Export.PostTypes = []string{"page"}

	a.applyConfig(&next)

	site, err := a.site.SiteInfo(ctx)
	if err != nil {
		t.Fatalf("SiteInfo() error = %v", err)
	}
	if site.Name != "Renamed" || site.Description != "Gadgets" {
		t.Errorf("SiteInfo() = %+v, want reloaded name and description", site)
	}

	opts, err := a.provider.Options(ctx)
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}
	if !slices.Equal(opts.PostTypes, []string{"page"}) {
		t.Errorf("Options().PostTypes = %v, want [page]", opts.PostTypes)
	}
}

func TestRestartRequired(t *testing.T) {
	base := config.Default()
	base.Site.Root = "/srv/www"

	tests := []struct {
		name   string
		modify func(*config.Config)
		want   []string
	}{
		{
			name:   "site metadata only",
			modify: func(c *config.Config) { c.Site.Name = "Renamed" },
			want:   nil,
		},
		{
			name:   "output path",
			modify: func(c *config.Config) { c.Export.Filename = "llms-full.txt" },
			want:   []string{"site.root/export.filename"},
		},
		{
			name: "write options",
			modify: func(c *config.Config) {
				c.Export.AtomicWrite = !c.Export.AtomicWrite
				c.Export.FileMode = "0600"
			},
			want: []string{"export.atomic_write", "export.file_mode"},
		},
		{
			name:   "content backend",
			modify: func(c *config.Config) { c.Content.Backend = "memory" },
			want:   []string{"content"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := *base
			tt.modify(&cur)
			if got := restartRequired(base, &cur); !slices.Equal(got, tt.want) {
				t.Errorf("restartRequired() = %v, want %v", got, tt.want)
			}
		})
	}
}
