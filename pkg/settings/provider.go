package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"mercator-hq/llmstxt/pkg/export"
)

// Provider reads and writes the export options blob. It implements
// export.ConfigProvider.
type Provider struct {
	store  Store
	logger *slog.Logger

	mu       sync.RWMutex
	fallback Options
}

// NewProvider creates a provider over store. fallback is used while no blob
// has been stored yet.
func NewProvider(store Store, fallback Options) *Provider {
	return &Provider{
		store:    store,
		fallback: fallback,
		logger:   slog.Default().With("component", "settings.provider"),
	}
}

// Options returns the stored options, or the fallback when nothing is stored.
// A malformed blob is returned as *export.ConfigError.
func (p *Provider) Options(ctx context.Context) (Options, error) {
	data, err := p.store.GetOption(ctx, OptionsKey)
	if errors.Is(err, ErrNotFound) {
		p.mu.RLock()
		defer p.mu.RUnlock()
		return p.fallback, nil
	}
	if err != nil {
		return Options{}, fmt.Errorf("failed to read %s: %w", OptionsKey, err)
	}
	return DecodeOptions(data)
}

// ExportConfig returns the snapshot for the next run. Malformed settings are
// logged and read as no included types with the default interval, so a bad
// blob never fails a run. Only an unreachable store is an error.
func (p *Provider) ExportConfig(ctx context.Context) (export.ExportConfig, error) {
	opts, err := p.Options(ctx)
	if err != nil {
		var cfgErr *export.ConfigError
		if !errors.As(err, &cfgErr) {
			return export.ExportConfig{}, err
		}
		p.logger.WarnContext(ctx, "ignoring malformed export settings",
			"key", cfgErr.Key,
			"error", cfgErr.Cause,
		)
		return export.ExportConfig{Interval: export.DefaultInterval}, nil
	}

	if opts.Interval != "" {
		if _, err := export.ParseInterval(opts.Interval); err != nil {
			p.logger.WarnContext(ctx, "invalid interval in settings, using default",
				"interval", opts.Interval,
				"default", export.DefaultInterval,
			)
		}
	}

	return opts.ExportConfig(), nil
}

// Save validates, normalizes and stores opts. It returns what was stored.
func (p *Provider) Save(ctx context.Context, opts Options) (Options, error) {
	normalized, err := opts.Normalize()
	if err != nil {
		return Options{}, err
	}

	data, err := normalized.Encode()
	if err != nil {
		return Options{}, fmt.Errorf("failed to encode options: %w", err)
	}

	if err := p.store.PutOption(ctx, OptionsKey, data); err != nil {
		return Options{}, fmt.Errorf("failed to store %s: %w", OptionsKey, err)
	}

	p.logger.InfoContext(ctx, "export settings saved",
		"post_types", normalized.PostTypes,
		"interval", normalized.Interval,
	)
	return normalized, nil
}

// SetFallback replaces the options used while no blob is stored.
func (p *Provider) SetFallback(opts Options) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fallback = opts
}

// Reset deletes the stored blob so the fallback applies again.
func (p *Provider) Reset(ctx context.Context) error {
	return p.store.DeleteOption(ctx, OptionsKey)
}
