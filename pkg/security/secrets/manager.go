package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// secretRefRegex matches ${secret:name} references in configuration values.
var secretRefRegex = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// Manager resolves secrets from an ordered list of providers. The first
// provider holding a value wins.
type Manager struct {
	providers []Provider
	logger    *slog.Logger
}

// NewManager creates a manager trying providers in order.
func NewManager(providers ...Provider) *Manager {
	return &Manager{
		providers: providers,
		logger:    slog.Default().With("component", "secrets"),
	}
}

// Get returns the secret from the first provider that has it.
func (m *Manager) Get(ctx context.Context, name string) (string, error) {
	for _, p := range m.providers {
		value, err := p.Get(ctx, name)
		if err == nil {
			m.logger.DebugContext(ctx, "secret resolved", "name", redactSecretName(name), "provider", p.Name())
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("%s provider: %w", p.Name(), err)
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Resolve replaces every ${secret:name} reference in input. Values without
// references are returned unchanged.
func (m *Manager) Resolve(ctx context.Context, input string) (string, error) {
	var errs []string

	output := secretRefRegex.ReplaceAllStringFunc(input, func(match string) string {
		name := strings.TrimSpace(secretRefRegex.FindStringSubmatch(match)[1])
		value, err := m.Get(ctx, name)
		if err != nil {
			errs = append(errs, err.Error())
			return match
		}
		return value
	})

	if len(errs) > 0 {
		return "", fmt.Errorf("failed to resolve secret references: %s", strings.Join(errs, "; "))
	}
	return output, nil
}

// HasReference reports whether s contains a ${secret:name} reference.
func HasReference(s string) bool {
	return secretRefRegex.MatchString(s)
}

// redactSecretName shortens a secret name for logs.
func redactSecretName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
