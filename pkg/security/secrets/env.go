package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// DefaultEnvPrefix namespaces secrets read from the environment.
const DefaultEnvPrefix = "LLMSTXT_SECRET_"

// EnvProvider loads secrets from environment variables.
//
// The secret "admin-token" is read from LLMSTXT_SECRET_ADMIN_TOKEN with the
// default prefix.
type EnvProvider struct {
	prefix string
}

// NewEnvProvider creates an environment provider. An empty prefix uses
// DefaultEnvPrefix.
func NewEnvProvider(prefix string) *EnvProvider {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	return &EnvProvider{prefix: prefix}
}

// Name implements Provider.
func (p *EnvProvider) Name() string {
	return "env"
}

// Get implements Provider.
func (p *EnvProvider) Get(ctx context.Context, name string) (string, error) {
	envVar := p.EnvVar(name)
	value, ok := os.LookupEnv(envVar)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s (env var %s)", ErrNotFound, name, envVar)
	}
	return value, nil
}

// EnvVar returns the variable a secret is read from.
func (p *EnvProvider) EnvVar(name string) string {
	return p.prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
