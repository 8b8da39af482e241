package secrets

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a provider has no value for a secret.
var ErrNotFound = errors.New("secret not found")

// Provider loads secret values by name.
type Provider interface {
	// Name identifies the provider in logs and errors.
	Name() string

	// Get returns the value of the secret, or an error wrapping ErrNotFound.
	Get(ctx context.Context, name string) (string, error)
}
