package storage

import (
	"fmt"

	"mercator-hq/llmstxt/pkg/content"
)

var (
	_ content.Store = (*MemoryStorage)(nil)
	_ content.Store = (*SQLiteStorage)(nil)
)

// New creates a content store for the named backend ("sqlite" or "memory").
func New(backend string, sqliteConfig *SQLiteConfig) (content.Store, error) {
	switch backend {
	case "sqlite", "":
		return NewSQLiteStorage(sqliteConfig)
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported content backend: %s", backend)
	}
}
