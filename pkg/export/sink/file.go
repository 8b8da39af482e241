package sink

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultFileMode is the permission used for the output file.
const DefaultFileMode os.FileMode = 0o644

// Config contains configuration for the file sink.
type Config struct {
	// Atomic writes to a temporary file in the target directory and renames
	// it over the target, so readers see either the old or the new document.
	// When false the target is truncated and rewritten in place.
	Atomic bool

	// Mode is the permission of the written file. Default: 0644
	Mode os.FileMode

	// CreateDirs creates missing parent directories before writing.
	CreateDirs bool
}

// DefaultConfig returns the default sink configuration.
func DefaultConfig() *Config {
	return &Config{
		Atomic:     true,
		Mode:       DefaultFileMode,
		CreateDirs: false,
	}
}

// File writes export documents to the local filesystem.
type File struct {
	config *Config
	logger *slog.Logger
}

// NewFile creates a file sink.
func NewFile(config *Config) *File {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Mode == 0 {
		config.Mode = DefaultFileMode
	}
	return &File{
		config: config,
		logger: slog.Default().With("component", "export.sink.file"),
	}
}

// Write replaces the content of path with data.
func (f *File) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if f.config.CreateDirs {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if !f.config.Atomic {
		if err := os.WriteFile(path, data, f.config.Mode); err != nil {
			return err
		}
		f.logger.Debug("document written", "path", path, "bytes", len(data), "atomic", false)
		return nil
	}

	if err := writeAtomic(path, data, f.config.Mode); err != nil {
		return err
	}
	f.logger.Debug("document written", "path", path, "bytes", len(data), "atomic", true)
	return nil
}

// writeAtomic writes data to a temp file next to path and renames it into place.
func writeAtomic(path string, data []byte, mode os.FileMode) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
