package export

import "fmt"

// StoreError reports that the content source was unreachable or returned a
// malformed response. A run failing with StoreError writes nothing.
type StoreError struct {
	Op    string // Operation that failed ("site_info", "type_label", "fetch_published")
	Type  string // Content type being processed, if any
	Cause error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("content store error [op=%s, type=%s]: %v", e.Op, e.Type, e.Cause)
	}
	return fmt.Sprintf("content store error [op=%s]: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, contentType string, cause error) *StoreError {
	return &StoreError{
		Op:    op,
		Type:  contentType,
		Cause: cause,
	}
}

// WriteError reports that the output sink could not be written.
type WriteError struct {
	Path  string // Output path
	Cause error  // Underlying error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write error [path=%s]: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *WriteError) Unwrap() error {
	return e.Cause
}

// NewWriteError creates a new WriteError.
func NewWriteError(path string, cause error) *WriteError {
	return &WriteError{
		Path:  path,
		Cause: cause,
	}
}

// ConfigError reports malformed stored configuration. Providers log it and
// fall back to an empty type list instead of failing the run.
type ConfigError struct {
	Key   string // Settings key or field that failed to decode
	Cause error  // Underlying error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [key=%s]: %v", e.Key, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new ConfigError.
func NewConfigError(key string, cause error) *ConfigError {
	return &ConfigError{
		Key:   key,
		Cause: cause,
	}
}
