package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mercator-hq/llmstxt/pkg/export"
)

// OptionsKey is the settings key holding the export options blob.
const OptionsKey = "llms_txt_generator_options"

// ErrNotFound is returned when a settings key has no stored value.
var ErrNotFound = errors.New("setting not found")

// Store persists settings blobs and the export run history.
// Implementations must be safe for concurrent use.
type Store interface {
	// GetOption returns the raw value stored under key, or ErrNotFound.
	GetOption(ctx context.Context, key string) ([]byte, error)

	// PutOption creates or replaces the value stored under key.
	PutOption(ctx context.Context, key string, value []byte) error

	// DeleteOption removes key. No-op if the key does not exist.
	DeleteOption(ctx context.Context, key string) error

	// RecordRun appends a run to the history.
	RecordRun(ctx context.Context, run *RunRecord) error

	// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all runs.
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)

	// PruneRuns deletes runs started before olderThan and returns how many were removed.
	PruneRuns(ctx context.Context, olderThan time.Time) (int, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources. The store must not be used afterwards.
	Close() error
}

// Options is the stored export options blob:
//
//	{"post_types": ["post", "page"], "interval": "daily"}
//
// A scalar post_types string is read as a one-element list.
type Options struct {
	PostTypes []string `json:"post_types"`
	Interval  string   `json:"interval"`
}

// UnmarshalJSON decodes the blob, accepting post_types as a string or a list
// of strings. Any other shape is an error.
func (o *Options) UnmarshalJSON(data []byte) error {
	var raw struct {
		PostTypes json.RawMessage `json:"post_types"`
		Interval  json.RawMessage `json:"interval"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	postTypes, err := decodePostTypes(raw.PostTypes)
	if err != nil {
		return fmt.Errorf("post_types: %w", err)
	}

	var interval string
	if len(raw.Interval) > 0 && !isNull(raw.Interval) {
		if err := json.Unmarshal(raw.Interval, &interval); err != nil {
			return fmt.Errorf("interval: %w", err)
		}
	}

	o.PostTypes = postTypes
	o.Interval = interval
	return nil
}

func decodePostTypes(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || isNull(raw) {
		return nil, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil, nil
		}
		return []string{single}, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("expected a string or a list of strings")
	}
	return list, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// DecodeOptions parses a stored blob. Failures are returned as *export.ConfigError.
func DecodeOptions(data []byte) (Options, error) {
	var o Options
	if err := json.Unmarshal(data, &o); err != nil {
		return Options{}, export.NewConfigError(OptionsKey, err)
	}
	return o, nil
}

// Encode serializes the options blob.
func (o Options) Encode() ([]byte, error) {
	if o.PostTypes == nil {
		o.PostTypes = []string{}
	}
	return json.Marshal(o)
}

// Normalize validates the interval and cleans the type list. An empty
// interval becomes the default.
func (o Options) Normalize() (Options, error) {
	out := Options{
		PostTypes: export.ExportConfig{IncludedTypes: o.PostTypes}.Types(),
		Interval:  string(export.DefaultInterval),
	}
	if o.Interval != "" {
		interval, err := export.ParseInterval(o.Interval)
		if err != nil {
			return Options{}, err
		}
		out.Interval = string(interval)
	}
	return out, nil
}

// ExportConfig converts the options to an export snapshot. An invalid
// interval falls back to the default.
func (o Options) ExportConfig() export.ExportConfig {
	interval, err := export.ParseInterval(o.Interval)
	if err != nil {
		interval = export.DefaultInterval
	}
	return export.ExportConfig{
		IncludedTypes: export.ExportConfig{IncludedTypes: o.PostTypes}.Types(),
		Interval:      interval,
	}
}

// Run triggers.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
	TriggerStartup   = "startup"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// RunRecord is one entry of the export run history.
type RunRecord struct {
	ID         string        `json:"id"`
	Trigger    string        `json:"trigger"`
	Status     string        `json:"status"`
	Error      string        `json:"error,omitempty"`
	Path       string        `json:"path"`
	Bytes      int           `json:"bytes"`
	Sections   int           `json:"sections"`
	Items      int           `json:"items"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ns"`
	FinishedAt time.Time     `json:"finished_at"`
}

// NewRunRecord builds a history entry from the outcome of a run.
func NewRunRecord(trigger string, report export.Report, err error) *RunRecord {
	run := &RunRecord{
		ID:         report.RunID,
		Trigger:    trigger,
		Status:     StatusSuccess,
		Path:       report.Path,
		Bytes:      report.Bytes,
		Sections:   report.Sections,
		Items:      report.Items,
		StartedAt:  report.StartedAt,
		Duration:   report.Duration,
		FinishedAt: report.StartedAt.Add(report.Duration),
	}
	if err != nil {
		run.Status = StatusFailure
		run.Error = err.Error()
	}
	return run
}
