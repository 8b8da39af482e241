package export

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Interval is the configured period between automatic regenerations.
type Interval string

const (
	// IntervalHourly regenerates once per hour.
	IntervalHourly Interval = "hourly"

	// IntervalTwiceDaily regenerates every twelve hours.
	IntervalTwiceDaily Interval = "twicedaily"

	// IntervalDaily regenerates once per day.
	IntervalDaily Interval = "daily"
)

// DefaultInterval is used when no interval is configured.
const DefaultInterval = IntervalDaily

// Intro is the fixed explanatory sentence written below the site header.
const Intro = "This site contains structured content formatted for LLM-friendly consumption."

// ParseInterval parses an interval name. It accepts "twice-daily" as an
// alias for "twicedaily" and ignores surrounding whitespace and case.
func ParseInterval(s string) (Interval, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hourly":
		return IntervalHourly, nil
	case "twicedaily", "twice-daily", "twice_daily":
		return IntervalTwiceDaily, nil
	case "daily":
		return IntervalDaily, nil
	default:
		return "", fmt.Errorf("unknown interval %q (want hourly, twicedaily or daily)", s)
	}
}

// Duration returns the recurrence period of the interval.
// Unknown intervals fall back to the daily period.
func (i Interval) Duration() time.Duration {
	switch i {
	case IntervalHourly:
		return time.Hour
	case IntervalTwiceDaily:
		return 12 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Valid reports whether i is one of the known intervals.
func (i Interval) Valid() bool {
	switch i {
	case IntervalHourly, IntervalTwiceDaily, IntervalDaily:
		return true
	}
	return false
}

// ExportConfig is a snapshot of the settings driving one export run.
type ExportConfig struct {
	// IncludedTypes lists the content types to export, in output order.
	// An empty list produces a document with only the header block.
	IncludedTypes []string

	// Interval is the regeneration interval used by the scheduler.
	Interval Interval
}

// Types returns the included types with blanks and duplicates removed.
// The first occurrence of a type keeps its position.
func (c ExportConfig) Types() []string {
	seen := make(map[string]struct{}, len(c.IncludedTypes))
	types := make([]string, 0, len(c.IncludedTypes))
	for _, t := range c.IncludedTypes {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}
	return types
}

// ContentItem is a published entry as seen by the export job.
type ContentItem struct {
	ID          string
	Title       string
	Permalink   string
	PublishedAt time.Time
}

// SiteInfo carries the site metadata written in the document header.
type SiteInfo struct {
	Name        string
	Description string
	BaseURL     string
}

// SiteInfoProvider resolves site metadata.
type SiteInfoProvider interface {
	SiteInfo(ctx context.Context) (SiteInfo, error)
}

// StaticSiteInfo is a SiteInfoProvider returning fixed metadata.
type StaticSiteInfo SiteInfo

// SiteInfo implements SiteInfoProvider.
func (s StaticSiteInfo) SiteInfo(ctx context.Context) (SiteInfo, error) {
	return SiteInfo(s), nil
}

// ContentStore is the read side of the content repository used by the job.
type ContentStore interface {
	// TypeLabel returns the display label of a publicly registered type.
	// ok is false when the type is unknown or not public.
	TypeLabel(ctx context.Context, contentType string) (label string, ok bool, err error)

	// FetchPublished returns all published items of a type, most recent first.
	FetchPublished(ctx context.Context, contentType string) ([]ContentItem, error)
}

// FileSink persists the rendered document.
type FileSink interface {
	// Write replaces the content at path with data.
	Write(ctx context.Context, path string, data []byte) error
}

// ConfigProvider returns the current export configuration.
type ConfigProvider interface {
	ExportConfig(ctx context.Context) (ExportConfig, error)
}

// Report summarizes a successful export run.
type Report struct {
	RunID      string         `json:"run_id"`
	Path       string         `json:"path"`
	Bytes      int            `json:"bytes"`
	Sections   int            `json:"sections"`
	Items      int            `json:"items"`
	TypeCounts map[string]int `json:"type_counts,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	Duration   time.Duration  `json:"duration_ns"`
}
