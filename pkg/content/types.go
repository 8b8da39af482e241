package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mercator-hq/llmstxt/pkg/export"
)

// Status is the publication status of an item.
type Status string

const (
	// StatusPublish marks an item as publicly visible.
	StatusPublish Status = "publish"
	// StatusDraft marks an unpublished draft.
	StatusDraft Status = "draft"
	// StatusPending marks an item awaiting review.
	StatusPending Status = "pending"
	// StatusPrivate marks an item visible only to authorized users.
	StatusPrivate Status = "private"
	// StatusFuture marks an item scheduled for later publication.
	StatusFuture Status = "future"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPublish, StatusDraft, StatusPending, StatusPrivate, StatusFuture:
		return true
	}
	return false
}

var (
	// ErrTypeNotFound is returned when an item references an unregistered type.
	ErrTypeNotFound = errors.New("content type not found")

	// ErrItemNotFound is returned when an item does not exist.
	ErrItemNotFound = errors.New("content item not found")
)

// ContentType is a named category of publishable items.
type ContentType struct {
	// Name is the type identifier (e.g., "post", "page").
	Name string `json:"name" yaml:"name"`

	// Label is the plural display name used as section heading.
	Label string `json:"label" yaml:"label"`

	// Public marks the type as publicly queryable. Only public types are
	// offered for export.
	Public bool `json:"public" yaml:"public"`
}

// Validate checks that the type can be registered.
func (t ContentType) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("content type name is required")
	}
	if strings.ContainsAny(t.Name, " \t\n") {
		return fmt.Errorf("content type name %q must not contain whitespace", t.Name)
	}
	return nil
}

// DisplayLabel returns the label, or the name when no label is set.
func (t ContentType) DisplayLabel() string {
	if t.Label != "" {
		return t.Label
	}
	return t.Name
}

// Item is a stored content entry.
type Item struct {
	ID          string    `json:"id" yaml:"id"`
	Type        string    `json:"type" yaml:"type"`
	Title       string    `json:"title" yaml:"title"`
	Permalink   string    `json:"permalink" yaml:"permalink"`
	Status      Status    `json:"status" yaml:"status"`
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`
}

// Validate checks that the item can be stored.
func (i *Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("item id is required")
	}
	if strings.TrimSpace(i.Type) == "" {
		return fmt.Errorf("item %s: type is required", i.ID)
	}
	if !i.Status.Valid() {
		return fmt.Errorf("item %s: unknown status %q", i.ID, i.Status)
	}
	return nil
}

// ExportItem converts the item to the export view.
func (i *Item) ExportItem() export.ContentItem {
	return export.ContentItem{
		ID:          i.ID,
		Title:       i.Title,
		Permalink:   i.Permalink,
		PublishedAt: i.PublishedAt,
	}
}

// Store is a content repository. It serves the export job through the
// embedded export.ContentStore and is filled by fixtures or the host.
type Store interface {
	export.ContentStore

	// RegisterType creates or replaces a content type.
	RegisterType(ctx context.Context, t ContentType) error

	// Types returns all registered types ordered by name.
	Types(ctx context.Context) ([]ContentType, error)

	// PublicTypes returns the public types ordered by name.
	PublicTypes(ctx context.Context) ([]ContentType, error)

	// PutItem creates or replaces an item. The item's type must be registered.
	PutItem(ctx context.Context, item *Item) error

	// DeleteItem removes an item.
	DeleteItem(ctx context.Context, id string) error

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
