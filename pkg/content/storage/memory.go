package storage

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"mercator-hq/llmstxt/pkg/content"
	"mercator-hq/llmstxt/pkg/export"
)

// memoryItem is a stored item with its insertion sequence, which is the
// natural secondary order for items sharing a publish time.
type memoryItem struct {
	item content.Item
	seq  uint64
}

// MemoryStorage implements content.Store using in-memory maps.
// It is meant for tests, dry runs and small fixture-driven sites.
type MemoryStorage struct {
	types map[string]content.ContentType
	items map[string]*memoryItem
	seq   uint64
	mu    sync.RWMutex
}

// NewMemoryStorage creates a new in-memory content store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		types: make(map[string]content.ContentType),
		items: make(map[string]*memoryItem),
	}
}

// RegisterType creates or replaces a content type.
func (s *MemoryStorage) RegisterType(ctx context.Context, t content.ContentType) error {
	if err := t.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.types[t.Name] = t
	return nil
}

// Types returns all registered types ordered by name.
func (s *MemoryStorage) Types(ctx context.Context) ([]content.ContentType, error) {
	return s.listTypes(false), nil
}

// PublicTypes returns the public types ordered by name.
func (s *MemoryStorage) PublicTypes(ctx context.Context) ([]content.ContentType, error) {
	return s.listTypes(true), nil
}

func (s *MemoryStorage) listTypes(publicOnly bool) []content.ContentType {
	s.mu.RLock()
	defer s.mu.RUnlock()

	types := make([]content.ContentType, 0, len(s.types))
	for _, t := range s.types {
		if publicOnly && !t.Public {
			continue
		}
		types = append(types, t)
	}
	slices.SortFunc(types, func(a, b content.ContentType) int {
		return strings.Compare(a.Name, b.Name)
	})
	return types
}

// PutItem creates or replaces an item. Replacing keeps the original
// insertion sequence.
func (s *MemoryStorage) PutItem(ctx context.Context, item *content.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.types[item.Type]; !ok {
		return fmt.Errorf("item %s: %w: %s", item.ID, content.ErrTypeNotFound, item.Type)
	}

	if existing, ok := s.items[item.ID]; ok {
		existing.item = *item
		return nil
	}

	s.seq++
	s.items[item.ID] = &memoryItem{item: *item, seq: s.seq}
	return nil
}

// DeleteItem removes an item.
func (s *MemoryStorage) DeleteItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: %s", content.ErrItemNotFound, id)
	}
	delete(s.items, id)
	return nil
}

// TypeLabel returns the label of a public type.
func (s *MemoryStorage) TypeLabel(ctx context.Context, contentType string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.types[contentType]
	if !ok || !t.Public {
		return "", false, nil
	}
	return t.DisplayLabel(), true, nil
}

// FetchPublished returns the published items of a type, newest first.
// Items sharing a publish time keep insertion order.
func (s *MemoryStorage) FetchPublished(ctx context.Context, contentType string) ([]export.ContentItem, error) {
	s.mu.RLock()
	matches := make([]memoryItem, 0)
	for _, mi := range s.items {
		if mi.item.Type == contentType && mi.item.Status == content.StatusPublish {
			matches = append(matches, *mi)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matches, func(a, b memoryItem) int {
		if c := b.item.PublishedAt.Compare(a.item.PublishedAt); c != 0 {
			return c
		}
		if a.seq < b.seq {
			return -1
		}
		if a.seq > b.seq {
			return 1
		}
		return 0
	})

	items := make([]export.ContentItem, 0, len(matches))
	for _, mi := range matches {
		items = append(items, mi.item.ExportItem())
	}
	return items, nil
}

// Ping always succeeds.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for memory storage.
func (s *MemoryStorage) Close() error {
	return nil
}
