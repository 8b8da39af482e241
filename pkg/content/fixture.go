package content

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Fixture is a YAML description of content types and items.
//
//	types:
//	  - name: post
//	    label: Posts
//	items:
//	  - id: "7"
//	    type: post
//	    title: Hello
//	    permalink: https://acme.test/hello
//	    published_at: 2025-03-01T12:00:00Z
type Fixture struct {
	Types []FixtureType `yaml:"types"`
	Items []FixtureItem `yaml:"items"`
}

// FixtureType is a content type entry. Public defaults to true.
type FixtureType struct {
	Name   string `yaml:"name"`
	Label  string `yaml:"label"`
	Public *bool  `yaml:"public"`
}

// FixtureItem is an item entry. Status defaults to "publish".
type FixtureItem struct {
	ID          string    `yaml:"id"`
	Type        string    `yaml:"type"`
	Title       string    `yaml:"title"`
	Permalink   string    `yaml:"permalink"`
	Status      string    `yaml:"status"`
	PublishedAt time.Time `yaml:"published_at"`
}

// ImportResult counts what an import wrote.
type ImportResult struct {
	Types int `json:"types"`
	Items int `json:"items"`
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %q: %w", path, err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture YAML.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &f, nil
}

// ContentTypes converts the fixture types.
func (f *Fixture) ContentTypes() []ContentType {
	types := make([]ContentType, 0, len(f.Types))
	for _, ft := range f.Types {
		public := true
		if ft.Public != nil {
			public = *ft.Public
		}
		types = append(types, ContentType{Name: ft.Name, Label: ft.Label, Public: public})
	}
	return types
}

// ContentItems converts the fixture items.
func (f *Fixture) ContentItems() []*Item {
	items := make([]*Item, 0, len(f.Items))
	for _, fi := range f.Items {
		status := Status(fi.Status)
		if status == "" {
			status = StatusPublish
		}
		items = append(items, &Item{
			ID:          fi.ID,
			Type:        fi.Type,
			Title:       fi.Title,
			Permalink:   fi.Permalink,
			Status:      status,
			PublishedAt: fi.PublishedAt,
		})
	}
	return items
}

// Import registers the fixture types, then stores the items in file order.
// It stops at the first failure.
func (f *Fixture) Import(ctx context.Context, store Store) (ImportResult, error) {
	var result ImportResult

	for _, t := range f.ContentTypes() {
		if err := store.RegisterType(ctx, t); err != nil {
			return result, fmt.Errorf("failed to register type %q: %w", t.Name, err)
		}
		result.Types++
	}

	for _, item := range f.ContentItems() {
		if err := store.PutItem(ctx, item); err != nil {
			return result, fmt.Errorf("failed to store item %q: %w", item.ID, err)
		}
		result.Items++
	}

	return result, nil
}
