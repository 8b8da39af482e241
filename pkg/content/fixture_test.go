package content_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/llmstxt/pkg/content"
	"mercator-hq/llmstxt/pkg/content/storage"
)

const fixtureYAML = `
types:
  - name: post
    label: Posts
  - name: page
    label: Pages
  - name: attachment
    label: Media
    public: false
items:
  - id: "1"
    type: post
    title: Hello World
    permalink: https://acme.test/hello
    published_at: 2025-03-01T12:00:00Z
  - id: "2"
    type: post
    title: Work in progress
    status: draft
    published_at: 2025-03-02T12:00:00Z
  - id: "3"
    type: page
    title: About
    permalink: https://acme.test/about
    published_at: 2025-01-10T08:30:00Z
`

func TestParseFixture(t *testing.T) {
	f, err := content.ParseFixture([]byte(fixtureYAML))
	if err != nil {
		t.Fatalf("ParseFixture() error = %v", err)
	}

	types := f.ContentTypes()
	if len(types) != 3 {
		t.Fatalf("got %d types, want 3", len(types))
	}
	if !types[0].Public || types[2].Public {
		t.Errorf("public flags = %v, %v; want true, false", types[0].Public, types[2].Public)
	}

	items := f.ContentItems()
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[0].Status != content.StatusPublish {
		t.Errorf("default status = %q, want publish", items[0].Status)
	}
	if items[1].Status != content.StatusDraft {
		t.Errorf("status = %q, want draft", items[1].Status)
	}
	want := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	if !items[0].PublishedAt.Equal(want) {
		t.Errorf("PublishedAt = %v, want %v", items[0].PublishedAt, want)
	}
}

func TestParseFixture_Invalid(t *testing.T) {
	if _, err := content.ParseFixture([]byte("types: [")); err == nil {
		t.Error("ParseFixture() accepted malformed YAML")
	}
}

func TestLoadFixture_Import(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yaml")
	if err := os.WriteFile(path, []byte(fixtureYAML), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := content.LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture() error = %v", err)
	}

	ctx := context.Background()
	store := storage.NewMemoryStorage()

	result, err := f.Import(ctx, store)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Types != 3 || result.Items != 3 {
		t.Errorf("Import() = %+v, want 3 types and 3 items", result)
	}

	posts, err := store.FetchPublished(ctx, "post")
	if err != nil {
		t.Fatalf("FetchPublished() error = %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "Hello World" {
		t.Errorf("posts = %+v, want only Hello World", posts)
	}

	if _, ok, _ := store.TypeLabel(ctx, "attachment"); ok {
		t.Error("non-public fixture type reported as public")
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	if _, err := content.LoadFixture(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFixture() succeeded for a missing file")
	}
}

func TestImport_StopsOnUnknownType(t *testing.T) {
	f, err := content.ParseFixture([]byte(`
types:
  - name: post
items:
  - id: "1"
    type: post
    title: Ok
  - id: "2"
    type: product
    title: Orphan
`))
	if err != nil {
		t.Fatalf("ParseFixture() error = %v", err)
	}

	result, err := f.Import(context.Background(), storage.NewMemoryStorage())
	if !errors.Is(err, content.ErrTypeNotFound) {
		t.Fatalf("Import() error = %v, want ErrTypeNotFound", err)
	}
	if result.Items != 1 {
		t.Errorf("Import() stored %d items before failing, want 1", result.Items)
	}
}
