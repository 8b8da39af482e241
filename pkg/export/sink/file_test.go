package sink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFile_Write(t *testing.T) {
	tests := []struct {
		name   string
		atomic bool
	}{
		{name: "atomic", atomic: true},
		{name: "in place", atomic: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "llms.txt")

			if err := os.WriteFile(path, []byte("a much longer previous document"), 0o644); err != nil {
				t.Fatalf("failed to seed file: %v", err)
			}

			s := NewFile(&Config{Atomic: tt.atomic})
			if err := s.Write(context.Background(), path, []byte("# Acme")); err != nil {
				t.Fatalf("Write() error = %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("failed to read file: %v", err)
			}
			if string(data) != "# Acme" {
				t.Errorf("content = %q, want full overwrite", data)
			}

			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("failed to stat file: %v", err)
			}
			if info.Mode().Perm() != DefaultFileMode {
				t.Errorf("mode = %v, want %v", info.Mode().Perm(), DefaultFileMode)
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				t.Fatalf("failed to read dir: %v", err)
			}
			for _, e := range entries {
				if strings.Contains(e.Name(), ".tmp-") {
					t.Errorf("temp file left behind: %s", e.Name())
				}
			}
		})
	}
}

func TestFile_Write_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "llms.txt")

	if err := NewFile(&Config{Atomic: true}).Write(context.Background(), path, []byte("x")); err == nil {
		t.Fatal("Write() into missing directory succeeded")
	}

	if err := NewFile(&Config{Atomic: true, CreateDirs: true}).Write(context.Background(), path, []byte("x")); err != nil {
		t.Fatalf("Write() with CreateDirs error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestFile_Write_CancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llms.txt")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFile(nil).Write(ctx, path, []byte("x"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Write() error = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file written despite cancelled context")
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Write(ctx, "llms.txt", []byte("one")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := m.Write(ctx, "llms.txt", []byte("two")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, ok := m.Get("llms.txt")
	if !ok || string(data) != "two" {
		t.Errorf("Get() = %q, %v", data, ok)
	}
	if m.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", m.Writes())
	}

	boom := errors.New("read-only filesystem")
	m.FailWith(boom)
	if err := m.Write(ctx, "llms.txt", []byte("three")); !errors.Is(err, boom) {
		t.Errorf("Write() error = %v, want %v", err, boom)
	}
	if data, _ := m.Get("llms.txt"); string(data) != "two" {
		t.Errorf("failed write changed content to %q", data)
	}
}
