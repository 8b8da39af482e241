package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches individual files and calls back when one changes.
// It watches the parent directories so that editors which replace a file
// by renaming still produce an event. Bursts of events are debounced per file.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	files    map[string]struct{}
	interval time.Duration

	debouncers map[string]*Debouncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewFileWatcher creates a watcher for paths. Empty paths are ignored.
func NewFileWatcher(paths []string, debounce time.Duration) (*FileWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:    watcher,
		logger:     slog.Default().With("component", "config.watcher"),
		files:      make(map[string]struct{}),
		interval:   debounce,
		debouncers: make(map[string]*Debouncer),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}

	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to resolve %q: %w", p, err)
		}
		fw.files[filepath.Clean(abs)] = struct{}{}
	}

	return fw, nil
}

// Watch blocks until the context is cancelled or Stop is called. onChange
// receives the absolute path of the file that changed; its error is logged.
func (fw *FileWatcher) Watch(ctx context.Context, onChange func(path string) error) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	fw.running = true
	fw.mu.Unlock()

	defer func() {
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		close(fw.doneCh)
	}()

	dirs := make(map[string]struct{})
	for f := range fw.files {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", dir, err)
		}
	}

	fw.logger.Info("file watcher started",
		"files", len(fw.files),
		"debounce_ms", fw.interval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("file watcher stopped (context cancelled)")
			return nil

		case <-fw.stopCh:
			fw.logger.Info("file watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			path, ok := fw.match(event)
			if !ok {
				continue
			}

			fw.logger.Debug("file event detected", "path", path, "op", event.Op.String())

			fw.debouncer(path).Trigger(func() {
				fw.logger.Info("reloading changed file", "path", path)
				if err := onChange(path); err != nil {
					fw.logger.Error("reload failed", "path", path, "error", err)
				}
			})

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			fw.logger.Error("file watcher error", "error", err)
		}
	}
}

// match reports whether event concerns one of the watched files.
func (fw *FileWatcher) match(event fsnotify.Event) (string, bool) {
	if event.Op == fsnotify.Chmod {
		return "", false
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return "", false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return "", false
	}
	abs = filepath.Clean(abs)

	_, ok := fw.files[abs]
	return abs, ok
}

func (fw *FileWatcher) debouncer(path string) *Debouncer {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	d, ok := fw.debouncers[path]
	if !ok {
		d = NewDebouncer(fw.interval)
		fw.debouncers[path] = d
	}
	return d
}

// Stop stops the file watcher.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	running := fw.running
	fw.mu.Unlock()

	if running {
		close(fw.stopCh)
		<-fw.doneCh
	}

	fw.mu.Lock()
	for _, d := range fw.debouncers {
		d.Stop()
	}
	fw.mu.Unlock()

	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// Debouncer collects rapid events and runs the latest callback only after
// a quiet period.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopped  bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules callback to run after the debounce interval, replacing
// any callback still waiting.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		stopped := d.stopped
		d.mu.Unlock()

		if cb != nil && !stopped {
			cb()
		}
	})
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
