package settings

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore implements Store in memory. Nothing survives a restart.
type MemoryStore struct {
	options map[string][]byte
	runs    []RunRecord
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory settings store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		options: make(map[string][]byte),
	}
}

// GetOption returns a copy of the stored value.
func (s *MemoryStore) GetOption(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.options[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(value), nil
}

// PutOption stores a copy of value.
func (s *MemoryStore) PutOption(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.options[key] = slices.Clone(value)
	return nil
}

// DeleteOption removes key.
func (s *MemoryStore) DeleteOption(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.options, key)
	return nil
}

// RecordRun appends run to the history.
func (s *MemoryStore) RecordRun(ctx context.Context, run *RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, *run)
	return nil
}

// ListRuns returns the newest runs first.
func (s *MemoryStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]RunRecord, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0; i-- {
		runs = append(runs, s.runs[i])
		if limit > 0 && len(runs) == limit {
			break
		}
	}
	return runs, nil
}

// PruneRuns drops runs started before olderThan.
func (s *MemoryStore) PruneRuns(ctx context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.runs)
	s.runs = slices.DeleteFunc(s.runs, func(r RunRecord) bool {
		return r.StartedAt.Before(olderThan)
	})
	return before - len(s.runs), nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
