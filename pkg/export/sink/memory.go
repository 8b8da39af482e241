package sink

import (
	"context"
	"sync"
)

// Memory keeps written documents in memory, keyed by path.
// generate --stdout renders into it instead of the output file.
type Memory struct {
	mu     sync.RWMutex
	files  map[string][]byte
	writes int
	err    error
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

// Write implements export.FileSink.
func (m *Memory) Write(ctx context.Context, path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[path] = buf
	m.writes++
	return nil
}

// Get returns the last document written to path.
func (m *Memory) Get(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[path]
	return data, ok
}

// Writes returns the number of successful writes.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// FailWith makes subsequent writes return err. Pass nil to clear.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
