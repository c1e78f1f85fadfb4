package archive

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

// MemoryReader is an in-memory Reader for tests and synthetic archives.
// It is safe for concurrent reads and writes.
type MemoryReader struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemoryReader creates an empty in-memory archive.
func NewMemoryReader() *MemoryReader {
	return &MemoryReader{
		files: make(map[string][]byte),
	}
}

// Put stores a file, replacing any previous content.
func (m *MemoryReader) Put(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Copy to prevent external mutation
	copied := make([]byte, len(data))
	copy(copied, data)
	m.files[cleanName(name)] = copied
}

// Delete removes a file.
func (m *MemoryReader) Delete(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.files, cleanName(name))
}

// List returns all file names with the given prefix, sorted.
func (m *MemoryReader) List(prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name := range m.files {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ReadFile implements Reader.
func (m *MemoryReader) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[cleanName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, nil
}

// cleanName normalizes names so "./a/b", "/a/b" and "a//b" address the same file.
func cleanName(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}
