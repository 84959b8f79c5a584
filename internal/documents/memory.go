package documents

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"pfoca/internal/card"
)

type memoryFile struct {
	data       []byte
	modifiedAt time.Time
}

// Memory is an in-memory card.Documents, useful for testing.
// This implementation is safe for concurrent use.
type Memory struct {
	clock card.Clock
	files map[string]memoryFile
	mu    sync.RWMutex
}

var _ card.Documents = (*Memory)(nil)

// NewMemory creates an empty in-memory document store. Modification times
// come from clock.
func NewMemory(clock card.Clock) *Memory {
	return &Memory{clock: clock, files: make(map[string]memoryFile)}
}

func (m *Memory) Write(name string, fn func(w io.Writer) error) (*card.ProjectFile, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	f := memoryFile{data: buf.Bytes(), modifiedAt: m.clock.Now()}
	m.files[name] = f
	return handle(name, f), nil
}

func (m *Memory) Read(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", card.ErrProjectNotFound, name)
	}
	return bytes.Clone(f.data), nil
}

func (m *Memory) Stat(name string) (*card.ProjectFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", card.ErrProjectNotFound, name)
	}
	return handle(name, f), nil
}

func (m *Memory) List() ([]*card.ProjectFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	files := make([]*card.ProjectFile, 0, len(m.files))
	for name, f := range m.files {
		if isArchive(name) {
			files = append(files, handle(name, f))
		}
	}
	sortDescending(files)
	return files, nil
}

func (m *Memory) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, name)
	return nil
}

func handle(name string, f memoryFile) *card.ProjectFile {
	return &card.ProjectFile{
		Name:       name,
		SizeBytes:  int64(len(f.data)),
		ModifiedAt: f.modifiedAt,
	}
}
