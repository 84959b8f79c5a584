package vault

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"

	"pfoca/internal/card"
)

// MemoryVault is an in-memory implementation of the Vault interface.
// It is useful for testing and is safe for concurrent use.
type MemoryVault struct {
	name     string
	archives map[string][]byte
	mu       sync.RWMutex
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:     name,
		archives: make(map[string][]byte),
	}
}

// PutArchive stores an archive under name.
func (m *MemoryVault) PutArchive(name string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.archives[name] = data
	return nil
}

// GetArchive writes the named archive to w.
func (m *MemoryVault) GetArchive(name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.archives[name]
	if !ok {
		return fmt.Errorf("%w: %s", card.ErrProjectNotFound, name)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	return nil
}

// ListArchives returns the stored archive names in ascending order.
func (m *MemoryVault) ListArchives() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.archives))
	for name := range m.archives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryVault implements card.Vault interface
var _ card.Vault = (*MemoryVault)(nil)
