package testutil

import (
	"testing"

	"pfoca/internal/card"
	"pfoca/internal/encryption"
	"pfoca/internal/store"
	"pfoca/internal/vault"
)

// NewTestStore creates an in-memory SQLite key-value store with the schema
// applied. It is closed when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// NewTestVault creates a new in-memory vault for testing.
func NewTestVault() *vault.MemoryVault {
	return vault.NewMemoryVault("test-vault")
}

// NewTestSealer returns an age sealer with a low scrypt cost.
func NewTestSealer() card.Sealer {
	return encryption.NewAgeSealer(10)
}
