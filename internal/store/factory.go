package store

import (
	"fmt"
	"os"
	"path/filepath"

	"pfoca/internal/config"
)

// StoreFileName is the SQLite file created inside the configured data_dir.
const StoreFileName = "pfoca.db"

// NewStoreFromConfig creates the key-value store selected by cfg.Type.
func NewStoreFromConfig(cfg config.StoreConfig) (*SQLiteStore, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite store")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, StoreFileName))
	case "memory":
		return NewSQLiteStore(":memory:")
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
