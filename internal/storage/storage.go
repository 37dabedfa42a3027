package storage

import (
	"database/sql"
	"fmt"

	"github.com/nerrad567/gray-logic-hap/internal/infrastructure/config"
)

// Storage is a byte store for accessory configuration.
type Storage interface {
	// Read returns the current bytes.
	Read() ([]byte, error)

	// Write replaces the current bytes.
	Write(data []byte) error
}

// Backend names accepted in configuration.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Open creates the storage backend selected by cfg.
// db is only required for the sqlite backend.
func Open(cfg config.StorageConfig, db *sql.DB) (Storage, error) {
	switch cfg.Backend {
	case BackendFile:
		return NewFileStorage(cfg.Path), nil
	case BackendMemory:
		return NewMemoryStorage(), nil
	case BackendSQLite:
		if db == nil {
			return nil, fmt.Errorf("%w: sqlite backend requires a database", ErrInvalidBackend)
		}
		return NewSQLiteStorage(db, cfg.Key), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidBackend, cfg.Backend)
	}
}
