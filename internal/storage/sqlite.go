package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DefaultKey is the row key used when none is configured.
const DefaultKey = "accessory"

// queryTimeout bounds a single storage query.
const queryTimeout = 5 * time.Second

// SQLiteStorage keeps the configuration as one row of the storage_blobs
// table. The table is created by the database migrations.
type SQLiteStorage struct {
	db  *sql.DB
	key string
}

// NewSQLiteStorage creates a storage backed by the row named key.
func NewSQLiteStorage(db *sql.DB, key string) *SQLiteStorage {
	if key == "" {
		key = DefaultKey
	}
	return &SQLiteStorage{db: db, key: key}
}

// Read returns the stored bytes. Before the first Write it fails with
// ErrRead wrapping ErrNotFound.
func (s *SQLiteStorage) Read() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM storage_blobs WHERE key = ?`, s.key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %w: key %q", ErrRead, ErrNotFound, s.key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// Write replaces the stored bytes in a single statement.
func (s *SQLiteStorage) Write(data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if data == nil {
		data = []byte{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO storage_blobs (key, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		s.key, data, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
