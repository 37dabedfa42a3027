package storage

import (
	"fmt"
	"io"
	"os"
)

// filePermissions is the mode for newly created storage files (owner read/write only).
const filePermissions = 0600

// FileStorage keeps the configuration in a single file.
//
// Write truncates and replaces the whole file. It is not atomic: a failure
// part way through can leave a partial file behind.
type FileStorage struct {
	path string
}

// NewFileStorage creates a storage backed by the file at path.
// The file is not touched until the first Read or Write.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the backing file path.
func (s *FileStorage) Path() string {
	return s.path
}

// Read returns the full contents of the file.
func (s *FileStorage) Read() ([]byte, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	data := make([]byte, info.Size())
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return data, nil
}

// Write replaces the file contents with data, creating the file if needed.
func (s *FileStorage) Write(data []byte) error {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePermissions)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close() //nolint:errcheck // Best effort cleanup on error path
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
