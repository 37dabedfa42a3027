package storage

import "errors"

// Domain errors for the storage package.
//
// Backend failures wrap one of these together with the underlying cause, so
// both errors.Is(err, storage.ErrRead) and errors.Is(err, fs.ErrNotExist) work.
var (
	// ErrRead is returned when the storage medium cannot be read.
	ErrRead = errors.New("storage: read failed")

	// ErrWrite is returned when the storage medium cannot be written.
	ErrWrite = errors.New("storage: write failed")

	// ErrNotFound is returned by keyed backends when nothing has been written yet.
	ErrNotFound = errors.New("storage: not found")

	// ErrInvalidBackend is returned when the configured backend is not recognised.
	ErrInvalidBackend = errors.New("storage: invalid backend")
)
