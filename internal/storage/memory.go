package storage

import "sync"

// MemoryStorage keeps the configuration in process memory.
// It starts empty and never fails.
type MemoryStorage struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: []byte{}}
}

// Read returns a copy of the last written bytes.
func (s *MemoryStorage) Read() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte{}, s.data...), nil
}

// Write replaces the buffer with a copy of data.
func (s *MemoryStorage) Write(data []byte) error {
	s.mu.Lock()
	s.data = append([]byte{}, data...)
	s.mu.Unlock()
	return nil
}
