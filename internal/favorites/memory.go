package favorites

import (
	"context"
	"sync"
)

// MemoryStorage is a Storage backend for tests and throwaway runs.
type MemoryStorage struct {
	mu   sync.Mutex
	sets map[string][]string

	// LoadErr / SaveErr, when set, are returned by the respective calls.
	LoadErr error
	SaveErr error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{sets: make(map[string][]string)}
}

func (m *MemoryStorage) Load(_ context.Context, key string) ([]string, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.sets[key]
	out := make([]string, len(stored))
	copy(out, stored)
	return out, nil
}

func (m *MemoryStorage) Save(_ context.Context, key string, ids []string) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]string, len(ids))
	copy(stored, ids)
	m.sets[key] = stored
	return nil
}

// Stored returns the persisted copy for key, for assertions.
func (m *MemoryStorage) Stored(key string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[key]
}
