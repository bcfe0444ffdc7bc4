package settings

import (
	"sync"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/library"
)

// MemoryStore is an in-memory implementation of the SettingsStore
// interface, useful for testing. It is safe for concurrent use.
type MemoryStore struct {
	values map[string][]byte
	mu     sync.RWMutex
}

// NewMemoryStore creates a new in-memory settings store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
	}
}

// Get retrieves the value stored under name. Returns nil when the
// setting was never written.
func (m *MemoryStore) Get(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[name]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

// Put stores value under name, replacing any previous value.
func (m *MemoryStore) Put(name string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[name] = append([]byte(nil), value...)
	return nil
}

// Delete removes the value stored under name. Deleting an absent
// setting is a no-op.
func (m *MemoryStore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, name)
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}

// Compile-time check that MemoryStore implements the SettingsStore interface
var _ library.SettingsStore = (*MemoryStore)(nil)
