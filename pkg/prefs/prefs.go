// Package prefs persists small per-device reader preferences (reading
// position, bookmarks, display toggles) as independent JSON-encoded keys.
package prefs

import (
	"context"
	"sync"
)

// Well-known preference keys. Each key is read once at session init and
// fully overwritten on every corresponding state change.
const (
	KeyCurrentPage = "currentPage"
	KeyBookmarks   = "bookmarks"
	KeyDarkMode    = "darkMode"
	KeyBionicMode  = "bionicMode"
)

// Store is the persistence port injected into the reading session. Load
// reports ok=false when the key has never been written.
type Store interface {
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	Save(ctx context.Context, key string, value []byte) error
}

// MemoryStore keeps preferences in-process. Used for tests and for running
// without durable preferences configured.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.values[key] = v
	return nil
}
