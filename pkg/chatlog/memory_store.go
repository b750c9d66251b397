package chatlog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps the conversation log in-process. Used for tests and
// for running without a database configured.
type MemoryStore struct {
	mu       sync.RWMutex
	messages []Message
}

// NewMemoryStore initializes an empty in-memory log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append implements Store.
func (m *MemoryStore) Append(_ context.Context, content string, role Role, pageNumber int) (Message, error) {
	if err := validateAppend(content, role); err != nil {
		return Message{}, err
	}
	msg := Message{
		ID:         uuid.NewString(),
		Content:    content,
		Role:       role,
		PageNumber: pageNumber,
		CreatedAt:  time.Now().UTC(),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return msg, nil
}

// Recent implements Store.
func (m *MemoryStore) Recent(_ context.Context, limit int) ([]Message, error) {
	if limit <= 0 || limit > RecentLimit {
		limit = RecentLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	start := len(m.messages) - limit
	if start < 0 {
		start = 0
	}
	out := make([]Message, len(m.messages)-start)
	copy(out, m.messages[start:])
	return out, nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	return nil
}
