// Package chatlog is the append-only conversation history for the reading
// session. Messages are ordered by creation; the log supports appending,
// reading the most recent entries, and a full clear. Individual messages
// are never mutated or deleted.
package chatlog

import (
	"context"
	"fmt"
	"time"
)

// Role identifies which side of the conversation produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the two known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single conversation turn, tagged with the page the reader
// was on when it was created.
type Message struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Role       Role      `json:"role"`
	PageNumber int       `json:"pageNumber"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RecentLimit is the maximum number of messages Recent returns; the log is
// not paginated beyond this.
const RecentLimit = 50

// Store defines the conversation log protocol.
type Store interface {
	// Append records a message and returns it with its assigned ID.
	Append(ctx context.Context, content string, role Role, pageNumber int) (Message, error)
	// Recent returns up to limit of the most recently created messages in
	// creation order, oldest of the returned window first.
	Recent(ctx context.Context, limit int) ([]Message, error)
	// Clear deletes every message. Irreversible.
	Clear(ctx context.Context) error
}

func validateAppend(content string, role Role) error {
	if content == "" {
		return fmt.Errorf("message content is required")
	}
	if !role.Valid() {
		return fmt.Errorf("unknown message role %q", role)
	}
	return nil
}
