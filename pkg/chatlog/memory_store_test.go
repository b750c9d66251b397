package chatlog

import (
	"context"
	"fmt"
	"testing"
)

func TestMemoryStoreAppendAndRecent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, err := store.Append(ctx, "what does this mean?", RoleUser, 3)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if first.ID == "" {
		t.Fatalf("message got no ID")
	}
	if _, err := store.Append(ctx, "it refers to the prior section", RoleAssistant, 3); err != nil {
		t.Fatalf("append: %v", err)
	}

	msgs, err := store.Recent(ctx, RecentLimit)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[1].Role != RoleAssistant {
		t.Fatalf("messages out of creation order: %v, %v", msgs[0].Role, msgs[1].Role)
	}
	if msgs[0].PageNumber != 3 {
		t.Fatalf("pageNumber = %d, want 3", msgs[0].PageNumber)
	}
}

func TestMemoryStoreRecentWindow(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < RecentLimit+10; i++ {
		if _, err := store.Append(ctx, fmt.Sprintf("message %d", i), RoleUser, 1); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	msgs, err := store.Recent(ctx, RecentLimit)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(msgs) != RecentLimit {
		t.Fatalf("got %d messages, want %d", len(msgs), RecentLimit)
	}
	// Oldest of the retained window first, newest last.
	if msgs[0].Content != "message 10" {
		t.Fatalf("window start = %q", msgs[0].Content)
	}
	if msgs[len(msgs)-1].Content != fmt.Sprintf("message %d", RecentLimit+9) {
		t.Fatalf("window end = %q", msgs[len(msgs)-1].Content)
	}
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if _, err := store.Append(ctx, "hello", RoleUser, 1); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	msgs, err := store.Recent(ctx, RecentLimit)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("got %d messages after clear", len(msgs))
	}
}

func TestMemoryStoreRejectsBadAppends(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if _, err := store.Append(ctx, "", RoleUser, 1); err == nil {
		t.Fatalf("expected error for empty content")
	}
	if _, err := store.Append(ctx, "hi", Role("system"), 1); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}
