package prefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	ctx := context.Background()

	if _, ok, err := store.Load(ctx, KeyCurrentPage); err != nil || ok {
		t.Fatalf("unwritten key: ok=%v err=%v", ok, err)
	}
	if err := store.Save(ctx, KeyCurrentPage, []byte("3")); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, ok, err := store.Load(ctx, KeyCurrentPage)
	if err != nil || !ok || string(data) != "3" {
		t.Fatalf("load: %q ok=%v err=%v", data, ok, err)
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	first, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	ctx := context.Background()
	if err := first.Save(ctx, KeyBookmarks, []byte("[1,4,9]")); err != nil {
		t.Fatalf("save: %v", err)
	}

	second, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	data, ok, err := second.Load(ctx, KeyBookmarks)
	if err != nil || !ok || string(data) != "[1,4,9]" {
		t.Fatalf("load after reopen: %q ok=%v err=%v", data, ok, err)
	}
}

func TestFileStoreSanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := store.Save(context.Background(), "../escape", []byte("1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.json")); err != nil {
		t.Fatalf("sanitized file missing: %v", err)
	}
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore("  "); err == nil {
		t.Fatalf("expected error for blank base path")
	}
}
