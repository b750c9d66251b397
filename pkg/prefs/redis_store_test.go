package prefs

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	srv := miniredis.RunT(t)
	store, err := NewRedisStore(RedisConfig{Addr: srv.Addr(), Prefix: "test:prefs:"})
	if err != nil {
		t.Fatalf("new redis store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	if _, ok, err := store.Load(ctx, KeyCurrentPage); err != nil || ok {
		t.Fatalf("unwritten key: ok=%v err=%v", ok, err)
	}
	if err := store.Save(ctx, KeyCurrentPage, []byte("7")); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, ok, err := store.Load(ctx, KeyCurrentPage)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if string(data) != "7" {
		t.Fatalf("value = %q", data)
	}
}

func TestRedisStoreKeysAreIndependent(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, KeyBookmarks, []byte("[2,5]")); err != nil {
		t.Fatalf("save bookmarks: %v", err)
	}
	if err := store.Save(ctx, KeyDarkMode, []byte("true")); err != nil {
		t.Fatalf("save darkMode: %v", err)
	}
	data, ok, err := store.Load(ctx, KeyBookmarks)
	if err != nil || !ok || string(data) != "[2,5]" {
		t.Fatalf("bookmarks after darkMode write: %q ok=%v err=%v", data, ok, err)
	}
}

func TestRedisStoreOverwrites(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, KeyBionicMode, []byte("true")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, KeyBionicMode, []byte("false")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, _, err := store.Load(ctx, KeyBionicMode)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != "false" {
		t.Fatalf("value = %q, want full overwrite", data)
	}
}
