package app

import (
	"context"
	"testing"

	"readerapp/pkg/book"
	"readerapp/pkg/prefs"
)

func testDoc(pages int) *book.Document {
	doc := &book.Document{Title: "Ops Manual", TotalPages: pages}
	for i := 1; i <= pages; i++ {
		doc.Pages = append(doc.Pages, book.Page{Number: i, Content: "page content"})
	}
	return doc
}

func newTestSession(t *testing.T, pages int) (*Session, *prefs.MemoryStore) {
	t.Helper()
	store := prefs.NewMemoryStore()
	s, err := NewSession(context.Background(), testDoc(pages), store, nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s, store
}

func TestGoToClamps(t *testing.T) {
	s, _ := newTestSession(t, 10)
	ctx := context.Background()
	cases := []struct{ input, want int }{
		{5, 5},
		{0, 1},
		{-3, 1},
		{10, 10},
		{9999, 10},
	}
	for _, tc := range cases {
		s.GoTo(ctx, tc.input)
		if got := s.CurrentPage(); got != tc.want {
			t.Fatalf("goTo(%d): page = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestNextPrevClampAtBoundaries(t *testing.T) {
	s, _ := newTestSession(t, 2)
	ctx := context.Background()
	if s.Prev(ctx) {
		t.Fatalf("prev moved off page 1")
	}
	if !s.Next(ctx) || s.CurrentPage() != 2 {
		t.Fatalf("next: page = %d", s.CurrentPage())
	}
	if s.Next(ctx) {
		t.Fatalf("next moved past last page")
	}
	if !s.Prev(ctx) || s.CurrentPage() != 1 {
		t.Fatalf("prev: page = %d", s.CurrentPage())
	}
}

func TestPersistedPositionClampedOnLoad(t *testing.T) {
	store := prefs.NewMemoryStore()
	ctx := context.Background()
	if err := store.Save(ctx, prefs.KeyCurrentPage, []byte("9999")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, err := NewSession(ctx, testDoc(10), store, nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if got := s.CurrentPage(); got != 10 {
		t.Fatalf("restored page = %d, want 10", got)
	}
}

func TestDefaultsWhenNothingPersisted(t *testing.T) {
	s, _ := newTestSession(t, 3)
	if s.CurrentPage() != 1 {
		t.Fatalf("default page = %d", s.CurrentPage())
	}
	if s.DarkMode() {
		t.Fatalf("dark mode defaults on")
	}
	if !s.BionicMode() {
		t.Fatalf("bionic mode defaults off")
	}
	if len(s.Bookmarks()) != 0 {
		t.Fatalf("default bookmarks = %v", s.Bookmarks())
	}
}

func TestToggleBookmarkIsItsOwnInverse(t *testing.T) {
	s, _ := newTestSession(t, 5)
	ctx := context.Background()
	s.GoTo(ctx, 3)
	if !s.ToggleBookmark(ctx) || !s.IsBookmarked() {
		t.Fatalf("first toggle did not bookmark")
	}
	if s.ToggleBookmark(ctx) || s.IsBookmarked() {
		t.Fatalf("second toggle did not remove the bookmark")
	}
	if len(s.Bookmarks()) != 0 {
		t.Fatalf("bookmarks = %v after double toggle", s.Bookmarks())
	}
}

func TestBookmarksSortedAscending(t *testing.T) {
	s, _ := newTestSession(t, 9)
	ctx := context.Background()
	for _, page := range []int{7, 2, 5} {
		s.GoTo(ctx, page)
		s.ToggleBookmark(ctx)
	}
	got := s.Bookmarks()
	want := []int{2, 5, 7}
	if len(got) != len(want) {
		t.Fatalf("bookmarks = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bookmarks = %v, want %v", got, want)
		}
	}
}

func TestOutOfRangeBookmarksDroppedOnLoad(t *testing.T) {
	store := prefs.NewMemoryStore()
	ctx := context.Background()
	if err := store.Save(ctx, prefs.KeyBookmarks, []byte("[2,40,3]")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, err := NewSession(ctx, testDoc(5), store, nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	got := s.Bookmarks()
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("bookmarks = %v, want [2 3]", got)
	}
}

func TestPreferenceKeysAreIndependent(t *testing.T) {
	s, store := newTestSession(t, 5)
	ctx := context.Background()
	s.GoTo(ctx, 4)
	s.ToggleBookmark(ctx)
	s.SetDarkMode(ctx, true)

	data, ok, err := store.Load(ctx, prefs.KeyBookmarks)
	if err != nil || !ok {
		t.Fatalf("bookmarks key: ok=%v err=%v", ok, err)
	}
	if string(data) != "[4]" {
		t.Fatalf("bookmarks = %s", data)
	}
	data, ok, _ = store.Load(ctx, prefs.KeyCurrentPage)
	if !ok || string(data) != "4" {
		t.Fatalf("currentPage = %s ok=%v", data, ok)
	}
	data, ok, _ = store.Load(ctx, prefs.KeyDarkMode)
	if !ok || string(data) != "true" {
		t.Fatalf("darkMode = %s ok=%v", data, ok)
	}
}

func TestScrollSignalOnPageChange(t *testing.T) {
	store := prefs.NewMemoryStore()
	ctx := context.Background()
	scrolls := 0
	s, err := NewSession(ctx, testDoc(5), store, func() { scrolls++ })
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	s.GoTo(ctx, 3)
	s.GoTo(ctx, 3) // no change, no signal
	s.Next(ctx)
	if scrolls != 2 {
		t.Fatalf("scroll signals = %d, want 2", scrolls)
	}
}

func TestJumpToRejectsBadInput(t *testing.T) {
	s, _ := newTestSession(t, 5)
	ctx := context.Background()
	s.GoTo(ctx, 2)
	for _, input := range []string{"", "abc", "0", "6", "2.5"} {
		if s.JumpTo(ctx, input) {
			t.Fatalf("jumpTo(%q) navigated", input)
		}
		if s.CurrentPage() != 2 {
			t.Fatalf("jumpTo(%q) changed page to %d", input, s.CurrentPage())
		}
	}
	if !s.JumpTo(ctx, " 5 ") || s.CurrentPage() != 5 {
		t.Fatalf("jumpTo(\" 5 \") failed, page = %d", s.CurrentPage())
	}
}

func TestRenderedPageRespectsBionicToggle(t *testing.T) {
	s, _ := newTestSession(t, 1)
	ctx := context.Background()

	raw, segments := s.RenderedPage()
	if raw != "page content" {
		t.Fatalf("raw = %q", raw)
	}
	if segments == nil {
		t.Fatalf("bionic on: expected segments")
	}
	if got := book.Plain(segments); got != raw {
		t.Fatalf("segments do not reassemble to raw text: %q", got)
	}

	s.SetBionicMode(ctx, false)
	raw, segments = s.RenderedPage()
	if segments != nil {
		t.Fatalf("bionic off: renderer must be the identity, got %d segments", len(segments))
	}
	if raw != "page content" {
		t.Fatalf("raw = %q", raw)
	}
}
