package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"readerapp/pkg/book"
	"readerapp/pkg/prefs"
)

// Session owns the reading position, bookmarks, and display preferences
// for one document. Every state change is persisted synchronously to the
// injected preference store; navigation never fails, out-of-range inputs
// are clamped or ignored.
type Session struct {
	doc      *book.Document
	store    prefs.Store
	onScroll func()

	mu        sync.Mutex
	current   int
	bookmarks []int
	dark      bool
	bionic    bool
}

// NewSession restores persisted state for the document. A missing position
// defaults to page 1; a persisted position outside the document (the
// document changed since the last run) is clamped into range, as are
// persisted bookmarks. The scroll callback fires after every page change
// and may be nil.
func NewSession(ctx context.Context, doc *book.Document, store prefs.Store, onScroll func()) (*Session, error) {
	s := &Session{
		doc:      doc,
		store:    store,
		onScroll: onScroll,
		current:  1,
		bionic:   true,
	}

	var page int
	if loadJSON(ctx, store, prefs.KeyCurrentPage, &page) {
		s.current = clampPage(page, doc.TotalPages)
	}
	var marks []int
	if loadJSON(ctx, store, prefs.KeyBookmarks, &marks) {
		for _, n := range marks {
			if n >= 1 && n <= doc.TotalPages {
				s.bookmarks = append(s.bookmarks, n)
			}
		}
		sort.Ints(s.bookmarks)
	}
	loadJSON(ctx, store, prefs.KeyDarkMode, &s.dark)
	loadJSON(ctx, store, prefs.KeyBionicMode, &s.bionic)

	return s, nil
}

// loadJSON reads one preference key; malformed or missing values leave the
// destination untouched.
func loadJSON(ctx context.Context, store prefs.Store, key string, dst any) bool {
	data, ok, err := store.Load(ctx, key)
	if err != nil {
		slog.Warn("load preference failed", "key", key, "err", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		slog.Warn("malformed preference ignored", "key", key, "err", err)
		return false
	}
	return true
}

func (s *Session) saveJSON(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Error("encode preference failed", "key", key, "err", err)
		return
	}
	if err := s.store.Save(ctx, key, data); err != nil {
		slog.Error("save preference failed", "key", key, "err", err)
	}
}

func clampPage(n, total int) int {
	if n < 1 {
		return 1
	}
	if n > total {
		return total
	}
	return n
}

// Document returns the loaded document.
func (s *Session) Document() *book.Document {
	return s.doc
}

// CurrentPage returns the current 1-indexed page.
func (s *Session) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// GoTo moves to clamp(n, 1, totalPages) and reports whether the position
// changed. Out-of-range values never error; they land on the nearest
// boundary page.
func (s *Session) GoTo(ctx context.Context, n int) bool {
	n = clampPage(n, s.doc.TotalPages)
	s.mu.Lock()
	if n == s.current {
		s.mu.Unlock()
		return false
	}
	s.current = n
	s.mu.Unlock()

	s.saveJSON(ctx, prefs.KeyCurrentPage, n)
	if s.onScroll != nil {
		s.onScroll()
	}
	return true
}

// Next advances one page, clamped at the last page.
func (s *Session) Next(ctx context.Context) bool {
	return s.GoTo(ctx, s.CurrentPage()+1)
}

// Prev goes back one page, clamped at page 1.
func (s *Session) Prev(ctx context.Context) bool {
	return s.GoTo(ctx, s.CurrentPage()-1)
}

// JumpTo parses a page number typed by the reader and navigates to it.
// Non-numeric or out-of-range input is ignored without any state change.
func (s *Session) JumpTo(ctx context.Context, input string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > s.doc.TotalPages {
		return false
	}
	return s.GoTo(ctx, n)
}

// ToggleBookmark adds the current page to the bookmark set, or removes it
// when already present, and reports whether the page is now bookmarked.
// The set is kept ascending and persisted whole on each call.
func (s *Session) ToggleBookmark(ctx context.Context) bool {
	s.mu.Lock()
	page := s.current
	idx := sort.SearchInts(s.bookmarks, page)
	bookmarked := idx < len(s.bookmarks) && s.bookmarks[idx] == page
	if bookmarked {
		s.bookmarks = append(s.bookmarks[:idx], s.bookmarks[idx+1:]...)
	} else {
		s.bookmarks = append(s.bookmarks, page)
		sort.Ints(s.bookmarks)
	}
	snapshot := append([]int(nil), s.bookmarks...)
	s.mu.Unlock()

	s.saveJSON(ctx, prefs.KeyBookmarks, snapshot)
	return !bookmarked
}

// Bookmarks returns the bookmark set in ascending order.
func (s *Session) Bookmarks() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.bookmarks...)
}

// IsBookmarked reports whether the current page is bookmarked.
func (s *Session) IsBookmarked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := sort.SearchInts(s.bookmarks, s.current)
	return idx < len(s.bookmarks) && s.bookmarks[idx] == s.current
}

// DarkMode returns the dark mode toggle.
func (s *Session) DarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dark
}

// SetDarkMode persists the dark mode toggle.
func (s *Session) SetDarkMode(ctx context.Context, on bool) {
	s.mu.Lock()
	s.dark = on
	s.mu.Unlock()
	s.saveJSON(ctx, prefs.KeyDarkMode, on)
}

// BionicMode returns the bionic reading toggle.
func (s *Session) BionicMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bionic
}

// SetBionicMode persists the bionic reading toggle.
func (s *Session) SetBionicMode(ctx context.Context, on bool) {
	s.mu.Lock()
	s.bionic = on
	s.mu.Unlock()
	s.saveJSON(ctx, prefs.KeyBionicMode, on)
}

// PageContent returns the raw text of the current page.
func (s *Session) PageContent() string {
	return s.doc.PageContent(s.CurrentPage())
}

// RenderedPage returns the current page for display: bionic segments when
// the toggle is on, or nil segments with the raw text otherwise (the
// renderer is the identity function when disabled).
func (s *Session) RenderedPage() (raw string, segments []book.Segment) {
	raw = s.PageContent()
	if s.BionicMode() {
		segments = book.Bionic(raw)
	}
	return raw, segments
}

// Search scans the document for the query.
func (s *Session) Search(query string) []book.SearchResult {
	return book.Search(s.doc, query)
}
