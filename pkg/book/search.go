package book

import "strings"

const snippetRadius = 50

// SearchResult points at the first occurrence of a query on one page.
type SearchResult struct {
	Page    int    `json:"page"`
	Snippet string `json:"snippet"`
}

// Search scans every page for a case-insensitive substring match, in page
// order. Each matching page yields exactly one result built from its first
// occurrence. Empty or whitespace-only queries return no results.
func Search(doc *Document, query string) []SearchResult {
	if doc == nil || strings.TrimSpace(query) == "" {
		return nil
	}
	needle := strings.ToLower(query)
	var results []SearchResult
	for _, page := range doc.Pages {
		idx := strings.Index(strings.ToLower(page.Content), needle)
		if idx < 0 {
			continue
		}
		results = append(results, SearchResult{
			Page:    page.Number,
			Snippet: snippet(page.Content, idx, idx+len(needle)),
		})
	}
	return results
}

// snippet cuts a window around [matchStart, matchEnd) clamped to the
// content bounds. The ellipsis markers are fixed, not conditional on
// whether the window reached a true boundary.
func snippet(content string, matchStart, matchEnd int) string {
	start := matchStart - snippetRadius
	if start < 0 {
		start = 0
	}
	end := matchEnd + snippetRadius
	if end > len(content) {
		end = len(content)
	}
	return "..." + content[start:end] + "..."
}
