package book

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Document is the immutable paginated book loaded once at startup.
type Document struct {
	Title      string `json:"title"`
	TotalPages int    `json:"total_pages"`
	Pages      []Page `json:"pages"`
}

// Page holds the plain text content of a single 1-indexed page.
type Page struct {
	Number  int    `json:"page"`
	Content string `json:"content"`
}

// Load reads and validates a document from a source.
func Load(ctx context.Context, src Source) (*Document, error) {
	r, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer r.Close()
	return Decode(r)
}

// Decode parses a document from its JSON wire form and validates it.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("document title is required")
	}
	if d.TotalPages < 1 {
		return fmt.Errorf("document must have at least one page")
	}
	if len(d.Pages) != d.TotalPages {
		return fmt.Errorf("document declares %d pages but contains %d", d.TotalPages, len(d.Pages))
	}
	for i, p := range d.Pages {
		if p.Number != i+1 {
			return fmt.Errorf("page %d out of order: numbered %d", i+1, p.Number)
		}
	}
	return nil
}

// PageContent returns the content of page n, or the empty string when n is
// out of range.
func (d *Document) PageContent(n int) string {
	if n < 1 || n > d.TotalPages {
		return ""
	}
	return d.Pages[n-1].Content
}
