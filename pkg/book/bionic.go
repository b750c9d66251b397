package book

import (
	"html"
	"strings"
	"unicode"
)

// Segment is one piece of bionic-rendered text: an emphasized prefix
// followed by the unemphasized remainder. Whitespace runs are carried
// verbatim as rest-only segments.
type Segment struct {
	Bold string `json:"bold,omitempty"`
	Rest string `json:"rest,omitempty"`
}

// Bionic splits text on whitespace runs and emphasizes the leading ~40% of
// each word. The transform is deterministic and must only ever be applied
// to raw page text, never to its own output.
func Bionic(text string) []Segment {
	if text == "" {
		return nil
	}
	var segments []Segment
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		j := i
		ws := unicode.IsSpace(runes[i])
		for j < len(runes) && unicode.IsSpace(runes[j]) == ws {
			j++
		}
		chunk := runes[i:j]
		if ws {
			segments = append(segments, Segment{Rest: string(chunk)})
		} else {
			bold := boldLen(len(chunk))
			segments = append(segments, Segment{
				Bold: string(chunk[:bold]),
				Rest: string(chunk[bold:]),
			})
		}
		i = j
	}
	return segments
}

// boldLen is ceil(n * 0.4) without going through floats.
func boldLen(n int) int {
	return (2*n + 4) / 5
}

// BionicHTML renders the transform as <strong>-wrapped markup for
// presentation layers that consume HTML.
func BionicHTML(text string) string {
	var sb strings.Builder
	for _, seg := range Bionic(text) {
		if seg.Bold != "" {
			sb.WriteString("<strong>")
			sb.WriteString(html.EscapeString(seg.Bold))
			sb.WriteString("</strong>")
		}
		sb.WriteString(html.EscapeString(seg.Rest))
	}
	return sb.String()
}

// Plain reassembles segments into the raw text they were rendered from.
func Plain(segments []Segment) string {
	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteString(seg.Bold)
		sb.WriteString(seg.Rest)
	}
	return sb.String()
}
