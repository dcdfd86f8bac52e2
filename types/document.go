package types

import "strings"

// Document is an uploaded payload. It exists only for the duration of one
// request and is never written to disk.
type Document struct {
	Data      []byte
	MediaType string
	Name      string
}

// ExtractedText is the ordered sequence of per-page text fragments produced
// by the extraction engine. A page that failed extraction contributes an
// empty fragment so that page order is preserved.
type ExtractedText []string

// Join concatenates the non-empty fragments in page order.
func (t ExtractedText) Join() string {
	var b strings.Builder
	for _, fragment := range t {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fragment)
	}
	return b.String()
}
