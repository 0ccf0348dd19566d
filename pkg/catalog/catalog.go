// Package catalog discovers detail page URLs on a catalog document.
package catalog

import (
	"fmt"
	"strings"
)

// Formats accepted by NewParser
const (
	FormatHTML = "html"
	FormatFeed = "feed"
)

// Parser defines the interface for catalog parsers (HTML listing, RSS/Atom feed)
type Parser interface {
	// Entries returns the detail page URLs in document order. Duplicates are kept.
	Entries(document string) ([]string, error)
}

// NewParser returns the parser for the given catalog format.
// An empty format means FormatHTML.
func NewParser(format, baseURL, selector string) (Parser, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatHTML:
		return NewHTMLParser(baseURL, selector), nil
	case FormatFeed:
		return NewFeedParser(), nil
	default:
		return nil, fmt.Errorf("unknown catalog format: %s", format)
	}
}
