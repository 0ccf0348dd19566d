package catalog

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"recipe-harvest/pkg/extractor"
)

// DefaultSelector matches the entry title anchors on a catalog listing
const DefaultSelector = "a.box__title"

// HTMLParser extracts entry links from an HTML catalog page
type HTMLParser struct {
	BaseURL  string
	Selector string
}

// NewHTMLParser creates a new HTML catalog parser. An empty selector means DefaultSelector.
func NewHTMLParser(baseURL, selector string) *HTMLParser {
	if selector == "" {
		selector = DefaultSelector
	}
	return &HTMLParser{
		BaseURL:  baseURL,
		Selector: selector,
	}
}

// Entries returns the absolutized href of every matching anchor.
// Anchors without an href are skipped.
func (p *HTMLParser) Entries(document string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog HTML: %w", err)
	}

	selector := p.Selector
	if selector == "" {
		selector = DefaultSelector
	}

	urls := make([]string, 0)
	doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || strings.TrimSpace(href) == "" {
			return
		}
		urls = append(urls, extractor.Absolutize(p.BaseURL, href))
	})

	return urls, nil
}
