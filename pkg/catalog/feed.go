package catalog

import (
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// FeedParser extracts entry links from an RSS/Atom catalog
type FeedParser struct {
	feedParser *gofeed.Parser
}

// NewFeedParser creates a new feed catalog parser
func NewFeedParser() *FeedParser {
	return &FeedParser{
		feedParser: gofeed.NewParser(),
	}
}

// Entries returns the item links in feed order. Items without a link are skipped.
func (p *FeedParser) Entries(document string) ([]string, error) {
	feed, err := p.feedParser.ParseString(document)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog feed: %w", err)
	}

	urls := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		if link := strings.TrimSpace(item.Link); link != "" {
			urls = append(urls, link)
		}
	}

	return urls, nil
}
