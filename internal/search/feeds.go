package search

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const maxPerFeed = 20

// FeedParser fetches articles from RSS/Atom feeds.
type FeedParser struct {
	parser *gofeed.Parser
}

// NewFeedParser creates a new feed parser.
func NewFeedParser() *FeedParser {
	return &FeedParser{parser: gofeed.NewParser()}
}

// Fetch parses the given feeds and returns entries published within the
// window. A failing feed is logged and skipped; it never aborts the rest.
func (fp *FeedParser) Fetch(ctx context.Context, urls []string, window Window) []Article {
	cutoff := time.Now().AddDate(0, 0, -window.Days())
	var all []Article

	for _, feedURL := range urls {
		feed, err := fp.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			log.Printf("Failed to parse feed %s: %v", feedURL, err)
			continue
		}

		source := feed.Title
		if source == "" {
			source = extractSourceName(feedURL)
		}

		count := 0
		for _, item := range feed.Items {
			if count >= maxPerFeed {
				break
			}

			link := item.Link
			if link == "" {
				link = item.GUID
			}
			if link == "" {
				continue
			}

			var published string
			if item.PublishedParsed != nil {
				if item.PublishedParsed.Before(cutoff) {
					continue
				}
				published = item.PublishedParsed.UTC().Format(time.RFC3339)
			}

			snippet := strings.TrimSpace(stripTags(item.Description))
			if len(snippet) > 300 {
				snippet = snippet[:300]
			}

			all = append(all, Article{
				Title:       strings.TrimSpace(item.Title),
				Link:        link,
				Snippet:     snippet,
				Source:      source,
				PublishedAt: published,
			})
			count++
		}

		log.Printf("Parsed %d entries from %s (within %d days)", count, source, window.Days())
	}

	return all
}

func extractSourceName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return feedURL
	}
	return strings.TrimPrefix(u.Host, "www.")
}
