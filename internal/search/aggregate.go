package search

import (
	"context"
	"log"
	"time"

	"github.com/medwatch/medwatch/internal/config"
)

// Provider issues a single time-windowed news search.
type Provider interface {
	SearchNews(ctx context.Context, query string, maxResults int, window Window) ([]Article, error)
}

// FeedSource fetches articles from a topic's RSS feeds.
type FeedSource interface {
	Fetch(ctx context.Context, urls []string, window Window) []Article
}

// Result holds counts from an aggregation run.
type Result struct {
	Categories int
	Articles   int
	Failures   int
}

// Aggregator runs one search per keyword per topic and deduplicates
// results by link within each topic. Searches are strictly sequential;
// the seen-link set is local to a single Aggregate call.
type Aggregator struct {
	provider Provider
	feeds    FeedSource
	cooldown time.Duration
	sleep    func(time.Duration)
}

// NewAggregator creates a new aggregator. The cooldown is applied between
// individual provider calls as a courtesy to the provider's rate limits.
func NewAggregator(provider Provider, cooldown time.Duration) *Aggregator {
	return &Aggregator{
		provider: provider,
		cooldown: cooldown,
		sleep:    time.Sleep,
	}
}

// WithFeeds adds an optional RSS feed source merged into each topic's
// results after its keyword searches, with the same dedup rules.
func (a *Aggregator) WithFeeds(feeds FeedSource) *Aggregator {
	a.feeds = feeds
	return a
}

// Aggregate searches every keyword of every topic and returns
// category -> unique articles. Every topic name is present in the result,
// with an empty list when nothing was found. A failing keyword search is
// logged and contributes zero results; it never aborts the category.
// Within a category the first occurrence of a link wins and its fields
// are kept unmodified; articles without a link are discarded.
func (a *Aggregator) Aggregate(ctx context.Context, topics []config.Topic, resultsPerQuery int, window Window) (map[string][]Article, *Result) {
	results := make(map[string][]Article, len(topics))
	stats := &Result{Categories: len(topics)}

	for _, topic := range topics {
		seen := make(map[string]struct{})
		articles := []Article{}

		log.Printf("Searching category: %s", topic.Name)

		for _, keyword := range topic.Keywords {
			found, err := a.provider.SearchNews(ctx, keyword, resultsPerQuery, window)
			if err != nil {
				log.Printf("Search failed for %q: %v", keyword, err)
				stats.Failures++
			} else {
				log.Printf("Found %d articles for: %s", len(found), truncate(keyword, 50))
			}

			for _, article := range found {
				if article.Link == "" {
					continue
				}
				if _, dup := seen[article.Link]; dup {
					continue
				}
				seen[article.Link] = struct{}{}
				article.Category = topic.Name
				articles = append(articles, article)
			}

			a.pause()
		}

		if a.feeds != nil && len(topic.Feeds) > 0 {
			for _, article := range a.feeds.Fetch(ctx, topic.Feeds, window) {
				if article.Link == "" {
					continue
				}
				if _, dup := seen[article.Link]; dup {
					continue
				}
				seen[article.Link] = struct{}{}
				article.Category = topic.Name
				articles = append(articles, article)
			}
		}

		results[topic.Name] = articles
		stats.Articles += len(articles)
		log.Printf("Category %q: %d unique articles", topic.Name, len(articles))
	}

	return results, stats
}

func (a *Aggregator) pause() {
	if a.cooldown > 0 {
		a.sleep(a.cooldown)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
