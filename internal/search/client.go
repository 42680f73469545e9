package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const defaultBaseURL = "https://duckduckgo.com"

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

var vqdPattern = regexp.MustCompile(`vqd=['"]?([\d-]+)['"]?`)

// Client searches DuckDuckGo news. No API key is required; the endpoint
// needs a vqd token obtained from the search page before each query.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new DuckDuckGo news client.
func NewClient() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SearchNews searches for news articles matching a query within the window.
func (c *Client) SearchNews(ctx context.Context, query string, maxResults int, window Window) ([]Article, error) {
	vqd, err := c.fetchVQD(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetching search token: %w", err)
	}

	params := url.Values{
		"l":     {"us-en"},
		"o":     {"json"},
		"noamp": {"1"},
		"q":     {query},
		"vqd":   {vqd},
		"df":    {window.param()},
		"p":     {"-2"},
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/news.js?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", c.baseURL+"/")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news endpoint returned %d", resp.StatusCode)
	}

	var result struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Excerpt string `json:"excerpt"`
			Source  string `json:"source"`
			Date    int64  `json:"date"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding news response: %w", err)
	}

	var articles []Article
	for _, r := range result.Results {
		if len(articles) >= maxResults {
			break
		}
		if r.URL == "" {
			continue
		}

		var published string
		if r.Date > 0 {
			published = time.Unix(r.Date, 0).UTC().Format(time.RFC3339)
		}

		articles = append(articles, Article{
			Title:       strings.TrimSpace(r.Title),
			Link:        r.URL,
			Snippet:     strings.TrimSpace(stripTags(r.Excerpt)),
			Source:      r.Source,
			PublishedAt: published,
		})
	}

	return articles, nil
}

// fetchVQD requests the search page and extracts the vqd token for a query.
func (c *Client) fetchVQD(ctx context.Context, query string) (string, error) {
	params := url.Values{"q": {query}, "ia": {"news"}}
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search page returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	m := vqdPattern.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("no vqd token in search page")
	}
	return string(m[1]), nil
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// stripTags removes the highlight markup the provider embeds in excerpts.
func stripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}
