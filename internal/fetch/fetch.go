// Package fetch enriches top articles with readable full text before
// report writing. Everything here is best effort: a failed fetch leaves
// the provider snippet in place.
package fetch

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/medwatch/medwatch/internal/search"
)

const maxSnippetLen = 1200

// Result holds the results of an enrichment run.
type Result struct {
	Fetched int
	Failed  int
	Skipped int
}

// Enricher fetches article pages and extracts readable text.
type Enricher struct {
	perCategory int
	client      *http.Client
}

// NewEnricher creates an enricher that processes the first perCategory
// articles of each category.
func NewEnricher(perCategory int, timeout time.Duration) *Enricher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Enricher{
		perCategory: perCategory,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Enrich replaces the snippet of leading articles in each category with
// extracted page text where a page is fetchable and readable. Domains
// that fail once are skipped for the rest of the run.
func (e *Enricher) Enrich(results map[string][]search.Article) *Result {
	r := &Result{}
	failedDomains := make(map[string]struct{})

	for category, articles := range results {
		limit := e.perCategory
		if limit > len(articles) {
			limit = len(articles)
		}

		for i := 0; i < limit; i++ {
			article := articles[i]
			u, _ := url.Parse(article.Link)
			domain := ""
			if u != nil {
				domain = strings.ToLower(u.Host)
			}

			if _, failed := failedDomains[domain]; failed {
				r.Skipped++
				continue
			}

			text, err := e.fetchReadable(article.Link)
			if err != nil || text == "" {
				r.Failed++
				if domain != "" && err != nil {
					failedDomains[domain] = struct{}{}
					log.Printf("Fetch failed for %s — skipping remaining from %s", article.Link, domain)
				}
				continue
			}

			if len(text) > maxSnippetLen {
				text = text[:maxSnippetLen]
			}
			articles[i].Snippet = text
			r.Fetched++
		}

		results[category] = articles
	}

	log.Printf("Content enrichment complete: %d fetched, %d failed, %d skipped", r.Fetched, r.Failed, r.Skipped)
	return r
}

func (e *Enricher) fetchReadable(articleURL string) (string, error) {
	req, err := http.NewRequest("GET", articleURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "medwatch/1.0 (news aggregator)")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", nil
	}

	parsedURL, _ := url.Parse(articleURL)
	page, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return "", nil
	}

	text := strings.TrimSpace(page.TextContent)
	if len(text) > 100 {
		return text, nil
	}
	return "", nil
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
