package report

import (
	"strings"

	"github.com/medwatch/medwatch/internal/search"
)

// Filter is the keyword relevance check used by the deterministic report.
// An article is relevant when no exclude keyword matches and at least one
// include keyword does. An empty include list admits everything that
// passes the exclude list.
type Filter struct {
	include []string
	exclude []string
}

// NewFilter creates a filter from config keyword lists.
func NewFilter(include, exclude []string) Filter {
	lower := func(in []string) []string {
		out := make([]string, len(in))
		for i, s := range in {
			out[i] = strings.ToLower(s)
		}
		return out
	}
	return Filter{include: lower(include), exclude: lower(exclude)}
}

// Relevant reports whether the article passes the keyword filter.
func (f Filter) Relevant(a search.Article) bool {
	text := strings.ToLower(a.Title + " " + a.Snippet)
	for _, kw := range f.exclude {
		if strings.Contains(text, kw) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, kw := range f.include {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Apply returns the articles that pass the filter, capped at limit.
func (f Filter) Apply(articles []search.Article, limit int) []search.Article {
	var kept []search.Article
	for _, a := range articles {
		if !f.Relevant(a) {
			continue
		}
		kept = append(kept, a)
		if limit > 0 && len(kept) >= limit {
			break
		}
	}
	return kept
}
