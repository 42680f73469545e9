package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/medwatch/medwatch/internal/config"
	"github.com/medwatch/medwatch/internal/llm"
	"github.com/medwatch/medwatch/internal/search"
)

type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (f *fakeGenerator) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

var testReportCfg = config.Report{
	Title:           "Market Intelligence",
	IncludeKeywords: []string{"c-arm", "imaging", "orthopedic"},
	ExcludeKeywords: []string{"football"},
}

func testResults() (map[string][]search.Article, []config.Topic) {
	topics := []config.Topic{{Name: "Imaging"}, {Name: "Empty"}}
	results := map[string][]search.Article{
		"Imaging": {
			{Title: "New C-arm launched", Snippet: "imaging news", Source: "MedTech Dive", Link: "https://example.com/a", PublishedAt: "2026-01-23T17:55:00+00:00"},
			{Title: "Football scores", Snippet: "sports", Source: "ESPN", Link: "https://example.com/b"},
		},
		"Empty": {},
	}
	return results, topics
}

func TestWriteUsesGenerator(t *testing.T) {
	gen := &fakeGenerator{response: "# AI report"}
	w := NewWriter(gen, testReportCfg, 1000, 0.3)

	results, topics := testResults()
	got := w.Write(context.Background(), results, topics)

	if got != "# AI report" {
		t.Errorf("expected generator output, got %q", got)
	}
	if gen.calls != 1 {
		t.Errorf("expected 1 completion call, got %d", gen.calls)
	}
}

func TestWriteFallsBackOnError(t *testing.T) {
	gen := &fakeGenerator{err: &llm.Error{Kind: llm.RateLimitExhausted, Message: "rate limited"}}
	w := NewWriter(gen, testReportCfg, 1000, 0.3)

	results, topics := testResults()
	got := w.Write(context.Background(), results, topics)

	if !strings.Contains(got, "Market Intelligence") {
		t.Errorf("expected basic report, got %q", got)
	}
	if !strings.Contains(got, "New C-arm launched") {
		t.Error("expected relevant article in fallback report")
	}
}

func TestWriteNilGeneratorUsesBasic(t *testing.T) {
	w := NewWriter(nil, testReportCfg, 1000, 0.3)
	results, topics := testResults()
	got := w.Write(context.Background(), results, topics)
	if !strings.Contains(got, "### Imaging") {
		t.Errorf("expected basic report sections, got %q", got)
	}
}

func TestBasicFiltersAndFormats(t *testing.T) {
	w := NewWriter(nil, testReportCfg, 1000, 0.3)
	results, topics := testResults()

	got := w.Basic(results, topics)

	if !strings.Contains(got, "New C-arm launched") {
		t.Error("expected included article")
	}
	if strings.Contains(got, "Football scores") {
		t.Error("excluded article leaked into report")
	}
	if !strings.Contains(got, "Jan 23, 2026 - 5:55 PM") {
		t.Errorf("expected formatted date in report:\n%s", got)
	}
	if !strings.Contains(got, "[MedTech Dive](https://example.com/a)") {
		t.Error("expected markdown source link")
	}
	if !strings.Contains(got, "### Empty") || !strings.Contains(got, "No relevant articles found.") {
		t.Error("empty category must still have a section")
	}
}

func TestBasicCapsAtTenPerCategory(t *testing.T) {
	var articles []search.Article
	for i := 0; i < 15; i++ {
		articles = append(articles, search.Article{
			Title:   "imaging item",
			Link:    "https://example.com/" + string(rune('a'+i)),
			Snippet: "imaging",
		})
	}
	results := map[string][]search.Article{"Imaging": articles}
	topics := []config.Topic{{Name: "Imaging"}}

	w := NewWriter(nil, testReportCfg, 1000, 0.3)
	got := w.Basic(results, topics)

	if strings.Contains(got, "**11.") {
		t.Error("basic report must cap at 10 articles per category")
	}
	if !strings.Contains(got, "**10.") {
		t.Error("expected 10 articles present")
	}
}

func TestFormatArticleDate(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"2026-01-23T17:55:00+00:00", "Jan 23, 2026 - 5:55 PM"},
		{"2026-01-23T09:05:00Z", "Jan 23, 2026 - 9:05 AM"},
		{"2026-01-23", "Jan 23, 2026"},
		{"", "Date not available"},
		{"Date not available", "Date not available"},
		{"sometime last week", "sometime last week"},
	}
	for _, c := range cases {
		if got := FormatArticleDate(c.in); got != c.want {
			t.Errorf("FormatArticleDate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFilterRelevant(t *testing.T) {
	f := NewFilter([]string{"c-arm", "imaging"}, []string{"nfl"})

	if !f.Relevant(search.Article{Title: "Mobile C-arm update"}) {
		t.Error("expected include keyword match (case-insensitive)")
	}
	if f.Relevant(search.Article{Title: "NFL imaging special"}) {
		t.Error("exclude keyword must win over include")
	}
	if f.Relevant(search.Article{Title: "Celebrity gossip"}) {
		t.Error("expected no match to be irrelevant")
	}
	if !f.Relevant(search.Article{Snippet: "new imaging suite"}) {
		t.Error("snippet must be searched too")
	}
}

func TestFilterEmptyIncludeAdmitsAll(t *testing.T) {
	f := NewFilter(nil, []string{"spam"})
	if !f.Relevant(search.Article{Title: "anything"}) {
		t.Error("empty include list should admit non-excluded articles")
	}
	if f.Relevant(search.Article{Title: "pure spam"}) {
		t.Error("exclude list must still apply")
	}
}

func TestWriteFallsBackOnPlainError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	w := NewWriter(gen, testReportCfg, 1000, 0.3)
	results, topics := testResults()
	got := w.Write(context.Background(), results, topics)
	if !strings.Contains(got, "Market Intelligence") {
		t.Error("expected fallback on non-typed error")
	}
}
