// Package report turns aggregated search results into the executive
// report and its email-ready HTML form. Both steps prefer the completion
// backend and fall back to a deterministic rendering when it fails.
package report

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/medwatch/medwatch/internal/config"
	"github.com/medwatch/medwatch/internal/llm"
	"github.com/medwatch/medwatch/internal/search"
)

const maxArticlesPerCategory = 15

const writerSystemPrompt = `You are a MedTech news reporter creating executive briefings.

CRITICAL RULES:
1. Report EVERY article - each one is important news
2. For EACH article, you MUST include ALL of these elements:
   - Title (bold)
   - Publication Date (from the article's date field - ALWAYS include this)
   - Summary (2-3 sentences based on the content preview, explaining key points and relevance)
   - Source name
   - Full clickable URL
3. Group by category
4. Write concise but informative summaries based on the content provided
5. NEVER skip the date or summary for any article`

const writerPromptTemplate = `Create a detailed news brief for %s from these %d articles:

%s

FORMAT FOR EACH ARTICLE (MANDATORY - follow exactly):
**[Article Title]**
Published: [Publication Date from the article]
Summary: [2-3 sentences explaining what the article is about, the key developments, companies involved, and why it matters to MedTech executives]
Source: [Source name]
URL: [Full URL]

REPORT STRUCTURE:
1. EXECUTIVE SUMMARY - 3 bullet points of the most important stories
%s%d. MARKET WATCH - Key market trends and insights

CRITICAL: Every single article MUST have:
- The publication date (use the date provided, or "Date not available" if missing)
- A meaningful 2-3 sentence summary explaining the news content
- Source attribution
- Full URL link`

// Generator is the completion capability the report stages depend on.
type Generator interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Writer builds the executive report from aggregated articles.
type Writer struct {
	gen         Generator
	title       string
	filter      Filter
	maxTokens   int
	temperature float64
}

// NewWriter creates a report writer. gen may be nil, in which case every
// report takes the deterministic path.
func NewWriter(gen Generator, cfg config.Report, maxTokens int, temperature float64) *Writer {
	return &Writer{
		gen:         gen,
		title:       cfg.Title,
		filter:      NewFilter(cfg.IncludeKeywords, cfg.ExcludeKeywords),
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Write produces the markdown report. Completion failures of any kind
// degrade to the deterministic keyword-filtered report; the caller always
// gets a report.
func (w *Writer) Write(ctx context.Context, results map[string][]search.Article, topics []config.Topic) string {
	if w.gen == nil {
		return w.Basic(results, topics)
	}

	today := time.Now().Format("January 02, 2006")
	articlesText, count := formatArticles(results, topics)

	var sections strings.Builder
	for i, topic := range topics {
		fmt.Fprintf(&sections, "%d. %s - All related articles with FULL details (date, summary, source, URL)\n", i+2, strings.ToUpper(topic.Name))
	}

	prompt := fmt.Sprintf(writerPromptTemplate, today, count, articlesText, sections.String(), len(topics)+2)

	text, err := w.gen.Complete(ctx, llm.Request{
		System:      writerSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   w.maxTokens,
		Temperature: w.temperature,
	})
	if err != nil {
		log.Printf("Report generation failed (%s), using basic report: %v", llm.KindOf(err), err)
		return w.Basic(results, topics)
	}
	return text
}

// Basic builds the deterministic non-AI report: keyword-filtered articles
// grouped by category, at most ten per category.
func (w *Writer) Basic(results map[string][]search.Article, topics []config.Topic) string {
	today := time.Now().Format("January 02, 2006")

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n## %s\n\n---\n\n", w.title, today)

	for _, topic := range topics {
		fmt.Fprintf(&b, "### %s\n\n", topic.Name)

		relevant := w.filter.Apply(results[topic.Name], 10)
		if len(relevant) == 0 {
			b.WriteString("No relevant articles found.\n\n")
			continue
		}

		for i, article := range relevant {
			title := article.Title
			if title == "" {
				title = "No title"
			}
			source := article.Source
			if source == "" {
				source = "Unknown"
			}

			fmt.Fprintf(&b, "**%d. %s**\n", i+1, title)
			fmt.Fprintf(&b, "   - Date: %s\n", FormatArticleDate(article.PublishedAt))
			if article.Snippet != "" {
				fmt.Fprintf(&b, "   - Summary: %s\n", truncateSnippet(article.Snippet, 200))
			}
			fmt.Fprintf(&b, "   - Source: %s\n", source)
			if article.Link != "" {
				fmt.Fprintf(&b, "   - URL: [%s](%s)\n", source, article.Link)
			}
			b.WriteString("\n")
		}

		b.WriteString("---\n\n")
	}

	return b.String()
}

// formatArticles renders all articles into the prompt's text block.
func formatArticles(results map[string][]search.Article, topics []config.Topic) (string, int) {
	var parts []string
	for _, topic := range topics {
		articles := results[topic.Name]
		if len(articles) > maxArticlesPerCategory {
			articles = articles[:maxArticlesPerCategory]
		}
		for _, a := range articles {
			title := a.Title
			if title == "" {
				title = "No title"
			}
			source := a.Source
			if source == "" {
				source = "Unknown"
			}
			parts = append(parts, fmt.Sprintf(`
Category: %s
Title: %s
Source: %s
Publication Date: %s
Content Preview: %s
URL: %s
---`, topic.Name, title, source, FormatArticleDate(a.PublishedAt), a.Snippet, a.Link))
		}
	}
	return strings.Join(parts, "\n"), len(parts)
}

func truncateSnippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
