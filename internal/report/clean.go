package report

import (
	"regexp"
	"strings"
)

var (
	boldPattern     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	linkPattern     = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	bareLinkPattern = regexp.MustCompile(`\[Link\]\s*`)
)

// CleanHTMLResponse normalizes LLM-generated HTML: markdown code fences
// are stripped, anything before the doctype is dropped, and stray
// markdown bold/link syntax is converted to tags.
func CleanHTMLResponse(html string) string {
	if i := strings.Index(html, "```html"); i >= 0 {
		html = html[i+len("```html"):]
	}
	if i := strings.Index(html, "```"); i >= 0 {
		html = html[:i]
	}
	html = strings.TrimSpace(html)

	lower := strings.ToLower(html)
	if !strings.HasPrefix(lower, "<!doctype") {
		if pos := strings.Index(lower, "<!doctype"); pos > 0 {
			html = html[pos:]
		} else if strings.HasPrefix(lower, "<html") {
			html = "<!DOCTYPE html>\n" + html
		}
	}

	html = boldPattern.ReplaceAllString(html, "<strong>$1</strong>")
	html = linkPattern.ReplaceAllString(html, `<a href="$2" style="color: #1a5f7a;">$1</a>`)
	html = bareLinkPattern.ReplaceAllString(html, "")

	return html
}
