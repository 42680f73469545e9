package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/medwatch/medwatch/internal/llm"
)

var md = goldmark.New()

const editorSystemPrompt = `You are an expert HTML email designer specializing in professional newsletters.

Your HTML must be:
- Email-client compatible (works in Gmail, Outlook, Apple Mail)
- Mobile-responsive (readable on phones)
- Uses inline CSS (no external stylesheets)
- Uses tables for layout (email compatibility)
- NEVER use markdown syntax (**, *, [text](url)) - always use proper HTML tags

Design guidelines:
- Primary color: #1a5f7a (dark blue)
- Secondary color: #57837b (teal)
- Background: #f5f5f5 (light gray)
- Text: #333333 (dark gray)
- Maximum width: 600px (email standard)
- Font: Arial, Helvetica, sans-serif (web-safe)`

const editorPromptTemplate = `Convert the following text report into a professional HTML email newsletter.

REPORT TITLE: %s
DATE: %s

TEXT REPORT:
%s

Requirements:
1. Use inline CSS only (no <style> tags in head)
2. Use tables for layout (max-width: 600px, centered)
3. Create a professional header with the title and date
4. Make all URLs clickable links (styled in #1a5f7a)
5. Add section dividers between categories
6. Article titles must use <strong> tags, NOT markdown asterisks
7. Convert any [text](url) markdown to proper <a href> anchor tags
8. Each article should be a card with title, date, summary, and source link
9. Add line-height: 1.6 and generous spacing between articles

Return ONLY the complete HTML code, starting with <!DOCTYPE html>`

// fallbackTemplate is the deterministic email shell used when HTML
// generation is unavailable. The body is the markdown report rendered
// to HTML.
var fallbackTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
</head>
<body style="margin: 0; padding: 0; background-color: #f5f5f5; font-family: Arial, Helvetica, sans-serif;">
    <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f5f5f5;">
        <tr>
            <td align="center" style="padding: 20px;">
                <table role="presentation" width="600" cellspacing="0" cellpadding="0" style="background-color: #ffffff; border-radius: 8px; overflow: hidden;">
                    <tr>
                        <td style="background: linear-gradient(135deg, #1a5f7a 0%, #2d7d9a 100%); padding: 30px; text-align: center;">
                            <h1 style="color: #ffffff; margin: 0; font-size: 24px;">{{.Title}}</h1>
                            <p style="color: #b8d4e3; margin: 8px 0 0 0;">Market Intelligence Report</p>
                            <p style="color: #8ec0d6; margin: 8px 0 0 0; font-size: 14px;">{{.Date}}</p>
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 30px; color: #333333; line-height: 1.6;">
                            {{.Body}}
                        </td>
                    </tr>
                    <tr>
                        <td style="background-color: #2d3748; padding: 20px; text-align: center;">
                            <p style="color: #a0aec0; margin: 0; font-size: 12px;">medwatch | Automated Market Intelligence</p>
                            <p style="color: #a0aec0; margin: 5px 0 0 0; font-size: 12px;">You received this email because you are subscribed to scheduled updates.</p>
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>`))

// Editor converts the markdown report into email-ready HTML.
type Editor struct {
	gen         Generator
	title       string
	maxTokens   int
	temperature float64
}

// NewEditor creates an HTML editor. gen may be nil.
func NewEditor(gen Generator, title string, maxTokens int, temperature float64) *Editor {
	return &Editor{gen: gen, title: title, maxTokens: maxTokens, temperature: temperature}
}

// Render produces the HTML email body for a text report. Completion
// failures degrade to the deterministic template.
func (e *Editor) Render(ctx context.Context, textReport string) string {
	today := time.Now().Format("January 02, 2006")

	if e.gen == nil {
		return e.fallback(textReport, today)
	}

	prompt := fmt.Sprintf(editorPromptTemplate, e.title, today, textReport)
	html, err := e.gen.Complete(ctx, llm.Request{
		System:      editorSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		log.Printf("HTML generation failed (%s), using template: %v", llm.KindOf(err), err)
		return e.fallback(textReport, today)
	}

	html = CleanHTMLResponse(html)
	if !strings.Contains(strings.ToLower(html), "<html") {
		log.Println("Generated HTML is unusable, using template")
		return e.fallback(textReport, today)
	}
	return html
}

// fallback renders the markdown report into the email shell template.
func (e *Editor) fallback(textReport, date string) string {
	var body bytes.Buffer
	if err := md.Convert([]byte(textReport), &body); err != nil {
		body.Reset()
		body.WriteString("<pre>")
		template.HTMLEscape(&body, []byte(textReport))
		body.WriteString("</pre>")
	}

	var out bytes.Buffer
	err := fallbackTemplate.Execute(&out, map[string]any{
		"Title": e.title,
		"Date":  date,
		"Body":  template.HTML(body.String()),
	})
	if err != nil {
		// Template is static; execution only fails on writer errors,
		// which cannot happen with a bytes.Buffer.
		return body.String()
	}
	return out.String()
}
