// Package pipeline runs the full report flow: gather, enrich, write,
// format, save, deliver. Every stage degrades rather than aborts; only
// the inability to produce any report at all fails the run.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/medwatch/medwatch/internal/config"
	"github.com/medwatch/medwatch/internal/fetch"
	"github.com/medwatch/medwatch/internal/llm"
	"github.com/medwatch/medwatch/internal/mail"
	"github.com/medwatch/medwatch/internal/report"
	"github.com/medwatch/medwatch/internal/search"
)

// StepResult holds the result of a single pipeline stage.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	Steps      []StepResult
	ReportPath string
	HTMLPath   string
}

// Options control a single run.
type Options struct {
	NoEmail bool // skip delivery even when configured
	Basic   bool // force the deterministic non-AI path
}

// Pipeline wires the aggregator, completion client, report stages and
// delivery sink from configuration.
type Pipeline struct {
	cfg      *config.Config
	agg      *search.Aggregator
	enricher *fetch.Enricher
	writer   *report.Writer
	editor   *report.Editor
	sender   *mail.Sender
	opts     Options
}

// New creates a pipeline from configuration.
func New(cfg *config.Config, opts Options) *Pipeline {
	agg := search.NewAggregator(
		search.NewClient(),
		time.Duration(cfg.Search.CooldownSeconds)*time.Second,
	).WithFeeds(search.NewFeedParser())

	var gen report.Generator
	if cfg.HasAIBackend() && !opts.Basic {
		gen = llm.NewClient(
			cfg.Token(),
			cfg.LLM.Model,
			cfg.LLM.BaseURL,
			cfg.LLM.MaxRetries,
			time.Duration(cfg.LLM.BaseDelaySeconds)*time.Second,
		)
		log.Printf("AI backend: %s", cfg.LLM.Model)
	} else {
		log.Println("Running in basic mode (no AI backend)")
	}

	p := &Pipeline{
		cfg:    cfg,
		agg:    agg,
		writer: report.NewWriter(gen, cfg.Report, cfg.LLM.MaxTokens, cfg.LLM.Temperature),
		editor: report.NewEditor(gen, cfg.Report.Title, cfg.LLM.MaxTokens, cfg.LLM.Temperature),
		opts:   opts,
	}

	if cfg.Fetch.Enabled {
		p.enricher = fetch.NewEnricher(cfg.Fetch.PerCategory, time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second)
	}

	if cfg.CanSendEmail() && !opts.NoEmail {
		p.sender = mail.NewSender(
			cfg.Email.Sender,
			os.Getenv(cfg.Email.PasswordEnv),
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
		)
	} else if !opts.NoEmail {
		log.Println("Email not configured, delivery will be skipped")
	}

	return p
}

// Run executes the pipeline and returns per-stage results. A failed run
// still produces the best-effort output it could assemble.
func (p *Pipeline) Run(ctx context.Context) *Result {
	r := &Result{}

	// Stage 1: gather
	log.Println("Stage 1: Gathering news...")
	window := search.ParseWindow(p.cfg.Search.Window)
	results, stats := p.agg.Aggregate(ctx, p.cfg.Topics, p.cfg.Search.ResultsPerQuery, window)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Gather",
		Summary: fmt.Sprintf("Found %d unique articles across %d categories (%d failed searches)", stats.Articles, stats.Categories, stats.Failures),
	})

	// Stage 2: enrich
	if p.enricher != nil {
		log.Println("Stage 2: Enriching article content...")
		er := p.enricher.Enrich(results)
		r.Steps = append(r.Steps, StepResult{
			Name:    "Enrich",
			Summary: fmt.Sprintf("Fetched %d article pages, %d failed", er.Fetched, er.Failed),
		})
	} else {
		r.Steps = append(r.Steps, StepResult{Name: "Enrich", Summary: "Disabled"})
	}

	// Stage 3: report
	log.Println("Stage 3: Writing report...")
	textReport := p.writer.Write(ctx, results, p.cfg.Topics)
	if textReport == "" {
		r.Steps = append(r.Steps, StepResult{Name: "Report", Err: fmt.Errorf("no report could be assembled")})
		return r
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Report",
		Summary: fmt.Sprintf("Report written (%d bytes)", len(textReport)),
	})

	// Stage 4: format
	log.Println("Stage 4: Formatting HTML...")
	htmlReport := p.editor.Render(ctx, textReport)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Format",
		Summary: fmt.Sprintf("HTML formatted (%d bytes)", len(htmlReport)),
	})

	// Stage 5: save
	log.Println("Stage 5: Saving reports...")
	step := p.save(r, textReport, htmlReport)
	r.Steps = append(r.Steps, step)

	// Stage 6: deliver
	if p.sender != nil {
		log.Println("Stage 6: Sending email...")
		err := p.sender.SendReport(htmlReport, p.cfg.Email.Recipients, p.cfg.Email.SubjectTemplate)
		if err != nil {
			log.Printf("Email delivery failed: %v", err)
			r.Steps = append(r.Steps, StepResult{Name: "Deliver", Err: err})
		} else {
			r.Steps = append(r.Steps, StepResult{
				Name:    "Deliver",
				Summary: fmt.Sprintf("Sent to %d recipient(s)", len(p.cfg.Email.Recipients)),
			})
		}
	} else {
		r.Steps = append(r.Steps, StepResult{Name: "Deliver", Summary: "Skipped (email not configured)"})
	}

	return r
}

func (p *Pipeline) save(r *Result, textReport, htmlReport string) StepResult {
	dir := p.cfg.Output.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return StepResult{Name: "Save", Err: fmt.Errorf("creating output directory: %w", err)}
	}

	stamp := time.Now().Format("20060102_150405")

	reportPath := filepath.Join(dir, "report_"+stamp+".md")
	if err := os.WriteFile(reportPath, []byte(textReport), 0o644); err != nil {
		return StepResult{Name: "Save", Err: fmt.Errorf("writing report: %w", err)}
	}
	r.ReportPath = reportPath

	htmlPath := filepath.Join(dir, "report_"+stamp+".html")
	if err := os.WriteFile(htmlPath, []byte(htmlReport), 0o644); err != nil {
		return StepResult{Name: "Save", Err: fmt.Errorf("writing HTML report: %w", err)}
	}
	r.HTMLPath = htmlPath

	return StepResult{Name: "Save", Summary: fmt.Sprintf("Saved %s and %s", reportPath, htmlPath)}
}
