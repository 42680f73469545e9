// Package server serves generated reports from the output directory for
// local preview. It is read-only: the pipeline owns the files.
package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
)

//go:embed templates/*.html
var templateFS embed.FS

var md = goldmark.New()

// ReportFile is one saved report in the output directory.
type ReportFile struct {
	Name     string
	Kind     string // "html" or "markdown"
	Modified time.Time
}

// Server is the HTTP server for previewing saved reports.
type Server struct {
	dir   string
	pages map[string]*template.Template
	mux   *http.ServeMux
}

// New creates a new Server over an output directory.
func New(outputDir string) (*Server, error) {
	funcMap := template.FuncMap{
		"formatTime": func(t time.Time) string { return t.Format("Jan 02, 2006 15:04") },
	}

	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	pageNames := []string{"index.html", "report.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{dir: outputDir, pages: pages, mux: http.NewServeMux()}
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/report/", s.handleReport)
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Serve starts the server on the given port.
func Serve(outputDir string, port int) error {
	s, err := New(outputDir)
	if err != nil {
		return err
	}
	addr := fmt.Sprintf(":%d", port)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	reports, err := s.listReports()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "index.html", map[string]any{
		"Reports": reports,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/report/")
	if name == "" || name != filepath.Base(name) || !strings.HasPrefix(name, "report_") {
		http.NotFound(w, r)
		return
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if strings.HasSuffix(name, ".html") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
		return
	}

	var body bytes.Buffer
	if err := md.Convert(data, &body); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "report.html", map[string]any{
		"Name": name,
		"Body": template.HTML(body.String()),
	})
}

func (s *Server) listReports() ([]ReportFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var reports []ReportFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "report_") {
			continue
		}

		kind := ""
		switch {
		case strings.HasSuffix(name, ".html"):
			kind = "html"
		case strings.HasSuffix(name, ".md"):
			kind = "markdown"
		default:
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		reports = append(reports, ReportFile{Name: name, Kind: kind, Modified: info.ModTime()})
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Modified.After(reports[j].Modified) })
	return reports, nil
}

func (s *Server) render(w http.ResponseWriter, page string, data map[string]any) {
	tmpl, ok := s.pages[page]
	if !ok {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		log.Printf("Template error for %s: %v", page, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
