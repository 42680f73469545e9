package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	return s, dir
}

func get(t *testing.T, s *Server, path string) (int, string) {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestIndexEmpty(t *testing.T) {
	s, _ := newTestServer(t)
	code, body := get(t, s, "/")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(body, "No reports yet") {
		t.Errorf("expected empty state, got %s", body)
	}
}

func TestIndexListsReports(t *testing.T) {
	s, dir := newTestServer(t)
	os.WriteFile(filepath.Join(dir, "report_20260830_080000.md"), []byte("# Report"), 0o644)
	os.WriteFile(filepath.Join(dir, "report_20260830_080000.html"), []byte("<html></html>"), 0o644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0o644)

	code, body := get(t, s, "/")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(body, "report_20260830_080000.md") {
		t.Error("markdown report not listed")
	}
	if !strings.Contains(body, "report_20260830_080000.html") {
		t.Error("html report not listed")
	}
	if strings.Contains(body, "notes.txt") {
		t.Error("non-report files must not be listed")
	}
}

func TestReportRendersMarkdown(t *testing.T) {
	s, dir := newTestServer(t)
	os.WriteFile(filepath.Join(dir, "report_1.md"), []byte("# Heading\n\ntext"), 0o644)

	code, body := get(t, s, "/report/report_1.md")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(body, "<h1") || !strings.Contains(body, "Heading") {
		t.Errorf("markdown not rendered: %s", body)
	}
}

func TestReportServesHTMLAsStored(t *testing.T) {
	s, dir := newTestServer(t)
	stored := "<!DOCTYPE html><html><body>stored</body></html>"
	os.WriteFile(filepath.Join(dir, "report_1.html"), []byte(stored), 0o644)

	code, body := get(t, s, "/report/report_1.html")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body != stored {
		t.Errorf("HTML must be served unmodified, got %s", body)
	}
}

func TestReportRejectsTraversal(t *testing.T) {
	s, dir := newTestServer(t)
	os.WriteFile(filepath.Join(dir, "secret.md"), []byte("secret"), 0o644)

	code, _ := get(t, s, "/report/secret.md")
	if code != http.StatusNotFound {
		t.Errorf("expected 404 for non-report file, got %d", code)
	}

	code, _ = get(t, s, "/report/../secret.md")
	if code != http.StatusNotFound && code != http.StatusBadRequest && code != http.StatusMovedPermanently {
		t.Errorf("expected traversal to be rejected, got %d", code)
	}
}

func TestUnknownPath(t *testing.T) {
	s, _ := newTestServer(t)
	code, _ := get(t, s, "/nope")
	if code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}
