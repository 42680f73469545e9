package mail

import (
	"strings"
	"testing"
)

func TestHTMLToPlainText(t *testing.T) {
	in := `<html><body>
<h1>Report</h1>
<p>Siemens &amp; GE announced   a &quot;major&quot; deal.</p>


<a href="https://example.com">Read more</a>
</body></html>`

	got := HTMLToPlainText(in)

	if strings.Contains(got, "<") {
		t.Errorf("tags must be stripped: %q", got)
	}
	if !strings.Contains(got, `Siemens & GE announced a "major" deal.`) {
		t.Errorf("entities not unescaped or spaces not collapsed: %q", got)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("blank runs must collapse: %q", got)
	}
	if strings.HasPrefix(got, "\n") || strings.HasSuffix(got, "\n") {
		t.Errorf("result must be trimmed: %q", got)
	}
}

func TestHTMLToPlainTextEmpty(t *testing.T) {
	if got := HTMLToPlainText(""); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}

func TestSendReportNoRecipients(t *testing.T) {
	s := NewSender("from@example.com", "pw", "smtp.example.com", 587)
	if err := s.SendReport("<html></html>", nil, "Subject - {date}"); err == nil {
		t.Fatal("expected error with no recipients")
	}
}
