// Package mail delivers the HTML report by SMTP. Recipients go on BCC;
// a plaintext alternative is derived from the HTML body.
package mail

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// Sender sends reports through an authenticated SMTP server.
type Sender struct {
	sender   string
	password string
	host     string
	port     int
}

// NewSender creates an SMTP sender.
func NewSender(sender, password, host string, port int) *Sender {
	return &Sender{sender: sender, password: password, host: host, port: port}
}

// SendReport sends the HTML report to the recipients. The subject
// template's {date} placeholder is replaced with the current date.
func (s *Sender) SendReport(htmlReport string, recipients []string, subjectTemplate string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	subject := strings.ReplaceAll(subjectTemplate, "{date}", time.Now().Format("January 02, 2006"))

	msg := gomail.NewMsg()
	if err := msg.From(s.sender); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	// To mirrors the sender; the real recipients stay private on BCC.
	if err := msg.To(s.sender); err != nil {
		return fmt.Errorf("setting to: %w", err)
	}
	if err := msg.Bcc(recipients...); err != nil {
		return fmt.Errorf("setting recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, HTMLToPlainText(htmlReport))
	msg.AddAlternativeString(gomail.TypeTextHTML, htmlReport)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.sender),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending report: %w", err)
	}
	return nil
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	blankLinePattern  = regexp.MustCompile(`\n\s*\n`)
	multiSpacePattern = regexp.MustCompile(` +`)
)

// HTMLToPlainText strips markup for the plaintext alternative part.
func HTMLToPlainText(h string) string {
	text := tagPattern.ReplaceAllString(h, "")
	text = html.UnescapeString(text)
	text = blankLinePattern.ReplaceAllString(text, "\n\n")
	text = multiSpacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
