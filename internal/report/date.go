package report

import (
	"strings"
	"time"
)

const noDate = "Date not available"

var dateOnlyFormats = []string{"2006-01-02", "02/01/2006", "01/02/2006"}

// FormatArticleDate converts provider date strings into a readable form:
// ISO 8601 timestamps become "Jan 23, 2026 - 5:55 PM", date-only values
// become "Jan 23, 2026". Unparseable strings pass through unchanged.
func FormatArticleDate(dateStr string) string {
	if dateStr == "" || dateStr == noDate {
		return noDate
	}

	if strings.Contains(dateStr, "T") {
		s := dateStr
		if i := strings.LastIndex(s, "+"); i > 0 {
			s = s[:i]
		} else if strings.HasSuffix(s, "Z") {
			s = s[:len(s)-1]
		}
		if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
			return t.Format("Jan 02, 2006 - 3:04 PM")
		}
		return dateStr
	}

	for _, layout := range dateOnlyFormats {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t.Format("Jan 02, 2006")
		}
	}
	return dateStr
}
