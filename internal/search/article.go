package search

// Article is a single news result. Link is the identity used for
// deduplication; articles are never modified after aggregation.
type Article struct {
	Title       string
	Link        string
	Snippet     string
	Source      string
	PublishedAt string // RFC 3339 or empty
	Category    string
}

// Window is the search lookback period.
type Window string

const (
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

// ParseWindow maps a config string to a Window, defaulting to week.
func ParseWindow(s string) Window {
	switch s {
	case "day":
		return WindowDay
	case "month":
		return WindowMonth
	default:
		return WindowWeek
	}
}

// param returns the provider's time-limit parameter value.
func (w Window) param() string {
	switch w {
	case WindowDay:
		return "d"
	case WindowMonth:
		return "m"
	default:
		return "w"
	}
}

// Days returns the window length in days, used to bound feed entries.
func (w Window) Days() int {
	switch w {
	case WindowDay:
		return 1
	case WindowMonth:
		return 30
	default:
		return 7
	}
}
