package llm

import "fmt"

// ErrorKind classifies terminal completion failures. The pipeline decides
// between the AI and the deterministic report path based on the kind.
type ErrorKind int

const (
	// ProviderError covers transport failures and unexpected HTTP statuses.
	ProviderError ErrorKind = iota
	// RateLimitExhausted means every attempt in the retry budget hit a 429.
	RateLimitExhausted
	// InvalidCredentials means the backend rejected the token (401).
	InvalidCredentials
	// AccessDenied means the token lacks model access (403).
	AccessDenied
	// MalformedResponse means a 2xx response body could not be used.
	MalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case RateLimitExhausted:
		return "rate limit exhausted"
	case InvalidCredentials:
		return "invalid credentials"
	case AccessDenied:
		return "access denied"
	case MalformedResponse:
		return "malformed response"
	default:
		return "provider error"
	}
}

// Error is a terminal completion failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf returns the error kind of err, or ProviderError if err is not
// a completion error.
func KindOf(err error) ErrorKind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ProviderError
}
