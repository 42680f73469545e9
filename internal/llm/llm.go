package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Request describes a single completion call.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Client calls a chat-completions endpoint with bounded retries. Rate
// limits are retried with a growing delay; every other failure class is
// terminal on first occurrence. The client holds no per-call state, so a
// single instance is safe to reuse across sequential calls.
type Client struct {
	token      string
	model      string
	baseURL    string
	maxRetries int
	baseDelay  time.Duration
	client     *http.Client
	sleep      func(time.Duration)
}

// NewClient creates a completion client. maxRetries and baseDelay fall
// back to 3 attempts and 5s when zero.
func NewClient(token, model, baseURL string, maxRetries int, baseDelay time.Duration) *Client {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if baseDelay <= 0 {
		baseDelay = 5 * time.Second
	}
	return &Client{
		token:      token,
		model:      model,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		client:     &http.Client{Timeout: 120 * time.Second},
		sleep:      time.Sleep,
	}
}

// IsConfigured reports whether a token is available.
func (c *Client) IsConfigured() bool {
	return c.token != ""
}

// Complete sends the request and returns the generated text. At most
// maxRetries attempts are made; only 429 responses are retried, after a
// delay of baseDelay * attempt * 2 which grows without cap.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	var messages []map[string]string
	if req.System != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.Prompt})

	body := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"max_tokens":  req.MaxTokens,
		"temperature": req.Temperature,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", &Error{Kind: ProviderError, Message: fmt.Sprintf("marshaling request: %v", err)}
	}

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		text, retry, err := c.attempt(ctx, data)
		if err == nil {
			return text, nil
		}
		if !retry {
			return "", err
		}
		if attempt == c.maxRetries {
			return "", &Error{
				Kind:    RateLimitExhausted,
				Message: fmt.Sprintf("rate limited on all %d attempts", c.maxRetries),
			}
		}

		delay := c.baseDelay * time.Duration(attempt) * 2
		log.Printf("Rate limited. Waiting %s (attempt %d/%d)", delay, attempt, c.maxRetries)
		c.sleep(delay)

		// Cancellation is observed between attempts, never mid-request.
		if ctx.Err() != nil {
			return "", &Error{Kind: ProviderError, Message: ctx.Err().Error()}
		}
	}

	return "", &Error{Kind: ProviderError, Message: "no attempts made"}
}

// attempt performs one HTTP round trip. retry is true only for 429.
func (c *Client) attempt(ctx context.Context, payload []byte) (text string, retry bool, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", false, &Error{Kind: ProviderError, Message: fmt.Sprintf("creating request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", false, &Error{Kind: ProviderError, Message: fmt.Sprintf("completion request: %v", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// fall through to decode
	case resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return "", true, &Error{Kind: RateLimitExhausted, Message: "rate limited"}
	case resp.StatusCode == http.StatusUnauthorized:
		return "", false, &Error{Kind: InvalidCredentials, Message: "backend rejected the token"}
	case resp.StatusCode == http.StatusForbidden:
		return "", false, &Error{Kind: AccessDenied, Message: "token lacks access to the model"}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", false, &Error{
			Kind:    ProviderError,
			Message: fmt.Sprintf("backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", false, &Error{Kind: MalformedResponse, Message: fmt.Sprintf("decoding response: %v", err)}
	}
	if len(result.Choices) == 0 {
		return "", false, &Error{Kind: MalformedResponse, Message: "no choices in response"}
	}

	return result.Choices[0].Message.Content, false, nil
}
