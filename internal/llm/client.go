// Package llm talks to Claude Haiku for the two places RINDVERSE wants
// prose: the tasting ritual's narration and the guide's next move. A nil
// or keyless client is valid and reports itself disabled, so callers fall
// back to their scripted text.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

var (
	ErrDisabled    = errors.New("LLM client not configured")
	ErrRateLimited = errors.New("LLM rate limit exceeded")
)

const (
	defaultURL = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	model      = "claude-haiku-4-5-20251001"

	// DefaultPerMinute bounds narration calls when no budget is configured.
	DefaultPerMinute = 20
)

// budget is a fixed one-minute window of allowed calls. A ritual request
// that finds it spent gets ErrRateLimited and narrates from the fallback.
type budget struct {
	mu      sync.Mutex
	perMin  int
	used    int
	resetAt time.Time
	now     func() time.Time
}

func (b *budget) take() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.now()
	if !t.Before(b.resetAt) {
		b.used = 0
		b.resetAt = t.Add(time.Minute)
	}
	if b.used >= b.perMin {
		return fmt.Errorf("%w (%d calls/min)", ErrRateLimited, b.perMin)
	}
	b.used++
	return nil
}

// Client sends single-turn prompts to the Messages API.
type Client struct {
	apiKey     string
	url        string
	httpClient *http.Client
	budget     *budget
}

// NewClient returns nil when apiKey is empty.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey:     apiKey,
		url:        defaultURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		budget:     &budget{perMin: DefaultPerMinute, now: time.Now},
	}
}

// WithURL points the client at another Messages endpoint (tests, proxies).
func (c *Client) WithURL(url string) *Client {
	if c != nil {
		c.url = url
	}
	return c
}

// WithRateLimit sets the calls-per-minute budget. Values below one keep
// the current budget.
func (c *Client) WithRateLimit(perMin int) *Client {
	if c != nil && perMin > 0 {
		c.budget.mu.Lock()
		c.budget.perMin = perMin
		c.budget.mu.Unlock()
	}
	return c
}

// Enabled reports whether calls will be attempted.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type response struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete sends system and userPrompt as one turn and returns the first
// text block of the reply.
func (c *Client) Complete(ctx context.Context, system, userPrompt string, maxTokens int) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	if err := c.budget.take(); err != nil {
		return "", err
	}

	body, err := json.Marshal(request{
		Model:     model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []Message{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("API call: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(out.Content) == 0 {
		return "", errors.New("empty response")
	}

	slog.Debug("haiku call",
		"input_tokens", out.Usage.InputTokens,
		"output_tokens", out.Usage.OutputTokens,
	)
	return out.Content[0].Text, nil
}
