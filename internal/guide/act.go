package guide

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/rindverse/internal/rindverse"
)

// Ritual is the response from GET /api/v1/sessions/{id}/ritual.
type Ritual struct {
	Featured  string `json:"featured"`
	Narration string `json:"narration"`
	Source    string `json:"source"`
}

// Actor drives a session through the public API.
type Actor struct {
	BaseURL    string
	ClientID   string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL.
func NewActor(baseURL string) *Actor {
	return &Actor{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// StartSession opens a new session at the portal.
func (a *Actor) StartSession(ctx context.Context) (*SessionView, error) {
	var body any
	if a.ClientID != "" {
		body = map[string]string{"client_id": a.ClientID}
	}
	var view SessionView
	if err := a.do(ctx, "POST", "/api/v1/sessions", body, http.StatusCreated, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Send posts one navigator event and returns the updated session.
func (a *Actor) Send(ctx context.Context, sessionID string, ev rindverse.Event) (*SessionView, error) {
	var view SessionView
	if err := a.do(ctx, "POST", "/api/v1/sessions/"+sessionID+"/events", ev, http.StatusOK, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Ritual fetches the ritual narration once the session reached it.
func (a *Actor) Ritual(ctx context.Context, sessionID string) (*Ritual, error) {
	var r Ritual
	if err := a.do(ctx, "GET", "/api/v1/sessions/"+sessionID+"/ritual", nil, http.StatusOK, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (a *Actor) do(ctx context.Context, method, path string, payload any, want int, target any) error {
	var reqBody io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", path, err)
		}
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%s %s failed (%d): %s", method, path, resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
