// Package guide implements the autonomous RINDVERSE companion.
// It observes a session via the API, decides the next event via Haiku or a
// deterministic fallback, and acts by posting events until the ritual.
package guide

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/rindverse/internal/rindverse"
)

// SessionView mirrors GET /api/v1/sessions/{id}.
type SessionView struct {
	ID    string       `json:"id"`
	State SessionState `json:"state"`
	Notes []string     `json:"notes"`
	Synesthesia struct {
		Palette struct {
			A string `json:"a"`
		} `json:"palette"`
	} `json:"synesthesia"`
	Render string `json:"render"`
}

// SessionState mirrors the navigator snapshot. Step arrives as its name.
type SessionState struct {
	Step           string                    `json:"step"`
	Region         *rindverse.Region         `json:"region"`
	Biome          *rindverse.Biome          `json:"biome"`
	Featured       *rindverse.FeaturedCheese `json:"featured"`
	CanEnterRitual bool                      `json:"can_enter_ritual"`
	Events         []string                  `json:"events"`
}

// RegionInfo mirrors items from GET /api/v1/regions.
type RegionInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Biomes      []struct {
		Key    string `json:"key"`
		Name   string `json:"name"`
		Accent string `json:"accent"`
	} `json:"biomes"`
}

// Snapshot holds what one observation collected.
type Snapshot struct {
	Session SessionView
	Regions []RegionInfo
}

// Observer fetches session state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches the session and, on the globe, the region list.
func (o *Observer) Observe(ctx context.Context, sessionID string) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := o.fetchJSON(ctx, "/api/v1/sessions/"+sessionID, &snap.Session); err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}
	if snap.Session.State.Step == rindverse.StepGlobe.String() {
		if err := o.fetchJSON(ctx, "/api/v1/regions", &snap.Regions); err != nil {
			return nil, fmt.Errorf("fetch regions: %w", err)
		}
	}
	return snap, nil
}

// Ready reports whether GET /api/v1/status answers 200.
func (o *Observer) Ready(ctx context.Context) bool {
	var status map[string]any
	return o.fetchJSON(ctx, "/api/v1/status", &status) == nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", o.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
