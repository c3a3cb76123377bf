package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func fakeAPI(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			http.Error(w, "bad key", http.StatusUnauthorized)
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) != 1 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"text": reply}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNilClientIsDisabled(t *testing.T) {
	var c *Client
	if c.Enabled() {
		t.Fatal("nil client should be disabled")
	}
	if NewClient("") != nil {
		t.Fatal("empty key should yield nil client")
	}
	if _, err := NarrateRitual(context.Background(), c, RitualContext{}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("err=%v", err)
	}
}

func TestNarrateRitual(t *testing.T) {
	srv := fakeAPI(t, "  Breathe, and taste the plateau.  ")
	c := NewClient("test-key").WithURL(srv.URL)
	got, err := NarrateRitual(context.Background(), c, RitualContext{Cheese: "Manchego", Region: "Spain", Biome: "Mediterranean Coast"})
	if err != nil {
		t.Fatalf("narrate: %v", err)
	}
	if got != "Breathe, and taste the plateau." {
		t.Fatalf("got %q", got)
	}
}

func TestCompleteRateLimit(t *testing.T) {
	srv := fakeAPI(t, "ok")
	c := NewClient("test-key").WithURL(srv.URL).WithRateLimit(1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.budget.now = func() time.Time { return now }

	if _, err := c.Complete(context.Background(), "", "hi", 10); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := c.Complete(context.Background(), "", "hi", 10); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("second call err=%v", err)
	}
	if _, err := NarrateRitual(context.Background(), c, RitualContext{Cheese: "Comté"}); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("ritual inside spent window err=%v", err)
	}

	now = now.Add(time.Minute)
	if _, err := c.Complete(context.Background(), "", "hi", 10); err != nil {
		t.Fatalf("call after window reset: %v", err)
	}
}

func TestWithRateLimitIgnoresNonPositive(t *testing.T) {
	c := NewClient("test-key").WithRateLimit(0)
	if c.budget.perMin != DefaultPerMinute {
		t.Fatalf("perMin=%d, want %d", c.budget.perMin, DefaultPerMinute)
	}
	var nilClient *Client
	if nilClient.WithRateLimit(5) != nil {
		t.Fatal("nil client should stay nil")
	}
}

func TestChooseOption(t *testing.T) {
	opts := []Option{{Key: "spain", Label: "Spain"}, {Key: "france", Label: "France"}}

	srv := fakeAPI(t, "`France`")
	got, err := ChooseOption(context.Background(), NewClient("test-key").WithURL(srv.URL), "pick", opts)
	if err != nil || got != "france" {
		t.Fatalf("got %q err=%v", got, err)
	}

	bad := fakeAPI(t, "Atlantis")
	if _, err := ChooseOption(context.Background(), NewClient("test-key").WithURL(bad.URL), "pick", opts); err == nil {
		t.Fatal("expected error for off-list choice")
	}
}

func TestFallbackRitual(t *testing.T) {
	got := FallbackRitual(RitualContext{
		Cheese: "Comté", Region: "France", Biome: "Alpine Pastures",
		Notes: []string{"brown butter", "hazelnut", "crystals"},
	})
	for _, want := range []string{"Alpine Pastures in France", "Comté", "brown butter, hazelnut and crystals", "taste."} {
		if !strings.Contains(got, want) {
			t.Fatalf("%q missing %q", got, want)
		}
	}
	if got := FallbackRitual(RitualContext{Cheese: "X"}); !strings.Contains(got, "its quiet character") {
		t.Fatalf("no-notes fallback=%q", got)
	}
}
