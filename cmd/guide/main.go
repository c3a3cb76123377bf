// Command guide walks RINDVERSE sessions from portal to ritual through the
// public API. It observes the session, decides the next move via Claude
// Haiku (or a deterministic fallback), and acts by posting events.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/talgya/rindverse/internal/config"
	"github.com/talgya/rindverse/internal/guide"
	"github.com/talgya/rindverse/internal/llm"
)

func main() {
	var cfg config.Guide
	if err := config.ParseEnv(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.SlogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	llmClient := llm.NewClient(cfg.AnthropicKey).WithRateLimit(cfg.LLMPerMinute)
	slog.Info("RINDVERSE guide starting",
		"api_url", cfg.APIURL,
		"llm", llmClient.Enabled(),
		"max_steps", cfg.MaxSteps,
		"interval", cfg.Interval,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	observer := guide.NewObserver(cfg.APIURL)
	actor := guide.NewActor(cfg.APIURL)
	actor.ClientID = cfg.ClientID

	// Wait for the API before the first walk; a process start does not
	// mean HTTP readiness.
	slog.Info("waiting for rindverse API...")
	if err := waitForAPI(ctx, observer, cfg.ReadyTimeout); err != nil {
		slog.Error("API not ready", "error", err)
		os.Exit(1)
	}

	g := &guide.Guide{
		Observer: observer,
		Actor:    actor,
		LLM:      llmClient,
		Memory:   guide.LoadMemory(cfg.MemoryPath),
		MaxSteps: cfg.MaxSteps,
	}

	runWalk(ctx, g, cfg.MemoryPath)
	if cfg.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			runWalk(ctx, g, cfg.MemoryPath)
		case <-ctx.Done():
			slog.Info("received signal, shutting down")
			fmt.Println("Guide stopped.")
			return
		}
	}
}

// runWalk executes one full walk and persists the guide's memory.
func runWalk(ctx context.Context, g *guide.Guide, memoryPath string) {
	res, err := g.Walk(ctx)
	if err != nil {
		slog.Error("walk failed", "error", err)
		return
	}
	slog.Info("ritual reached",
		"session", res.SessionID,
		"steps", res.Steps,
		"region", res.Region,
		"biome", res.Biome,
		"featured", res.Featured,
		"narration_source", res.Ritual.Source,
	)
	fmt.Printf("\n%s\n\n", res.Ritual.Narration)

	if memoryPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(memoryPath), 0755); err != nil {
		slog.Warn("cannot create memory dir", "error", err)
		return
	}
	if err := g.Memory.Save(memoryPath); err != nil {
		slog.Warn("failed to save guide memory", "error", err)
	}
}

// waitForAPI polls the status endpoint with exponential backoff until it
// responds or timeout passes.
func waitForAPI(ctx context.Context, o *guide.Observer, timeout time.Duration) error {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(timeout)

	for {
		if o.Ready(ctx) {
			slog.Info("rindverse API is ready")
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("no answer from %s within %s", o.BaseURL, timeout)
		}
		slog.Info("rindverse not ready, retrying...", "backoff", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
