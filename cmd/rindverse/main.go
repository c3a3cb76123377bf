// Command rindverse serves the cheese catalog, the synesthesia mapper and
// RINDVERSE navigator sessions over HTTP.
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

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/rindverse/internal/api"
	"github.com/talgya/rindverse/internal/catalog"
	"github.com/talgya/rindverse/internal/config"
	"github.com/talgya/rindverse/internal/llm"
	"github.com/talgya/rindverse/internal/persistence"
	"github.com/talgya/rindverse/internal/weather"
)

func main() {
	var cfg config.Server
	if err := config.ParseEnv(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	maxClip, err := cfg.MaxClipBytes()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.SlogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("RINDVERSE: cheese catalog and synesthesia server")

	// ── Catalog ───────────────────────────────────────────────────────
	cat, err := catalog.LoadBundled()
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	facets := cat.Facets()
	slog.Info("catalog loaded",
		"cheeses", humanize.Comma(int64(cat.Len())),
		"countries", len(facets.Countries),
		"milks", len(facets.Milks),
	)

	// ── Database (optional) ───────────────────────────────────────────
	db := openDB(cfg.DBPath)
	if db != nil {
		defer db.Close()
	}

	// ── LLM Client ───────────────────────────────────────────────────
	llmClient := llm.NewClient(cfg.AnthropicKey).WithRateLimit(cfg.LLMPerMinute)
	if llmClient != nil {
		slog.Info("LLM client enabled (Haiku)")
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set, ritual narration will use fallback text")
	}

	// ── Weather (optional) ───────────────────────────────────────────
	weatherClient := weather.NewClient(cfg.WeatherKey)
	if weatherClient == nil {
		slog.Info("OPENWEATHER_API_KEY not set, regions use seasonal ambience")
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("RINDVERSE_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions := api.NewSessionStore(cfg.SessionTTL, cfg.MaxSessions)

	apiServer := &api.Server{
		Catalog:      cat,
		DB:           db,
		LLM:          llmClient,
		Weather:      weatherClient,
		Sessions:     sessions,
		Port:         cfg.Port,
		AdminKey:     cfg.AdminKey,
		CORSOrigins:  cfg.CORSOrigins,
		MaxClipBytes: maxClip,
	}
	srv := apiServer.Start()

	fmt.Printf("\nRINDVERSE is open: %d cheeses, sessions idle out after %s.\n", cat.Len(), cfg.SessionTTL)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions.Run(gctx, time.Minute)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("received signal, shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	fmt.Println("RINDVERSE closed.")
}

// openDB opens the preferences and journey store. Failure is not fatal:
// the server runs without persistence.
func openDB(path string) *persistence.DB {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			slog.Warn("cannot create data dir, running without database", "dir", dir, "error", err)
			return nil
		}
	}
	db, err := persistence.Open(path)
	if err != nil {
		slog.Warn("failed to open database, running without persistence", "path", path, "error", err)
		return nil
	}

	if last, err := db.GetMeta("last_start"); err == nil {
		if t, err := time.Parse(time.RFC3339, last); err == nil {
			slog.Info("previous start", "when", humanize.Time(t))
		}
	}
	if err := db.MarkStarted(time.Now()); err != nil {
		slog.Warn("failed to record start", "error", err)
	}
	starts, _ := db.GetMeta("starts")
	slog.Info("database opened", "path", path, "starts", starts)
	return db
}
