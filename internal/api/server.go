// Package api provides the HTTP API for the cheese catalog and the
// RINDVERSE. GET endpoints are public; session events and preferences are
// open to any visitor; admin POSTs require a bearer token.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/rindverse/internal/catalog"
	"github.com/talgya/rindverse/internal/llm"
	"github.com/talgya/rindverse/internal/persistence"
	"github.com/talgya/rindverse/internal/weather"
)

// Server serves the catalog and RINDVERSE sessions over HTTP.
type Server struct {
	Catalog      *catalog.Catalog
	DB           *persistence.DB // optional; nil disables preferences storage and the journey log
	LLM          *llm.Client     // optional; nil uses fallback narration
	Weather      *weather.Client // optional; nil serves seasonal defaults
	Sessions     *SessionStore
	Port         int
	AdminKey     string   // Bearer token for admin POSTs. Empty = admin disabled.
	CORSOrigins  []string // Extra allowed origins beyond localhost dev servers.
	MaxClipBytes uint64   // Largest ambient WAV served. 0 = unlimited.

	started time.Time
}

// Handler builds the routed, middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	if s.started.IsZero() {
		s.started = time.Now()
	}
	if s.Sessions == nil {
		s.Sessions = NewSessionStore(30*time.Minute, 1000)
	}
	if s.Catalog != nil {
		s.Sessions.UseLookup(s.Catalog.FlavorNotes)
	}

	ritualLimiter := NewRateLimiter(20, time.Hour)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/status", s.handleStatus)

	// Catalog.
	mux.HandleFunc("GET /api/v1/cheeses", s.handleCheeses)
	mux.HandleFunc("GET /api/v1/cheeses/facets", s.handleFacets)
	mux.HandleFunc("GET /api/v1/cheeses/{id}", s.handleCheeseDetail)

	// Synesthesia and sound.
	mux.HandleFunc("GET /api/v1/synesthesia", s.handleSynesthesia)
	mux.HandleFunc("GET /api/v1/synesthesia/blend", s.handleBlend)
	mux.HandleFunc("GET /api/v1/ambient.wav", s.handleAmbient)
	mux.HandleFunc("GET /api/v1/tap.wav", s.handleTap)

	// RINDVERSE.
	mux.HandleFunc("GET /api/v1/regions", s.handleRegions)
	mux.HandleFunc("GET /api/v1/regions/{key}/weather", s.handleRegionWeather)
	mux.HandleFunc("POST /api/v1/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/v1/sessions/{id}", s.handleSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/events", s.handleSessionEvent)
	mux.HandleFunc("GET /api/v1/sessions/{id}/ritual", RateLimitMiddleware(ritualLimiter, s.handleRitual))
	mux.HandleFunc("GET /api/v1/sessions/{id}/journey", s.handleSessionJourney)
	mux.HandleFunc("GET /api/v1/journeys", s.handleJourneys)

	// Preferences.
	mux.HandleFunc("POST /api/v1/clients", s.handleNewClient)
	mux.HandleFunc("GET /api/v1/preferences/{client}", s.handleGetPreferences)
	mux.HandleFunc("PUT /api/v1/preferences/{client}", s.handlePutPreferences)

	// Admin.
	mux.HandleFunc("POST /api/v1/sessions/sweep", s.adminOnly(s.handleSweep))

	return logMiddleware(corsMiddleware(s.CORSOrigins, mux))
}

// Start begins serving in a goroutine and returns the server for shutdown.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "llm", s.LLM.Enabled(), "weather", s.Weather.Enabled(), "db", s.DB != nil)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(extra []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range extra {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"ip", clientIP(r),
		)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no RINDVERSE_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"name":     "Rindverse",
		"started":  humanize.Time(s.started),
		"cheeses":  s.Catalog.Len(),
		"sessions": s.Sessions.Len(),
		"llm":      s.LLM.Enabled(),
		"weather":  s.Weather.Enabled(),
		"db":       s.DB != nil,
	}
	if s.MaxClipBytes > 0 {
		status["max_clip"] = humanize.Bytes(s.MaxClipBytes)
	}
	if s.DB != nil {
		if n, err := s.DB.RitualCount(); err == nil {
			status["rituals"] = n
		} else {
			slog.Warn("ritual count failed", "error", err)
		}
	}
	writeJSON(w, status)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	removed := s.Sessions.Sweep()
	slog.Info("sessions swept by admin", "removed", removed)
	writeJSON(w, map[string]int{"removed": removed, "remaining": s.Sessions.Len()})
}

// queryInt reads a positive integer query parameter, falling back to def
// and capping at max.
func queryInt(r *http.Request, key string, def, max int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("write json failed", "error", err)
	}
}
