package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/rindverse/internal/persistence"
	"github.com/talgya/rindverse/internal/settings"
)

func validClientID(id string) bool {
	return uuid.Validate(id) == nil
}

// prefersReducedMotion reads the Sec-CH-Prefers-Reduced-Motion client hint.
func prefersReducedMotion(r *http.Request) bool {
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("Sec-CH-Prefers-Reduced-Motion")), "reduce")
}

// preferencesFor loads stored preferences, falling back to defaults when
// the client is unknown or storage is unavailable. Defaults honor the
// request's reduced-motion hint. The time is zero when nothing was stored.
func (s *Server) preferencesFor(r *http.Request, clientID string) (settings.Preferences, time.Time) {
	defaults := settings.DefaultsFor(prefersReducedMotion(r))
	if clientID == "" || s.DB == nil {
		return defaults, time.Time{}
	}
	p, updated, err := s.DB.LoadPreferences(clientID)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			slog.Warn("preferences load failed", "client", clientID, "error", err)
		}
		return defaults, time.Time{}
	}
	return p, updated
}

func preferencesResponse(clientID string, p settings.Preferences, updated time.Time) map[string]any {
	resp := map[string]any{
		"client_id":    clientID,
		"preferences":  p,
		"motion_scale": p.MotionScale(),
		"stored":       !updated.IsZero(),
	}
	if !updated.IsZero() {
		resp["updated"] = humanize.Time(updated)
	}
	return resp
}

func (s *Server) handleNewClient(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	writeJSONStatus(w, http.StatusCreated, preferencesResponse(id, settings.DefaultsFor(prefersReducedMotion(r)), time.Time{}))
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	clientID := r.PathValue("client")
	if !validClientID(clientID) {
		http.Error(w, "invalid client id", http.StatusBadRequest)
		return
	}
	p, updated := s.preferencesFor(r, clientID)
	writeJSON(w, preferencesResponse(clientID, p, updated))
}

// handlePutPreferences merges the body over the current preferences, so a
// client may send only the flags it changes.
func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	clientID := r.PathValue("client")
	if !validClientID(clientID) {
		http.Error(w, "invalid client id", http.StatusBadRequest)
		return
	}

	p, _ := s.preferencesFor(r, clientID)
	r.Body = http.MaxBytesReader(w, r.Body, 4<<10)
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := p.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var updated time.Time
	if s.DB != nil {
		if err := s.DB.SavePreferences(clientID, p); err != nil {
			slog.Warn("preferences save failed", "client", clientID, "error", err)
		} else {
			updated = time.Now()
		}
	}
	slog.Info("preferences updated", "client", clientID, "sound", p.Sound, "motion", p.Motion, "quality", p.Quality, "stored", !updated.IsZero())
	writeJSON(w, preferencesResponse(clientID, p, updated))
}
