package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/rindverse/internal/llm"
	"github.com/talgya/rindverse/internal/persistence"
	"github.com/talgya/rindverse/internal/rindverse"
	"github.com/talgya/rindverse/internal/settings"
	"github.com/talgya/rindverse/internal/synesthesia"
	"github.com/talgya/rindverse/internal/weather"
)

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	type biomeEntry struct {
		Key         string   `json:"key"`
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Featured    []string `json:"featured"`
		Accent      string   `json:"accent"`
	}
	type regionEntry struct {
		Key         string         `json:"key"`
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Marker      rindverse.Vec3 `json:"marker"`
		Biomes      []biomeEntry   `json:"biomes"`
	}

	result := make([]regionEntry, 0, len(rindverse.Regions))
	for i := range rindverse.Regions {
		reg := &rindverse.Regions[i]
		entry := regionEntry{Key: reg.Key, Name: reg.Name, Description: reg.Description, Marker: reg.Marker()}
		for j := range reg.Biomes {
			b := &reg.Biomes[j]
			be := biomeEntry{Key: b.Key, Name: b.Name, Description: b.Description}
			for _, fc := range b.Featured {
				be.Featured = append(be.Featured, fc.ID)
			}
			if fc := b.DefaultEntry(); fc != nil {
				be.Accent = synesthesia.Compute(fc.FlavorNotes).Palette.A.CSS()
			}
			entry.Biomes = append(entry.Biomes, be)
		}
		result = append(result, entry)
	}
	writeJSON(w, result)
}

// ambienceFor returns live weather ambience for the region, or the seasonal
// default when weather is off or failing.
func (s *Server) ambienceFor(ctx context.Context, reg *rindverse.Region) weather.Ambience {
	month := time.Now().Month()
	if !s.Weather.Enabled() {
		return weather.MapToAmbience(nil, month)
	}
	c, err := s.Weather.Fetch(ctx, reg.Lat, reg.Lon)
	if err != nil {
		slog.Warn("weather fetch failed", "region", reg.Key, "error", err)
	}
	return weather.MapToAmbience(c, month)
}

func (s *Server) handleRegionWeather(w http.ResponseWriter, r *http.Request) {
	reg := rindverse.FindRegion(r.PathValue("key"))
	if reg == nil {
		http.Error(w, "region not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"region":   reg.Key,
		"ambience": s.ambienceFor(r.Context(), reg),
	})
}

// canvas is how the client should set up the scene canvas.
type canvas struct {
	PixelRatio float64 `json:"dpr"`
	Antialias  bool    `json:"antialias"`
	FrameLoop  string  `json:"frameloop"`
}

type sessionView struct {
	ID          string                  `json:"id"`
	State       rindverse.State         `json:"state"`
	Notes       []string                `json:"notes"`
	Synesthesia synesthesia.Synesthesia `json:"synesthesia"`
	Render      string                  `json:"render"`
	Canvas      canvas                  `json:"canvas"`
	Preferences settings.Preferences    `json:"preferences"`
}

// queryBool reads a yes/no query flag, returning def when absent.
func queryBool(r *http.Request, key string, def bool) bool {
	switch strings.ToLower(r.URL.Query().Get(key)) {
	case "0", "false", "no":
		return false
	case "1", "true", "yes":
		return true
	}
	return def
}

// view snapshots a session. Caller holds sess.mu.
func (s *Server) view(r *http.Request, sess *session) sessionView {
	prefs, _ := s.preferencesFor(r, sess.ClientID)
	dpr, _ := strconv.ParseFloat(r.URL.Query().Get("dpr"), 64)
	notes := sess.nav.Notes()
	return sessionView{
		ID:          sess.ID,
		State:       sess.nav.Snapshot(),
		Notes:       notes,
		Synesthesia: synesthesia.Compute(notes),
		Render:      rindverse.RenderMode(queryBool(r, "webgl", true)),
		Canvas: canvas{
			PixelRatio: prefs.PixelRatio(dpr),
			Antialias:  prefs.Antialias(),
			FrameLoop:  rindverse.FrameLoop(prefs, queryBool(r, "visible", true)),
		},
		Preferences: prefs,
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID string `json:"client_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.ClientID != "" && !validClientID(req.ClientID) {
		http.Error(w, "invalid client id", http.StatusBadRequest)
		return
	}

	sess, err := s.Sessions.Create(req.ClientID)
	if err != nil {
		slog.Warn("session create refused", "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	slog.Info("session created", "session", sess.ID, "client", req.ClientID)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSONStatus(w, http.StatusCreated, s.view(r, sess))
}

// lookup resolves the {id} path value or writes a 404.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sess, ok := s.Sessions.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, s.view(r, sess))
}

func (s *Server) handleSessionEvent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var ev rindverse.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	from := sess.nav.Step()
	if err := sess.nav.Apply(ev); err != nil {
		http.Error(w, err.Error(), eventStatus(err))
		return
	}
	to := sess.nav.Step()
	slog.Debug("session event", "session", sess.ID, "event", ev.Type, "key", ev.Key, "from", from, "to", to)

	if s.DB != nil {
		err := s.DB.RecordJourneyEvent(persistence.JourneyEvent{
			SessionID: sess.ID,
			Event:     string(ev.Type),
			Key:       ev.Key,
			From:      from.String(),
			To:        to.String(),
		})
		if err != nil {
			slog.Warn("journey log write failed", "session", sess.ID, "error", err)
		}
	}

	writeJSON(w, s.view(r, sess))
}

// eventStatus maps navigator errors to HTTP statuses: a well-formed event
// the current step refuses is a conflict; a malformed one is a bad request.
func eventStatus(err error) int {
	switch {
	case errors.Is(err, rindverse.ErrInvalidTransition), errors.Is(err, rindverse.ErrNoFeatured):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) handleRitual(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	sess.mu.Lock()
	if sess.nav.Step() != rindverse.StepRitual {
		step := sess.nav.Step()
		sess.mu.Unlock()
		http.Error(w, "session is at "+step.String()+", not ritual", http.StatusConflict)
		return
	}
	fc := sess.nav.Featured()
	reg := sess.nav.Region()
	notes := sess.nav.Notes()
	rc := llm.RitualContext{
		Cheese:  fc.Label,
		Tagline: fc.Tagline,
		Region:  reg.Name,
		Biome:   sess.nav.Biome().Name,
		Notes:   notes,
		Palette: synesthesia.Compute(notes).Palette.A.CSS(),
	}
	if s.Catalog != nil {
		if ch, err := s.Catalog.Get(fc.ID); err == nil {
			rc.Cheese = ch.Name
		}
	}
	sess.mu.Unlock()

	if amb := s.ambienceFor(r.Context(), reg); amb.Live {
		rc.Weather = amb.Description
	}

	source := "fallback"
	narration := llm.FallbackRitual(rc)
	if s.LLM.Enabled() {
		ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
		defer cancel()
		text, err := llm.NarrateRitual(ctx, s.LLM, rc)
		if err != nil {
			slog.Warn("ritual narration failed, using fallback", "session", sess.ID, "error", err)
		} else if text != "" {
			narration, source = text, "llm"
		}
	}

	writeJSON(w, map[string]any{
		"featured":  fc.ID,
		"narration": narration,
		"source":    source,
	})
}

func (s *Server) handleSessionJourney(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	events, err := s.DB.SessionJourney(sess.ID)
	if err != nil {
		slog.Error("journey read failed", "session", sess.ID, "error", err)
		http.Error(w, "journey unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, events)
}

func (s *Server) handleJourneys(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	events, err := s.DB.RecentJourneyEvents(queryInt(r, "limit", 50, 500))
	if err != nil {
		slog.Error("journey read failed", "error", err)
		http.Error(w, "journeys unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, events)
}
