package api

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/talgya/rindverse/internal/audio"
	"github.com/talgya/rindverse/internal/catalog"
	"github.com/talgya/rindverse/internal/synesthesia"
)

func (s *Server) handleCheeses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	matches := s.Catalog.Search(catalog.Filter{
		Query:   q.Get("q"),
		Country: q.Get("country"),
		Milk:    q.Get("milk"),
		Texture: q.Get("texture"),
		Limit:   queryInt(r, "limit", 50, 200),
	})

	type cheeseSummary struct {
		ID        string   `json:"id"`
		Name      string   `json:"name"`
		Country   string   `json:"country"`
		Region    string   `json:"region,omitempty"`
		MilkType  string   `json:"milkType"`
		Texture   string   `json:"texture"`
		AgingTime string   `json:"agingTime"`
		PDOStatus *string  `json:"pdoPgiStatus,omitempty"`
		Notes     []string `json:"flavorNotes"`
		Accent    string   `json:"accent"`
		Score     float64  `json:"score"`
	}

	result := make([]cheeseSummary, 0, len(matches))
	for _, m := range matches {
		syn := synesthesia.Compute(m.Cheese.FlavorNotes)
		result = append(result, cheeseSummary{
			ID:        m.Cheese.ID,
			Name:      m.Cheese.Name,
			Country:   m.Cheese.Country,
			Region:    m.Cheese.Region,
			MilkType:  m.Cheese.MilkType,
			Texture:   m.Cheese.Texture,
			AgingTime: m.Cheese.AgingTime,
			PDOStatus: m.Cheese.PDOStatus,
			Notes:     m.Cheese.FlavorNotes,
			Accent:    syn.Palette.A.CSS(),
			Score:     m.Score,
		})
	}
	writeJSON(w, map[string]any{
		"count":   len(result),
		"results": result,
	})
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Catalog.Facets())
}

func (s *Server) handleCheeseDetail(w http.ResponseWriter, r *http.Request) {
	ch, err := s.Catalog.Get(r.PathValue("id"))
	if err != nil {
		http.Error(w, "cheese not found", http.StatusNotFound)
		return
	}
	syn := synesthesia.Compute(ch.FlavorNotes)
	writeJSON(w, map[string]any{
		"cheese":      ch,
		"synesthesia": syn,
		"hex": map[string]string{
			"bg": syn.Palette.Bg.Hex(),
			"a":  syn.Palette.A.Hex(),
			"b":  syn.Palette.B.Hex(),
			"c":  syn.Palette.C.Hex(),
		},
	})
}

// notesFromQuery collects repeated note= values and comma-separated notes=.
func notesFromQuery(r *http.Request) []string {
	q := r.URL.Query()
	notes := append([]string(nil), q["note"]...)
	for _, list := range q["notes"] {
		for _, n := range strings.Split(list, ",") {
			if n = strings.TrimSpace(n); n != "" {
				notes = append(notes, n)
			}
		}
	}
	return notes
}

// notesFor resolves ?cheese=<id> to its notes, else reads notes from the query.
func (s *Server) notesFor(r *http.Request) ([]string, error) {
	if id := r.URL.Query().Get("cheese"); id != "" {
		ch, err := s.Catalog.Get(id)
		if err != nil {
			return nil, err
		}
		return ch.FlavorNotes, nil
	}
	return notesFromQuery(r), nil
}

func (s *Server) handleSynesthesia(w http.ResponseWriter, r *http.Request) {
	notes, err := s.notesFor(r)
	if err != nil {
		http.Error(w, "cheese not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"notes":       notes,
		"synesthesia": synesthesia.Compute(notes),
	})
}

func (s *Server) handleBlend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a, errA := s.Catalog.Get(q.Get("a"))
	b, errB := s.Catalog.Get(q.Get("b"))
	if errA != nil || errB != nil {
		http.Error(w, "blend needs two known cheeses (a, b)", http.StatusNotFound)
		return
	}
	t := 0.5
	if v := q.Get("t"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, "invalid t", http.StatusBadRequest)
			return
		}
		t = parsed
	}
	writeJSON(w, map[string]any{
		"a":           a.ID,
		"b":           b.ID,
		"t":           t,
		"synesthesia": synesthesia.Blend(synesthesia.Compute(a.FlavorNotes), synesthesia.Compute(b.FlavorNotes), t),
	})
}

func (s *Server) handleAmbient(w http.ResponseWriter, r *http.Request) {
	notes, err := s.notesFor(r)
	if err != nil {
		http.Error(w, "cheese not found", http.StatusNotFound)
		return
	}
	seconds := queryInt(r, "seconds", 4, 10)

	size := audio.WAVSize(seconds * audio.DefaultSampleRate)
	if s.MaxClipBytes > 0 && size > s.MaxClipBytes {
		http.Error(w, fmt.Sprintf("clip of %s exceeds the %s limit", humanize.Bytes(size), humanize.Bytes(s.MaxClipBytes)),
			http.StatusRequestEntityTooLarge)
		return
	}

	syn := synesthesia.Compute(notes)
	samples := audio.RenderClip(audio.ParamsFrom(syn), float64(seconds), audio.DefaultSampleRate, seedFor(notes))
	writeWAV(w, samples)
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	writeWAV(w, audio.Tap(audio.DefaultSampleRate))
}

func writeWAV(w http.ResponseWriter, samples []float32) {
	var buf bytes.Buffer
	if err := audio.EncodeWAV(&buf, samples, audio.DefaultSampleRate); err != nil {
		slog.Error("wav encode failed", "error", err)
		http.Error(w, "audio unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// seedFor derives a stable drift seed from the notes so the same cheese
// always sounds the same.
func seedFor(notes []string) int64 {
	h := fnv.New64a()
	for _, n := range notes {
		h.Write([]byte(strings.ToLower(n)))
		h.Write([]byte{0})
	}
	return int64(h.Sum64())
}
