package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/talgya/rindverse/internal/audio"
	"github.com/talgya/rindverse/internal/catalog"
	"github.com/talgya/rindverse/internal/persistence"
	"github.com/talgya/rindverse/internal/rindverse"
	"github.com/talgya/rindverse/internal/settings"
	"github.com/talgya/rindverse/internal/synesthesia"
	"github.com/talgya/rindverse/internal/weather"
)

func newTestServer(t *testing.T, withDB bool) *Server {
	t.Helper()
	cat, err := catalog.LoadBundled()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	s := &Server{
		Catalog:  cat,
		Sessions: NewSessionStore(time.Minute, 10),
		AdminKey: "secret",
	}
	if withDB {
		db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
		if err != nil {
			t.Fatalf("open db: %v", err)
		}
		t.Cleanup(func() { db.Close() })
		s.DB = db
	}
	return s
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

type viewResponse struct {
	ID    string `json:"id"`
	State struct {
		Step           string   `json:"step"`
		CanEnterRitual bool     `json:"can_enter_ritual"`
		Events         []string `json:"events"`
		Featured       *struct {
			ID string `json:"id"`
		} `json:"featured"`
	} `json:"state"`
	Notes       []string `json:"notes"`
	Render      string   `json:"render"`
	Canvas      struct {
		PixelRatio float64 `json:"dpr"`
		Antialias  bool    `json:"antialias"`
		FrameLoop  string  `json:"frameloop"`
	} `json:"canvas"`
	Synesthesia struct {
		Palette struct {
			A string `json:"a"`
		} `json:"palette"`
	} `json:"synesthesia"`
}

func TestStatus(t *testing.T) {
	h := newTestServer(t, true).Handler()
	rec := do(t, h, "GET", "/api/v1/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	st := decode[map[string]any](t, rec)
	if st["cheeses"].(float64) != 25 || st["db"] != true || st["llm"] != false {
		t.Fatalf("status=%v", st)
	}
}

func TestCheeseSearchEndpoint(t *testing.T) {
	h := newTestServer(t, false).Handler()
	rec := do(t, h, "GET", "/api/v1/cheeses?q=comte&limit=3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	got := decode[struct {
		Count   int `json:"count"`
		Results []struct {
			ID     string `json:"id"`
			Accent string `json:"accent"`
		} `json:"results"`
	}](t, rec)
	if got.Count == 0 || got.Results[0].ID != "comté" {
		t.Fatalf("results=%+v", got)
	}
	if !strings.HasPrefix(got.Results[0].Accent, "hsl(") {
		t.Fatalf("accent=%q", got.Results[0].Accent)
	}

	rec = do(t, h, "GET", "/api/v1/cheeses?country=Spain", nil)
	if n := decode[struct {
		Count int `json:"count"`
	}](t, rec).Count; n != 6 {
		t.Fatalf("spain count=%d", n)
	}
}

func TestCheeseDetail(t *testing.T) {
	h := newTestServer(t, false).Handler()
	if rec := do(t, h, "GET", "/api/v1/cheeses/nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing cheese status=%d", rec.Code)
	}
	rec := do(t, h, "GET", "/api/v1/cheeses/manchego", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	got := decode[struct {
		Hex map[string]string `json:"hex"`
	}](t, rec)
	if len(got.Hex) != 4 || !strings.HasPrefix(got.Hex["a"], "#") {
		t.Fatalf("hex=%v", got.Hex)
	}
}

func TestSynesthesiaEndpoint(t *testing.T) {
	h := newTestServer(t, false).Handler()
	rec := do(t, h, "GET", "/api/v1/synesthesia", nil)
	got := decode[struct {
		Synesthesia struct {
			Palette struct {
				Bg string `json:"bg"`
			} `json:"palette"`
		} `json:"synesthesia"`
	}](t, rec)
	if got.Synesthesia.Palette.Bg != "hsl(410 40% 10%)" {
		t.Fatalf("baseline bg=%q", got.Synesthesia.Palette.Bg)
	}

	byCheese := decode[map[string]any](t, do(t, h, "GET", "/api/v1/synesthesia?cheese=manchego", nil))
	byNotes := decode[map[string]any](t, do(t, h, "GET", "/api/v1/synesthesia?note=nutty&notes=buttery,salty%20finish,caramelized", nil))
	if diff := cmp.Diff(byCheese, byNotes); diff != "" {
		t.Fatalf("cheese vs notes (-cheese +notes):\n%s", diff)
	}
	if rec := do(t, h, "GET", "/api/v1/synesthesia?cheese=nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown cheese status=%d", rec.Code)
	}
}

func TestSynesthesiaManchegoPalette(t *testing.T) {
	h := newTestServer(t, false).Handler()
	got := decode[struct {
		Synesthesia struct {
			Palette map[string]string `json:"palette"`
			Audio   struct {
				BaseHz float64 `json:"baseHz"`
			} `json:"audio"`
		} `json:"synesthesia"`
	}](t, do(t, h, "GET", "/api/v1/synesthesia?cheese=manchego", nil))
	if got.Synesthesia.Palette["a"] != "hsl(101 61% 70%)" || got.Synesthesia.Palette["ink"] != "rgba(255,255,255,0.92)" {
		t.Fatalf("palette=%v", got.Synesthesia.Palette)
	}
	if math.Abs(got.Synesthesia.Audio.BaseHz-130.4) > 1e-9 {
		t.Fatalf("baseHz=%v", got.Synesthesia.Audio.BaseHz)
	}
}

func TestBlendEndpoint(t *testing.T) {
	h := newTestServer(t, false).Handler()
	if rec := do(t, h, "GET", "/api/v1/synesthesia/blend?a=comte&b=roquefort&t=0.25", nil); rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	if rec := do(t, h, "GET", "/api/v1/synesthesia/blend?a=comte&b=roquefort&t=x", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad t status=%d", rec.Code)
	}
	if rec := do(t, h, "GET", "/api/v1/synesthesia/blend?a=comte", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing b status=%d", rec.Code)
	}
}

func TestAudioEndpoints(t *testing.T) {
	h := newTestServer(t, false).Handler()
	for _, path := range []string{"/api/v1/ambient.wav?cheese=comte&seconds=1", "/api/v1/tap.wav"} {
		rec := do(t, h, "GET", path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "audio/wav" {
			t.Fatalf("%s content-type=%q", path, ct)
		}
		if body := rec.Body.Bytes(); len(body) < 44 || string(body[:4]) != "RIFF" {
			t.Fatalf("%s not a wav (%d bytes)", path, len(body))
		}
	}

	one := do(t, h, "GET", "/api/v1/ambient.wav?cheese=comte&seconds=1", nil).Body.Bytes()
	again := do(t, h, "GET", "/api/v1/ambient.wav?cheese=comte&seconds=1", nil).Body.Bytes()
	if !bytes.Equal(one, again) {
		t.Fatal("ambient clip for the same cheese should be deterministic")
	}
	if uint64(len(one)) != audio.WAVSize(audio.DefaultSampleRate) {
		t.Fatalf("one second clip is %d bytes", len(one))
	}
}

func TestAmbientClipLimit(t *testing.T) {
	s := newTestServer(t, false)
	s.MaxClipBytes = 100_000
	h := s.Handler()

	rec := do(t, h, "GET", "/api/v1/ambient.wav?cheese=comte&seconds=4", nil)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "176 kB") || !strings.Contains(body, "100 kB") {
		t.Fatalf("body=%q", body)
	}
	if rec := do(t, h, "GET", "/api/v1/ambient.wav?cheese=comte&seconds=2", nil); rec.Code != http.StatusOK {
		t.Fatalf("two seconds under the limit status=%d", rec.Code)
	}

	st := decode[map[string]any](t, do(t, h, "GET", "/api/v1/status", nil))
	if st["max_clip"] != "100 kB" {
		t.Fatalf("status max_clip=%v", st["max_clip"])
	}
}

func TestRegionsEndpoint(t *testing.T) {
	h := newTestServer(t, false).Handler()
	got := decode[[]struct {
		Key    string `json:"key"`
		Biomes []struct {
			Key      string   `json:"key"`
			Featured []string `json:"featured"`
			Accent   string   `json:"accent"`
		} `json:"biomes"`
	}](t, do(t, h, "GET", "/api/v1/regions", nil))

	var keys []string
	for _, r := range got {
		keys = append(keys, r.Key)
		for _, b := range r.Biomes {
			if len(b.Featured) == 0 || b.Accent == "" {
				t.Fatalf("biome %s incomplete: %+v", b.Key, b)
			}
		}
	}
	if diff := cmp.Diff([]string{"spain", "france"}, keys); diff != "" {
		t.Fatalf("regions (-want +got):\n%s", diff)
	}
}

func TestSessionWalk(t *testing.T) {
	s := newTestServer(t, true)
	h := s.Handler()

	rec := do(t, h, "POST", "/api/v1/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rec.Code, rec.Body)
	}
	v := decode[viewResponse](t, rec)
	if v.State.Step != "portal" || v.Render != rindverse.RenderScene {
		t.Fatalf("new session view=%+v", v)
	}
	base := "/api/v1/sessions/" + v.ID

	steps := []struct {
		ev   rindverse.Event
		want string
	}{
		{rindverse.Event{Type: rindverse.EventBegin}, "globe"},
		{rindverse.Event{Type: rindverse.EventSelectRegion, Key: "france"}, "biome"},
		{rindverse.Event{Type: rindverse.EventPickBiome, Key: "france-alps"}, "cheese"},
		{rindverse.Event{Type: rindverse.EventSelectFeatured, Key: "roquefort"}, "cheese"},
		{rindverse.Event{Type: rindverse.EventEnterRitual}, "ritual"},
	}
	for _, st := range steps {
		rec := do(t, h, "POST", base+"/events", st.ev)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", st.ev.Type, rec.Code, rec.Body)
		}
		v = decode[viewResponse](t, rec)
		if v.State.Step != st.want {
			t.Fatalf("after %s step=%s want %s", st.ev.Type, v.State.Step, st.want)
		}
	}
	if diff := cmp.Diff([]string{"salty finish", "tangy", "earthy", "spicy"}, v.Notes); diff != "" {
		t.Fatalf("notes (-want +got):\n%s", diff)
	}

	rec = do(t, h, "GET", base+"/ritual", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ritual status=%d", rec.Code)
	}
	ritual := decode[map[string]string](t, rec)
	if ritual["source"] != "fallback" || ritual["featured"] != "roquefort" || !strings.Contains(ritual["narration"], "Roquefort") {
		t.Fatalf("ritual=%v", ritual)
	}

	journey := decode[[]persistence.JourneyEvent](t, do(t, h, "GET", base+"/journey", nil))
	if len(journey) != len(steps) || journey[len(journey)-1].To != "ritual" {
		t.Fatalf("journey=%+v", journey)
	}
	if n, _ := s.DB.RitualCount(); n != 1 {
		t.Fatalf("ritual count=%d", n)
	}
}

func TestSessionEventErrors(t *testing.T) {
	h := newTestServer(t, false).Handler()
	v := decode[viewResponse](t, do(t, h, "POST", "/api/v1/sessions", nil))
	base := "/api/v1/sessions/" + v.ID

	tests := []struct {
		name string
		ev   any
		code int
	}{
		{"wrong step", rindverse.Event{Type: rindverse.EventPickBiome, Key: "france-alps"}, http.StatusConflict},
		{"back from portal", rindverse.Event{Type: rindverse.EventBack}, http.StatusConflict},
		{"unknown event", rindverse.Event{Type: "fly"}, http.StatusBadRequest},
		{"bad json", "{", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, h, "POST", base+"/events", tt.ev); rec.Code != tt.code {
				t.Fatalf("status=%d want %d body=%s", rec.Code, tt.code, rec.Body)
			}
		})
	}

	do(t, h, "POST", base+"/events", rindverse.Event{Type: rindverse.EventBegin})
	if rec := do(t, h, "POST", base+"/events", rindverse.Event{Type: rindverse.EventSelectRegion, Key: "atlantis"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown region status=%d", rec.Code)
	}
	do(t, h, "POST", base+"/events", rindverse.Event{Type: rindverse.EventSelectRegion, Key: "spain"})
	do(t, h, "POST", base+"/events", rindverse.Event{Type: rindverse.EventPickBiome, Key: "spain-pyrenees"})
	if rec := do(t, h, "POST", base+"/events", rindverse.Event{Type: rindverse.EventEnterRitual}); rec.Code != http.StatusConflict {
		t.Fatalf("ritual without featured status=%d", rec.Code)
	}
	if rec := do(t, h, "GET", base+"/ritual", nil); rec.Code != http.StatusConflict {
		t.Fatalf("ritual before ritual step status=%d", rec.Code)
	}
	if rec := do(t, h, "GET", base+"/journey", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("journey without db status=%d", rec.Code)
	}
	if rec := do(t, h, "GET", "/api/v1/sessions/missing", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing session status=%d", rec.Code)
	}
}

func TestSessionNotesFollowCatalog(t *testing.T) {
	cat, err := catalog.Load(strings.NewReader(`[{"id":"manchego","name":"Manchego","country":"Spain","flavorNotes":["smoky","herbal"]}]`))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	s := &Server{Catalog: cat, Sessions: NewSessionStore(time.Minute, 10)}
	h := s.Handler()

	v := decode[viewResponse](t, do(t, h, "POST", "/api/v1/sessions", nil))
	base := "/api/v1/sessions/" + v.ID
	for _, ev := range []rindverse.Event{
		{Type: rindverse.EventBegin},
		{Type: rindverse.EventSelectRegion, Key: "spain"},
		{Type: rindverse.EventPickBiome, Key: "spain-mediterranean"},
	} {
		v = decode[viewResponse](t, do(t, h, "POST", base+"/events", ev))
	}
	if diff := cmp.Diff([]string{"nutty", "buttery", "salty finish", "caramelized"}, v.Notes); diff != "" {
		t.Fatalf("biome default notes (-want +got):\n%s", diff)
	}

	v = decode[viewResponse](t, do(t, h, "POST", base+"/events", rindverse.Event{Type: rindverse.EventSelectFeatured, Key: "manchego"}))
	if diff := cmp.Diff([]string{"smoky", "herbal"}, v.Notes); diff != "" {
		t.Fatalf("catalog notes (-want +got):\n%s", diff)
	}
	if want := synesthesia.Compute([]string{"smoky", "herbal"}).Palette.A.CSS(); v.Synesthesia.Palette.A != want {
		t.Fatalf("palette a=%s want %s", v.Synesthesia.Palette.A, want)
	}

	v = decode[viewResponse](t, do(t, h, "POST", base+"/events", rindverse.Event{Type: rindverse.EventSelectFeatured, Key: "mahón"}))
	if diff := cmp.Diff([]string{"salty finish", "toasted nuts", "buttery", "tangy"}, v.Notes); diff != "" {
		t.Fatalf("uncatalogued cheese should use featured notes (-want +got):\n%s", diff)
	}
}

func TestRenderModeIgnoresQuality(t *testing.T) {
	s := newTestServer(t, true)
	h := s.Handler()

	client := decode[map[string]any](t, do(t, h, "POST", "/api/v1/clients", nil))["client_id"].(string)
	rec := do(t, h, "PUT", "/api/v1/preferences/"+client, map[string]string{"quality": settings.QualityLow})
	if rec.Code != http.StatusOK {
		t.Fatalf("put status=%d body=%s", rec.Code, rec.Body)
	}

	v := decode[viewResponse](t, do(t, h, "POST", "/api/v1/sessions?dpr=3", map[string]string{"client_id": client}))
	if v.Render != rindverse.RenderScene {
		t.Fatalf("low quality render=%q", v.Render)
	}
	if v.Canvas.PixelRatio != 1 || v.Canvas.Antialias || v.Canvas.FrameLoop != rindverse.FrameAlways {
		t.Fatalf("low quality canvas=%+v", v.Canvas)
	}

	plain := decode[viewResponse](t, do(t, h, "POST", "/api/v1/sessions", nil))
	got := decode[viewResponse](t, do(t, h, "GET", "/api/v1/sessions/"+plain.ID+"?webgl=0&visible=false&dpr=3", nil))
	if got.Render != rindverse.RenderFallback {
		t.Fatalf("no webgl render=%q", got.Render)
	}
	if got.Canvas.PixelRatio != 2 || !got.Canvas.Antialias || got.Canvas.FrameLoop != rindverse.FrameNever {
		t.Fatalf("auto quality hidden canvas=%+v", got.Canvas)
	}
}

func TestReducedMotionHint(t *testing.T) {
	h := newTestServer(t, false).Handler()

	req := httptest.NewRequest("POST", "/api/v1/clients", nil)
	req.Header.Set("Sec-CH-Prefers-Reduced-Motion", "reduce")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	got := decode[struct {
		Preferences settings.Preferences `json:"preferences"`
		MotionScale float64              `json:"motion_scale"`
	}](t, rec)
	if got.Preferences != settings.DefaultsFor(true) || got.MotionScale != 0 {
		t.Fatalf("reduced motion client=%+v", got)
	}

	req = httptest.NewRequest("POST", "/api/v1/sessions", nil)
	req.Header.Set("Sec-CH-Prefers-Reduced-Motion", "reduce")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	v := decode[viewResponse](t, rec)
	if v.Canvas.FrameLoop != rindverse.FrameDemand {
		t.Fatalf("reduced motion frameloop=%q", v.Canvas.FrameLoop)
	}

	plain := decode[map[string]any](t, do(t, h, "POST", "/api/v1/clients", nil))
	if prefs := plain["preferences"].(map[string]any); prefs["motion"] != true || prefs["quality"] != settings.QualityAuto {
		t.Fatalf("default client=%v", plain)
	}
}

func TestPreferences(t *testing.T) {
	s := newTestServer(t, true)
	h := s.Handler()

	if rec := do(t, h, "GET", "/api/v1/preferences/not-a-uuid", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status=%d", rec.Code)
	}

	client := decode[map[string]any](t, do(t, h, "POST", "/api/v1/clients", nil))["client_id"].(string)
	got := decode[struct {
		Preferences settings.Preferences `json:"preferences"`
		Stored      bool                 `json:"stored"`
	}](t, do(t, h, "GET", "/api/v1/preferences/"+client, nil))
	if got.Stored || got.Preferences != settings.Defaults() {
		t.Fatalf("fresh client=%+v", got)
	}

	if rec := do(t, h, "PUT", "/api/v1/preferences/"+client, map[string]string{"quality": "ultra"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid quality status=%d", rec.Code)
	}

	do(t, h, "PUT", "/api/v1/preferences/"+client, map[string]bool{"sound": true})
	got = decode[struct {
		Preferences settings.Preferences `json:"preferences"`
		Stored      bool                 `json:"stored"`
	}](t, do(t, h, "GET", "/api/v1/preferences/"+client, nil))
	want := settings.Defaults()
	want.Sound = true
	if !got.Stored || got.Preferences != want {
		t.Fatalf("after put=%+v", got)
	}
}

func TestPreferencesWithoutDB(t *testing.T) {
	h := newTestServer(t, false).Handler()
	client := "6f1c2f8e-6b1e-4d8a-9a37-2a4c8f0e5b11"
	rec := do(t, h, "PUT", "/api/v1/preferences/"+client, map[string]bool{"motion": false})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	got := decode[map[string]any](t, rec)
	if got["stored"] != false || got["motion_scale"].(float64) != 0 {
		t.Fatalf("response=%v", got)
	}
}

func TestAdminSweep(t *testing.T) {
	h := newTestServer(t, false).Handler()
	if rec := do(t, h, "POST", "/api/v1/sessions/sweep", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token status=%d", rec.Code)
	}
	req := httptest.NewRequest("POST", "/api/v1/sessions/sweep", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("with token status=%d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, false)
	s.CORSOrigins = []string{"https://rind.example"}
	h := s.Handler()

	req := httptest.NewRequest("OPTIONS", "/api/v1/cheeses", nil)
	req.Header.Set("Origin", "https://rind.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "https://rind.example" {
		t.Fatalf("preflight status=%d headers=%v", rec.Code, rec.Header())
	}
}

func TestRegionWeather(t *testing.T) {
	s := newTestServer(t, false)
	h := s.Handler()
	if rec := do(t, h, "GET", "/api/v1/regions/atlantis/weather", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown region status=%d", rec.Code)
	}

	got := decode[struct {
		Ambience weather.Ambience `json:"ambience"`
	}](t, do(t, h, "GET", "/api/v1/regions/spain/weather", nil))
	if got.Ambience.Live || got.Ambience.Description == "" {
		t.Fatalf("default ambience=%+v", got.Ambience)
	}

	owm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"main":{"temp":8},"weather":[{"main":"Mist","description":"mist"}],"wind":{"speed":2}}`))
	}))
	defer owm.Close()
	s.Weather = weather.NewClient("k").WithURL(owm.URL)

	got = decode[struct {
		Ambience weather.Ambience `json:"ambience"`
	}](t, do(t, h, "GET", "/api/v1/regions/france/weather", nil))
	if !got.Ambience.Live || got.Ambience.Description != "mist" || got.Ambience.Haze != 0.8 {
		t.Fatalf("live ambience=%+v", got.Ambience)
	}
}
