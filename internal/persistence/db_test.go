package persistence

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/talgya/rindverse/internal/settings"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPreferencesRoundTrip(t *testing.T) {
	db := openTemp(t)

	if _, _, err := db.LoadPreferences("nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing prefs err=%v", err)
	}

	want := settings.Preferences{Sound: true, Motion: false, Quality: settings.QualityHigh}
	if err := db.SavePreferences("c1", want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, updated, err := db.LoadPreferences("c1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if time.Since(updated) > time.Minute {
		t.Fatalf("updated_at too old: %v", updated)
	}

	want.Quality = settings.QualityLow
	if err := db.SavePreferences("c1", want); err != nil {
		t.Fatalf("resave: %v", err)
	}
	got, _, _ = db.LoadPreferences("c1")
	if got.Quality != settings.QualityLow {
		t.Fatalf("upsert did not apply: %+v", got)
	}
}

func TestJourneyLog(t *testing.T) {
	db := openTemp(t)

	steps := []JourneyEvent{
		{SessionID: "s1", Event: "begin", From: "portal", To: "globe"},
		{SessionID: "s1", Event: "select-region", Key: "spain", From: "globe", To: "biome"},
		{SessionID: "s2", Event: "begin", From: "portal", To: "globe"},
		{SessionID: "s1", Event: "enter-ritual", From: "cheese", To: "ritual"},
	}
	for _, e := range steps {
		if err := db.RecordJourneyEvent(e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	recent, err := db.RecentJourneyEvents(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 || recent[0].Event != "enter-ritual" || recent[1].SessionID != "s2" {
		t.Fatalf("recent=%+v", recent)
	}

	journey, err := db.SessionJourney("s1")
	if err != nil {
		t.Fatalf("journey: %v", err)
	}
	if len(journey) != 3 || journey[1].Key != "spain" || journey[0].CreatedAt == 0 {
		t.Fatalf("journey=%+v", journey)
	}

	n, err := db.RitualCount()
	if err != nil || n != 1 {
		t.Fatalf("ritual count=%d err=%v", n, err)
	}
}

func TestMeta(t *testing.T) {
	db := openTemp(t)
	if _, err := db.GetMeta("starts"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v", err)
	}
	for i := 0; i < 2; i++ {
		if err := db.MarkStarted(time.Now()); err != nil {
			t.Fatalf("mark started: %v", err)
		}
	}
	v, err := db.GetMeta("starts")
	if err != nil || v != "2" {
		t.Fatalf("starts=%q err=%v", v, err)
	}
}
