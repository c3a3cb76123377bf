// Package persistence provides SQLite-backed storage for visitor
// preferences and the RINDVERSE journey log.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/rindverse/internal/settings"
)

var ErrNotFound = errors.New("not found")

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS preferences (
		client_id TEXT PRIMARY KEY,
		sound INTEGER NOT NULL,
		motion INTEGER NOT NULL,
		quality TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS journey_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		event TEXT NOT NULL,
		key TEXT NOT NULL DEFAULT '',
		from_step TEXT NOT NULL,
		to_step TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_journey_session ON journey_events(session_id);
	CREATE INDEX IF NOT EXISTS idx_journey_event ON journey_events(event);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type preferencesRow struct {
	ClientID  string `db:"client_id"`
	Sound     bool   `db:"sound"`
	Motion    bool   `db:"motion"`
	Quality   string `db:"quality"`
	UpdatedAt int64  `db:"updated_at"`
}

// SavePreferences upserts a client's preferences.
func (db *DB) SavePreferences(clientID string, p settings.Preferences) error {
	_, err := db.conn.Exec(
		`INSERT INTO preferences (client_id, sound, motion, quality, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(client_id) DO UPDATE SET
			sound = excluded.sound,
			motion = excluded.motion,
			quality = excluded.quality,
			updated_at = excluded.updated_at`,
		clientID, p.Sound, p.Motion, p.Quality, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save preferences %s: %w", clientID, err)
	}
	return nil
}

// LoadPreferences returns a client's stored preferences and when they were
// last written. ErrNotFound if the client has none.
func (db *DB) LoadPreferences(clientID string) (settings.Preferences, time.Time, error) {
	var row preferencesRow
	err := db.conn.Get(&row,
		"SELECT client_id, sound, motion, quality, updated_at FROM preferences WHERE client_id = ?",
		clientID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return settings.Preferences{}, time.Time{}, ErrNotFound
	}
	if err != nil {
		return settings.Preferences{}, time.Time{}, fmt.Errorf("load preferences %s: %w", clientID, err)
	}
	p := settings.Preferences{Sound: row.Sound, Motion: row.Motion, Quality: row.Quality}
	return p, time.Unix(row.UpdatedAt, 0), nil
}

// JourneyEvent is one applied navigator transition.
type JourneyEvent struct {
	ID        int64  `db:"id" json:"id"`
	SessionID string `db:"session_id" json:"session_id"`
	Event     string `db:"event" json:"event"`
	Key       string `db:"key" json:"key,omitempty"`
	From      string `db:"from_step" json:"from"`
	To        string `db:"to_step" json:"to"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

// RecordJourneyEvent appends a transition to the journey log.
func (db *DB) RecordJourneyEvent(e JourneyEvent) error {
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	_, err := db.conn.NamedExec(
		`INSERT INTO journey_events (session_id, event, key, from_step, to_step, created_at)
		 VALUES (:session_id, :event, :key, :from_step, :to_step, :created_at)`,
		e,
	)
	if err != nil {
		return fmt.Errorf("record journey event: %w", err)
	}
	return nil
}

// RecentJourneyEvents returns the most recent N events, newest first.
func (db *DB) RecentJourneyEvents(limit int) ([]JourneyEvent, error) {
	var events []JourneyEvent
	err := db.conn.Select(&events,
		`SELECT id, session_id, event, key, from_step, to_step, created_at
		 FROM journey_events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	return events, err
}

// SessionJourney returns one session's events in the order they happened.
func (db *DB) SessionJourney(sessionID string) ([]JourneyEvent, error) {
	var events []JourneyEvent
	err := db.conn.Select(&events,
		`SELECT id, session_id, event, key, from_step, to_step, created_at
		 FROM journey_events WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	return events, err
}

// RitualCount returns how many rituals have been entered.
func (db *DB) RitualCount() (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM journey_events WHERE to_step = 'ritual' AND event = 'enter-ritual'")
	return n, err
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// MarkStarted records the process start time and bumps the start counter.
func (db *DB) MarkStarted(now time.Time) error {
	if _, err := db.conn.Exec(
		`INSERT INTO meta (key, value) VALUES ('starts', '1')
		 ON CONFLICT(key) DO UPDATE SET value = CAST(value AS INTEGER) + 1`,
	); err != nil {
		return fmt.Errorf("bump starts: %w", err)
	}
	if err := db.SaveMeta("last_start", now.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("save last_start: %w", err)
	}
	slog.Debug("start recorded", "at", now)
	return nil
}
