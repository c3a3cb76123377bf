package api

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/rindverse/internal/rindverse"
)

var ErrTooManySessions = errors.New("too many active sessions")

// session is one visitor's walk through the RINDVERSE. mu serializes
// events so the navigator sees one input at a time.
type session struct {
	ID       string
	ClientID string
	Created  time.Time

	mu       sync.Mutex
	nav      *rindverse.Navigator
	lastSeen time.Time
}

// SessionStore keeps navigator sessions in memory with idle expiry.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	max      int
	now      func() time.Time
	lookup   rindverse.NotesLookup
}

// NewSessionStore creates a store that drops sessions idle for longer than
// ttl and holds at most max sessions.
func NewSessionStore(ttl time.Duration, max int) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		max:      max,
		now:      time.Now,
	}
}

// UseLookup makes new sessions resolve featured cheeses through l.
func (st *SessionStore) UseLookup(l rindverse.NotesLookup) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.lookup = l
}

// Create starts a new session at the portal.
func (st *SessionStore) Create(clientID string) (*session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.max > 0 && len(st.sessions) >= st.max {
		st.sweepLocked()
		if len(st.sessions) >= st.max {
			return nil, ErrTooManySessions
		}
	}

	now := st.now()
	s := &session{
		ID:       uuid.NewString(),
		ClientID: clientID,
		Created:  now,
		nav:      rindverse.NewNavigator().WithLookup(st.lookup),
		lastSeen: now,
	}
	st.sessions[s.ID] = s
	return s, nil
}

// Get returns a live session and marks it seen. Expired sessions are
// removed and reported missing.
func (st *SessionStore) Get(id string) (*session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	now := st.now()
	if st.expired(s, now) {
		delete(st.sessions, id)
		return nil, false
	}
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
	return s, true
}

// Len returns the number of sessions held, including not-yet-swept idle ones.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep drops idle sessions and returns how many were removed.
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sweepLocked()
}

func (st *SessionStore) sweepLocked() int {
	now := st.now()
	n := 0
	for id, s := range st.sessions {
		if st.expired(s, now) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

func (st *SessionStore) expired(s *session, now time.Time) bool {
	if st.ttl <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen) > st.ttl
}

// Run sweeps periodically until ctx is done.
func (st *SessionStore) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				slog.Info("idle sessions swept", "removed", n, "remaining", st.Len())
			}
		case <-ctx.Done():
			return
		}
	}
}
