package conversation

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mayankshukla2904/nagrik-backend/internal/config"
)

// SessionStore owns every live session, keyed by user ID. It exists so the
// session map has an explicit lifecycle: construction, timed sweeping, and
// teardown through the sweeper's context.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the user's session, creating a fresh one in Greeting
// when none exists. The second return reports whether it was created.
func (st *SessionStore) GetOrCreate(userID string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if session, ok := st.sessions[userID]; ok {
		return session, false
	}

	session := &Session{
		UserID:       userID,
		State:        StateGreeting,
		LastActivity: time.Now(),
	}
	st.sessions[userID] = session
	return session, true
}

func (st *SessionStore) Get(userID string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	session, ok := st.sessions[userID]
	return session, ok
}

func (st *SessionStore) Delete(userID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep purges sessions idle longer than maxIdle and returns how many were
// dropped. Locks are never nested: candidates are collected under the store
// lock, idleness is judged under each session's own lock, and deletion
// re-checks the map entry so a session recreated in between survives.
func (st *SessionStore) Sweep(maxIdle time.Duration) int {
	type entry struct {
		userID  string
		session *Session
	}

	st.mu.RLock()
	entries := make([]entry, 0, len(st.sessions))
	for userID, session := range st.sessions {
		entries = append(entries, entry{userID, session})
	}
	st.mu.RUnlock()

	now := time.Now()
	purged := 0
	for _, e := range entries {
		e.session.mu.Lock()
		idle := now.Sub(e.session.LastActivity) > maxIdle
		e.session.mu.Unlock()
		if !idle {
			continue
		}

		st.mu.Lock()
		if current, ok := st.sessions[e.userID]; ok && current == e.session {
			delete(st.sessions, e.userID)
			purged++
		}
		st.mu.Unlock()
	}

	if purged > 0 {
		log.Printf("INFO: Swept %d idle conversation session(s).", purged)
	}
	return purged
}

// StartSweeper runs the periodic sweep until the context is cancelled.
func (st *SessionStore) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(config.SessionSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st.Sweep(config.SessionIdleTimeout)
			}
		}
	}()
}
