package conversation

import (
	"sync"
	"time"

	"github.com/mayankshukla2904/nagrik-backend/internal/classifier"
	"github.com/mayankshukla2904/nagrik-backend/internal/dedup"
)

// Draft is the partially collected complaint held by a session before
// finalization. It never outlives the session.
type Draft struct {
	Title          string
	Description    string
	Address        string
	District       string
	Latitude       float64
	Longitude      float64
	HasCoordinates bool
	MediaFileIDs   []string
	Classification classifier.Result
	Subcategory    string
}

// Session is one user's in-progress conversation. The mutex serializes
// transitions per user: a user's events are applied strictly in order, and
// the sweeper takes the same lock before reading LastActivity.
type Session struct {
	UserID       string
	State        State
	Language     string
	Draft        Draft
	LastActivity time.Time
	Candidates   []dedup.Candidate

	mu sync.Mutex
}

// Snapshot is an immutable copy of a session handed back to callers, without
// the lock.
type Snapshot struct {
	UserID       string
	State        State
	Language     string
	Draft        Draft
	LastActivity time.Time
}

func (s *Session) touch() {
	s.LastActivity = time.Now()
}

// snapshot must be called with the session lock held.
func (s *Session) snapshot() Snapshot {
	return Snapshot{
		UserID:       s.UserID,
		State:        s.State,
		Language:     s.Language,
		Draft:        s.Draft,
		LastActivity: s.LastActivity,
	}
}

// resetDraft clears the draft and candidate cache but keeps the language,
// which is fixed for the session lifetime.
func (s *Session) resetDraft() {
	s.Draft = Draft{}
	s.Candidates = nil
}
