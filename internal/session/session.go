// Package session tracks per-client filter selections and notifies
// subscribers when a selection changes.
//
// Each browsing client gets a Session identified by a UUID. The session owns
// a filter.Selection; HTTP handlers run concurrently, so every session
// serializes access to its selection with a mutex. Selection changes are
// published through a Hub rather than invoking rendering directly, keeping
// state mutation decoupled from presentation.
package session

import (
	"sync"
	"time"

	"github.com/caredir/directory-server/internal/filter"
)

// Session is one client's browsing state: an identifier plus the session-type
// tags the client currently has active.
type Session struct {
	id string

	mu        sync.Mutex
	selection *filter.Selection
	lastSeen  time.Time
}

// newSession creates a session with an empty selection.
func newSession(id string, now time.Time) *Session {
	return &Session{
		id:        id,
		selection: filter.NewSelection(),
		lastSeen:  now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Toggle flips membership of the given session type and returns the
// resulting membership.
func (s *Session) Toggle(sessionType string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	return s.selection.Toggle(sessionType)
}

// Clear empties the selection and returns how many tags were removed.
func (s *Session) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	return s.selection.Clear()
}

// IsActive reports whether the given session type is active.
func (s *Session) IsActive(sessionType string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.IsActive(sessionType)
}

// Active returns a copy of the active session types in insertion order.
func (s *Session) Active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Active()
}

// touch updates the last-seen timestamp.
func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

// idleSince reports whether the session has been idle since before cutoff.
func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(cutoff)
}
