package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds active sessions keyed by ID and removes sessions that have
// been idle longer than the configured timeout.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	idleTimeout time.Duration
}

// NewStore creates a session store. Sessions idle longer than idleTimeout
// are removed by the sweep loop started with Start.
func NewStore(idleTimeout time.Duration) *Store {
	return &Store{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
	}
}

// Get returns the session with the given ID, if present. A hit refreshes the
// session's idle timer.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		s.touch(time.Now())
	}
	return s, ok
}

// GetOrCreate returns the session with the given ID, creating a fresh one
// when the ID is empty or unknown. Unknown IDs get a new server-assigned ID
// rather than adopting the caller's value.
func (st *Store) GetOrCreate(id string) *Session {
	if id != "" {
		if s, ok := st.Get(id); ok {
			return s
		}
	}

	s := newSession(uuid.NewString(), time.Now())

	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()

	return s
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Start runs the idle sweep loop until ctx is cancelled.
func (st *Store) Start(ctx context.Context) {
	interval := st.idleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := st.sweep(now); removed > 0 {
				slog.Debug("Removed idle sessions", "count", removed)
			}
		}
	}
}

// sweep removes sessions idle since before now minus the idle timeout and
// returns how many were removed.
func (st *Store) sweep(now time.Time) int {
	cutoff := now.Add(-st.idleTimeout)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if s.idleSince(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
