package session

import (
	"context"
	"time"
)

// Manager is the selection filter controller for all browsing sessions. It
// owns the session store and the change-notification hub, so callers mutate
// selections and observe the resulting events through one surface.
type Manager struct {
	store *Store
	hub   *Hub
}

// NewManager creates a Manager whose sessions expire after idleTimeout
// without activity.
func NewManager(idleTimeout time.Duration) *Manager {
	return &Manager{
		store: NewStore(idleTimeout),
		hub:   NewHub(),
	}
}

// Start runs background maintenance (idle session sweeping) until ctx is
// cancelled.
func (m *Manager) Start(ctx context.Context) {
	m.store.Start(ctx)
}

// GetOrCreate resolves a session by ID, creating one when the ID is empty or
// unknown.
func (m *Manager) GetOrCreate(id string) *Session {
	return m.store.GetOrCreate(id)
}

// Get returns the session with the given ID, if present.
func (m *Manager) Get(id string) (*Session, bool) {
	return m.store.Get(id)
}

// Toggle flips the given session type on the session's selection, publishes
// the change, and returns the session plus the resulting membership.
func (m *Manager) Toggle(sessionID, sessionType string) (*Session, bool) {
	s := m.store.GetOrCreate(sessionID)
	active := s.Toggle(sessionType)
	m.hub.Publish(Event{SessionID: s.ID(), Active: s.Active()})
	return s, active
}

// Clear empties the session's selection, publishes the change, and returns
// the session plus how many tags were removed.
func (m *Manager) Clear(sessionID string) (*Session, int) {
	s := m.store.GetOrCreate(sessionID)
	removed := s.Clear()
	m.hub.Publish(Event{SessionID: s.ID(), Active: s.Active()})
	return s, removed
}

// Subscribe registers for selection-change events of the given session.
func (m *Manager) Subscribe(sessionID string) (<-chan Event, func()) {
	return m.hub.Subscribe(sessionID)
}

// Sessions returns the number of live sessions.
func (m *Manager) Sessions() int {
	return m.store.Len()
}
