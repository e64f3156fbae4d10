package session

import "sync"

// Event describes a selection change for one session. Subscribers re-render
// from the event instead of being called synchronously from the mutation
// path.
type Event struct {
	// SessionID identifies the session whose selection changed
	SessionID string

	// Active is the post-change set of active session types, in insertion
	// order
	Active []string
}

// Hub is a subscription registry for selection-change events. Publishing
// never blocks: events to slow subscribers are dropped, since every event
// carries the full current state and a later event supersedes earlier ones.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan Event
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[int]chan Event),
	}
}

// Subscribe registers interest in selection changes for the given session.
// The returned cancel function removes the subscription and closes the
// channel; it is safe to call more than once.
func (h *Hub) Subscribe(sessionID string) (<-chan Event, func()) {
	ch := make(chan Event, 8)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[int]chan Event)
	}
	h.subs[sessionID][id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if chans, ok := h.subs[sessionID]; ok {
				delete(chans, id)
				if len(chans) == 0 {
					delete(h.subs, sessionID)
				}
			}
			close(ch)
		})
	}

	return ch, cancel
}

// Publish delivers evt to all subscribers of its session without blocking.
func (h *Hub) Publish(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[evt.SessionID] {
		select {
		case ch <- evt:
		default:
			// Subscriber is not keeping up; the next event carries the
			// full state anyway.
		}
	}
}

// SubscriberCount returns the number of subscribers for a session.
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}
