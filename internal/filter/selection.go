package filter

// Selection is the set of session-type tags a client currently has active.
// Insertion order is preserved for presentation; membership alone drives
// filtering semantics.
//
// A Selection is not safe for concurrent use. Callers that share one across
// goroutines (the session layer) must serialize access.
type Selection struct {
	order   []string
	members map[string]bool
}

// NewSelection creates an empty Selection.
func NewSelection() *Selection {
	return &Selection{
		order:   make([]string, 0),
		members: make(map[string]bool),
	}
}

// Toggle flips membership of tag: absent tags are added, present tags are
// removed. It returns the resulting membership (true if the tag is now
// active). Toggle is total over any string, including tags no provider has.
func (s *Selection) Toggle(tag string) bool {
	if s.members[tag] {
		delete(s.members, tag)
		for i, t := range s.order {
			if t == tag {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return false
	}

	s.members[tag] = true
	s.order = append(s.order, tag)
	return true
}

// Clear removes all active tags and returns how many were removed.
func (s *Selection) Clear() int {
	removed := len(s.order)
	s.order = s.order[:0]
	clear(s.members)
	return removed
}

// IsActive reports whether tag is currently active. Pure query, no side
// effects.
func (s *Selection) IsActive(tag string) bool {
	return s.members[tag]
}

// Active returns a copy of the active tags in insertion order.
func (s *Selection) Active() []string {
	active := make([]string, len(s.order))
	copy(active, s.order)
	return active
}

// Len returns the number of active tags.
func (s *Selection) Len() int {
	return len(s.order)
}
