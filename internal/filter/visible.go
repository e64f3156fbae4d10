package filter

import "github.com/caredir/directory-server/internal/directory"

// Visible returns the providers a client should see for the given active
// session-type tags.
//
// With no active tags the input is returned unchanged: filtering is opt-in.
// Otherwise a provider is visible when at least one of its session types
// matches an active tag (OR semantics). Providers without session types
// never match while any tag is active.
//
// Visible is a pure function of its inputs and never mutates providers.
func Visible(providers []directory.Provider, active []string) []directory.Provider {
	if len(active) == 0 {
		return providers
	}

	activeSet := make(map[string]bool, len(active))
	for _, tag := range active {
		activeSet[tag] = true
	}

	visible := make([]directory.Provider, 0, len(providers))
	for _, p := range providers {
		if matchesAny(p.SessionTypes, activeSet) {
			visible = append(visible, p)
		}
	}

	return visible
}

// matchesAny reports whether any of tags is present in activeSet.
func matchesAny(tags []string, activeSet map[string]bool) bool {
	for _, tag := range tags {
		if activeSet[tag] {
			return true
		}
	}
	return false
}
