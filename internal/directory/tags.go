package directory

// AllSessionTypes returns the unique session-type tags across the given
// providers, in first-seen order. The result drives the tag chips shown to
// clients, so ordering must be stable across calls for the same input.
func AllSessionTypes(providers []Provider) []string {
	seen := make(map[string]bool)
	tags := make([]string, 0)

	for _, p := range providers {
		for _, tag := range p.SessionTypes {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	return tags
}
