package filter

import "fmt"

// TagFilter decides inclusion of a provider based on its session-type tags
// and operator-configured include/exclude tag lists. Matching is exact and
// case sensitive.
type TagFilter interface {
	// ShouldInclude reports whether a provider with the given session types
	// passes the include/exclude rules, with a human-readable reason.
	ShouldInclude(sessionTypes []string, include, exclude []string) (bool, string)
}

// defaultTagFilter implements TagFilter with exact string matching.
type defaultTagFilter struct{}

var _ TagFilter = (*defaultTagFilter)(nil)

// NewTagFilter creates the default TagFilter.
func NewTagFilter() TagFilter {
	return &defaultTagFilter{}
}

// ShouldInclude applies the include/exclude rules:
//
//  1. Any session type matching an exclude tag -> exclude (precedence)
//  2. Include tags set and any session type matches one -> include
//  3. Include tags set and nothing matches -> exclude
//  4. Only exclude tags set and nothing matches -> include
//  5. No rules set -> include
func (*defaultTagFilter) ShouldInclude(sessionTypes []string, include, exclude []string) (bool, string) {
	for _, st := range sessionTypes {
		for _, excludeTag := range exclude {
			if st == excludeTag {
				return false, fmt.Sprintf("excluded by session type '%s'", excludeTag)
			}
		}
	}

	if len(include) > 0 {
		for _, st := range sessionTypes {
			for _, includeTag := range include {
				if st == includeTag {
					return true, fmt.Sprintf("included by session type '%s'", includeTag)
				}
			}
		}
		return false, fmt.Sprintf("no session types match include list %v (provider has: %v)", include, sessionTypes)
	}

	if len(exclude) > 0 {
		return true, fmt.Sprintf("no session types match exclude list %v (provider has: %v)", exclude, sessionTypes)
	}
	return true, "no session type filters specified"
}
