package filter

import (
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"
)

// NameFilter decides inclusion of a provider based on its name and
// operator-configured include/exclude glob patterns.
type NameFilter interface {
	// ShouldInclude reports whether a provider name passes the
	// include/exclude patterns, with a human-readable reason.
	ShouldInclude(name string, include, exclude []string) (bool, string)
}

// defaultNameFilter implements NameFilter using glob patterns.
type defaultNameFilter struct{}

var _ NameFilter = (*defaultNameFilter)(nil)

// NewNameFilter creates the default NameFilter.
func NewNameFilter() NameFilter {
	return &defaultNameFilter{}
}

// matchPattern matches a glob pattern against a provider name. filepath.Match
// validates the pattern syntax; gobwas/glob does the actual match so that '*'
// also matches across '/' in names.
func matchPattern(pattern, name string) (bool, error) {
	if _, err := filepath.Match(pattern, "probe"); err != nil {
		return false, err
	}

	compiled, err := glob.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("invalid glob pattern: %w", err)
	}

	return compiled.Match(name), nil
}

// ShouldInclude applies the same precedence rules as the tag filter:
// exclude wins, then include must match if set, otherwise default include.
func (*defaultNameFilter) ShouldInclude(name string, include, exclude []string) (bool, string) {
	for _, pattern := range exclude {
		matches, err := matchPattern(pattern, name)
		if err != nil {
			return false, fmt.Sprintf("invalid exclude pattern '%s': %v", pattern, err)
		}
		if matches {
			return false, fmt.Sprintf("excluded by pattern '%s'", pattern)
		}
	}

	if len(include) > 0 {
		for _, pattern := range include {
			matches, err := matchPattern(pattern, name)
			if err != nil {
				return false, fmt.Sprintf("invalid include pattern '%s': %v", pattern, err)
			}
			if matches {
				return true, fmt.Sprintf("included by pattern '%s'", pattern)
			}
		}
		return false, fmt.Sprintf("no match found in include patterns %v", include)
	}

	if len(exclude) > 0 {
		return true, fmt.Sprintf("no match in exclude patterns %v", exclude)
	}
	return true, "no name filters specified"
}
