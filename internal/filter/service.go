package filter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/caredir/directory-server/internal/config"
	"github.com/caredir/directory-server/internal/directory"
)

// Service applies operator-configured load-time filters to a directory
// document before it is served.
type Service interface {
	// ApplyFilters returns a copy of dir containing only the providers that
	// pass the configured name and session-type rules. A nil filter config
	// returns dir unchanged.
	ApplyFilters(ctx context.Context, dir *directory.Directory, cfg *config.FilterConfig) (*directory.Directory, error)
}

// defaultService coordinates the name and tag filters.
type defaultService struct {
	nameFilter NameFilter
	tagFilter  TagFilter
}

// NewService creates a filter Service with the default name and tag filters.
func NewService() Service {
	return &defaultService{
		nameFilter: NewNameFilter(),
		tagFilter:  NewTagFilter(),
	}
}

// NewServiceWith creates a filter Service with custom filter implementations.
func NewServiceWith(nameFilter NameFilter, tagFilter TagFilter) Service {
	return &defaultService{
		nameFilter: nameFilter,
		tagFilter:  tagFilter,
	}
}

// ApplyFilters walks the directory and keeps only providers that pass both
// the name filter and the session-type filter.
func (s *defaultService) ApplyFilters(
	_ context.Context,
	dir *directory.Directory,
	cfg *config.FilterConfig,
) (*directory.Directory, error) {
	if dir == nil {
		return nil, fmt.Errorf("directory cannot be nil")
	}
	if cfg == nil {
		return dir, nil
	}

	var nameInclude, nameExclude, tagInclude, tagExclude []string
	if cfg.Names != nil {
		nameInclude = cfg.Names.Include
		nameExclude = cfg.Names.Exclude
	}
	if cfg.SessionTypes != nil {
		tagInclude = cfg.SessionTypes.Include
		tagExclude = cfg.SessionTypes.Exclude
	}

	filtered := &directory.Directory{
		Version:     dir.Version,
		LastUpdated: dir.LastUpdated,
		Providers:   make([]directory.Provider, 0, len(dir.Providers)),
	}

	excluded := 0
	for _, p := range dir.Providers {
		included, reason := s.shouldInclude(&p, nameInclude, nameExclude, tagInclude, tagExclude)
		if included {
			filtered.Providers = append(filtered.Providers, p)
			continue
		}
		excluded++
		slog.Debug("Excluding provider from directory",
			"name", p.Name,
			"sessionTypes", p.SessionTypes,
			"reason", reason)
	}

	slog.Info("Directory filtering completed",
		"originalCount", len(dir.Providers),
		"includedCount", len(filtered.Providers),
		"excludedCount", excluded)

	return filtered, nil
}

// shouldInclude requires a provider to pass both the name filter and the
// session-type filter.
func (s *defaultService) shouldInclude(
	p *directory.Provider,
	nameInclude, nameExclude, tagInclude, tagExclude []string,
) (bool, string) {
	nameIncluded, nameReason := s.nameFilter.ShouldInclude(p.Name, nameInclude, nameExclude)
	if !nameIncluded {
		return false, fmt.Sprintf("name filter: %s", nameReason)
	}

	tagIncluded, tagReason := s.tagFilter.ShouldInclude(p.GetSessionTypes(), tagInclude, tagExclude)
	if !tagIncluded {
		return false, fmt.Sprintf("session type filter: %s", tagReason)
	}

	return true, "passed all filters"
}
