package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/caredir/directory-server/internal/directory"
	"github.com/caredir/directory-server/internal/filter"
	"github.com/caredir/directory-server/internal/versions"
)

// dirSvc implements the DirectoryService interface with an in-memory
// snapshot of the directory document.
type dirSvc struct {
	mu       sync.RWMutex // Protects data, lastFetch
	provider DirectoryDataProvider

	data      *directory.Directory
	lastFetch time.Time

	cacheDuration time.Duration
}

var _ DirectoryService = (*dirSvc)(nil)

// ServiceOption is a functional option for configuring the service
type ServiceOption func(*dirSvc)

// WithCacheDuration sets a custom cache duration for directory data
func WithCacheDuration(duration time.Duration) ServiceOption {
	return func(s *dirSvc) {
		s.cacheDuration = duration
	}
}

// New creates a new directory service backed by the given data provider.
// The initial load is attempted immediately but a failure does not fail
// construction; the service reports not-ready until a load succeeds.
func New(ctx context.Context, provider DirectoryDataProvider, opts ...ServiceOption) (DirectoryService, error) {
	if provider == nil {
		return nil, fmt.Errorf("directory data provider is required")
	}

	s := &dirSvc{
		provider:      provider,
		cacheDuration: 30 * time.Second, // Default cache duration
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.Reload(ctx); err != nil {
		slog.Warn("Failed to load initial directory data", "error", err)
		// Don't fail service creation, allow it to retry later
	}

	return s, nil
}

// Reload fetches a fresh directory document from the provider. On failure
// the previous snapshot is kept so readers are never left without data.
func (s *dirSvc) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// loadLocked loads directory data using the configured provider.
// Caller must hold s.mu write lock.
func (s *dirSvc) loadLocked(ctx context.Context) error {
	data, err := s.provider.GetDirectory(ctx)
	if err != nil {
		return fmt.Errorf("failed to get directory data: %w", err)
	}

	if s.data != nil && s.data.Version != "" && data.Version != "" &&
		!versions.IsNewerVersion(data.Version, s.data.Version) && data.Version != s.data.Version {
		slog.Warn("Reloaded directory document has an older version",
			"previous", s.data.Version,
			"loaded", data.Version)
	}

	s.data = data
	s.lastFetch = time.Now()

	slog.Info("Loaded directory data",
		"provider_count", len(data.Providers),
		"version", data.Version,
		"source", s.provider.GetSource())
	return nil
}

// snapshot returns the current directory document, refreshing it from the
// provider when the cache has expired. A failed refresh falls back to the
// previous snapshot.
func (s *dirSvc) snapshot(ctx context.Context) (*directory.Directory, error) {
	s.mu.RLock()
	data := s.data
	fresh := time.Since(s.lastFetch) < s.cacheDuration
	s.mu.RUnlock()

	if data != nil && fresh {
		return data, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock
	if s.data != nil && time.Since(s.lastFetch) < s.cacheDuration {
		return s.data, nil
	}

	if err := s.loadLocked(ctx); err != nil {
		if s.data != nil {
			slog.Warn("Directory refresh failed, serving previous snapshot", "error", err)
			return s.data, nil
		}
		return nil, err
	}

	return s.data, nil
}

// CheckReadiness checks if the service has directory data available.
func (s *dirSvc) CheckReadiness(ctx context.Context) error {
	if _, err := s.snapshot(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrNotReady, err)
	}
	return nil
}

// GetDirectory returns the directory document and a description of its
// source.
func (s *dirSvc) GetDirectory(ctx context.Context) (*directory.Directory, string, error) {
	data, err := s.snapshot(ctx)
	if err != nil {
		return nil, "", err
	}
	return data, s.provider.GetSource(), nil
}

// ListProviders returns providers matching the given options.
func (s *dirSvc) ListProviders(ctx context.Context, opts ...Option) ([]directory.Provider, error) {
	options := &ListProvidersOptions{}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	data, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	providers := filter.Visible(data.Providers, options.SessionTypes)

	if options.Search == "" && !options.AcceptingOnly {
		// Copy so callers can never alias the cached snapshot
		out := make([]directory.Provider, len(providers))
		copy(out, providers)
		return out, nil
	}

	out := make([]directory.Provider, 0, len(providers))
	for _, p := range providers {
		if options.AcceptingOnly && !p.Accepting {
			continue
		}
		if !matchesSearch(&p, options.Search) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// GetProvider returns a single provider by name.
func (s *dirSvc) GetProvider(ctx context.Context, name string) (*directory.Provider, error) {
	data, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	for _, p := range data.Providers {
		if p.Name == name {
			out := p
			return &out, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
}

// ListSessionTypes returns the unique session-type tags across all
// providers.
func (s *dirSvc) ListSessionTypes(ctx context.Context) ([]string, error) {
	data, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return directory.AllSessionTypes(data.Providers), nil
}
