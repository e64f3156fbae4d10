package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/caredir/directory-server/internal/directory"
)

var (
	// ErrNotReady is returned when the service has no directory data yet
	ErrNotReady = errors.New("directory data not loaded")
	// ErrProviderNotFound is returned when a provider is not found
	ErrProviderNotFound = errors.New("provider not found")
)

// DirectoryService defines the interface for directory operations
type DirectoryService interface {
	// CheckReadiness checks if the service is ready to serve requests
	CheckReadiness(ctx context.Context) error

	// GetDirectory returns the directory document with its source
	GetDirectory(ctx context.Context) (*directory.Directory, string, error)

	// ListProviders returns the providers matching the given options
	ListProviders(ctx context.Context, opts ...Option) ([]directory.Provider, error)

	// GetProvider returns a single provider by name
	GetProvider(ctx context.Context, name string) (*directory.Provider, error)

	// ListSessionTypes returns the unique session-type tags across all
	// providers, in first-seen order
	ListSessionTypes(ctx context.Context) ([]string, error)

	// Reload forces a fresh fetch of the directory document from the
	// provider. On failure the previous snapshot is kept.
	Reload(ctx context.Context) error
}

// ListProvidersOptions is the options for the ListProviders operation
type ListProvidersOptions struct {
	// SessionTypes restricts results to providers offering at least one of
	// the given session types. Empty means no restriction.
	SessionTypes []string

	// Search restricts results to providers whose name, display name or
	// description contains the given substring (case insensitive)
	Search string

	// AcceptingOnly restricts results to providers accepting new clients
	AcceptingOnly bool
}

// Option is a function that sets an option for the ListProviders operation
type Option func(*ListProvidersOptions) error

// WithSessionTypes restricts the ListProviders operation to providers
// offering at least one of the given session types. Passing no tags leaves
// the result unrestricted, matching toggle-style filtering where an empty
// selection shows everything.
func WithSessionTypes(sessionTypes ...string) Option {
	return func(o *ListProvidersOptions) error {
		o.SessionTypes = sessionTypes
		return nil
	}
}

// WithSearch sets a search term for the ListProviders operation
func WithSearch(search string) Option {
	return func(o *ListProvidersOptions) error {
		if search == "" {
			return fmt.Errorf("invalid search: %s", search)
		}
		o.Search = search
		return nil
	}
}

// WithAcceptingOnly restricts the ListProviders operation to providers
// accepting new clients
func WithAcceptingOnly() Option {
	return func(o *ListProvidersOptions) error {
		o.AcceptingOnly = true
		return nil
	}
}

// matchesSearch reports whether the provider matches the search term.
func matchesSearch(p *directory.Provider, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.DisplayName), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}
