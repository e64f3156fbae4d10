// Package service provides the business logic for the provider directory API
package service

import (
	"context"

	"github.com/caredir/directory-server/internal/directory"
)

// DirectoryDataProvider abstracts the source of directory data. Small,
// focused interface so the service can be tested against fakes and other
// sources can be added without touching the service.
type DirectoryDataProvider interface {
	// GetDirectory fetches the current directory document.
	GetDirectory(ctx context.Context) (*directory.Directory, error)

	// GetSource returns a descriptive string about where the directory data
	// comes from. Example: "file:/path/to/providers.yaml"
	GetSource() string

	// GetDirectoryName returns the directory name/identifier for this
	// provider.
	GetDirectoryName() string
}
