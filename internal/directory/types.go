// Package directory defines the provider directory data model.
package directory

import "fmt"

// Contact holds the public contact details for a provider listing.
type Contact struct {
	Website string `json:"website,omitempty" yaml:"website,omitempty"`
	Phone   string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`
}

// Provider is a single directory listing. Providers are immutable once
// loaded; the service layer hands out copies, never shared mutable state.
type Provider struct {
	// Name is the unique identifier for the provider within a directory
	Name string `json:"name" yaml:"name"`

	// DisplayName is the human-readable name shown in listings
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`

	// Description is a short free-form description of the provider
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// SessionTypes are the tags describing which session formats the
	// provider offers (e.g. "Kids", "Individual", "Couples").
	// May be empty or absent.
	SessionTypes []string `json:"sessionTypes,omitempty" yaml:"sessionTypes,omitempty"`

	// Specialties are additional free-form topic tags, not used for
	// session-type filtering
	Specialties []string `json:"specialties,omitempty" yaml:"specialties,omitempty"`

	// Location is the provider's city or region
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// Contact holds website/phone/email details
	Contact *Contact `json:"contact,omitempty" yaml:"contact,omitempty"`

	// Accepting indicates whether the provider is accepting new clients
	Accepting bool `json:"accepting" yaml:"accepting"`
}

// Directory is the root document of a provider directory data file.
type Directory struct {
	// Version is the document version, semver where possible
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// LastUpdated is an RFC3339 timestamp of the last document update
	LastUpdated string `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`

	// Providers is the full list of provider listings
	Providers []Provider `json:"providers" yaml:"providers"`
}

// GetSessionTypes returns the provider's session-type tags, never nil.
func (p *Provider) GetSessionTypes() []string {
	if p == nil || p.SessionTypes == nil {
		return []string{}
	}
	return p.SessionTypes
}

// Validate checks structural invariants of the directory document:
// every provider has a name and names are unique.
func (d *Directory) Validate() error {
	if d == nil {
		return fmt.Errorf("directory cannot be nil")
	}

	seen := make(map[string]bool, len(d.Providers))
	for i, p := range d.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider[%d]: name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("provider[%d]: duplicate provider name '%s'", i, p.Name)
		}
		seen[p.Name] = true
	}

	return nil
}
