// Package config provides configuration loading and management for the
// directory server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variables read by the server
// (e.g. CAREDIR_LOG_LEVEL).
const EnvPrefix = "CAREDIR"

const (
	defaultWatchDebounce      = 2 * time.Second
	defaultSessionIdleTimeout = 30 * time.Minute
)

// Option defines the interface for configuration loader options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		// Validate the path to prevent path traversal attacks
		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// DirectoryName is the name/identifier for this directory instance.
	// Defaults to "default" if not specified.
	DirectoryName string `yaml:"directoryName,omitempty"`

	// Source describes where the provider directory data comes from
	Source SourceConfig `yaml:"source"`

	// Filter holds optional load-time filtering rules
	Filter *FilterConfig `yaml:"filter,omitempty"`

	// Session holds browsing session settings
	Session *SessionConfig `yaml:"session,omitempty"`
}

// SourceConfig defines the directory data source
type SourceConfig struct {
	// File is the local file source settings (required)
	File *FileConfig `yaml:"file"`

	// Watch enables automatic reload when the data file changes
	Watch *WatchConfig `yaml:"watch,omitempty"`
}

// FileConfig defines local file source configuration
type FileConfig struct {
	// Path is the path to the directory data file (YAML or JSON).
	// Can be absolute or relative to the working directory.
	Path string `yaml:"path"`
}

// WatchConfig defines file watching settings
type WatchConfig struct {
	// Enabled turns file watching on
	Enabled bool `yaml:"enabled"`

	// Debounce is how long to wait after the last change event before
	// reloading (e.g. "2s"). Defaults to 2s.
	Debounce string `yaml:"debounce,omitempty"`
}

// FilterConfig defines load-time filtering rules for directory entries
type FilterConfig struct {
	Names        *NameFilterConfig `yaml:"names,omitempty"`
	SessionTypes *TagFilterConfig  `yaml:"sessionTypes,omitempty"`
}

// NameFilterConfig defines name-based filtering using glob patterns
type NameFilterConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// TagFilterConfig defines session-type tag filtering using exact matching
type TagFilterConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// SessionConfig defines browsing session settings
type SessionConfig struct {
	// IdleTimeout is how long an idle session is kept before it is removed
	// (e.g. "30m"). Defaults to 30m.
	IdleTimeout string `yaml:"idleTimeout,omitempty"`
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	// As of now, this is required because there's no other options to load
	// configuration. Once we add more options, we can remove this check.
	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetDirectoryName returns the directory name, using "default" if not
// specified
func (c *Config) GetDirectoryName() string {
	if c.DirectoryName == "" {
		return "default"
	}
	return c.DirectoryName
}

// WatchEnabled reports whether file watching is turned on
func (c *Config) WatchEnabled() bool {
	return c.Source.Watch != nil && c.Source.Watch.Enabled
}

// WatchDebounce returns the configured watch debounce interval, falling back
// to the default when unset
func (c *Config) WatchDebounce() time.Duration {
	if c.Source.Watch == nil || c.Source.Watch.Debounce == "" {
		return defaultWatchDebounce
	}
	d, err := time.ParseDuration(c.Source.Watch.Debounce)
	if err != nil {
		return defaultWatchDebounce
	}
	return d
}

// SessionIdleTimeout returns the configured session idle timeout, falling
// back to the default when unset
func (c *Config) SessionIdleTimeout() time.Duration {
	if c.Session == nil || c.Session.IdleTimeout == "" {
		return defaultSessionIdleTimeout
	}
	d, err := time.ParseDuration(c.Session.IdleTimeout)
	if err != nil {
		return defaultSessionIdleTimeout
	}
	return d
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if c.Source.File == nil || c.Source.File.Path == "" {
		return fmt.Errorf("source.file.path is required")
	}

	if c.Source.Watch != nil && c.Source.Watch.Debounce != "" {
		if _, err := time.ParseDuration(c.Source.Watch.Debounce); err != nil {
			return fmt.Errorf("source.watch.debounce must be a valid duration (e.g. '2s'): %w", err)
		}
	}

	if c.Session != nil && c.Session.IdleTimeout != "" {
		if _, err := time.ParseDuration(c.Session.IdleTimeout); err != nil {
			return fmt.Errorf("session.idleTimeout must be a valid duration (e.g. '30m'): %w", err)
		}
	}

	return nil
}
