package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/caredir/directory-server/internal/config"
	"github.com/caredir/directory-server/internal/directory"
	"github.com/caredir/directory-server/internal/filter"
)

// FileDirectoryDataProvider implements DirectoryDataProvider by reading a
// directory document from a local YAML or JSON file and applying any
// configured load-time filters.
type FileDirectoryDataProvider struct {
	path          string
	directoryName string
	filterCfg     *config.FilterConfig
	filterSvc     filter.Service
}

var _ DirectoryDataProvider = (*FileDirectoryDataProvider)(nil)

// NewFileDirectoryDataProvider creates a file-based directory data provider.
// filterCfg may be nil, in which case the document is served unfiltered.
func NewFileDirectoryDataProvider(cfg *config.Config, filterSvc filter.Service) (*FileDirectoryDataProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Source.File == nil || cfg.Source.File.Path == "" {
		return nil, fmt.Errorf("source.file.path is required")
	}
	if filterSvc == nil {
		filterSvc = filter.NewService()
	}

	return &FileDirectoryDataProvider{
		path:          filepath.Clean(cfg.Source.File.Path),
		directoryName: cfg.GetDirectoryName(),
		filterCfg:     cfg.Filter,
		filterSvc:     filterSvc,
	}, nil
}

// GetDirectory reads and parses the directory file, validates it, and
// applies the configured load-time filters.
func (p *FileDirectoryDataProvider) GetDirectory(ctx context.Context) (*directory.Directory, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory file %s: %w", p.path, err)
	}

	var dir directory.Directory
	if strings.EqualFold(filepath.Ext(p.path), ".json") {
		if err := json.Unmarshal(data, &dir); err != nil {
			return nil, fmt.Errorf("failed to parse JSON directory file %s: %w", p.path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &dir); err != nil {
			return nil, fmt.Errorf("failed to parse YAML directory file %s: %w", p.path, err)
		}
	}

	if err := dir.Validate(); err != nil {
		return nil, fmt.Errorf("invalid directory document %s: %w", p.path, err)
	}

	filtered, err := p.filterSvc.ApplyFilters(ctx, &dir, p.filterCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to apply directory filters: %w", err)
	}

	return filtered, nil
}

// GetSource returns a descriptive string for the file source.
func (p *FileDirectoryDataProvider) GetSource() string {
	return fmt.Sprintf("file:%s", p.path)
}

// GetDirectoryName returns the configured directory name.
func (p *FileDirectoryDataProvider) GetDirectoryName() string {
	return p.directoryName
}

// Path returns the cleaned path of the backing file, used to wire the file
// watcher.
func (p *FileDirectoryDataProvider) Path() string {
	return p.path
}
