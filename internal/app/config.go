package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/fortloom/internal/config"
	"github.com/vk/fortloom/internal/hclcfg"
	"github.com/vk/fortloom/internal/yamlcfg"
)

// Config holds everything an App instance needs to run.
type Config struct {
	// ConfigPath points to the scheduler config file. Empty means built-in
	// defaults.
	ConfigPath string
	// SourceRoots are the directories scanned for Fortran sources.
	SourceRoots []string
	// Includes are extra files or directories parsed for derived types.
	Includes []string
	// RootRoutines seed the discovery.
	RootRoutines []string
	// CallGraphPath, when set, receives the DOT call graph.
	CallGraphPath string
	// Mode overrides the config's default processing mode when non-empty.
	Mode string

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.SourceRoots) == 0 {
		return nil, errors.New("at least one source root directory is required")
	}
	if len(cfg.RootRoutines) == 0 {
		return nil, errors.New("at least one root routine name is required")
	}
	if cfg.ConfigPath != "" {
		if _, err := loaderFor(cfg.ConfigPath); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// loaderFor picks the config loader by file extension.
func loaderFor(path string) (config.Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return hclcfg.Loader{}, nil
	case ".yaml", ".yml":
		return yamlcfg.Loader{}, nil
	default:
		return nil, fmt.Errorf("unsupported config format %q (expected .hcl, .yaml or .yml)", path)
	}
}
