package config

import "context"

// Loader is the interface for a format-specific configuration loader.
// Implementations translate one file into the format-agnostic Config,
// rejecting unknown keys rather than absorbing them.
type Loader interface {
	Load(ctx context.Context, path string) (*Config, error)
}
