// Package yamlcfg is the YAML implementation of the config.Loader interface.
//
//	default:
//	  mode: idem
//	  role: kernel
//	  expand: true
//	routines:
//	  compute_l1:
//	    role: driver
//	    expand: false
package yamlcfg

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vk/fortloom/internal/config"
	"github.com/vk/fortloom/internal/ctxlog"
)

type optionsSchema struct {
	Mode      *string  `yaml:"mode"`
	Role      *string  `yaml:"role"`
	Expand    *bool    `yaml:"expand"`
	Strict    *bool    `yaml:"strict"`
	Blacklist []string `yaml:"blacklist"`
	Ignore    []string `yaml:"ignore"`
	Whitelist []string `yaml:"whitelist"`
	Enrich    []string `yaml:"enrich"`
}

type rootSchema struct {
	Default  *optionsSchema           `yaml:"default"`
	Routines map[string]optionsSchema `yaml:"routines"`
}

// Loader reads scheduler configuration from YAML files.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// Load parses and decodes one YAML config file. Unknown keys anywhere in
// the document are rejected.
func (Loader) Load(ctx context.Context, path string) (*config.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config %q: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var root rootSchema
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("decoding config %q: %w", path, err)
	}

	cfg := config.New()
	if root.Default != nil {
		cfg.ApplyDefault(root.Default.override())
	}
	for name, sc := range root.Routines {
		cfg.SetOverride(name, sc.override())
	}

	ctxlog.FromContext(ctx).Debug("Loaded YAML config",
		"path", path,
		"routine_overrides", len(cfg.Routines),
	)
	return cfg, nil
}

func (s optionsSchema) override() config.Override {
	return config.Override{
		Mode:      s.Mode,
		Role:      s.Role,
		Expand:    s.Expand,
		Strict:    s.Strict,
		Blacklist: s.Blacklist,
		Ignore:    s.Ignore,
		Whitelist: s.Whitelist,
		Enrich:    s.Enrich,
	}
}
