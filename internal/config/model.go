// Package config defines the two-level scheduler configuration: a default
// options record plus per-routine overrides layered on top of it.
package config

import "github.com/vk/fortloom/internal/ident"

// Options is the fully merged configuration record one task runs with.
type Options struct {
	// Mode names the transformation pipeline applied during processing.
	Mode string
	// Role tags the routine's position in the call tree (e.g. "driver",
	// "kernel"); transformations read it, the scheduler does not.
	Role string
	// Expand controls whether discovery recurses into this routine's callees.
	Expand bool
	// Strict promotes a parse failure of this routine to a fatal error for
	// the whole discovery run.
	Strict bool
	// Blacklist names callees that are pruned without visiting: no node, no
	// edge, only a visual marker.
	Blacklist []string
	// Ignore names callees that are legitimate external targets but must not
	// be expanded into this graph.
	Ignore []string
	// Whitelist names routines given distinguished styling downstream.
	Whitelist []string
	// Enrich lists extra routines whose signatures are loaded purely for
	// interprocedural enrichment, without becoming graph nodes.
	Enrich []string
}

// Override is a partial options record. Nil fields leave the default value
// in place; non-nil fields (including empty lists) replace it.
type Override struct {
	Mode      *string
	Role      *string
	Expand    *bool
	Strict    *bool
	Blacklist []string
	Ignore    []string
	Whitelist []string
	Enrich    []string
}

// Config is the two-level scheduler configuration.
type Config struct {
	Default Options
	// Routines maps canonical routine names to their overrides.
	Routines map[string]Override
}

// New returns a Config carrying the documented defaults for every option.
func New() *Config {
	return &Config{
		Default: Options{
			Mode:   "idem",
			Role:   "kernel",
			Expand: true,
			Strict: false,
		},
		Routines: make(map[string]Override),
	}
}

// SetOverride registers a per-routine override under the name's canonical
// form.
func (c *Config) SetOverride(name string, ov Override) {
	if c.Routines == nil {
		c.Routines = make(map[string]Override)
	}
	c.Routines[ident.Canon(name)] = ov
}

// ApplyDefault overlays an override onto the default record itself.
func (c *Config) ApplyDefault(ov Override) {
	c.Default = merge(c.Default, ov)
}

// ForRoutine returns the effective options for the named routine: the
// default record with the routine's override (if any) layered on top. The
// result owns its slices; mutating it never touches the defaults.
func (c *Config) ForRoutine(name string) Options {
	opts := c.Default
	opts.Blacklist = append([]string(nil), opts.Blacklist...)
	opts.Ignore = append([]string(nil), opts.Ignore...)
	opts.Whitelist = append([]string(nil), opts.Whitelist...)
	opts.Enrich = append([]string(nil), opts.Enrich...)

	ov, ok := c.Routines[ident.Canon(name)]
	if !ok {
		return opts
	}
	return merge(opts, ov)
}

func merge(base Options, ov Override) Options {
	if ov.Mode != nil {
		base.Mode = *ov.Mode
	}
	if ov.Role != nil {
		base.Role = *ov.Role
	}
	if ov.Expand != nil {
		base.Expand = *ov.Expand
	}
	if ov.Strict != nil {
		base.Strict = *ov.Strict
	}
	if ov.Blacklist != nil {
		base.Blacklist = append([]string(nil), ov.Blacklist...)
	}
	if ov.Ignore != nil {
		base.Ignore = append([]string(nil), ov.Ignore...)
	}
	if ov.Whitelist != nil {
		base.Whitelist = append([]string(nil), ov.Whitelist...)
	}
	if ov.Enrich != nil {
		base.Enrich = append([]string(nil), ov.Enrich...)
	}
	return base
}
