// Package hclcfg is the HCL implementation of the config.Loader interface.
//
// The configuration DSL mirrors the two-level config record: one optional
// `default` block plus any number of labelled `routine` blocks.
//
//	default {
//	  mode      = "idem"
//	  role      = "kernel"
//	  expand    = true
//	  strict    = true
//	  blacklist = ["another_l1"]
//	}
//
//	routine "compute_l1" {
//	  role   = "driver"
//	  expand = true
//	}
package hclcfg

import "github.com/hashicorp/hcl/v2"

// optionsSchema decodes the shared attribute set of `default` and `routine`
// blocks. Scalar attributes decode to pointers so "absent" and "set to the
// zero value" stay distinguishable; list attributes stay raw expressions and
// are evaluated by the loader.
type optionsSchema struct {
	Mode      *string        `hcl:"mode,optional"`
	Role      *string        `hcl:"role,optional"`
	Expand    *bool          `hcl:"expand,optional"`
	Strict    *bool          `hcl:"strict,optional"`
	Blacklist hcl.Expression `hcl:"blacklist,optional"`
	Ignore    hcl.Expression `hcl:"ignore,optional"`
	Whitelist hcl.Expression `hcl:"whitelist,optional"`
	Enrich    hcl.Expression `hcl:"enrich,optional"`
}

// routineSchema is a `routine "<name>" { ... }` block.
type routineSchema struct {
	Name      string         `hcl:"name,label"`
	Mode      *string        `hcl:"mode,optional"`
	Role      *string        `hcl:"role,optional"`
	Expand    *bool          `hcl:"expand,optional"`
	Strict    *bool          `hcl:"strict,optional"`
	Blacklist hcl.Expression `hcl:"blacklist,optional"`
	Ignore    hcl.Expression `hcl:"ignore,optional"`
	Whitelist hcl.Expression `hcl:"whitelist,optional"`
	Enrich    hcl.Expression `hcl:"enrich,optional"`
}

// rootSchema is the top-level structure of a scheduler config file. There is
// deliberately no remain body: unknown blocks or attributes are decode
// errors, not silently absorbed settings.
type rootSchema struct {
	Default  *optionsSchema   `hcl:"default,block"`
	Routines []*routineSchema `hcl:"routine,block"`
}
