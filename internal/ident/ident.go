// Package ident provides the canonical identity used for routine and module
// names throughout the scheduler.
//
// Fortran names are case-insensitive, but user-facing output keeps the
// spelling found in the source or the config. Every lookup boundary (index
// resolution, task cache, blacklist/ignore membership) goes through Canon so
// the two representations never diverge.
package ident

import "strings"

// Canon returns the canonical form of a routine or module name.
func Canon(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Set is a membership set over canonical names.
type Set map[string]struct{}

// NewSet canonicalizes the given names into a Set.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[Canon(n)] = struct{}{}
	}
	return s
}

// Has reports whether name is in the set, comparing canonically.
func (s Set) Has(name string) bool {
	_, ok := s[Canon(name)]
	return ok
}

// Add inserts name into the set under its canonical form.
func (s Set) Add(name string) {
	s[Canon(name)] = struct{}{}
}
