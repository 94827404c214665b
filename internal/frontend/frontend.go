// Package frontend turns raw Fortran source text into routine objects the
// scheduler can traverse and transformations can mutate.
//
// The scheduler only depends on the interface surface of this package: a
// parse entry point, the SourceFile/Routine handles it returns, and the
// tagged IR node set queried through FindNodes. The built-in implementation
// is a lightweight line-oriented parser covering the subset of Fortran the
// transformation pipeline cares about (subroutines, nested members,
// declarations, call statements, loop and conditional nesting).
package frontend

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/fortloom/internal/ctxlog"
)

// Frontend selects the parser implementation used for a run. The value is
// opaque to the scheduler and forwarded to ParseFile unchanged.
type Frontend int

const (
	// Regex is the built-in lightweight pattern frontend.
	Regex Frontend = iota
)

// String returns the frontend's configuration name.
func (f Frontend) String() string {
	switch f {
	case Regex:
		return "regex"
	default:
		return fmt.Sprintf("frontend(%d)", int(f))
	}
}

// Options carries the per-run parser settings. The zero value selects the
// built-in frontend with no external type definitions.
type Options struct {
	// Preprocess enables source normalization (line-continuation joining)
	// before parsing.
	Preprocess bool
	// Includes lists include directories. They are forwarded to the frontend
	// untouched; the built-in frontend does not consult them.
	Includes []string
	// TypeDefs maps derived-type names to externally discovered layouts, so
	// declarations typed as a known derived type gain full field information.
	TypeDefs map[string]*DerivedType
	// Frontend selects the parser implementation.
	Frontend Frontend
}

// ParseFile reads and parses the file at path with the frontend selected in
// opts. Any failure is reported as a *ParseError carrying the offending path.
func ParseFile(ctx context.Context, path string, opts Options) (*SourceFile, error) {
	if opts.Frontend != Regex {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("unknown frontend %q", opts.Frontend)}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	file, err := parseSource(string(raw), opts)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	file.Path = path

	ctxlog.FromContext(ctx).Debug("Parsed source file.",
		"path", path, "modules", len(file.Modules), "subroutines", len(file.AllSubroutines()))
	return file, nil
}

// ParseError reports a failure to read or parse one source file.
type ParseError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}
