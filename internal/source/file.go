// Package source discovers Fortran source files and maps defined routine
// and module names to the files that provide them, without running a full
// parse.
package source

import (
	"os"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

// The definition patterns deliberately stay lightweight: non-greedy matching
// from the first keyword to the nearest end marker, case-insensitive, any
// content in between. Mis-pairing on exotic nesting is an accepted ambiguity
// of the scan; the full frontend is the authority once a file is parsed.
var (
	reUse        = regexp.MustCompile(`(?im)^\s*use\s+(\w+)`)
	reInclude    = regexp.MustCompile(`(?i)#include\s+["']([\w.]+)["']`)
	reModule     = regexp.MustCompile(`(?is)\bmodule\s+(\w+)\b.*?\bend\s*module\b`)
	reSubroutine = regexp.MustCompile(`(?is)\bsubroutine\s+(\w+)\b.*?\bend\s*subroutine\b`)
)

// File is one discovered source file. Its raw text and derived symbol lists
// are computed lazily and memoized for the life of the object; the text
// itself lives in a cache shared across the whole index so memory stays
// bounded on large trees.
type File struct {
	Path string

	texts *lru.Cache[string, string]

	scanned     bool
	scanErr     error
	modules     []string
	subroutines []string
	uses        []string
	includes    []string
}

// Source returns the file's raw text. Decoding is permissive: arbitrary byte
// sequences are carried through verbatim and never cause an error.
func (f *File) Source() (string, error) {
	if f.texts != nil {
		if text, ok := f.texts.Get(f.Path); ok {
			return text, nil
		}
	}
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return "", err
	}
	text := string(raw)
	if f.texts != nil {
		f.texts.Add(f.Path, text)
	}
	return text, nil
}

// scan extracts the symbol lists from the raw text, once.
func (f *File) scan() error {
	if f.scanned {
		return f.scanErr
	}
	f.scanned = true

	text, err := f.Source()
	if err != nil {
		f.scanErr = err
		return err
	}

	for _, m := range reModule.FindAllStringSubmatch(text, -1) {
		f.modules = append(f.modules, m[1])
	}
	for _, m := range reSubroutine.FindAllStringSubmatch(text, -1) {
		f.subroutines = append(f.subroutines, m[1])
	}
	for _, m := range reUse.FindAllStringSubmatch(text, -1) {
		f.uses = append(f.uses, m[1])
	}
	for _, m := range reInclude.FindAllStringSubmatch(text, -1) {
		f.includes = append(f.includes, m[1])
	}
	return nil
}

// Modules returns the module names defined in the file.
func (f *File) Modules() ([]string, error) {
	if err := f.scan(); err != nil {
		return nil, err
	}
	return f.modules, nil
}

// Subroutines returns the subroutine names defined in the file.
func (f *File) Subroutines() ([]string, error) {
	if err := f.scan(); err != nil {
		return nil, err
	}
	return f.subroutines, nil
}

// Uses returns the module names the file imports via `use`.
func (f *File) Uses() ([]string, error) {
	if err := f.scan(); err != nil {
		return nil, err
	}
	return f.uses, nil
}

// Includes returns the textual include targets of the file.
func (f *File) Includes() ([]string, error) {
	if err := f.scan(); err != nil {
		return nil, err
	}
	return f.includes, nil
}

// Definitions returns every symbol the file provides: modules first, then
// subroutines.
func (f *File) Definitions() ([]string, error) {
	if err := f.scan(); err != nil {
		return nil, err
	}
	defs := make([]string, 0, len(f.modules)+len(f.subroutines))
	defs = append(defs, f.modules...)
	defs = append(defs, f.subroutines...)
	return defs, nil
}
