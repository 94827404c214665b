package source

import (
	"context"
	"fmt"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/vk/fortloom/internal/ctxlog"
	"github.com/vk/fortloom/internal/fsutil"
	"github.com/vk/fortloom/internal/ident"
)

// DefaultExtensions lists the file suffixes scanned for Fortran sources.
// Both case variants are spelled out because the scan is case-sensitive.
var DefaultExtensions = []string{".f90", ".F90", ".f", ".F"}

// defaultTextCacheSize bounds the shared raw-text cache.
const defaultTextCacheSize = 1024

// UnresolvedError reports a routine or module name that no indexed file
// defines.
type UnresolvedError struct {
	Name string
}

// Error implements the error interface.
func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("no source file defines %q", e.Name)
}

// ScanConfig controls index construction. The zero value selects the
// defaults.
type ScanConfig struct {
	// Extensions overrides DefaultExtensions when non-empty.
	Extensions []string
	// TextCacheSize bounds the shared raw-text cache; 0 selects the default.
	TextCacheSize int
}

// Index maps every defined routine and module name to the file providing
// it. It is built once by scanning the configured roots and is immutable
// afterwards, save for the lazily memoized per-file scan results.
type Index struct {
	files  []*File
	byName map[string]*File
}

// NewIndex scans every root recursively for files matching the configured
// extensions and registers their definitions. A `.gitignore` at a root is
// honoured during that root's scan. Files whose text cannot be read are
// logged and skipped; they never abort construction. When two files define
// the same name, the first registration wins for the life of the index.
func NewIndex(ctx context.Context, roots []string, cfg ScanConfig) (*Index, error) {
	logger := ctxlog.FromContext(ctx)

	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	cacheSize := cfg.TextCacheSize
	if cacheSize <= 0 {
		cacheSize = defaultTextCacheSize
	}
	texts, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating text cache: %w", err)
	}

	ix := &Index{byName: make(map[string]*File)}
	for _, root := range roots {
		paths, err := fsutil.FindFiles(root, exts)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", root, err)
		}

		var gi *ignore.GitIgnore
		if g, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			gi = g
		}

		for _, path := range paths {
			if gi != nil {
				if rel, err := filepath.Rel(root, path); err == nil && gi.MatchesPath(rel) {
					continue
				}
			}
			file := &File{Path: path, texts: texts}
			defs, err := file.Definitions()
			if err != nil {
				logger.Warn("Skipping unreadable source file.", "path", path, "error", err)
				continue
			}
			ix.files = append(ix.files, file)
			for _, def := range defs {
				key := ident.Canon(def)
				if _, exists := ix.byName[key]; !exists {
					ix.byName[key] = file
				}
			}
		}
	}

	logger.Debug("Source index built.", "files", len(ix.files), "symbols", len(ix.byName))
	return ix, nil
}

// Resolve returns the path of the file defining the named routine or
// module. Lookup is case-insensitive.
func (ix *Index) Resolve(name string) (string, error) {
	file, ok := ix.byName[ident.Canon(name)]
	if !ok {
		return "", &UnresolvedError{Name: name}
	}
	return file.Path, nil
}

// Lookup returns the indexed file defining name, if any.
func (ix *Index) Lookup(name string) (*File, bool) {
	file, ok := ix.byName[ident.Canon(name)]
	return file, ok
}

// Files returns every indexed file in scan order.
func (ix *Index) Files() []*File {
	return ix.files
}
