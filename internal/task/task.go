// Package task defines the unit of scheduling: one routine, its source
// file, and the effective options it is processed with.
package task

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/vk/fortloom/internal/config"
	"github.com/vk/fortloom/internal/ctxlog"
	"github.com/vk/fortloom/internal/frontend"
	"github.com/vk/fortloom/internal/ident"
)

// Outcome records what happened when a task's source was resolved and
// parsed. A task exists in the graph regardless of its outcome; only
// OutcomeParsed tasks carry a routine to transform.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeParsed
	OutcomeMissing
	OutcomeParseFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeParsed:
		return "parsed"
	case OutcomeMissing:
		return "missing"
	case OutcomeParseFailed:
		return "parse-failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Task is one graph node: a routine name bound to the file that defines it
// and the options it runs with.
type Task struct {
	// Path is the source file the routine was resolved to. Empty when the
	// routine could not be located.
	Path string
	// Options is the merged per-routine configuration.
	Options config.Options
	// File is the parsed source, nil unless Outcome is OutcomeParsed.
	File *frontend.SourceFile
	// Routine is the parsed routine this task schedules, nil unless Outcome
	// is OutcomeParsed.
	Routine *frontend.Routine
	// Outcome records the resolve/parse result.
	Outcome Outcome
	// Err holds the parse error for OutcomeParseFailed tasks.
	Err error

	name      string
	key       string
	blacklist ident.Set
	ignore    ident.Set
}

// New resolves and parses one task. A missing source file or a parse
// failure is not an error here unless the task's options say strict; the
// outcome is recorded on the task instead so the graph keeps the node.
func New(ctx context.Context, name, path string, opts config.Options, popts frontend.Options) (*Task, error) {
	t := &Task{
		Path:      path,
		Options:   opts,
		name:      name,
		key:       ident.Canon(name),
		blacklist: ident.NewSet(opts.Blacklist...),
		ignore:    ident.NewSet(opts.Ignore...),
	}
	log := ctxlog.FromContext(ctx)

	if path == "" {
		t.Outcome = OutcomeMissing
		log.Info("Routine has no source file", "routine", t.key)
		return t, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.Outcome = OutcomeMissing
			log.Info("Source file disappeared since scan", "routine", t.key, "path", path)
			return t, nil
		}
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}

	file, err := frontend.ParseFile(ctx, path, popts)
	if err != nil {
		return t.failParse(ctx, err)
	}
	t.File = file

	routine := pickRoutine(file, t.key)
	if routine == nil {
		return t.failParse(ctx, fmt.Errorf("no subroutine %q in %q", t.key, path))
	}
	t.Routine = routine
	t.Outcome = OutcomeParsed
	return t, nil
}

// failParse applies the parse-failure policy: fatal when strict, a recorded
// outcome otherwise.
func (t *Task) failParse(ctx context.Context, err error) (*Task, error) {
	if t.Options.Strict {
		return nil, fmt.Errorf("parsing routine %q: %w", t.key, err)
	}
	t.Outcome = OutcomeParseFailed
	t.Err = err
	ctxlog.FromContext(ctx).Warn("Failed to parse routine source",
		"routine", t.key,
		"path", t.Path,
		"error", err,
	)
	return t, nil
}

// pickRoutine selects the routine the task schedules: the one matching the
// task name if present, otherwise the file's first routine.
func pickRoutine(file *frontend.SourceFile, key string) *frontend.Routine {
	all := file.AllSubroutines()
	for _, r := range all {
		if ident.Canon(r.Name) == key {
			return r
		}
	}
	if len(all) > 0 {
		return all[0]
	}
	return nil
}

// Name returns the task's name as first requested.
func (t *Task) Name() string { return t.name }

// Key returns the canonical, case-folded name that identifies the task.
func (t *Task) Key() string { return t.key }

// Failed reports whether the task has no routine to offer downstream.
func (t *Task) Failed() bool {
	return t.Outcome == OutcomeMissing || t.Outcome == OutcomeParseFailed
}

// Children returns the canonical names of the routines this task calls, in
// first-call order with duplicates removed. Calls to the task's own
// contained member routines are internal and excluded.
func (t *Task) Children() []string {
	if t.Routine == nil {
		return nil
	}
	members := ident.NewSet()
	for _, m := range t.Routine.Members {
		members.Add(m.Name)
	}

	var out []string
	seen := ident.NewSet()
	for _, call := range frontend.FindCalls(t.Routine.Body) {
		name := ident.Canon(call.Name)
		if members.Has(name) || seen.Has(name) {
			continue
		}
		seen.Add(name)
		out = append(out, name)
	}
	return out
}

// Enrich attaches callee signatures from the given routines to this task's
// call sites, contained members included.
func (t *Task) Enrich(routines []*frontend.Routine) {
	if t.Routine == nil {
		return
	}
	t.Routine.EnrichCalls(routines)
	for _, m := range t.Routine.Members {
		m.EnrichCalls(routines)
	}
}

// Blacklisted reports whether the named callee is pruned outright by this
// task's options.
func (t *Task) Blacklisted(name string) bool { return t.blacklist.Has(name) }

// Ignored reports whether the named callee is excluded from expansion by
// this task's options.
func (t *Task) Ignored(name string) bool { return t.ignore.Has(name) }
