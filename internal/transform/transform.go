// Package transform defines the source-to-source transformation interface
// and the built-in transformations the processing modes map to.
package transform

import (
	"context"
	"fmt"

	"github.com/vk/fortloom/internal/ctxlog"
	"github.com/vk/fortloom/internal/frontend"
	"github.com/vk/fortloom/internal/task"
)

// Processor is the scheduler-side view a transformation gets: lookup of
// other tasks and the routines parsed so far. Tasks are processed bottom-up,
// so when a routine is transformed its callees have already been handled.
type Processor interface {
	// Task returns the task registered under the given name, if any.
	Task(name string) (*task.Task, bool)
	// Routines returns the parsed routines of every task in the graph.
	Routines() []*frontend.Routine
}

// Transformation rewrites one routine in place. The task carries the
// routine's effective options; the processor exposes the rest of the graph.
type Transformation interface {
	Apply(ctx context.Context, routine *frontend.Routine, t *task.Task, p Processor) error
}

// Identity leaves every routine untouched. It is the default mode and
// exists so a run can be used purely for discovery and graph output.
type Identity struct{}

func (Identity) Apply(context.Context, *frontend.Routine, *task.Task, Processor) error {
	return nil
}

// AppendRole suffixes each routine name with its configured role, making a
// routine's position in the call tree visible in generated code. Callees
// are processed first, so call sites targeting an already renamed callee
// are retargeted before the routine itself is renamed.
type AppendRole struct{}

func (AppendRole) Apply(ctx context.Context, routine *frontend.Routine, t *task.Task, p Processor) error {
	if p != nil {
		for _, call := range frontend.FindCalls(routine.Body) {
			callee, ok := p.Task(call.Name)
			if !ok || callee.Routine == nil {
				continue
			}
			if callee.Routine.Name != call.Name {
				routine.RenameCalls(call.Name, callee.Routine.Name)
			}
		}
	}

	role := t.Options.Role
	if role == "" {
		return nil
	}
	routine.Rename(routine.Name + "_" + role)
	ctxlog.FromContext(ctx).Debug("Appended role to routine name",
		"task", t.Key(),
		"name", routine.Name,
	)
	return nil
}

// StripComments removes all comment nodes from the routine body, contained
// members included.
type StripComments struct{}

func (StripComments) Apply(_ context.Context, routine *frontend.Routine, _ *task.Task, _ Processor) error {
	strip := func(n frontend.Node) bool { return n.Tag() != frontend.TagComment }
	routine.Body = frontend.Filter(routine.Body, strip)
	for _, m := range routine.Members {
		m.Body = frontend.Filter(m.Body, strip)
	}
	return nil
}

// ForMode maps a processing mode name to its transformation.
func ForMode(mode string) (Transformation, error) {
	switch mode {
	case "idem":
		return Identity{}, nil
	case "roles":
		return AppendRole{}, nil
	case "strip-comments":
		return StripComments{}, nil
	default:
		return nil, fmt.Errorf("unknown processing mode %q", mode)
	}
}
