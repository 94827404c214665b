// Package scheduler builds and processes the routine dependency graph: it
// discovers the call tree from a set of seed routines, then applies a
// transformation to every routine in dependency order.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/vk/fortloom/internal/config"
	"github.com/vk/fortloom/internal/ctxlog"
	"github.com/vk/fortloom/internal/frontend"
	"github.com/vk/fortloom/internal/fsutil"
	"github.com/vk/fortloom/internal/ident"
	"github.com/vk/fortloom/internal/render"
	"github.com/vk/fortloom/internal/source"
	"github.com/vk/fortloom/internal/task"
	"github.com/vk/fortloom/internal/transform"
)

// deadlist names utility routines that are never worth following: timers,
// abort handlers, I/O flushes. They produce neither nodes nor markers.
var deadlist = ident.NewSet("dr_hook", "abor1", "abort_surf", "flush")

// Options configures a scheduler run.
type Options struct {
	// Config is the two-level routine configuration. Nil means defaults.
	Config *config.Config
	// Extensions overrides the file extensions scanned for sources.
	Extensions []string
	// Includes lists extra source files parsed up front purely for their
	// derived-type definitions.
	Includes []string
	// TypeDefs seeds the frontend with externally known derived types.
	TypeDefs map[string]*frontend.DerivedType
	// Frontend selects the parser implementation.
	Frontend frontend.Frontend
	// NoPreprocess disables source normalization before parsing. Real
	// Fortran splits statements across `&` continuation lines, so
	// normalization is on by default; without it such call sites are
	// invisible to discovery.
	NoPreprocess bool
	// CacheSize bounds the raw source text cache. Zero means the default.
	CacheSize int
	// Render, when non-nil, records the run for call-graph output.
	Render *render.CallGraph
}

// Scheduler owns the task graph for one run. It is not safe for concurrent
// use.
type Scheduler struct {
	index     *source.Index
	cfg       *config.Config
	popts     frontend.Options
	rg        *render.CallGraph
	queue     []*task.Task
	tasks     map[string]*task.Task
	graph     graph.Graph[string, *task.Task]
	processed []*task.Task
}

var _ transform.Processor = (*Scheduler)(nil)

func taskHash(t *task.Task) string { return t.Key() }

func extensionsOrDefault(exts []string) []string {
	if len(exts) == 0 {
		return source.DefaultExtensions
	}
	return exts
}

// includePaths expands one include entry: a directory yields every source
// file under it, a file yields itself.
func includePaths(inc string, exts []string) ([]string, error) {
	info, err := os.Stat(inc)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{inc}, nil
	}
	return fsutil.FindFiles(inc, exts)
}

// New scans the given source roots and returns an empty scheduler ready for
// Append. Include files are parsed immediately so their derived types are
// visible to every later parse.
func New(ctx context.Context, roots []string, opts Options) (*Scheduler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.New()
	}

	index, err := source.NewIndex(ctx, roots, source.ScanConfig{
		Extensions:    opts.Extensions,
		TextCacheSize: opts.CacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("scanning source roots: %w", err)
	}

	popts := frontend.Options{
		Preprocess: !opts.NoPreprocess,
		Includes:   opts.Includes,
		TypeDefs:   make(map[string]*frontend.DerivedType),
		Frontend:   opts.Frontend,
	}
	for name, td := range opts.TypeDefs {
		popts.TypeDefs[ident.Canon(name)] = td
	}
	for _, inc := range opts.Includes {
		paths, err := includePaths(inc, extensionsOrDefault(opts.Extensions))
		if err != nil {
			return nil, fmt.Errorf("scanning include %q: %w", inc, err)
		}
		for _, p := range paths {
			file, err := frontend.ParseFile(ctx, p, popts)
			if err != nil {
				return nil, fmt.Errorf("parsing include %q: %w", p, err)
			}
			for name, td := range file.TypeDefs() {
				popts.TypeDefs[name] = td
			}
		}
	}

	return &Scheduler{
		index: index,
		cfg:   cfg,
		popts: popts,
		rg:    opts.Render,
		tasks: make(map[string]*task.Task),
		graph: graph.New(taskHash, graph.Directed(), graph.PreventCycles()),
	}, nil
}

// Append adds the named routines to the graph as discovery seeds. Names
// that cannot be resolved to a source file stop the call before anything is
// cached; parse failures follow the per-routine strict policy.
func (s *Scheduler) Append(ctx context.Context, names ...string) error {
	for _, name := range names {
		key := ident.Canon(name)
		if _, ok := s.tasks[key]; ok {
			continue
		}

		path, err := s.index.Resolve(name)
		if err != nil {
			return fmt.Errorf("appending routine %q: %w", name, err)
		}

		t, err := task.New(ctx, name, path, s.cfg.ForRoutine(name), s.popts)
		if err != nil {
			return fmt.Errorf("appending routine %q: %w", name, err)
		}

		s.tasks[key] = t
		s.queue = append(s.queue, t)
		if err := s.graph.AddVertex(t); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return fmt.Errorf("adding task %q to graph: %w", key, err)
		}
		s.rg.Node(key, styleFor(t.Outcome))

		ctxlog.FromContext(ctx).Debug("Appended task",
			"routine", key,
			"path", path,
			"outcome", t.Outcome.String(),
		)
	}
	return nil
}

func styleFor(o task.Outcome) render.Style {
	switch o {
	case task.OutcomeMissing:
		return render.StyleMissing
	case task.OutcomeParseFailed:
		return render.StyleParseFailed
	default:
		return render.StyleDiscovered
	}
}

// Populate drains the discovery queue, following calls breadth-first until
// the graph is closed, then runs interprocedural enrichment over it.
//
// For each call site the first matching rule wins: dead-listed callees are
// dropped without trace; blacklisted callees get a visual marker but no
// node; a non-expanding task contributes no children at all; ignored
// callees get a marker node without expansion; everything else becomes a
// task and an edge.
func (s *Scheduler) Populate(ctx context.Context) error {
	log := ctxlog.FromContext(ctx)

	for len(s.queue) > 0 {
		t := s.queue[0]
		s.queue = s.queue[1:]

		tctx := ctxlog.With(ctx, "caller", t.Key())
		for _, child := range t.Children() {
			switch {
			case deadlist.Has(child):
				continue
			case t.Blacklisted(child):
				s.rg.Node(child, render.StyleBlacklisted)
				s.rg.Edge(t.Key(), child)
				continue
			case !t.Options.Expand:
				log.Debug("Not expanding routine", "routine", t.Key(), "child", child)
				continue
			case t.Ignored(child):
				s.rg.Node(child, render.StyleIgnored)
				s.rg.Edge(t.Key(), child)
				continue
			}

			if err := s.Append(tctx, child); err != nil {
				return err
			}
			err := s.graph.AddEdge(t.Key(), child)
			switch {
			case errors.Is(err, graph.ErrEdgeAlreadyExists):
			case errors.Is(err, graph.ErrEdgeCreatesCycle):
				return fmt.Errorf("call cycle at %q -> %q: %w", t.Key(), child, err)
			case err != nil:
				return fmt.Errorf("adding edge %q -> %q: %w", t.Key(), child, err)
			}
			s.rg.Edge(t.Key(), child)
		}
	}

	return s.enrich(ctx)
}

// enrich attaches callee signatures across the whole graph, including the
// extra routines each task's enrich list names.
func (s *Scheduler) enrich(ctx context.Context) error {
	routines := s.Routines()

	for _, t := range s.Tasks() {
		extras := routines[:len(routines):len(routines)]
		for _, name := range t.Options.Enrich {
			parsed, err := s.enrichRoutines(ctx, name)
			if err != nil {
				return fmt.Errorf("enriching %q: %w", t.Key(), err)
			}
			extras = append(extras, parsed...)
		}
		t.Enrich(extras)
	}
	return nil
}

func (s *Scheduler) enrichRoutines(ctx context.Context, name string) ([]*frontend.Routine, error) {
	if t, ok := s.tasks[ident.Canon(name)]; ok && t.Routine != nil {
		return []*frontend.Routine{t.Routine}, nil
	}
	path, err := s.index.Resolve(name)
	if err != nil {
		return nil, err
	}
	file, err := frontend.ParseFile(ctx, path, s.popts)
	if err != nil {
		return nil, err
	}
	return file.AllSubroutines(), nil
}

// Process applies the transformation to every parsed routine, callees
// before callers. Tasks without a routine are skipped but still count as
// visited.
func (s *Scheduler) Process(ctx context.Context, tr transform.Transformation) error {
	order, err := graph.StableTopologicalSort(s.graph, func(a, b string) bool { return a < b })
	if err != nil {
		return fmt.Errorf("ordering task graph: %w", err)
	}

	log := ctxlog.FromContext(ctx)
	for i := len(order) - 1; i >= 0; i-- {
		t := s.tasks[order[i]]
		if t == nil {
			continue
		}
		if t.Routine != nil {
			if err := tr.Apply(ctx, t.Routine, t, s); err != nil {
				return fmt.Errorf("processing routine %q: %w", t.Key(), err)
			}
			log.Debug("Processed routine", "routine", t.Key())
		}
		style := render.StyleProcessed
		if ident.NewSet(t.Options.Whitelist...).Has(t.Name()) {
			style = render.StyleWhitelisted
		}
		s.rg.Node(t.Key(), style)
		s.processed = append(s.processed, t)
	}
	return nil
}

// Task returns the task registered under name, if any.
func (s *Scheduler) Task(name string) (*task.Task, bool) {
	t, ok := s.tasks[ident.Canon(name)]
	return t, ok
}

// Tasks returns every task in the graph, ordered by canonical name.
func (s *Scheduler) Tasks() []*task.Task {
	keys := make([]string, 0, len(s.tasks))
	for k := range s.tasks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*task.Task, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.tasks[k])
	}
	return out
}

// Processed returns the tasks in the order Process visited them.
func (s *Scheduler) Processed() []*task.Task {
	return s.processed
}

// Routines returns the parsed routines of every task in the graph, ordered
// by canonical task name.
func (s *Scheduler) Routines() []*frontend.Routine {
	var out []*frontend.Routine
	for _, t := range s.Tasks() {
		if t.Routine != nil {
			out = append(out, t.Routine)
		}
	}
	return out
}

// Edges returns the graph's caller-to-callee pairs.
func (s *Scheduler) Edges() ([][2]string, error) {
	edges, err := s.graph.Edges()
	if err != nil {
		return nil, err
	}
	out := make([][2]string, 0, len(edges))
	for _, e := range edges {
		out = append(out, [2]string{e.Source, e.Target})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out, nil
}

// Index exposes the source index backing this run.
func (s *Scheduler) Index() *source.Index {
	return s.index
}
