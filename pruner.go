// Package svprune is the root orchestration package: it wires the Input
// Gatherer, Cache Layer, Front-End Adapter, Dependency Graph Builder,
// Topological Orderer, and Result Classifier into a single pipeline,
// end to end. A Pruner holds the configuration shared across a run and
// exposes one entry point, Run, that executes every stage in order and
// returns the first fatal error; non-fatal conditions (cache miss, cache
// write failure) go to the Pruner's reporter.Reporter as warnings. The
// pipeline is single-threaded:
// the Orderer's DFS is one sequential walk over a graph the cache
// decision gates entirely, so there is no independent stage work to
// run concurrently.
package svprune

import (
	"os"

	"github.com/svprune/svprune/internal/cache"
	"github.com/svprune/svprune/internal/classify"
	"github.com/svprune/svprune/internal/depgraph"
	"github.com/svprune/svprune/internal/frontend"
	"github.com/svprune/svprune/internal/gather"
	"github.com/svprune/svprune/internal/order"
	"github.com/svprune/svprune/internal/sv"
	"github.com/svprune/svprune/reporter"
)

// Args is the full argument surface a Pruner run needs: the top module
// name plus the gatherer and front-end argument surface forwarded unchanged.
type Args struct {
	Top        string
	Gather     gather.Args
	IncludeDir []string // +incdir+ paths, also forwarded to the front end for `include resolution
	CachePath  string   // empty disables caching
}

// Result is the Pruner's output: the classified path sets (sources,
// includes, library files), plus whether this run was served from cache
// (useful for tests and verbose CLI output).
type Result struct {
	Sources      []string
	Includes     []string
	LibraryFiles []string
	CacheHit     bool
}

// NewAdapterFunc constructs the Front-End Adapter for a run. It exists so
// tests and alternative front ends can substitute a different
// frontend.Adapter; the default, DefaultAdapterFactory, returns svprune's
// own native adapter.
type NewAdapterFunc func(sm *sv.SourceManager, incdirs []string) frontend.Adapter

// DefaultAdapterFactory builds svprune's native preprocessor/elaborator
// front end (internal/sv), the only implementation this repository ships.
func DefaultAdapterFactory(sm *sv.SourceManager, incdirs []string) frontend.Adapter {
	return sv.NewNativeAdapter(sm, incdirs)
}

// Pruner runs one end-to-end pruning invocation. The zero value is not
// usable; construct with New.
type Pruner struct {
	Reporter       reporter.Reporter
	AdapterFactory NewAdapterFunc
}

// New returns a Pruner reporting diagnostics to rep (a reporter.Collector
// is used if rep is nil) using the default native front end.
func New(rep reporter.Reporter) *Pruner {
	if rep == nil {
		rep = reporter.NewCollector()
	}
	return &Pruner{Reporter: rep, AdapterFactory: DefaultAdapterFactory}
}

// Prepare gathers args' inputs, the cheap, read-only half of a run: it
// walks the file system and command files but touches no parser. Run uses
// it to decide cache hit or miss before paying for a front-end pass.
func (p *Pruner) Prepare(args Args) (*gather.FileSet, error) {
	inputs, err := gather.Gather(args.Gather)
	if err != nil {
		return nil, reporter.Errorf(reporter.KindParseFatal, "gathering inputs: %v", err)
	}
	return inputs, nil
}

// Run executes the full pipeline for args: gather inputs, consult the
// cache, and on a miss run the front end, graph builder, orderer, and
// classifier, writing a fresh cache entry before returning.
func (p *Pruner) Run(args Args) (Result, error) {
	inputs, err := p.Prepare(args)
	if err != nil {
		return Result{}, err
	}

	if args.CachePath != "" {
		if rec, ok := cache.TryLoad(args.CachePath, inputs); ok {
			return Result{
				Sources:      rec.Result,
				Includes:     rec.ResultIncludes,
				LibraryFiles: rec.ResultLibraryFiles,
				CacheHit:     true,
			}, nil
		}
		p.Reporter.HandleWarning(reporter.Errorf(reporter.KindCacheMiss, "cache miss or absent at %q, recomputing", args.CachePath))
	}

	result, err := p.runFull(args, inputs)
	if err != nil {
		return Result{}, err
	}

	if args.CachePath != "" {
		if err := cache.Write(args.CachePath, inputs, result.Sources, result.Includes, result.LibraryFiles); err != nil {
			p.Reporter.HandleWarning(reporter.Errorf(reporter.KindCacheWriteFailed, "writing cache to %q: %v", args.CachePath, err))
		}
	}

	return result, nil
}

// runFull runs the front end, graph builder, orderer, and classifier
// stages: the work a cache miss reduces to.
//
// A ParseAll failure aborts the run with reporter.KindParseFatal, as do an
// Elaborate error, a top-module count other than one, and a cycle in the
// final order.
func (p *Pruner) runFull(args Args, inputs *gather.FileSet) (Result, error) {
	sm := sv.NewSourceManager()
	for _, path := range inputs.Paths() {
		content, kind, ok, err := loadBuffer(path, inputs)
		if err != nil {
			return Result{}, reporter.Errorf(reporter.KindParseFatal, "reading %q: %v", path, err)
		}
		if !ok {
			continue
		}
		id := sm.Load(path, kind, content, true)
		if lib := inputs.Library(path); lib != "" {
			sm.SetLibrary(id, lib)
		}
	}

	adapter := p.AdapterFactory(sm, args.IncludeDir)
	if err := adapter.ParseAll(); err != nil {
		return Result{}, reporter.Errorf(reporter.KindParseFatal, "parsing sources: %v", err)
	}

	root, err := adapter.Elaborate(args.Top)
	if err != nil {
		return Result{}, reporter.Errorf(reporter.KindDiagnosticsFatal, "elaborating %q: %v", args.Top, err)
	}
	if len(root.TopInstances) != 1 {
		return Result{}, reporter.Errorf(reporter.KindTopModuleCountInvalid,
			"expected exactly one top module named %q, found %d", args.Top, len(root.TopInstances))
	}

	g := depgraph.Build(adapter, root, inputs)
	top := root.TopInstances[0].Definition

	sorted, err := order.Sort(g, top)
	if err != nil {
		return Result{}, err
	}

	classified := classify.Classify(sorted, adapter, inputs)
	return Result{
		Sources:      classified.Sources,
		Includes:     classified.Includes,
		LibraryFiles: classified.LibraryFiles,
	}, nil
}

// loadBuffer reads path's content and determines its Kind from inputs'
// bookkeeping. A directory (e.g. a gathered +incdir+ path, which Gather
// adds to the FileSet purely so it participates in cache hashing) is
// skipped rather than loaded as a buffer, since it is not source text.
func loadBuffer(path string, inputs *gather.FileSet) (content string, kind sv.Kind, ok bool, err error) {
	kind = sv.KindSource
	if inputs.IsLibrary(path) {
		kind = sv.KindLibrary
	}
	info, statErr := os.Stat(path)
	if statErr != nil || info.IsDir() {
		return "", kind, false, nil
	}
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return "", kind, false, readErr
	}
	return string(data), kind, true, nil
}
