// Package svfixture builds small on-disk SystemVerilog file sets for the
// tests of internal/order and internal/depgraph, so neither package
// reinvents "write these
// files to a temp dir and run the front end" on its own. The front end reads
// real files for include resolution, so fixtures are written to a temp
// directory rather than held in memory.
package svfixture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/svprune/svprune/internal/depgraph"
	"github.com/svprune/svprune/internal/frontend"
	"github.com/svprune/svprune/internal/gather"
	"github.com/svprune/svprune/internal/sv"
)

// Fixture is one gathered-and-elaborated SystemVerilog file set ready for
// the Graph Builder, Orderer, or Classifier to consume.
type Fixture struct {
	Adapter frontend.Adapter
	Root    *sv.Root
	Inputs  *gather.FileSet
	Dir     string
}

// Build writes files (path relative to a fresh temp dir -> content) to disk,
// gathers them as explicit sources in the order given by order rather than
// map iteration order (so load_order is deterministic across test runs; Go
// map iteration is randomized), parses and elaborates top, and returns the resulting
// Fixture. It calls t.Fatal on any unexpected error.
func Build(t *testing.T, order []string, files map[string]string, top string, incdirs []string) *Fixture {
	t.Helper()
	dir := t.TempDir()

	var sources []string
	for _, rel := range order {
		content, ok := files[rel]
		if !ok {
			t.Fatalf("svfixture: %q listed in order but not in files", rel)
		}
		abs := filepath.Join(dir, rel)
		writeFile(t, abs, content)
		sources = append(sources, abs)
	}

	absIncdirs := make([]string, len(incdirs))
	for i, d := range incdirs {
		absIncdirs[i] = filepath.Join(dir, d)
	}

	inputs, err := gather.Gather(gather.Args{Sources: sources, IncludeDirs: absIncdirs})
	if err != nil {
		t.Fatalf("svfixture: gather: %v", err)
	}

	sm := sv.NewSourceManager()
	for _, p := range inputs.Paths() {
		content, err := readFile(p)
		if err != nil {
			// +incdir+ directories are gathered as paths too but are not
			// files; skip anything that isn't a regular readable file.
			continue
		}
		sm.Load(p, sv.KindSource, content, true)
	}

	adapter := sv.NewNativeAdapter(sm, absIncdirs)
	if err := adapter.ParseAll(); err != nil {
		t.Fatalf("svfixture: parse: %v", err)
	}
	root, err := adapter.Elaborate(top)
	if err != nil {
		t.Fatalf("svfixture: elaborate: %v", err)
	}

	return &Fixture{Adapter: adapter, Root: root, Inputs: inputs, Dir: dir}
}

// Graph builds the dependency graph over f, a thin wrapper so callers don't
// need to import internal/depgraph themselves just to call Build.
func (f *Fixture) Graph() *depgraph.Graph {
	return depgraph.Build(f.Adapter, f.Root, f.Inputs)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("svfixture: mkdir for %q: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("svfixture: writing %q: %v", path, err)
	}
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
