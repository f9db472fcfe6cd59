package svprune_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	svprune "github.com/svprune/svprune"
	"github.com/svprune/svprune/internal/frontend"
	"github.com/svprune/svprune/internal/gather"
	"github.com/svprune/svprune/internal/sv"
	"github.com/svprune/svprune/reporter"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func gatherArgs(dir string, names ...string) gather.Args {
	var sources []string
	for _, n := range names {
		sources = append(sources, filepath.Join(dir, n))
	}
	return gather.Args{Sources: sources}
}

// TestTwoFileChain covers a simple two-file instantiation chain, end to end.
func TestTwoFileChain(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"top.sv":  "module top;\n  leaf u_leaf();\nendmodule\n",
		"leaf.sv": "module leaf;\nendmodule\n",
	})
	p := svprune.New(nil)
	res, err := p.Run(svprune.Args{
		Top: "top",
		Gather: gatherArgs(dir, "leaf.sv", "top.sv"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "leaf.sv"), filepath.Join(dir, "top.sv")}, res.Sources)
	require.Empty(t, res.Includes)
	require.Empty(t, res.LibraryFiles)
}

// TestUnusedFilePruned covers a gathered file never reached from --top.
func TestUnusedFilePruned(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"top.sv":  "module top;\n  leaf u_leaf();\nendmodule\n",
		"leaf.sv": "module leaf;\nendmodule\n",
		"dead.sv": "module dead;\nendmodule\n",
	})
	p := svprune.New(nil)
	res, err := p.Run(svprune.Args{
		Top:    "top",
		Gather: gatherArgs(dir, "leaf.sv", "top.sv", "dead.sv"),
	})
	require.NoError(t, err)
	require.NotContains(t, res.Sources, filepath.Join(dir, "dead.sv"))
}

// TestMacroPullsHeader covers an `include pulling in a macro-only header.
func TestMacroPullsHeader(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"top.sv":  "`include \"defs.vh\"\nmodule top;\n  initial $display(`WIDTH);\nendmodule\n",
		"defs.vh": "`define WIDTH 8\n",
	})
	p := svprune.New(nil)
	res, err := p.Run(svprune.Args{
		Top:    "top",
		Gather: gatherArgs(dir, "top.sv"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "top.sv")}, res.Sources)
	require.Equal(t, []string{filepath.Join(dir, "defs.vh")}, res.Includes)
}

// TestImplicitMacro covers a macro used without an explicit `include.
func TestImplicitMacro(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"macros.sv": "`define FOO 1\nmodule macros;\nendmodule\n",
		"top.sv":    "module top;\n  initial $display(`FOO);\nendmodule\n",
	})
	p := svprune.New(nil)
	res, err := p.Run(svprune.Args{
		Top:    "top",
		Gather: gatherArgs(dir, "macros.sv", "top.sv"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "macros.sv"), filepath.Join(dir, "top.sv")}, res.Sources)
}

// TestCycle covers a two-module instantiation cycle.
func TestCycle(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.sv": "module a;\n  b u_b();\nendmodule\n",
		"b.sv": "module b;\n  a u_a();\nendmodule\n",
	})
	p := svprune.New(nil)
	_, err := p.Run(svprune.Args{
		Top:    "a",
		Gather: gatherArgs(dir, "a.sv", "b.sv"),
	})
	require.Error(t, err)
	var diag *reporter.Diagnostic
	require.ErrorAs(t, err, &diag)
	require.Equal(t, reporter.KindCycleDetected, diag.Kind)
}

// TestTopModuleCountInvalid covers a --top name matching zero modules.
func TestTopModuleCountInvalid(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"top.sv": "module top;\nendmodule\n",
	})
	p := svprune.New(nil)
	_, err := p.Run(svprune.Args{
		Top:    "nonexistent",
		Gather: gatherArgs(dir, "top.sv"),
	})
	require.Error(t, err)
	var diag *reporter.Diagnostic
	require.ErrorAs(t, err, &diag)
	require.Equal(t, reporter.KindTopModuleCountInvalid, diag.Kind)
}

// countingAdapter wraps an adapter built by svprune.DefaultAdapterFactory
// and counts how many times ParseAll is invoked, so TestCacheHit can assert
// the front end is never re-invoked on a cache hit.
type countingAdapter struct {
	frontend.Adapter
	calls *int
}

func (c countingAdapter) ParseAll() error {
	*c.calls++
	return c.Adapter.ParseAll()
}

// TestCacheHit covers a second run against an unchanged input set.
func TestCacheHit(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"top.sv":  "module top;\n  leaf u_leaf();\nendmodule\n",
		"leaf.sv": "module leaf;\nendmodule\n",
	})
	cachePath := filepath.Join(dir, "cache.json")
	calls := 0

	p := svprune.New(nil)
	p.AdapterFactory = func(sm *sv.SourceManager, incdirs []string) frontend.Adapter {
		return countingAdapter{Adapter: svprune.DefaultAdapterFactory(sm, incdirs), calls: &calls}
	}

	args := svprune.Args{
		Top:       "top",
		Gather:    gatherArgs(dir, "leaf.sv", "top.sv"),
		CachePath: cachePath,
	}

	first, err := p.Run(args)
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Equal(t, 1, calls)

	second, err := p.Run(args)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, 1, calls, "ParseAll must not be invoked again on a cache hit")
	require.Equal(t, first.Sources, second.Sources)
}
