package classify_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/svprune/svprune/internal/classify"
	"github.com/svprune/svprune/internal/gather"
	"github.com/svprune/svprune/internal/sv"
)

// write creates path with content and returns path, for tests that build a
// SourceManager directly rather than through svfixture (classify needs no
// elaboration, only a SourceManager, an Adapter for Node(), and an
// order slice it is handed already topologically sorted).
func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// TestIncludeVisibility covers the visibility rule: defs.vh is included by
// top.sv; when defs.vh is not itself a listed input it is include-only
// (Includes but not Sources); when it is also listed it appears in both.
func TestIncludeVisibility(t *testing.T) {
	dir := t.TempDir()
	defsPath := write(t, dir, "defs.vh", "`define WIDTH 8\n")
	topPath := write(t, dir, "top.sv", "`include \"defs.vh\"\nmodule top;\nendmodule\n")

	for _, alsoListed := range []bool{false, true} {
		sm := sv.NewSourceManager()
		topID := sm.Load(topPath, sv.KindSource, mustRead(t, topPath), true)
		inputs := gather.NewFileSet()
		inputs.Add(topPath)
		if alsoListed {
			inputs.Add(defsPath)
			// Loading defsPath as a listed source before ParseAll keeps its
			// Kind as KindSource even though it is also `included, matching
			// SourceManager.Load's dedup-on-path rule.
			sm.Load(defsPath, sv.KindSource, mustRead(t, defsPath), true)
		}

		adapter := sv.NewNativeAdapter(sm, nil)
		require.NoError(t, adapter.ParseAll())

		order := []sv.BufferID{topID}
		for _, id := range sm.AllBuffers() {
			if id != topID {
				order = append(order, id)
			}
		}

		res := classify.Classify(order, adapter, inputs)
		require.Contains(t, res.Includes, defsPath)
		if alsoListed {
			require.Contains(t, res.Sources, defsPath)
		} else {
			require.NotContains(t, res.Sources, defsPath)
		}
		require.Contains(t, res.Sources, topPath)
	}
}

// TestLibraryFileExcludedFromSources checks that a library file is
// excluded from Sources regardless of listing status.
func TestLibraryFileExcludedFromSources(t *testing.T) {
	dir := t.TempDir()
	libPath := write(t, dir, "lib_mod.v", "module lib_mod;\nendmodule\n")

	sm := sv.NewSourceManager()
	libID := sm.Load(libPath, sv.KindLibrary, mustRead(t, libPath), true)
	sm.SetLibrary(libID, "mylib")

	inputs := gather.NewFileSet()
	inputs.AddLibrary(libPath, "mylib")

	adapter := sv.NewNativeAdapter(sm, nil)
	require.NoError(t, adapter.ParseAll())

	res := classify.Classify([]sv.BufferID{libID}, adapter, inputs)
	require.Equal(t, []string{libPath}, res.LibraryFiles)
	require.Empty(t, res.Sources)
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
