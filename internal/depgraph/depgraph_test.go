package depgraph_test

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/svprune/svprune/internal/sv"
	"github.com/svprune/svprune/internal/svfixture"
)

// pathSet converts a slice of BufferID dependencies into their canonical
// paths so expected/actual diffs read as file names rather than opaque
// handles.
func pathSet(sm *sv.SourceManager, ids []sv.BufferID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, sm.FullPath(id))
	}
	return out
}

// TestInstanceEdgeAddedForChildModule checks the instance-edge rule: a
// containing buffer depends on the buffer that defines each module it
// instantiates.
func TestInstanceEdgeAddedForChildModule(t *testing.T) {
	f := svfixture.Build(t, []string{"leaf.sv", "top.sv"}, map[string]string{
		"top.sv":  "module top;\n  leaf u_leaf();\nendmodule\n",
		"leaf.sv": "module leaf;\nendmodule\n",
	}, "top", nil)

	g := f.Graph()
	sm := f.Adapter.SourceManager()
	topID, _ := sm.BufferByPath(filepath.Join(f.Dir, "top.sv"))

	deps := pathSet(sm, g.Dependencies(topID))
	want := []string{filepath.Join(f.Dir, "leaf.sv")}
	if diff := cmp.Diff(want, deps, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("top.sv dependencies mismatch (-want +got):\n%s", diff)
	}
}

// TestImplicitMacroEdgePicksLatestPrecedingExporter checks the
// implicit-macro-edge rule: among user-listed buffers preceding the user in
// load order that export the macro, the latest (highest load_order) one
// wins.
func TestImplicitMacroEdgePicksLatestPrecedingExporter(t *testing.T) {
	f := svfixture.Build(t, []string{"first.sv", "second.sv", "top.sv"}, map[string]string{
		"first.sv":  "`define WIDTH 8\nmodule first;\nendmodule\n",
		"second.sv": "`define WIDTH 16\nmodule second;\nendmodule\n",
		"top.sv":    "module top;\n  initial $display(`WIDTH);\nendmodule\n",
	}, "top", nil)

	g := f.Graph()
	sm := f.Adapter.SourceManager()
	topID, _ := sm.BufferByPath(filepath.Join(f.Dir, "top.sv"))

	deps := pathSet(sm, g.Dependencies(topID))
	require.Equal(t, []string{filepath.Join(f.Dir, "second.sv")}, deps)
}

// TestBufferForPathRoundTrips checks that every loaded buffer's canonical
// path resolves back to its own BufferID.
func TestBufferForPathRoundTrips(t *testing.T) {
	f := svfixture.Build(t, []string{"top.sv"}, map[string]string{
		"top.sv": "module top;\nendmodule\n",
	}, "top", nil)

	g := f.Graph()
	sm := f.Adapter.SourceManager()
	topID, ok := sm.BufferByPath(filepath.Join(f.Dir, "top.sv"))
	require.True(t, ok)

	found, ok := g.BufferForPath(filepath.Join(f.Dir, "top.sv"))
	require.True(t, ok)
	require.Equal(t, topID, found)
}
