// Package depgraph builds the dependency graph used to order and classify
// a pruned file list: it merges instance edges (a containing buffer depends
// on each module it instantiates), include edges (recorded directly by the
// preprocessor), and implicit macro-resolution edges (a buffer that uses an
// unresolved macro depends on whichever preceding buffer exports it) into
// the single relation the rest of the pipeline consults.
package depgraph

import (
	"github.com/svprune/svprune/internal/frontend"
	"github.com/svprune/svprune/internal/gather"
	"github.com/svprune/svprune/internal/sv"
)

// Graph is the merged dependency relation for one run. Its adjacency lives
// inside the adapter's SourceManager (which already tracks insertion-ordered,
// deduplicated dependency/peer-dependency edges per buffer); Graph adds the
// instance and implicit-macro edges to that same store.
type Graph struct {
	sm *sv.SourceManager
}

// Build merges all three edge kinds into the SourceManager's adjacency and
// returns the resulting Graph. inputs is not consulted: implicit macro edge
// resolution reads load_order from the SourceManager, where only buffers
// loaded as listed are eligible exporters.
func Build(adapter frontend.Adapter, root *sv.Root, inputs *gather.FileSet) *Graph {
	sm := adapter.SourceManager()
	g := &Graph{sm: sm}

	addInstanceEdges(sm, root.TopInstances, sv.Invalid)
	addImplicitMacroEdges(adapter, sm)

	return g
}

// addInstanceEdges walks the instance tree depth-first, adding an edge
// from each instance's containing buffer to its definition buffer. The
// top-level instance itself has no containing buffer and so contributes no
// edge for itself, only for its children.
func addInstanceEdges(sm *sv.SourceManager, instances []*sv.InstanceSymbol, containing sv.BufferID) {
	for _, inst := range instances {
		if containing != sv.Invalid {
			sm.AddDependency(containing, inst.Definition)
		}
		addInstanceEdges(sm, inst.Children, inst.Definition)
	}
}

// addImplicitMacroEdges adds an implicit dependency for every unresolved
// macro usage: the latest (highest-load_order) user-listed buffer
// preceding it in load order that exports the macro becomes a dependency.
// Macro names are walked in first-usage textual order
// (sv.SourceNode.UnresolvedOrder) so the edges this adds to the
// SourceManager's insertion-ordered adjacency are reproducible across runs.
func addImplicitMacroEdges(adapter frontend.Adapter, sm *sv.SourceManager) {
	ids := sm.AllBuffers()
	for _, id := range ids {
		node := adapter.Node(id)
		if node == nil || len(node.UnresolvedOrder) == 0 {
			continue
		}
		loadOrder := sm.LoadOrder(id)
		for _, name := range node.UnresolvedOrder {
			best := sv.Invalid
			bestLoad := -1
			for _, cand := range ids {
				candLoad := sm.LoadOrder(cand)
				if candLoad == sv.UnlistedLoadOrder || candLoad >= loadOrder {
					continue
				}
				candNode := adapter.Node(cand)
				if candNode == nil {
					continue
				}
				if _, exported := candNode.ExportedMacros[name]; !exported {
					continue
				}
				if candLoad > bestLoad {
					bestLoad = candLoad
					best = cand
				}
			}
			if best != sv.Invalid {
				sm.AddDependency(id, best)
			}
		}
	}
}

// SourceManager exposes the underlying source manager so the Orderer and
// Classifier can answer full_path/all_buffers/kind queries without Graph
// growing a forwarding method for every SourceManager accessor.
func (g *Graph) SourceManager() *sv.SourceManager {
	return g.sm
}

// Dependencies returns the direct dependency set for id, combining include,
// instance, and implicit macro edges in the fixed order they were added.
func (g *Graph) Dependencies(id sv.BufferID) []sv.BufferID {
	return g.sm.Dependencies(id)
}

// PeerDependencies returns the peer (non-hierarchical) dependency set for
// id, as recorded by the elaborator's import/interface-port scan.
func (g *Graph) PeerDependencies(id sv.BufferID) []sv.BufferID {
	return g.sm.PeerDependencies(id)
}

// BufferForPath returns the buffer loaded at the given canonical path.
func (g *Graph) BufferForPath(path string) (sv.BufferID, bool) {
	return g.sm.BufferByPath(path)
}
