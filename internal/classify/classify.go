// Package classify partitions the Orderer's reverse-topological buffer
// sequence into primary sources, includes, and library files, applying the
// visibility rule that an explicitly-listed include is kept in both the
// source and include result sets, while a purely-discovered one is only in
// the latter.
package classify

import (
	"github.com/svprune/svprune/internal/frontend"
	"github.com/svprune/svprune/internal/gather"
	"github.com/svprune/svprune/internal/sv"
)

// Result is the three output sets, each deduplicated and insertion-ordered
// so repeated runs over the same inputs produce identical output.
type Result struct {
	Sources      []string
	Includes     []string
	LibraryFiles []string
}

// Classify partitions order (the Orderer's output) using adapter for
// per-buffer path/kind/include lookups and inputs to tell a listed source
// from an include-discovered one. Anonymous buffers (empty path) are
// silently omitted from every set.
func Classify(order []sv.BufferID, adapter frontend.Adapter, inputs *gather.FileSet) Result {
	sm := adapter.SourceManager()
	var res Result
	seenSource := make(map[string]bool)
	seenInclude := make(map[string]bool)
	seenLibrary := make(map[string]bool)

	for _, id := range order {
		path := sm.FullPath(id)
		if path == "" {
			continue
		}

		if sm.Kind(id) == sv.KindLibrary {
			if !seenLibrary[path] {
				seenLibrary[path] = true
				res.LibraryFiles = append(res.LibraryFiles, path)
			}
			continue
		}

		if node := adapter.Node(id); node != nil {
			for _, inc := range node.Includes {
				if !seenInclude[inc.Path] {
					seenInclude[inc.Path] = true
					res.Includes = append(res.Includes, inc.Path)
				}
			}
		}

		// A buffer discovered only through an include directive, never
		// explicitly listed by the user, is excluded from Sources (but
		// already recorded in Includes above, either by this loop iteration
		// or an earlier including buffer's).
		isIncludeOnly := sm.Kind(id) == sv.KindInclude && !inputs.Contains(path)
		if isIncludeOnly {
			continue
		}
		if !seenSource[path] {
			seenSource[path] = true
			res.Sources = append(res.Sources, path)
		}
	}

	return res
}
