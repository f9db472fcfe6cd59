// Package sv is svprune's native SystemVerilog/Verilog front end: a
// preprocessor-level scanner and a minimal elaborator, reimplementing just
// enough of the language to answer the dependency queries the core needs
// (buffer→path, buffer→dependencies, buffer→peer-dependencies, top-instance
// resolution). It does not attempt full parsing, type-checking, or
// elaboration semantics beyond module instantiation.
package sv

import "github.com/svprune/svprune/internal/pos"

// BufferID is an opaque handle for a loaded source buffer, minted by a
// SourceManager in load order. The zero value never refers to a real
// buffer. It is an alias of pos.BufferID so diagnostics positioned by the
// reporter package can name a buffer without importing sv.
type BufferID = pos.BufferID

// Invalid is the sentinel BufferID used where no buffer is known.
const Invalid BufferID = pos.Invalid

// Kind classifies how a buffer entered the compilation.
type Kind int

const (
	KindSource Kind = iota
	KindInclude
	KindLibrary
	KindLibraryMap
	KindCommandFile
	KindUnnamed
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindInclude:
		return "include"
	case KindLibrary:
		return "library"
	case KindLibraryMap:
		return "library-map"
	case KindCommandFile:
		return "command-file"
	case KindUnnamed:
		return "unnamed"
	default:
		return "unknown"
	}
}

// UnlistedLoadOrder is the sentinel load order for buffers that were
// discovered only through an include chain, never explicitly listed by the
// user.
const UnlistedLoadOrder = -1

// buffer is the internal record a SourceManager keeps per loaded file.
type buffer struct {
	id        BufferID
	path      string // canonical absolute path, empty for unnamed buffers
	kind      Kind
	library   string // owning library name, set only for KindLibrary when named via -v name=path
	loadOrder int
	content   string
}

// SourceManager owns every loaded buffer: its path, kind, load order,
// content, and dependency edges. Buffers are registered through Load, by
// the caller for listed inputs and by the Preprocessor for discovered
// includes. The Elaborator adds peer-dependency edges and the Dependency
// Graph Builder adds dependency edges after ParseAll completes.
type SourceManager struct {
	buffers    []*buffer
	byPath     map[string]BufferID
	deps       map[BufferID][]BufferID // direct dependencies, insertion order
	peerDeps   map[BufferID][]BufferID // peer (non-hierarchical) dependencies, insertion order
	depSeen    map[BufferID]map[BufferID]bool
	peerSeen   map[BufferID]map[BufferID]bool
	nextLoad   int
}

// NewSourceManager returns an empty SourceManager.
func NewSourceManager() *SourceManager {
	return &SourceManager{
		byPath:   make(map[string]BufferID),
		deps:     make(map[BufferID][]BufferID),
		peerDeps: make(map[BufferID][]BufferID),
		depSeen:  make(map[BufferID]map[BufferID]bool),
		peerSeen: make(map[BufferID]map[BufferID]bool),
	}
}

// Load registers a new buffer for path with the given kind and content. If
// the path was already loaded, the existing BufferID is returned and no new
// buffer is created: a file included twice, or both listed and included,
// resolves to one buffer.
//
// listed indicates the buffer was present in the user's original input
// list (as opposed to discovered only via an include); it determines
// whether LoadOrder returns UnlistedLoadOrder.
func (sm *SourceManager) Load(path string, kind Kind, content string, listed bool) BufferID {
	if path != "" {
		if id, ok := sm.byPath[path]; ok {
			return id
		}
	}
	id := BufferID(len(sm.buffers) + 1)
	b := &buffer{id: id, path: path, kind: kind, content: content, loadOrder: UnlistedLoadOrder}
	if listed {
		b.loadOrder = sm.nextLoad
		sm.nextLoad++
	}
	sm.buffers = append(sm.buffers, b)
	if path != "" {
		sm.byPath[path] = id
	}
	return id
}

// LoadUnnamed registers an anonymous buffer (e.g. a macro-expansion scratch
// buffer) that has no canonical path and is excluded from all outputs.
func (sm *SourceManager) LoadUnnamed(content string) BufferID {
	return sm.Load("", KindUnnamed, content, false)
}

func (sm *SourceManager) get(id BufferID) *buffer {
	if int(id) < 1 || int(id) > len(sm.buffers) {
		return nil
	}
	return sm.buffers[id-1]
}

// FullPath implements source_manager.full_path.
func (sm *SourceManager) FullPath(id BufferID) string {
	b := sm.get(id)
	if b == nil {
		return ""
	}
	return b.path
}

// Kind reports the BufferKind for id.
func (sm *SourceManager) Kind(id BufferID) Kind {
	b := sm.get(id)
	if b == nil {
		return KindUnnamed
	}
	return b.kind
}

// Library reports the owning library name for a KindLibrary buffer, or ""
// if the library was not explicitly named (-v path, vs. -v name=path).
func (sm *SourceManager) Library(id BufferID) string {
	b := sm.get(id)
	if b == nil {
		return ""
	}
	return b.library
}

// SetLibrary tags id as belonging to the named library.
func (sm *SourceManager) SetLibrary(id BufferID, name string) {
	if b := sm.get(id); b != nil {
		b.library = name
	}
}

// LoadOrder returns the position id occupied in the original input list, or
// UnlistedLoadOrder for buffers discovered only via includes.
func (sm *SourceManager) LoadOrder(id BufferID) int {
	b := sm.get(id)
	if b == nil {
		return UnlistedLoadOrder
	}
	return b.loadOrder
}

// Content returns the buffer's raw text.
func (sm *SourceManager) Content(id BufferID) string {
	b := sm.get(id)
	if b == nil {
		return ""
	}
	return b.content
}

// AllBuffers implements source_manager.all_buffers, in load order.
func (sm *SourceManager) AllBuffers() []BufferID {
	ids := make([]BufferID, 0, len(sm.buffers))
	for _, b := range sm.buffers {
		ids = append(ids, b.id)
	}
	return ids
}

// AddDependency records a direct dependency edge from -> to, deduplicated
// and insertion-ordered so graph traversal is deterministic.
func (sm *SourceManager) AddDependency(from, to BufferID) {
	seen := sm.depSeen[from]
	if seen == nil {
		seen = make(map[BufferID]bool)
		sm.depSeen[from] = seen
	}
	if seen[to] {
		return
	}
	seen[to] = true
	sm.deps[from] = append(sm.deps[from], to)
}

// Dependencies implements source_manager.dependencies: the direct,
// insertion-ordered dependency set for a buffer.
func (sm *SourceManager) Dependencies(id BufferID) []BufferID {
	return sm.deps[id]
}

// AddPeerDependency records a peer (non-hierarchical) dependency edge.
func (sm *SourceManager) AddPeerDependency(from, to BufferID) {
	seen := sm.peerSeen[from]
	if seen == nil {
		seen = make(map[BufferID]bool)
		sm.peerSeen[from] = seen
	}
	if seen[to] {
		return
	}
	seen[to] = true
	sm.peerDeps[from] = append(sm.peerDeps[from], to)
}

// PeerDependencies implements source_manager.peer_dependencies.
func (sm *SourceManager) PeerDependencies(id BufferID) []BufferID {
	return sm.peerDeps[id]
}

// BufferByPath returns the BufferID previously loaded for path, if any.
func (sm *SourceManager) BufferByPath(path string) (BufferID, bool) {
	id, ok := sm.byPath[path]
	return id, ok
}

// Contains reports whether path has already been loaded as a buffer.
func (sm *SourceManager) Contains(path string) bool {
	_, ok := sm.byPath[path]
	return ok
}

// SetContent replaces the stored content for id. Used by the preprocessor
// to attach a buffer's text after registering its path and kind, since an
// include target is loaded (to mint its BufferID) before its file is read.
func (sm *SourceManager) SetContent(id BufferID, content string) {
	if b := sm.get(id); b != nil {
		b.content = content
	}
}
