package sv

// IncludeRef records one textual include directive: the path it resolved
// to, and the location of the directive that caused the include.
type IncludeRef struct {
	Path     string
	Location SourceLocation
}

// MacroRef records a macro name together with the location of the
// definition or usage that produced this record.
type MacroRef struct {
	Name     string
	Location SourceLocation
}

// SourceNode is the preprocessor-level view of one buffer, built once while
// scanning it and frozen once scanning finishes. The Dependency Graph
// Builder records its edges in the SourceManager, not here.
type SourceNode struct {
	Buffer BufferID
	Path   string

	// LoadOrder mirrors SourceManager.LoadOrder(Buffer); cached here so
	// callers that only hold a SourceNode needn't round-trip through the
	// SourceManager.
	LoadOrder int

	// Includes is the ordered set of (included-path, directive-location)
	// pairs, in textual order, exactly as they appear in the buffer.
	Includes []IncludeRef

	// ExportedMacros holds, per macro name, the location of its first
	// definition in this buffer. A macro defined more than once keeps only
	// the first definition's location, matching a traditional single-pass
	// preprocessor (the last `define` before a use wins, but for export
	// visibility to *other* buffers the first definition in load order is
	// what later buffers would have seen had they included this one).
	ExportedMacros map[string]SourceLocation

	// UnresolvedMacros holds macros used in this buffer before any
	// preceding same-buffer definition, keyed by name, recording the first
	// such usage's location. A name here never also appears in
	// ExportedMacros with an earlier location: the two sets are disjoint
	// for macros defined before use.
	UnresolvedMacros map[string]SourceLocation

	// UnresolvedOrder lists the names in UnresolvedMacros in first-usage
	// textual order, so the Graph Builder can add implicit macro edges in a
	// fixed, reproducible order rather than a map's iteration order.
	UnresolvedOrder []string

	// Dependencies is the set of paths this buffer includes. AddInclude is
	// the only writer; everything else treats it as read-only.
	Dependencies map[string]bool
}

// NewSourceNode returns an empty SourceNode for the given buffer.
func NewSourceNode(id BufferID, path string, loadOrder int) *SourceNode {
	return &SourceNode{
		Buffer:           id,
		Path:             path,
		LoadOrder:        loadOrder,
		ExportedMacros:   make(map[string]SourceLocation),
		UnresolvedMacros: make(map[string]SourceLocation),
		Dependencies:     make(map[string]bool),
	}
}

// AddInclude records a textual include directive in textual order and adds
// the included path as a direct dependency.
func (n *SourceNode) AddInclude(path string, loc SourceLocation) {
	n.Includes = append(n.Includes, IncludeRef{Path: path, Location: loc})
	n.Dependencies[path] = true
}

// Export records a macro definition at loc, keeping only the first
// definition seen for name (see ExportedMacros doc).
func (n *SourceNode) Export(name string, loc SourceLocation) {
	if _, ok := n.ExportedMacros[name]; !ok {
		n.ExportedMacros[name] = loc
	}
}

// Use records a macro usage at loc. If name has already been exported in
// this buffer at a location before loc, the usage is resolved locally and
// nothing is recorded. Otherwise it is marked unresolved, keeping the
// first usage location seen.
func (n *SourceNode) Use(name string, loc SourceLocation) {
	if exportLoc, ok := n.ExportedMacros[name]; ok && exportLoc.Before(loc) {
		return
	}
	if _, ok := n.UnresolvedMacros[name]; !ok {
		n.UnresolvedMacros[name] = loc
		n.UnresolvedOrder = append(n.UnresolvedOrder, name)
	}
}
