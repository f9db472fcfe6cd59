package sv

import "fmt"

// NativeAdapter is svprune's own front end: it implements frontend.Adapter
// without binding to any external parser, combining a Preprocessor and an
// Elaborator over one SourceManager. It is kept in package sv (rather than
// importing internal/frontend and declaring `var _ frontend.Adapter =
// (*NativeAdapter)(nil)`) so internal/sv never depends on the package that
// depends on it; frontend.Adapter is satisfied structurally.
type NativeAdapter struct {
	sm *SourceManager
	pp *Preprocessor
}

// NewNativeAdapter returns a NativeAdapter over sm, resolving `include
// directives against incdirs when a relative lookup from the including
// file's own directory fails.
func NewNativeAdapter(sm *SourceManager, incdirs []string) *NativeAdapter {
	return &NativeAdapter{
		sm: sm,
		pp: NewPreprocessor(sm, incdirs),
	}
}

// ParseAll implements frontend.Adapter. It scans every buffer currently
// loaded in the SourceManager, discovering include-only buffers as it
// goes, and builds the SourceNode for each.
func (a *NativeAdapter) ParseAll() error {
	if err := a.pp.ScanAll(); err != nil {
		return fmt.Errorf("sv: parse: %w", err)
	}
	return nil
}

// Elaborate implements frontend.Adapter.
func (a *NativeAdapter) Elaborate(top string) (*Root, error) {
	elab := NewElaborator(a.sm, a.pp)
	return elab.Elaborate(top)
}

// SourceManager implements frontend.Adapter.
func (a *NativeAdapter) SourceManager() *SourceManager {
	return a.sm
}

// RawTokens implements frontend.Adapter.
func (a *NativeAdapter) RawTokens(buffer BufferID) ([]MacroRef, error) {
	return a.pp.RawTokens(buffer), nil
}

// Node implements frontend.Adapter. It exposes the SourceNode built for a
// buffer (ExportedMacros/UnresolvedMacros/Includes) so the Dependency Graph
// Builder can compute implicit macro edges.
func (a *NativeAdapter) Node(buffer BufferID) *SourceNode {
	return a.pp.Node(buffer)
}
