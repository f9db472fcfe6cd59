// Package frontend defines the contract the core pipeline requires from a
// SystemVerilog/Verilog front end: parsing, elaboration, and the handful
// of source-manager queries the Dependency Graph Builder and Topological
// Orderer need. internal/sv is the concrete, native implementation; the
// interface exists so the rest of the pipeline never imports internal/sv's
// scanning internals directly.
package frontend

import "github.com/svprune/svprune/internal/sv"

// Adapter is the full surface the core pipeline consumes. A conforming
// implementation may be a native reimplementation of the preprocessor and
// a subset of the elaborator, or a binding to an external parser library.
type Adapter interface {
	// ParseAll triggers parsing of every gathered buffer. A failure here is
	// fatal (reporter.KindParseFatal); the core aborts rather than guess at
	// a partial dependency graph.
	ParseAll() error

	// Elaborate builds the instance tree rooted at the requested top module
	// and returns it. Exactly one top instance must result; any other count
	// is reporter.KindTopModuleCountInvalid.
	Elaborate(top string) (*sv.Root, error)

	// SourceManager exposes the buffer-level queries the Graph Builder and
	// Classifier need: full_path, all_buffers, dependencies, and
	// peer_dependencies.
	SourceManager() *sv.SourceManager

	// RawTokens returns the macro-usage tokens recorded for buffer, in
	// textual order; directives and other tokens are not included.
	RawTokens(buffer sv.BufferID) ([]sv.MacroRef, error)

	// Node returns the preprocessor-level SourceNode built for buffer
	// (exported macros, unresolved macros, include directives). The
	// Dependency Graph Builder needs this finer-grained view, beyond the
	// direct-dependency query, to compute implicit macro edges.
	Node(buffer sv.BufferID) *sv.SourceNode
}
