package sv

import (
	"fmt"
	"os"
	"path/filepath"
)

// directiveKeywords are the backtick-prefixed compiler directives that are
// not macro usages. A backtick identifier outside this set is a macro
// reference, per the spec's distinction between `include/`define/etc. and
// `FOO-style usage tokens (mirrors the original's check against
// SyntaxKind::MacroUsage in process_usages).
var directiveKeywords = map[string]bool{
	"include":             true,
	"define":               true,
	"undef":                true,
	"undefineall":          true,
	"ifdef":                true,
	"ifndef":               true,
	"elsif":                true,
	"else":                 true,
	"endif":                true,
	"timescale":            true,
	"default_nettype":      true,
	"resetall":             true,
	"celldefine":           true,
	"endcelldefine":        true,
	"unconnected_drive":    true,
	"nounconnected_drive":  true,
	"line":                 true,
	"pragma":               true,
	"__FILE__":             true,
	"__LINE__":             true,
}

// Preprocessor is svprune's native, preprocessor-level scanner: it
// recognizes include directives, macro-define directives, and macro-usage
// tokens well enough to answer the Dependency Graph Builder's questions,
// without attempting full SystemVerilog parsing.
type Preprocessor struct {
	sm        *SourceManager
	incdirs   []string
	nodes     map[BufferID]*SourceNode
	rawMacros map[BufferID][]MacroRef
}

// NewPreprocessor returns a Preprocessor backed by sm, consulting incdirs
// (in order) to resolve `include directives that are not found relative to
// the including file's own directory.
func NewPreprocessor(sm *SourceManager, incdirs []string) *Preprocessor {
	return &Preprocessor{
		sm:        sm,
		incdirs:   incdirs,
		nodes:     make(map[BufferID]*SourceNode),
		rawMacros: make(map[BufferID][]MacroRef),
	}
}

// Node returns the SourceNode built for id, or nil if id has not been
// scanned.
func (p *Preprocessor) Node(id BufferID) *SourceNode {
	return p.nodes[id]
}

// RawTokens returns every raw macro-usage token recorded for id, in
// textual order.
func (p *Preprocessor) RawTokens(id BufferID) []MacroRef {
	return p.rawMacros[id]
}

// ScanAll scans every buffer currently loaded in sm that has not yet been
// scanned, discovering and loading included buffers as it goes. It
// processes buffers in a worklist rather than recursing directly from
// scanOne so an include found while scanning buffer N is itself scanned
// before ScanAll returns.
func (p *Preprocessor) ScanAll() error {
	worklist := append([]BufferID(nil), p.sm.AllBuffers()...)
	for i := 0; i < len(worklist); i++ {
		id := worklist[i]
		if _, done := p.nodes[id]; done {
			continue
		}
		if p.sm.Kind(id) == KindUnnamed {
			continue
		}
		discovered, err := p.scanOne(id)
		if err != nil {
			return err
		}
		worklist = append(worklist, discovered...)
	}
	return nil
}

// scanOne scans a single buffer's content, returning any newly-loaded
// include buffers so the caller can enqueue them.
func (p *Preprocessor) scanOne(id BufferID) ([]BufferID, error) {
	path := p.sm.FullPath(id)
	node := NewSourceNode(id, path, p.sm.LoadOrder(id))
	p.nodes[id] = node

	content := p.sm.Content(id)
	rr := newRuneReader([]byte(content))
	var discovered []BufferID

	for !rr.eof() {
		r, _ := rr.peek()
		switch {
		case r == '/' && rr.peekAt(1) == '/':
			rr.advance()
			rr.advance()
			rr.skipLineComment()
		case r == '/' && rr.peekAt(1) == '*':
			rr.advance()
			rr.advance()
			rr.skipBlockComment()
		case r == '"':
			rr.advance()
			rr.skipString()
		case r == '`':
			startLoc := rr.loc(id)
			rr.advance()
			if !isIdentStart(peekRune(rr)) {
				continue
			}
			name := rr.readIdentifier()
			if name == "include" {
				inc, err := p.scanInclude(id, path, rr, startLoc)
				if err != nil {
					return nil, err
				}
				if inc != Invalid {
					discovered = append(discovered, inc)
				}
				continue
			}
			if name == "define" {
				p.scanDefine(node, rr, startLoc)
				continue
			}
			if directiveKeywords[name] {
				continue
			}
			// Anything else is a macro-usage token.
			node.Use(name, startLoc)
			p.rawMacros[id] = append(p.rawMacros[id], MacroRef{Name: name, Location: startLoc})
		default:
			rr.advance()
		}
	}
	return discovered, nil
}

func peekRune(rr *runeReader) rune {
	r, _ := rr.peek()
	return r
}

// scanDefine consumes `define NAME ...` up to (but not including) the
// terminating newline; a line ending in a backslash continues the body onto
// the next line. The macro body's content is irrelevant to dependency
// resolution, only the name and definition site matter.
func (p *Preprocessor) scanDefine(node *SourceNode, rr *runeReader, directiveLoc SourceLocation) {
	// skip whitespace between `define and the macro name
	for !rr.eof() {
		r, _ := rr.peek()
		if r == ' ' || r == '\t' {
			rr.advance()
			continue
		}
		break
	}
	if !isIdentStart(peekRune(rr)) {
		return
	}
	name := rr.readIdentifier()
	node.Export(name, directiveLoc)
	// Consume the rest of the line as the macro body; a trailing `\`
	// continues onto the next line.
	for !rr.eof() {
		r, _ := rr.peek()
		if r == '\n' {
			return
		}
		if r == '\\' && rr.peekAt(1) == '\n' {
			rr.advance()
			rr.advance()
			continue
		}
		rr.advance()
	}
}

// scanInclude consumes `include "path"` or `include <path>` and resolves
// the referenced file, loading it into the SourceManager if this is the
// first time it has been seen. It returns Invalid if resolution fails; the
// include is recorded with its literal text regardless, since a missing
// include is the front end's problem to diagnose, not the graph builder's.
func (p *Preprocessor) scanInclude(fromID BufferID, fromPath string, rr *runeReader, directiveLoc SourceLocation) (BufferID, error) {
	for !rr.eof() {
		r, _ := rr.peek()
		if r == ' ' || r == '\t' {
			rr.advance()
			continue
		}
		break
	}
	open, _ := rr.peek()
	var closer rune
	switch open {
	case '"':
		closer = '"'
	case '<':
		closer = '>'
	default:
		return Invalid, nil
	}
	rr.advance()
	start := rr.pos
	for !rr.eof() {
		r, _ := rr.peek()
		if r == closer {
			break
		}
		rr.advance()
	}
	spec := string(rr.data[start:rr.pos])
	if !rr.eof() {
		rr.advance() // closing delimiter
	}

	resolved, err := p.resolveInclude(fromPath, spec)
	if err != nil {
		// Unresolvable include: record the literal spec so it still shows
		// up as a dependency the user can diagnose, but do not fail the
		// whole scan over it.
		node := p.nodes[fromID]
		node.AddInclude(spec, directiveLoc)
		return Invalid, nil
	}

	existed := p.sm.Contains(resolved)
	incID := p.sm.Load(resolved, KindInclude, "", false)
	if !existed {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return Invalid, fmt.Errorf("sv: reading include %q: %w", resolved, err)
		}
		p.sm.SetContent(incID, string(data))
	}

	node := p.nodes[fromID]
	node.AddInclude(resolved, directiveLoc)
	p.sm.AddDependency(fromID, incID)
	return incID, nil
}

// resolveInclude looks for spec relative to the including file's
// directory first, then against each configured include directory in
// order, matching the conventional SystemVerilog include search order.
func (p *Preprocessor) resolveInclude(fromPath, spec string) (string, error) {
	if filepath.IsAbs(spec) {
		if fileExists(spec) {
			return spec, nil
		}
		return "", fmt.Errorf("sv: include %q not found", spec)
	}
	candidate := filepath.Join(filepath.Dir(fromPath), spec)
	if fileExists(candidate) {
		return filepath.Abs(candidate)
	}
	for _, dir := range p.incdirs {
		candidate := filepath.Join(dir, spec)
		if fileExists(candidate) {
			return filepath.Abs(candidate)
		}
	}
	return "", fmt.Errorf("sv: include %q not found", spec)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
