package sv

// InstanceSymbol is one module instantiation discovered while elaborating
// the design. Definition names the buffer whose module declaration defines
// the instantiated module.
type InstanceSymbol struct {
	ModuleName   string
	InstanceName string
	Definition   BufferID
	Children     []*InstanceSymbol
}

// Root is the compiled instance tree: TopInstances is the ordered list of
// top-level module instances rooted at the user-selected top module.
type Root struct {
	TopInstances []*InstanceSymbol
}

// moduleDecl records where a module, interface, or package was declared
// and the textual span of its body, used to find instantiations nested
// inside it.
type moduleDecl struct {
	name   string
	buffer BufferID
	body   string // text from just after the declared name up to its matching end keyword
}

// Elaborator builds a Root from the buffers a Preprocessor has already
// scanned. It implements only the subset of elaboration the core pipeline
// needs: module declaration/instantiation resolution, package import
// resolution, and interface-port peer references.
type Elaborator struct {
	sm      *SourceManager
	pp      *Preprocessor
	modules map[string]moduleDecl
}

// NewElaborator returns an Elaborator that will scan every buffer sm and
// pp already know about for module/interface/package declarations and
// their instantiations.
func NewElaborator(sm *SourceManager, pp *Preprocessor) *Elaborator {
	return &Elaborator{sm: sm, pp: pp, modules: make(map[string]moduleDecl)}
}

// Elaborate scans every buffer for declarations (pass one), then for
// references within each declaration's body (pass two), and returns the
// instance tree rooted at the module named top. Elaborate itself always
// succeeds if the module is found; it is the caller's job to reject a top
// instance count other than one before the dependency graph is built.
func (e *Elaborator) Elaborate(top string) (*Root, error) {
	for _, id := range e.sm.AllBuffers() {
		if e.sm.Kind(id) == KindUnnamed {
			continue
		}
		e.scanDeclarations(id)
	}

	decl, ok := e.modules[top]
	if !ok {
		return &Root{}, nil
	}
	visiting := make(map[string]bool)
	inst := e.buildInstance(decl, top, visiting)
	return &Root{TopInstances: []*InstanceSymbol{inst}}, nil
}

// scanDeclarations finds every `module NAME` / `interface NAME` /
// `package NAME` declaration in buffer id and records its body text
// (everything up to the matching `endmodule`/`endinterface`/`endpackage`)
// for the reference pass.
func (e *Elaborator) scanDeclarations(id BufferID) {
	content := e.sm.Content(id)
	rr := newRuneReader([]byte(content))
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
		case isIdentStart(r):
			word := rr.readIdentifier()
			if word != "module" && word != "interface" && word != "package" {
				continue
			}
			endKeyword := "end" + word
			skipSpace(rr)
			if !isIdentStart(peekRune(rr)) {
				continue
			}
			name := rr.readIdentifier()
			bodyStart := rr.pos
			bodyEnd := findMatchingEnd(rr, endKeyword)
			e.modules[name] = moduleDecl{
				name:   name,
				buffer: id,
				body:   string(content[bodyStart:bodyEnd]),
			}
		default:
			rr.advance()
		}
	}
}

// findMatchingEnd consumes runes until it finds endKeyword as a standalone
// identifier, returning the offset just before it (leaving the cursor
// positioned after endKeyword). If endKeyword is never found, it consumes
// to the end of the buffer.
func findMatchingEnd(rr *runeReader, endKeyword string) int {
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
		case isIdentStart(r):
			before := rr.pos
			word := rr.readIdentifier()
			if word == endKeyword {
				return before
			}
		default:
			rr.advance()
		}
	}
	return rr.pos
}

func skipSpace(rr *runeReader) {
	for !rr.eof() {
		r, _ := rr.peek()
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			rr.advance()
			continue
		}
		break
	}
}

// buildInstance recursively resolves the instantiations and peer
// references found in decl's body. visiting guards against infinite
// recursion on a cyclic design; reporting the cycle as a fatal error is the
// Topological Orderer's job, so this pass only needs to terminate, not
// diagnose.
func (e *Elaborator) buildInstance(decl moduleDecl, instanceName string, visiting map[string]bool) *InstanceSymbol {
	inst := &InstanceSymbol{
		ModuleName:   decl.name,
		InstanceName: instanceName,
		Definition:   decl.buffer,
	}
	if visiting[decl.name] {
		return inst
	}
	visiting[decl.name] = true
	defer delete(visiting, decl.name)

	for _, ref := range e.scanReferences(decl) {
		switch ref.kind {
		case refInstance:
			childDecl, ok := e.modules[ref.name]
			if !ok {
				continue
			}
			inst.Children = append(inst.Children, e.buildInstance(childDecl, ref.label, visiting))
		case refImport, refInterfacePort:
			if target, ok := e.modules[ref.name]; ok {
				e.sm.AddPeerDependency(decl.buffer, target.buffer)
			}
		}
	}
	return inst
}

type refKind int

const (
	refInstance refKind = iota
	refImport
	refInterfacePort
)

type reference struct {
	kind  refKind
	name  string
	label string
}

// scanReferences walks decl's body looking for:
//   - `import NAME::...;` — a peer dependency on the package NAME.
//   - `NAME label (` where NAME is a known module/interface — a
//     hierarchical instantiation. Function calls of the same shape are not
//     told apart from instantiations.
//   - a known NAME used as a port type (`NAME.modport label`, or
//     `NAME label.`) — a peer dependency on the interface.
func (e *Elaborator) scanReferences(decl moduleDecl) []reference {
	var refs []reference
	rr := newRuneReader([]byte(decl.body))
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
		case isIdentStart(r):
			word := rr.readIdentifier()
			if word == "import" {
				skipSpace(rr)
				if isIdentStart(peekRune(rr)) {
					pkg := rr.readIdentifier()
					refs = append(refs, reference{kind: refImport, name: pkg})
				}
				continue
			}
			if _, ok := e.modules[word]; ok {
				skipSpace(rr)
				if peekRune(rr) == '.' {
					// NAME.modport label form: an interface port.
					refs = append(refs, reference{kind: refInterfacePort, name: word})
					continue
				}
				if isIdentStart(peekRune(rr)) {
					save := rr.pos
					label := rr.readIdentifier()
					skipSpace(rr)
					if r, _ := rr.peek(); r == '(' {
						refs = append(refs, reference{kind: refInstance, name: word, label: label})
					} else if r, _ := rr.peek(); r == '.' {
						// NAME label.modport form: an interface port.
						refs = append(refs, reference{kind: refInterfacePort, name: word, label: label})
					} else {
						rr.pos = save
					}
				}
				continue
			}
		default:
			rr.advance()
		}
	}
	return refs
}
