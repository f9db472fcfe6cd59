// Package output implements two output sinks over a pruned result: a plain
// path list, and a "flags" rendering that reconstitutes a front-end
// argument string a downstream tool can replay directly. Neither format
// does any further pruning; both are thin formatters over classify.Result.
package output

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/svprune/svprune/internal/classify"
	"github.com/svprune/svprune/internal/gather"
)

// FlagsArgs carries the front-end argument surface the flags renderer needs
// to reconstruct, beyond what classify.Result itself holds: the original
// `+define+`, `-y`, and `-Y`/`+libext+` values, plus the inputs set (for
// recovering `-v name=path` naming) and the destination the trailing
// `-C`/`-f` flag should point at.
type FlagsArgs struct {
	Defines     []string
	LibraryDirs []string
	LibraryExts []string
	Inputs      *gather.FileSet
	OutputPath  string
	// Compat selects the `--verific-compat` substitutions: `+libext+<ext>`
	// instead of `-Y <ext>`, and `-f <path>` instead of `-C <path>`.
	Compat bool
}

// WritePlain writes one canonical path per line: leaf-first sources, then
// include paths, then library paths.
func WritePlain(w io.Writer, res classify.Result) error {
	for _, p := range res.Sources {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	for _, p := range res.Includes {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	for _, p := range res.LibraryFiles {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	return nil
}

// WriteFlags writes a deduplicated, insertion-ordered flag string:
// `+define+…`, `+incdir+<parent of include>`, `-y <dir>`, `-Y <ext>` (or
// `+libext+<ext>` under args.Compat), `-v <file>` (or `-v <name>=<path>`
// when named), then a trailing `-C <path>` (or `-f <path>` under
// args.Compat).
func WriteFlags(w io.Writer, res classify.Result, args FlagsArgs) error {
	var tokens []string
	seen := make(map[string]bool)
	add := func(tok string) {
		if seen[tok] {
			return
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}

	for _, d := range args.Defines {
		add("+define+" + d)
	}

	seenDir := make(map[string]bool)
	for _, inc := range res.Includes {
		dir := filepath.Dir(inc)
		if seenDir[dir] {
			continue
		}
		seenDir[dir] = true
		add("+incdir+" + dir)
	}

	for _, dir := range args.LibraryDirs {
		add("-y " + dir)
	}

	for _, ext := range args.LibraryExts {
		if args.Compat {
			add("+libext+" + ext)
		} else {
			add("-Y " + ext)
		}
	}

	for _, lib := range res.LibraryFiles {
		name := ""
		if args.Inputs != nil {
			name = args.Inputs.Library(lib)
		}
		if name != "" {
			add(fmt.Sprintf("-v %s=%s", name, lib))
		} else {
			add("-v " + lib)
		}
	}

	if args.OutputPath != "" {
		if args.Compat {
			add("-f " + args.OutputPath)
		} else {
			add("-C " + args.OutputPath)
		}
	}

	for _, tok := range tokens {
		if _, err := fmt.Fprintln(w, tok); err != nil {
			return err
		}
	}
	return nil
}
