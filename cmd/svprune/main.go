// Command svprune prunes a SystemVerilog/Verilog file list down to the
// files reachable from a designated top module, in leaf-first compile
// order, plus the include directories and library files a downstream tool
// still needs.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	svprune "github.com/svprune/svprune"
	"github.com/svprune/svprune/internal/classify"
	"github.com/svprune/svprune/internal/gather"
	"github.com/svprune/svprune/internal/output"
	"github.com/svprune/svprune/reporter"
)

// version is overridden at link time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		top            string
		cacheTo        string
		outputPath     string
		outputFlagsTo  string
		verificCompat  bool
		libFiles       []string
		libDirs        []string
		libExts        []string
		incDirs        []string
		defines        []string
		commandFiles   []string
	)

	cmd := &cobra.Command{
		Use:     "svprune [sources...]",
		Short:   "Prune a SystemVerilog/Verilog file list to the files reachable from a top module",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(runConfig{
				top:           top,
				cacheTo:       cacheTo,
				outputPath:    outputPath,
				outputFlagsTo: outputFlagsTo,
				verificCompat: verificCompat,
				sources:       args,
				libFiles:      libFiles,
				libDirs:       libDirs,
				libExts:       libExts,
				incDirs:       incDirs,
				defines:       defines,
				commandFiles:  commandFiles,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&top, "top", "", "top module name (required)")
	flags.StringVar(&cacheTo, "cache-to", "", "cache file path; empty disables caching")
	flags.StringVar(&outputPath, "output", "", "destination file for the pruned list (default: stdout)")
	flags.StringVar(&outputFlagsTo, "output-flags-to", "", "alternative sink emitting flag strings instead of bare paths")
	flags.BoolVar(&verificCompat, "verific-compat", false, "restrict flag output to a compatible subset (+libext+ instead of -Y, -f instead of -C)")
	flags.StringArrayVarP(&libFiles, "lib-file", "v", nil, "library file, optionally \"name=path\" (repeatable)")
	flags.StringArrayVarP(&libDirs, "lib-dir", "y", nil, "library search directory (repeatable)")
	flags.StringArrayVarP(&libExts, "lib-ext", "Y", nil, "library file extension consulted against --lib-dir, e.g. .v, i.e. +libext+ (repeatable)")
	flags.StringArrayVar(&incDirs, "incdir", nil, "include search directory, i.e. +incdir+ (repeatable)")
	flags.StringArrayVar(&defines, "define", nil, "preprocessor define, i.e. +define+ (repeatable)")
	flags.StringArrayVarP(&commandFiles, "command-file", "f", nil, "nested argument file, i.e. -f/-C (repeatable)")

	cmd.MarkFlagRequired("top")

	return cmd
}

type runConfig struct {
	top           string
	cacheTo       string
	outputPath    string
	outputFlagsTo string
	verificCompat bool
	sources       []string
	libFiles      []string
	libDirs       []string
	libExts       []string
	incDirs       []string
	defines       []string
	commandFiles  []string
}

func run(cfg runConfig) error {
	gatherArgs := gather.Args{
		Sources:      cfg.sources,
		LibraryFiles: parseLibraryFiles(cfg.libFiles),
		LibraryDirs:  cfg.libDirs,
		LibraryExts:  cfg.libExts,
		CommandFiles: cfg.commandFiles,
		IncludeDirs:  cfg.incDirs,
	}

	rep := reporter.NewCollector()
	p := svprune.New(rep)

	result, err := p.Run(svprune.Args{
		Top:        cfg.top,
		Gather:     gatherArgs,
		IncludeDir: cfg.incDirs,
		CachePath:  cfg.cacheTo,
	})
	for _, w := range rep.Warnings {
		fmt.Fprintln(os.Stderr, w)
	}
	if err != nil {
		return err
	}

	classified := toClassifyResult(result)

	if cfg.outputFlagsTo != "" {
		inputs, gatherErr := gather.Gather(gatherArgs)
		if gatherErr != nil {
			return gatherErr
		}
		if err := writeTo(cfg.outputFlagsTo, func(w *os.File) error {
			return output.WriteFlags(w, classified, output.FlagsArgs{
				Defines:     cfg.defines,
				LibraryDirs: cfg.libDirs,
				LibraryExts: cfg.libExts,
				Inputs:      inputs,
				OutputPath:  cfg.outputFlagsTo,
				Compat:      cfg.verificCompat,
			})
		}); err != nil {
			return err
		}
	}

	return writeTo(cfg.outputPath, func(w *os.File) error {
		return output.WritePlain(w, classified)
	})
}

// toClassifyResult adapts svprune.Result to classify.Result, the shape
// output's formatters consume; the two are kept separate so the root
// package does not need to import internal/classify's package path into
// its own public Result type.
func toClassifyResult(r svprune.Result) classify.Result {
	return classify.Result{Sources: r.Sources, Includes: r.Includes, LibraryFiles: r.LibraryFiles}
}

func parseLibraryFiles(raw []string) []gather.LibraryFile {
	out := make([]gather.LibraryFile, 0, len(raw))
	for _, r := range raw {
		name, path := "", r
		if idx := strings.IndexByte(r, '='); idx >= 0 {
			name, path = r[:idx], r[idx+1:]
		}
		out = append(out, gather.LibraryFile{Name: name, Path: path})
	}
	return out
}

func writeTo(path string, fn func(w *os.File) error) error {
	if path == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("svprune: opening %q: %w", path, err)
	}
	defer f.Close()
	return fn(f)
}
