// Package reporter defines svprune's error taxonomy and the sink used to
// surface diagnostics and warnings: a Diagnostic error type carrying an
// optional source position, with the fatal/non-fatal split expressed as a Kind enum
// rather than a type hierarchy so callers can switch on one value instead of
// a type assertion chain.
package reporter

import (
	"fmt"

	"github.com/svprune/svprune/internal/pos"
)

// Kind enumerates the conditions the pipeline can report. These are data,
// not distinct Go types: every Diagnostic carries exactly one Kind.
type Kind int

const (
	// KindParseFatal: the front end could not parse the sources.
	KindParseFatal Kind = iota
	// KindDiagnosticsFatal: front-end diagnostics were not successfully reported.
	KindDiagnosticsFatal
	// KindTopModuleCountInvalid: zero or more than one top instance.
	KindTopModuleCountInvalid
	// KindCycleDetected: a back-edge was found during the final DFS.
	KindCycleDetected
	// KindCacheMiss is internal and always recovered locally; it is logged,
	// never returned as an error, but is listed here so the taxonomy stays
	// complete.
	KindCacheMiss
	// KindCacheWriteFailed: writing the cache file failed. Non-fatal: it is
	// reported but does not change the exit code if results were printed.
	KindCacheWriteFailed
)

func (k Kind) String() string {
	switch k {
	case KindParseFatal:
		return "ParseFatal"
	case KindDiagnosticsFatal:
		return "DiagnosticsFatal"
	case KindTopModuleCountInvalid:
		return "TopModuleCountInvalid"
	case KindCycleDetected:
		return "CycleDetected"
	case KindCacheMiss:
		return "CacheMiss"
	case KindCacheWriteFailed:
		return "CacheWriteFailed"
	default:
		return "Unknown"
	}
}

// Fatal reports whether diagnostics of this kind must abort the pipeline.
func (k Kind) Fatal() bool {
	switch k {
	case KindParseFatal, KindDiagnosticsFatal, KindTopModuleCountInvalid, KindCycleDetected:
		return true
	default:
		return false
	}
}

// Diagnostic is a single reported condition, optionally positioned in
// source. It implements error; GetPosition returns its Span, which is the
// zero SourceSpan when the diagnostic is not positioned.
type Diagnostic struct {
	Kind Kind
	Msg  string
	Span pos.SourceSpan
}

func (d *Diagnostic) Error() string {
	if d.Span == (pos.SourceSpan{}) {
		return fmt.Sprintf("[%s] %s", d.Kind, d.Msg)
	}
	return fmt.Sprintf("%s: [%s] %s", d.Span, d.Kind, d.Msg)
}

// GetPosition returns the source span the diagnostic is attributed to.
func (d *Diagnostic) GetPosition() pos.SourceSpan {
	return d.Span
}

// Errorf builds a Diagnostic for kind with a formatted message and no
// source position.
func Errorf(kind Kind, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// ErrorAt builds a Diagnostic for kind positioned at span.
func ErrorAt(kind Kind, span pos.SourceSpan, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Msg: fmt.Sprintf(format, args...), Span: span}
}

// Reporter receives diagnostics and warnings as the pipeline runs. The
// default implementation, Collector, is used unless the CLI is wired to a
// custom error and warning reporter instead.
type Reporter interface {
	HandleDiagnostic(*Diagnostic)
	HandleWarning(*Diagnostic)
}

// Collector is the default Reporter: it records every diagnostic and
// every warning, and surfaces the first fatal diagnostic via Error(). It
// does not stop the run itself.
type Collector struct {
	Diagnostics []*Diagnostic
	Warnings    []*Diagnostic
	firstFatal  *Diagnostic
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) HandleDiagnostic(d *Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
	if d.Kind.Fatal() && c.firstFatal == nil {
		c.firstFatal = d
	}
}

func (c *Collector) HandleWarning(d *Diagnostic) {
	c.Warnings = append(c.Warnings, d)
}

// Error returns the first fatal diagnostic collected, or nil if none was
// reported.
func (c *Collector) Error() error {
	if c.firstFatal == nil {
		return nil
	}
	return c.firstFatal
}
