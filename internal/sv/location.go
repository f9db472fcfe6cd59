package sv

import "github.com/svprune/svprune/internal/pos"

// SourceLocation and SourceSpan are re-exported from internal/pos so callers
// within and outside this package share one definition without sv and
// reporter importing each other.
type (
	SourceLocation = pos.SourceLocation
	SourceSpan     = pos.SourceSpan
)

// UnknownSpan returns a span for a buffer when no finer-grained position is
// available.
func UnknownSpan(buffer BufferID) SourceSpan {
	return pos.UnknownSpan(pos.BufferID(buffer))
}
