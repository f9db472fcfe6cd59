// Package pos holds the buffer-handle and source-position types shared by
// the sv front end and the reporter package, so the reporter can name
// buffer positions without importing the front end.
package pos

import "fmt"

// BufferID is an opaque handle for a loaded source buffer, minted by a
// sv.SourceManager in load order. The zero value never refers to a real
// buffer.
type BufferID int32

// Invalid is the sentinel BufferID used where no buffer is known.
const Invalid BufferID = 0

func (id BufferID) String() string {
	return fmt.Sprintf("buffer#%d", int32(id))
}

// SourceLocation pinpoints a single offset within a buffer, in line/column
// form.
type SourceLocation struct {
	Buffer BufferID
	Line   int // 1-based
	Col    int // 1-based
}

func (l SourceLocation) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Buffer, l.Line, l.Col)
}

// Before reports whether l occurs strictly before other in the same buffer.
// Locations in different buffers are never ordered relative to one another.
func (l SourceLocation) Before(other SourceLocation) bool {
	if l.Buffer != other.Buffer {
		return false
	}
	if l.Line != other.Line {
		return l.Line < other.Line
	}
	return l.Col < other.Col
}

// SourceSpan is a half-open range [Start, End) used to attribute
// diagnostics to a directive or token.
type SourceSpan struct {
	Start SourceLocation
	End   SourceLocation
}

func (s SourceSpan) String() string {
	if s.Start == s.End {
		return s.Start.String()
	}
	return fmt.Sprintf("%s-%d:%d", s.Start, s.End.Line, s.End.Col)
}

// UnknownSpan returns a span for a buffer when no finer-grained position is
// available.
func UnknownSpan(buffer BufferID) SourceSpan {
	loc := SourceLocation{Buffer: buffer, Line: 1, Col: 1}
	return SourceSpan{Start: loc, End: loc}
}
