// Package location provides lazily-evaluated source positions used by the
// grammar frontend to report compile errors with a line and column.
package location

import "fmt"

// Location is a point (or a start/end span) in a grammar source file. Line
// and column are computed on first access rather than at construction, since
// the common case is that a Location is created for every symbol and
// production in a grammar and never looked at again.
type Location struct {
	// FileName is the path to the source file this Location refers to. Empty
	// when the grammar was compiled from an in-memory string.
	FileName string

	// Input is the full source text the Position/EndPosition are offsets
	// into. It is not copied; callers must keep the backing string alive for
	// the lifetime of the Location.
	Input string

	// Position is the absolute byte offset of the start of the location
	// within Input.
	Position int

	// EndPosition is the absolute byte offset of the end of the location. It
	// is zero when the Location is a point rather than a span.
	EndPosition int

	line, column         int
	lineEnd, columnEnd   int
	lineColSet, endColSet bool
}

// New returns a Location pointing at position within input.
func New(fileName, input string, position int) Location {
	return Location{FileName: fileName, Input: input, Position: position}
}

// NewSpan returns a Location covering [start, end) within input.
func NewSpan(fileName, input string, start, end int) Location {
	return Location{FileName: fileName, Input: input, Position: start, EndPosition: end}
}

// Line returns the 1-based line number of Position, computing it on first
// use.
func (l *Location) Line() int {
	l.evaluate()
	return l.line
}

// Column returns the 1-based column number of Position, computing it on
// first use.
func (l *Location) Column() int {
	l.evaluate()
	return l.column
}

// LineEnd returns the 1-based line number of EndPosition. Zero if no span was
// given.
func (l *Location) LineEnd() int {
	if l.EndPosition == 0 {
		return 0
	}
	l.evaluateEnd()
	return l.lineEnd
}

// ColumnEnd returns the 1-based column number of EndPosition. Zero if no
// span was given.
func (l *Location) ColumnEnd() int {
	if l.EndPosition == 0 {
		return 0
	}
	l.evaluateEnd()
	return l.columnEnd
}

func (l *Location) evaluate() {
	if l.lineColSet {
		return
	}
	l.line, l.column = posToLineCol(l.Input, l.Position)
	l.lineColSet = true
}

func (l *Location) evaluateEnd() {
	if l.endColSet {
		return
	}
	l.lineEnd, l.columnEnd = posToLineCol(l.Input, l.EndPosition)
	l.endColSet = true
}

// posToLineCol converts a byte offset in input into a 1-based (line, column)
// pair. Mirrors parglare's pos_to_line_col: walk newlines rather than
// scanning every byte, since inputs are typically small grammar files.
func posToLineCol(input string, position int) (line, column int) {
	if position < 0 || position > len(input) {
		position = len(input)
	}
	line = 1
	lineStart := 0
	for i := 0; i < position; i++ {
		if input[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, position - lineStart + 1
}

// String renders the location as "file:line:col" when a file name is known,
// or "line:col" otherwise. Matches the compact form used throughout the
// corpus for single-line diagnostics (contrast with the multi-line
// positionContext rendering used by grammarerr for the fuller error body).
func (l *Location) String() string {
	if l == nil {
		return "<unknown location>"
	}
	if l.FileName != "" {
		return fmt.Sprintf("%s:%d:%d", l.FileName, l.Line(), l.Column())
	}
	return fmt.Sprintf("%d:%d", l.Line(), l.Column())
}

// Context returns a short excerpt of the input around Position, with
// newlines escaped, for inclusion in error messages. Mirrors
// position_context from original_source/parglare/common.py.
func (l *Location) Context() string {
	const radius = 10
	start := l.Position - radius
	if start < 0 {
		start = 0
	}
	end := l.Position + radius
	if end > len(l.Input) {
		end = len(l.Input)
	}
	before := l.Input[start:l.Position]
	after := l.Input[l.Position:end]
	return escapeNewlines(before) + " **> " + escapeNewlines(after)
}

func escapeNewlines(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, '\\', 'n')
		} else {
			out = append(out, s[i])
		}
	}
	return string(out)
}
