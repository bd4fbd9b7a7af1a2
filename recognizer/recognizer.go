// Package recognizer implements the low-level token matchers bound to
// grammar terminals: literal strings, compiled regular expressions, and the
// three built-in sentinel recognizers (EMPTY, EOF, STOP).
package recognizer

import (
	"regexp"
	"strings"

	"github.com/dekarrin/gudgeon/grammarerr"
	"github.com/dekarrin/gudgeon/location"
	"golang.org/x/text/cases"
)

// Recognizer attempts to match a token at position pos in input. On success
// it returns the matched text and true. On failure it returns ("", false).
// Implementations never search forward from pos; a match is always anchored
// there.
type Recognizer interface {
	// Match attempts to recognize a token at pos. A length-zero match (as
	// used by EMPTY) is valid and distinct from no match.
	Match(input string, pos int) (matched string, ok bool)

	// Name identifies the recognizer for debug output: the literal value for
	// a Literal, the pattern source for a Regex, and the sentinel's name for
	// a Sentinel.
	Name() string
}

// Literal matches a single fixed string, optionally case-insensitively.
type Literal struct {
	Value      string
	IgnoreCase bool

	folded string
}

// NewLiteral returns a Literal recognizer for value.
func NewLiteral(value string, ignoreCase bool) *Literal {
	l := &Literal{Value: value, IgnoreCase: ignoreCase}
	if ignoreCase {
		l.folded = foldCase(value)
	}
	return l
}

func foldCase(s string) string {
	return cases.Fold().String(s)
}

// Match implements Recognizer.
func (l *Literal) Match(input string, pos int) (string, bool) {
	end := pos + len(l.Value)
	if end > len(input) {
		return "", false
	}
	candidate := input[pos:end]
	if l.IgnoreCase {
		if foldCase(candidate) == l.folded {
			return l.Value, true
		}
		return "", false
	}
	if candidate == l.Value {
		return l.Value, true
	}
	return "", false
}

// Name implements Recognizer.
func (l *Literal) Name() string { return l.Value }

// Regex matches input anchored at pos against a compiled regular expression.
// It is never searched; only a match starting exactly at pos counts.
type Regex struct {
	Pattern    string
	IgnoreCase bool

	compiled *regexp.Regexp
}

// NewRegex compiles pattern (with the multiline flag always enabled, and the
// case-insensitive flag added when ignoreCase is set) and returns a Regex
// recognizer, or a *grammarerr.Error reporting the escaped pattern and the
// engine's message on compile failure.
func NewRegex(pattern string, ignoreCase bool, loc location.Location) (*Regex, error) {
	flags := "(?m)"
	if ignoreCase {
		flags = "(?mi)"
	}
	compiled, err := regexp.Compile(flags + pattern)
	if err != nil {
		escaped := escapeControlChars(pattern)
		return nil, grammarerr.Wrap(err, loc,
			"regex compile error in /%s/ (report: %q)", escaped, err.Error())
	}
	return &Regex{Pattern: pattern, IgnoreCase: ignoreCase, compiled: compiled}, nil
}

// Match implements Recognizer. It anchors the match at pos by requiring the
// first matched index to equal pos.
func (r *Regex) Match(input string, pos int) (string, bool) {
	loc := r.compiled.FindStringIndex(input[pos:])
	if loc == nil || loc[0] != 0 {
		return "", false
	}
	return input[pos+loc[0] : pos+loc[1]], true
}

// Name implements Recognizer.
func (r *Regex) Name() string { return r.Pattern }

// FullMatch reports whether the regex matches the entirety of s, used by
// the grammar finalizer to decide whether a literal's value falls under the
// KEYWORD pattern.
func (r *Regex) FullMatch(s string) bool {
	loc := r.compiled.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}

type sentinel struct {
	name string
}

// Match implements Recognizer. EMPTY always matches without consuming
// input; EOF matches only at end of input; STOP never matches user input —
// the automaton builder treats it specially and never calls Match on it
// during scanning.
func (s *sentinel) Match(input string, pos int) (string, bool) {
	switch s.name {
	case "EMPTY":
		return "", true
	case "EOF":
		if pos >= len(input) {
			return "", true
		}
		return "", false
	default: // STOP
		return "", false
	}
}

func (s *sentinel) Name() string { return s.name }

var (
	// Empty always succeeds without consuming input.
	Empty Recognizer = &sentinel{name: "EMPTY"}

	// EOF succeeds only when pos is at the end of the input.
	EOF Recognizer = &sentinel{name: "EOF"}

	// Stop is the internal terminator appended after the user's start
	// symbol. It never matches user input.
	Stop Recognizer = &sentinel{name: "STOP"}
)

// escapeControlChars mirrors parglare's esc_control_characters: render
// control characters in a regex pattern as their escape sequences so a
// compile-error message is printable.
var controlCharReplacer = strings.NewReplacer(
	"\a", `\a`, "\b", `\b`, "\f", `\f`,
	"\n", `\n`, "\r", `\r`, "\t", `\t`, "\v", `\v`,
)

func escapeControlChars(pattern string) string {
	return controlCharReplacer.Replace(pattern)
}
