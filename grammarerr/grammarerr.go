// Package grammarerr defines the single error kind surfaced by every stage
// of grammar compilation: collection, unification, reference resolution,
// recognizer binding, and finalization.
package grammarerr

import (
	"fmt"

	"github.com/dekarrin/gudgeon/location"
	"github.com/dekarrin/rosed"
)

const detailWrapWidth = 76

// Error is the grammar compiler's sole error type. It always carries a
// human-readable message and, where one was available at the point of
// failure, the source Location that caused it.
//
// Error is terminal: there is no partial-grammar recovery anywhere in this
// package. Once one is returned, the Grammar or PGFile under construction
// must be discarded.
type Error struct {
	msg      string
	detail   string
	loc      *location.Location
	wrapped  error
}

// New returns an Error with no known source location.
func New(msg string, args ...interface{}) *Error {
	return &Error{msg: fmt.Sprintf(msg, args...)}
}

// At returns an Error attached to the given source Location.
func At(loc location.Location, msg string, args ...interface{}) *Error {
	return &Error{msg: fmt.Sprintf(msg, args...), loc: &loc}
}

// Wrap returns an Error that wraps cause, attached to the given source
// Location. Unwrap will return cause.
func Wrap(cause error, loc location.Location, msg string, args ...interface{}) *Error {
	return &Error{msg: fmt.Sprintf(msg, args...), loc: &loc, wrapped: cause}
}

// WithDetail attaches additional multi-line detail text (e.g. a
// position-context excerpt) that FullMessage will include, wrapped, below
// the primary message. It returns e for chaining.
func (e *Error) WithDetail(detail string) *Error {
	e.detail = detail
	return e
}

// Error returns the primary error message, without location or detail. It
// satisfies the standard error interface.
func (e *Error) Error() string {
	if e.loc != nil {
		return fmt.Sprintf("%s: %s", e.loc.String(), e.msg)
	}
	return e.msg
}

// Unwrap returns the error this Error wraps, if any.
func (e *Error) Unwrap() error {
	return e.wrapped
}

// Location returns the source Location attached to this error, or nil if
// none was available.
func (e *Error) Location() *location.Location {
	return e.loc
}

// FullMessage returns a complete, human-oriented rendering of the error:
// the location (if any), the message, and any wrapped detail text, wrapped
// to a terminal-friendly width the way parse-table conflict reports are
// formatted elsewhere in this codebase.
func (e *Error) FullMessage() string {
	msg := e.Error()
	if e.detail == "" {
		return msg
	}
	wrapped := rosed.Edit(e.detail).Wrap(detailWrapWidth).String()
	return msg + "\n" + wrapped
}
