package grammar

import (
	"github.com/dekarrin/gudgeon/grammarerr"
	"github.com/dekarrin/gudgeon/location"
)

// AssignOp is the operator used in a named match: `=` records the matched
// symbol's value, `?=` records only whether it was present (for the
// optional-multiplicity case) as a boolean.
type AssignOp string

const (
	AssignValue  AssignOp = "="
	AssignBool   AssignOp = "?="
)

// Assignment is the metadata recorded for one named match (`name=Sym` or
// `name?=Sym`) within a Production's RHS.
type Assignment struct {
	Name     string
	Op       AssignOp
	Location location.Location

	// Index is this assignment's zero-based position among the raw RHS
	// slots of the production it belongs to.
	Index int

	// Symbol is the referenced symbol: a *Reference before resolve-
	// references has run, and a Symbol afterward. Present as interface{}
	// so a single field can hold either without the caller needing to
	// track a resolution flag separately.
	Symbol interface{}

	Multiplicity Multiplicity
}

// RHSSymbol returns a.Symbol already resolved, or nil with ok=false if
// resolution has not happened yet.
func (a *Assignment) RHSSymbol() (Symbol, bool) {
	sym, ok := a.Symbol.(Symbol)
	return sym, ok
}

// AddAssignment inserts a into assignments, resolving the Open Question on
// duplicate named matches within a single production in favor of a compile
// error: two assignments to the same name within one alternative are
// almost always a copy-paste mistake, and silently keeping only the last
// one would hide which RHS position a translator's code actually reads
// from.
func AddAssignment(assignments map[string]*Assignment, a *Assignment) (map[string]*Assignment, error) {
	if assignments == nil {
		assignments = map[string]*Assignment{}
	}
	if existing, dup := assignments[a.Name]; dup {
		return assignments, grammarerr.At(a.Location,
			"name %q is assigned more than once in this production (previous at %s)",
			a.Name, existing.Location.String())
	}
	assignments[a.Name] = a
	return assignments, nil
}

// PGAttribute summarizes one named match used anywhere in a nonterminal's
// alternatives: the name itself, the multiplicity of the match it came
// from (so a translator knows whether to expect a scalar or a list), and
// whether a `?=` boolean assignment was used for it anywhere.
type PGAttribute struct {
	Name         string
	Multiplicity Multiplicity
	Boolean      bool
}
