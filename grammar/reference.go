package grammar

import "github.com/dekarrin/gudgeon/location"

// Reference is an unresolved mention of a symbol by name, as written in
// grammar source: a bare name, a dotted `module.Name` import path, or
// either with a multiplicity suffix (`?`, `+`, `*`) and optional separator
// (`Name+[Sep]`). PGFile.resolve replaces every Reference with the Symbol
// it names, materializing a synthesized symbol first if the multiplicity
// requires desugaring.
type Reference struct {
	Name         string
	Location     location.Location
	Multiplicity Multiplicity

	// Separator is the reference to the separator symbol for a `+[Sep]` or
	// `*[Sep]` reference, or nil if none was given.
	Separator *Reference

	resolvedSeparator Symbol
}

// NewReference returns a plain (multiplicity MultOne, no separator)
// Reference to name.
func NewReference(name string, loc location.Location) *Reference {
	return &Reference{Name: name, Location: loc, Multiplicity: MultOne}
}

// HasSeparator reports whether this reference carries a separator.
func (r *Reference) HasSeparator() bool { return r.Separator != nil }

// separatorName returns the resolved separator's name, or "" if this
// reference has no separator. Valid only after resolution has visited this
// reference's separator.
func (r *Reference) separatorName() string {
	if r.resolvedSeparator == nil {
		return ""
	}
	return r.resolvedSeparator.Name()
}
