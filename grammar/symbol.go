// Package grammar holds the canonical in-memory representation of a
// compiled grammar: symbols, productions, recognizers, and the
// collect/resolve/finalize pipeline that turns parsed grammar source into a
// validated Grammar ready for an LR/GLR table builder.
package grammar

import (
	"github.com/dekarrin/gudgeon/action"
	"github.com/dekarrin/gudgeon/location"
	"github.com/dekarrin/gudgeon/recognizer"
)

// Multiplicity is the repetition tag on a Reference (MULT_* in the spec
// this package implements).
type Multiplicity string

const (
	// MultOne is the (implicit) default: the reference is to exactly one
	// instance of the symbol, with no desugaring involved.
	MultOne Multiplicity = "1"
	// MultOptional is `?`: zero or one instances.
	MultOptional Multiplicity = "0..1"
	// MultOneOrMore is `+`: one or more instances, optionally separated.
	MultOneOrMore Multiplicity = "1..*"
	// MultZeroOrMore is `*`: zero or more instances, optionally separated.
	MultZeroOrMore Multiplicity = "0..*"
)

// Assoc is production associativity, used for shift/reduce disambiguation.
type Assoc int

const (
	AssocNone Assoc = iota
	AssocLeft
	AssocRight
)

// DefaultPriority is the priority assigned to a terminal or production when
// none is given explicitly in the grammar source.
const DefaultPriority = 10

// Tristate represents the three-valued `finish` terminal attribute:
// explicitly true, explicitly false, or left for the table builder to infer.
type Tristate int

const (
	TristateUnset Tristate = iota
	TristateTrue
	TristateFalse
)

// ReservedNames may not be used as the name of a user-declared rule.
var ReservedNames = map[string]bool{
	"EOF":   true,
	"STOP":  true,
	"EMPTY": true,
}

// SpecialNames carry defined semantics but, unlike ReservedNames, may still
// be declared by a user grammar (KEYWORD triggers boundary rewriting,
// LAYOUT names the whitespace/comment rule the scanner should skip).
var SpecialNames = map[string]bool{
	"KEYWORD": true,
	"LAYOUT":  true,
}

// Symbol is the sum type described by the data model: either a Terminal or
// a NonTerminal. Both variants are always used as pointers so that
// unification (replacing every reference to a name with one shared object)
// is a matter of pointer identity.
type Symbol interface {
	// Name is the symbol's local (unqualified) name.
	Name() string

	// FQN is the fully-qualified name: the chain of import module names
	// this symbol was reached through, dot-joined, ending in Name.
	FQN() string

	// Location is where this symbol was declared, or nil if unknown (true
	// for the EMPTY/EOF/STOP sentinels and the augmented start symbol).
	Location() *location.Location

	// ImportedWith is the PGFileImport this symbol was first imported
	// through, or nil if it belongs to the file it was declared in.
	ImportedWith() *PGFileImport

	// ActionName is the action name chosen in the grammar source (an
	// `@name` annotation or an implicit desugaring action), or "" if none.
	ActionName() string

	// Action is the resolved user- or built-in-supplied action, overriding
	// GrammarAction when both are present.
	Action() action.Action

	// GrammarAction is the action implied by the grammar itself (e.g. the
	// `collect` action synthesized for a materialized one-or-more symbol).
	GrammarAction() action.Action

	setImportedWith(*PGFileImport)
	setActionName(string)
	setAction(action.Action)
	setGrammarAction(action.Action)
}

type symbolBase struct {
	name         string
	loc          *location.Location
	importedWith *PGFileImport

	actionName    string
	resolvedAct   action.Action
	grammarAction action.Action
}

func (s *symbolBase) Name() string { return s.name }

func (s *symbolBase) FQN() string {
	if s.importedWith != nil {
		return s.importedWith.FQN() + "." + s.name
	}
	return s.name
}

func (s *symbolBase) Location() *location.Location { return s.loc }

func (s *symbolBase) ImportedWith() *PGFileImport { return s.importedWith }

func (s *symbolBase) setImportedWith(i *PGFileImport) { s.importedWith = i }

func (s *symbolBase) ActionName() string { return s.actionName }

func (s *symbolBase) setActionName(n string) { s.actionName = n }

func (s *symbolBase) Action() action.Action { return s.resolvedAct }

func (s *symbolBase) setAction(a action.Action) { s.resolvedAct = a }

func (s *symbolBase) GrammarAction() action.Action { return s.grammarAction }

func (s *symbolBase) setGrammarAction(a action.Action) { s.grammarAction = a }

func (s *symbolBase) String() string { return s.FQN() }

// Terminal is a low-level token symbol bound to a Recognizer.
type Terminal struct {
	symbolBase

	// Recognizer matches this terminal's tokens in the input. Never nil
	// once bindRecognizers has run successfully, unless recognizer checks
	// were explicitly disabled for the Grammar.
	Recognizer recognizer.Recognizer

	// Priority disambiguates lexical conflicts; higher wins.
	Priority int

	// Finish controls scanning short-circuit behavior: Unset lets the table
	// builder infer it.
	Finish Tristate

	// Prefer marks this recognizer as preferred when multiple recognizers
	// match at the same position and implicit disambiguation is silent.
	Prefer bool

	// Dynamic requests dynamic disambiguation for conflicts involving this
	// terminal.
	Dynamic bool

	// Keyword is set by the finalizer's keyword-boundary rewrite (spec
	// §4.4 step 4); false until then.
	Keyword bool
}

// NewTerminal returns a Terminal named name with no recognizer bound yet.
// Priority defaults to DefaultPriority per spec.
func NewTerminal(name string, loc *location.Location) *Terminal {
	return &Terminal{
		symbolBase: symbolBase{name: name, loc: loc},
		Priority:   DefaultPriority,
	}
}

// NonTerminal is a grammar rule: a name plus its alternative Productions.
type NonTerminal struct {
	symbolBase

	// Productions are the alternative right-hand sides for this rule, in
	// source order (or desugared-materialization order for synthesized
	// symbols).
	Productions []*Production

	// Attributes records one PGAttribute per distinct named match used
	// anywhere across this rule's alternatives (spec §3's PGAttribute).
	Attributes []PGAttribute
}

// NewNonTerminal returns a NonTerminal named name with no productions yet.
func NewNonTerminal(name string, loc *location.Location) *NonTerminal {
	return &NonTerminal{symbolBase: symbolBase{name: name, loc: loc}}
}

// SetActionName records name as the rule-level `@name` annotation for nt.
// Exported so a grammar source parser (outside this package, to avoid an
// import cycle) can set it while building a NonTerminal from parsed text.
func (nt *NonTerminal) SetActionName(name string) { nt.setActionName(name) }

// CheckReservedName reports an error if name may not be used for a
// user-declared rule (spec: EOF, STOP, EMPTY are reserved outright).
func CheckReservedName(name string) error {
	if ReservedNames[name] {
		return errReservedName{name}
	}
	return nil
}

type errReservedName struct{ name string }

func (e errReservedName) Error() string {
	return "\"" + e.name + "\" is a reserved name and may not be used for a rule"
}

// AddAttribute records name as a named match used somewhere in this rule,
// upgrading an existing attribute of the same name in place rather than
// appending a duplicate. Per the resolved Open Question in spec.md §9, a
// second *conflicting* assignment to the same name is rejected by the
// caller before this is reached; this only ever sees compatible repeats.
func (nt *NonTerminal) AddAttribute(attr PGAttribute) {
	for i := range nt.Attributes {
		if nt.Attributes[i].Name == attr.Name {
			return
		}
	}
	nt.Attributes = append(nt.Attributes, attr)
}

// AttributeByName returns the PGAttribute recorded for name, and whether
// one was found.
func (nt *NonTerminal) AttributeByName(name string) (PGAttribute, bool) {
	for _, a := range nt.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return PGAttribute{}, false
}
