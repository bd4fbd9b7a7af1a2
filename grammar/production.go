package grammar

// ProductionRHS is the right-hand side of a Production. Two views are
// exposed over the same underlying slots: Raw keeps EMPTY in place exactly
// as written (a production with no other symbols is `[EMPTY]`, never `[]`),
// while Logical elides it, matching how a runtime parser would see children
// arrive (EMPTY contributes no value).
type ProductionRHS []Symbol

// Raw returns every RHS slot, including EMPTY.
func (rhs ProductionRHS) Raw() []Symbol { return rhs }

// Logical returns the RHS with every EMPTY slot elided.
func (rhs ProductionRHS) Logical() []Symbol {
	out := make([]Symbol, 0, len(rhs))
	for _, s := range rhs {
		if s != Symbol(Empty) {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the logical length: the raw slot count minus any EMPTY slots.
func (rhs ProductionRHS) Len() int {
	n := 0
	for _, s := range rhs {
		if s == Symbol(Empty) {
			n++
		}
	}
	return len(rhs) - n
}

// At returns the first non-EMPTY slot starting at raw index idx, walking
// forward over any EMPTY encountered along the way, or nil if idx runs off
// the end. This mirrors the quirky indexing parglare's ProductionRHS uses
// internally; well-formed grammars only ever place a lone EMPTY as an
// entire RHS, so in practice At either returns RHS[idx] unchanged or nil.
func (rhs ProductionRHS) At(idx int) Symbol {
	for idx < len(rhs) {
		if rhs[idx] != Symbol(Empty) {
			return rhs[idx]
		}
		idx++
	}
	return nil
}

// Production is one alternative right-hand side of a nonterminal rule.
type Production struct {
	// LHS is the nonterminal this production belongs to. Set to the
	// canonical (unified) NonTerminal once collect-and-unify has run.
	LHS *NonTerminal

	// RHS is this alternative's symbol sequence. Reference values are
	// replaced in place with resolved Symbol values during resolve phase.
	RHS ProductionRHS

	// Assignments holds one entry per named match (`name=Sym` or
	// `name?=Sym`) anywhere in RHS, keyed by name.
	Assignments map[string]*Assignment

	Assoc    Assoc
	Priority int

	// Dynamic, Nops, and Nopse are the three GLR disambiguation hints a
	// production may carry (`dynamic`, `nops`, `nopse` in grammar source).
	Dynamic bool
	Nops    bool
	Nopse   bool

	// ProdID is this production's position in the grammar-wide enumeration
	// (0 is always the augmented start production), assigned by
	// Grammar.enumerateProductions.
	ProdID int

	// ProdSymbolID is this production's position among only its LHS's own
	// alternatives (0-based), also assigned during enumeration.
	ProdSymbolID int
}

// String renders the production the way grammar source would: `LHS: a b c`.
func (p *Production) String() string {
	s := p.LHS.Name() + ":"
	for _, sym := range p.RHS.Raw() {
		s += " " + sym.Name()
	}
	return s
}
