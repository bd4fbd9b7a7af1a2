// Package gcio (grammar compiler I/O) encodes a finalized grammar.Grammar
// to a compact binary form and decodes it back, so a compiled grammar can
// be cached to disk or shipped over the wire without re-parsing and
// re-resolving its source every time.
//
// grammar.Grammar's Symbol and recognizer.Recognizer fields are
// interfaces, and REZI's reflection-based codec (github.com/dekarrin/rezi,
// the same library this toolkit's game-state persistence uses) only knows
// how to walk concrete structs, slices, maps, and primitives. Encode
// therefore flattens a Grammar into a plain-struct snapshot first; Decode
// rebuilds a Grammar from the snapshot by feeding it back through the
// ordinary compile pipeline as a synthetic SourceParser, exercising the
// exact same collection/resolution/finalization code a freshly parsed
// grammar file would.
package gcio

import (
	"fmt"

	"github.com/dekarrin/gudgeon/grammar"
	"github.com/dekarrin/gudgeon/location"
	"github.com/dekarrin/gudgeon/recognizer"
	"github.com/dekarrin/rezi"
)

// snapshot is the flattened, REZI-serializable view of a compiled Grammar.
type snapshot struct {
	StartSymbol string
	Terminals   []terminalDTO
	NonTerms    []nonTerminalDTO
}

type terminalDTO struct {
	Name       string
	ActionName string
	Priority   int
	Finish     int
	Prefer     bool
	Dynamic    bool
	Keyword    bool

	RecKind       string // "literal", "regex", or "" for unbound
	RecValue      string // literal value, or regex pattern
	RecIgnoreCase bool
}

type nonTerminalDTO struct {
	Name        string
	ActionName  string
	Attributes  []attributeDTO
	Productions []productionDTO
}

type attributeDTO struct {
	Name         string
	Multiplicity string
	Boolean      bool
}

type productionDTO struct {
	// RHS holds one entry per raw RHS slot, by symbol name; "EMPTY" stands
	// for the sentinel.
	RHS         []string
	Assoc       int
	Priority    int
	Dynamic     bool
	Nops        bool
	Nopse       bool
	Assignments []assignmentDTO
}

type assignmentDTO struct {
	Name         string
	Op           string
	Index        int
	RefName      string
	Multiplicity string
}

// Encode serializes g to REZI binary form.
func Encode(g *grammar.Grammar) ([]byte, error) {
	snap := snapshot{StartSymbol: g.StartSymbol.Name()}

	g.Iter(func(sym grammar.Symbol) {
		switch s := sym.(type) {
		case *grammar.Terminal:
			snap.Terminals = append(snap.Terminals, terminalToDTO(s))
		case *grammar.NonTerminal:
			snap.NonTerms = append(snap.NonTerms, nonTerminalToDTO(s))
		}
	})

	return rezi.EncBinary(&snap), nil
}

// Decode reconstructs a finalized Grammar from data previously produced by
// Encode.
func Decode(data []byte) (*grammar.Grammar, error) {
	var snap snapshot
	n, err := rezi.DecBinary(data, &snap)
	if err != nil {
		return nil, fmt.Errorf("gcio: REZI decode: %w", err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("gcio: decoded %d/%d bytes, trailing data left over", n, len(data))
	}

	parser := func(_, _ string) (*grammar.ParsedSource, error) {
		return snap.toParsedSource()
	}

	return grammar.FromString("", grammar.CompileOptions{
		Parser:      parser,
		StartSymbol: snap.StartSymbol,
	})
}

func terminalToDTO(t *grammar.Terminal) terminalDTO {
	dto := terminalDTO{
		Name:       t.Name(),
		ActionName: t.ActionName(),
		Priority:   t.Priority,
		Finish:     int(t.Finish),
		Prefer:     t.Prefer,
		Dynamic:    t.Dynamic,
		Keyword:    t.Keyword,
	}
	switch rec := t.Recognizer.(type) {
	case *recognizer.Literal:
		dto.RecKind = "literal"
		dto.RecValue = rec.Value
		dto.RecIgnoreCase = rec.IgnoreCase
	case *recognizer.Regex:
		dto.RecKind = "regex"
		dto.RecValue = rec.Pattern
		dto.RecIgnoreCase = rec.IgnoreCase
	}
	return dto
}

func nonTerminalToDTO(nt *grammar.NonTerminal) nonTerminalDTO {
	dto := nonTerminalDTO{Name: nt.Name(), ActionName: nt.ActionName()}
	for _, a := range nt.Attributes {
		dto.Attributes = append(dto.Attributes, attributeDTO{
			Name:         a.Name,
			Multiplicity: string(a.Multiplicity),
			Boolean:      a.Boolean,
		})
	}
	for _, p := range nt.Productions {
		dto.Productions = append(dto.Productions, productionToDTO(p))
	}
	return dto
}

func productionToDTO(p *grammar.Production) productionDTO {
	raw := p.RHS.Raw()
	dto := productionDTO{
		RHS:      make([]string, len(raw)),
		Assoc:    int(p.Assoc),
		Priority: p.Priority,
		Dynamic:  p.Dynamic,
		Nops:     p.Nops,
		Nopse:    p.Nopse,
	}
	for i, sym := range raw {
		dto.RHS[i] = sym.Name()
	}
	for _, a := range p.Assignments {
		sym, _ := a.RHSSymbol()
		refName := ""
		if sym != nil {
			refName = sym.Name()
		}
		dto.Assignments = append(dto.Assignments, assignmentDTO{
			Name:         a.Name,
			Op:           string(a.Op),
			Index:        a.Index,
			RefName:      refName,
			Multiplicity: string(a.Multiplicity),
		})
	}
	return dto
}

// toParsedSource rebuilds a grammar.ParsedSource from the snapshot, using
// plain (MultOne, no separator) references for every RHS slot: every
// multiplicity-desugared symbol was already materialized under its own
// name before encoding, so decoding never re-triggers desugaring.
func (snap *snapshot) toParsedSource() (*grammar.ParsedSource, error) {
	loc := location.New("<gcio>", "", 0)
	out := &grammar.ParsedSource{StartSymbol: snap.StartSymbol}

	for _, td := range snap.Terminals {
		t := grammar.NewTerminal(td.Name, &loc)
		t.Priority = td.Priority
		t.Finish = grammar.Tristate(td.Finish)
		t.Prefer = td.Prefer
		t.Dynamic = td.Dynamic
		t.Keyword = td.Keyword
		if td.ActionName != "" {
			t.SetActionName(td.ActionName)
		}
		switch td.RecKind {
		case "literal":
			t.Recognizer = recognizer.NewLiteral(td.RecValue, td.RecIgnoreCase)
		case "regex":
			re, err := recognizer.NewRegex(td.RecValue, td.RecIgnoreCase, loc)
			if err != nil {
				return nil, fmt.Errorf("gcio: rebuilding terminal %q: %w", td.Name, err)
			}
			t.Recognizer = re
		}
		out.Terminals = append(out.Terminals, t)
	}

	for _, ntd := range snap.NonTerms {
		for _, pd := range ntd.Productions {
			lhs := grammar.NewNonTerminal(ntd.Name, &loc)
			if ntd.ActionName != "" {
				lhs.SetActionName(ntd.ActionName)
			}
			prod := &grammar.Production{
				LHS:      lhs,
				Assoc:    grammar.Assoc(pd.Assoc),
				Priority: pd.Priority,
				Dynamic:  pd.Dynamic,
				Nops:     pd.Nops,
				Nopse:    pd.Nopse,
			}
			rhs := make(grammar.ProductionRHS, len(pd.RHS))
			for i, name := range pd.RHS {
				rhs[i] = grammar.NewRefSlot(grammar.NewReference(name, loc))
			}
			prod.RHS = rhs

			for _, ad := range pd.Assignments {
				a := &grammar.Assignment{
					Name:         ad.Name,
					Op:           grammar.AssignOp(ad.Op),
					Location:     loc,
					Index:        ad.Index,
					Symbol:       grammar.NewReference(ad.RefName, loc),
					Multiplicity: grammar.Multiplicity(ad.Multiplicity),
				}
				assignments, err := grammar.AddAssignment(prod.Assignments, a)
				if err != nil {
					return nil, err
				}
				prod.Assignments = assignments
			}

			out.Productions = append(out.Productions, prod)
		}
	}

	return out, nil
}
