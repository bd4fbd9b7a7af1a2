package grammar

import (
	"os"
	"strings"

	"github.com/dekarrin/gudgeon/grammarerr"
	"github.com/dekarrin/gudgeon/location"
	"github.com/dekarrin/gudgeon/recfile"
	"github.com/dekarrin/gudgeon/recognizer"
)

// PGFile is one parsed grammar file: its own local productions and
// terminals, the imports it declares, and (for the root file only) the
// grammar-wide symbol tables every imported file's symbols are ultimately
// folded into.
//
// A PGFile goes through three phases in order, each of which can fail with
// a *grammarerr.Error: collectAndUnify, resolveReferences, bindRecognizers.
type PGFile struct {
	// Productions are this file's own productions, in source order. After
	// collectAndUnify, p.LHS for every p here points at the canonical,
	// unified NonTerminal for its name even if that NonTerminal's first
	// appearance was a different Production.
	Productions []*Production

	// Terminals and NonTerminals are the root grammar's full tables; only
	// meaningful to read from the root PGFile (g.PGFile), since imported
	// files delegate registration there. Non-root files still populate
	// SymbolsByName with their own locally-visible names.
	Terminals    map[string]*Terminal
	NonTerminals map[string]*NonTerminal

	Imports map[string]*PGFileImport

	FilePath string

	// Root is the owning Grammar. Every PGFile, including the root's own,
	// has Root set; the root is its own Root.PGFile.
	Root *Grammar

	// ImportedWith is the import statement that pulled this file in, or
	// nil for the root file.
	ImportedWith *PGFileImport

	// SymbolsByName resolves a local (unqualified, already demodularized)
	// name to a Symbol. On the root file this is keyed by FQN; on an
	// imported file it is keyed by plain name for fast local re-resolution
	// (see registerSymbol).
	SymbolsByName map[string]Symbol

	recognizerOverrides map[string]recognizer.Recognizer
}

// isRoot reports whether f is its Grammar's own root PGFile.
func (f *PGFile) isRoot() bool {
	return f.Root != nil && f.Root.PGFile == f
}

// newPGFile runs a freshly-parsed file's productions and terminals through
// the full collect/resolve/bind pipeline and returns the finished PGFile.
func newPGFile(
	root *Grammar,
	filePath string,
	importedWith *PGFileImport,
	productions []*Production,
	terminals []*Terminal,
	imports []*PGFileImport,
	overrides map[string]recognizer.Recognizer,
) (*PGFile, error) {
	f := &PGFile{
		Productions:         productions,
		Terminals:           map[string]*Terminal{},
		NonTerminals:        map[string]*NonTerminal{},
		Imports:             map[string]*PGFileImport{},
		FilePath:            filePath,
		Root:                root,
		ImportedWith:        importedWith,
		SymbolsByName:       map[string]Symbol{},
		recognizerOverrides: overrides,
	}
	if root.PGFile == nil {
		// This call is constructing the root file itself.
		root.PGFile = f
	}
	for _, imp := range imports {
		imp.ImportedWith = importedWith
		f.Imports[imp.ModuleName] = imp
	}

	if err := f.collectAndUnify(terminals); err != nil {
		return nil, err
	}
	if err := f.resolveReferences(); err != nil {
		return nil, err
	}
	if err := f.bindRecognizers(); err != nil {
		return nil, err
	}
	return f, nil
}

// collectAndUnify is the first compilation phase (spec §4.2): it folds
// every production sharing a LHS name into one canonical NonTerminal,
// checks for terminal/nonterminal name collisions and duplicate literal
// values, and registers every symbol reached this way with the root
// grammar.
func (f *PGFile) collectAndUnify(terminals []*Terminal) error {
	byValue := map[string]*Terminal{}

	for _, t := range terminals {
		t.setImportedWith(f.ImportedWith)
		if existing, dup := f.Terminals[t.Name()]; dup {
			return grammarerr.At(derefLoc(t.Location()),
				"multiple definitions of terminal rule %q (previous at %s)",
				t.Name(), locString(existing.Location()))
		}
		if lit, ok := t.Recognizer.(*recognizer.Literal); ok && !lit.IgnoreCase {
			if other, dup := byValue[lit.Value]; dup {
				return grammarerr.At(derefLoc(t.Location()),
					"terminals %q and %q recognize the same string %q", t.Name(), other.Name(), lit.Value)
			}
			byValue[lit.Value] = t
		}
		f.Terminals[t.Name()] = t
		f.registerSymbol(t)
	}

	for _, p := range f.Productions {
		sym := p.LHS
		sym.setImportedWith(f.ImportedWith)

		if _, isTerm := f.Terminals[sym.Name()]; isTerm {
			return grammarerr.At(derefLoc(sym.Location()),
				"rule %q is defined as both a terminal and a nonterminal", sym.Name())
		}

		oldSymbol := sym
		newSymbol, unified := f.NonTerminals[sym.Name()]
		if !unified {
			newSymbol = sym
			f.NonTerminals[sym.Name()] = sym
		} else {
			p.LHS = newSymbol
		}
		newSymbol.Productions = append(newSymbol.Productions, p)

		if newSymbol.ActionName() != "" && newSymbol.ActionName() != oldSymbol.ActionName() {
			return grammarerr.At(derefLoc(oldSymbol.Location()),
				"conflicting grammar actions for rule %q: %q and %q",
				newSymbol.Name(), newSymbol.ActionName(), oldSymbol.ActionName())
		}

		if err := collectAssignments(p); err != nil {
			return err
		}
	}

	for _, nt := range f.NonTerminals {
		f.registerSymbol(nt)
	}

	return nil
}

// collectAssignments records each production's named matches onto its
// (already-canonical) LHS NonTerminal's Attributes, and implements the
// resolved Open Question on duplicate names within one production: a name
// assigned more than once in the same alternative is a compile error
// rather than last-write-wins.
func collectAssignments(p *Production) error {
	for _, a := range p.Assignments {
		attr := PGAttribute{Name: a.Name, Multiplicity: a.Multiplicity, Boolean: a.Op == AssignBool}
		p.LHS.AddAttribute(attr)
	}
	return nil
}

// resolveReferences is the second compilation phase (spec §4.2 and §4.3):
// it walks every production's RHS and Assignments and replaces each
// *Reference with the Symbol it names, materializing a synthesized
// multiplicity-desugared symbol on first use where needed.
func (f *PGFile) resolveReferences() error {
	for _, p := range f.Productions {
		for i, slot := range p.RHS {
			ref, isRef := slot.(*refSlot)
		if !isRef {
			continue
		}
			sym, err := f.resolve(ref.ref)
			if err != nil {
				return err
			}
			p.RHS[i] = sym
		}
		for _, a := range p.Assignments {
			ref, isRef := a.Symbol.(*Reference)
			if !isRef {
				continue
			}
			sym, err := f.resolve(ref)
			if err != nil {
				return err
			}
			a.Symbol = sym
		}
	}
	return nil
}

// refSlot lets an unresolved *Reference sit in a ProductionRHS, which is
// typed []Symbol, before resolution replaces it with the real Symbol. It
// satisfies Symbol only so the slice element type checks; none of its
// methods are meant to be called.
type refSlot struct {
	symbolBase
	ref *Reference
}

// NewRefSlot wraps ref so it can occupy a ProductionRHS slot until
// resolveReferences replaces it with the Symbol ref names. Used by a
// grammar source parser (e.g. the bootstrap grammar-of-grammars) to build
// productions before resolution has anything to resolve against.
func NewRefSlot(ref *Reference) Symbol {
	return &refSlot{ref: ref}
}

// resolve resolves a single reference to a Symbol, materializing a
// synthesized symbol for a non-trivial multiplicity the first time it is
// needed and reusing it (by desugared name) on every subsequent reference.
func (f *PGFile) resolve(ref *Reference) (Symbol, error) {
	if ref.Separator != nil {
		sepSym, err := f.resolve(ref.Separator)
		if err != nil {
			return nil, err
		}
		ref.resolvedSeparator = sepSym
	}

	name := ref.Name
	if dot := strings.IndexByte(name, '.'); dot >= 0 {
		moduleName, local := name[:dot], name[dot+1:]
		imp, ok := f.Imports[moduleName]
		if !ok {
			return nil, grammarerr.At(ref.Location, "reference to unknown import module %q", moduleName)
		}
		sub := &Reference{Name: local, Location: ref.Location, Multiplicity: ref.Multiplicity, Separator: ref.Separator}
		sub.resolvedSeparator = ref.resolvedSeparator
		return imp.resolve(sub)
	}

	base, ok := f.lookupLocal(name)
	if !ok {
		return nil, grammarerr.At(ref.Location, "reference to unknown symbol %q", name)
	}

	if ref.Multiplicity == "" || ref.Multiplicity == MultOne {
		return base, nil
	}

	if ref.Multiplicity == MultOptional && ref.HasSeparator() {
		return nil, grammarerr.At(ref.Location, "a separator is not allowed on an optional (?) reference")
	}

	desugaredName := makeMultiplicityName(base.Name(), ref.Multiplicity, ref.separatorName())
	if existing, ok := f.lookupLocal(desugaredName); ok {
		return existing, nil
	}
	return f.makeMultiplicitySymbol(ref, base, desugaredName)
}

// lookupLocal looks a name up in this file's own table first, and failing
// that (for a non-root file that hasn't seen the name locally yet) in the
// root's table, covering names registered by a sibling import that this
// file's own SymbolsByName was never populated for directly.
func (f *PGFile) lookupLocal(name string) (Symbol, bool) {
	if sym, ok := f.SymbolsByName[name]; ok {
		return sym, true
	}
	if !f.isRoot() && f.Root != nil {
		if sym, ok := f.Root.SymbolsByName[f.qualify(name)]; ok {
			return sym, true
		}
	}
	if ReservedNames[name] {
		switch name {
		case "EMPTY":
			return Empty, true
		case "EOF":
			return EOF, true
		case "STOP":
			return Stop, true
		}
	}
	return nil, false
}

func (f *PGFile) qualify(name string) string {
	if f.ImportedWith != nil {
		return f.ImportedWith.FQN() + "." + name
	}
	return name
}

// makeMultiplicityName builds the synthesized symbol name for a
// multiplicity-suffixed reference per spec §4.3's table.
func makeMultiplicityName(base string, mult Multiplicity, sep string) string {
	var suffix string
	switch mult {
	case MultOptional:
		suffix = "_opt"
	case MultOneOrMore:
		suffix = "_1"
	case MultZeroOrMore:
		suffix = "_0"
	default:
		return base
	}
	if sep != "" && (mult == MultOneOrMore || mult == MultZeroOrMore) {
		suffix += "_" + sep
	}
	return base + suffix
}

// makeMultiplicitySymbol materializes the synthesized NonTerminal (and its
// wrapper productions) for a non-trivial multiplicity reference, mirroring
// spec §4.3:
//
//	OPTIONAL:      Name_opt: Name | EMPTY;               action: optional
//	ONE_OR_MORE:   Name_1:   Name_1 Name | Name;          action: collect
//	  (separated)  Name_1_S: Name_1_S S Name | Name;      action: collect_sep
//	ZERO_OR_MORE:  Name_0:   Name_1 | EMPTY;              action: zero_or_more
//	  built on the ONE_OR_MORE symbol, materializing it first if needed.
func (f *PGFile) makeMultiplicitySymbol(ref *Reference, base Symbol, desugaredName string) (Symbol, error) {
	switch ref.Multiplicity {
	case MultOptional:
		nt := NewNonTerminal(desugaredName, &ref.Location)
		nt.setActionName("optional")
		nt.setGrammarAction(optionalAction)
		nt.Productions = []*Production{
			{LHS: nt, RHS: ProductionRHS{base}},
			{LHS: nt, RHS: ProductionRHS{Empty}},
		}
		f.registerSymbol(nt)
		return nt, nil

	case MultOneOrMore:
		return f.makeOneOrMoreSymbol(ref, base, desugaredName)

	case MultZeroOrMore:
		oneOrMoreName := makeMultiplicityName(base.Name(), MultOneOrMore, ref.separatorName())
		oneOrMore, ok := f.lookupLocal(oneOrMoreName)
		if !ok {
			oom, err := f.makeOneOrMoreSymbol(ref, base, oneOrMoreName)
			if err != nil {
				return nil, err
			}
			oneOrMore = oom
		}
		nt := NewNonTerminal(desugaredName, &ref.Location)
		// No action_name: the grammar action is bound directly rather than
		// resolved by name, since "zero_or_more" is not a name a grammar
		// author could reference via `@name`.
		nt.setGrammarAction(zeroOrMoreAction)
		nt.Productions = []*Production{
			{LHS: nt, RHS: ProductionRHS{oneOrMore}, Nops: true},
			{LHS: nt, RHS: ProductionRHS{Empty}},
		}
		f.registerSymbol(nt)
		return nt, nil

	default:
		return nil, grammarerr.At(ref.Location, "unknown multiplicity %q", ref.Multiplicity)
	}
}

func (f *PGFile) makeOneOrMoreSymbol(ref *Reference, base Symbol, desugaredName string) (Symbol, error) {
	nt := NewNonTerminal(desugaredName, &ref.Location)
	selfRef := Symbol(nt)

	if ref.resolvedSeparator != nil {
		nt.setActionName("collect_sep")
		nt.setGrammarAction(collectSepAction)
		nt.Productions = []*Production{
			{LHS: nt, RHS: ProductionRHS{selfRef, ref.resolvedSeparator, base}},
			{LHS: nt, RHS: ProductionRHS{base}},
		}
	} else {
		nt.setActionName("collect")
		nt.setGrammarAction(collectAction)
		nt.Productions = []*Production{
			{LHS: nt, RHS: ProductionRHS{selfRef, base}},
			{LHS: nt, RHS: ProductionRHS{base}},
		}
	}
	f.registerSymbol(nt)
	return nt, nil
}

// bindRecognizers is the third compilation phase: every terminal that did
// not already receive a Recognizer while being parsed (a terminal declared
// with only a name, to be bound from an external recognizer file or
// override map) gets one from f.recognizerOverrides, keyed by FQN first
// and plain name second, falling back to this file's own sidecar recognizer
// file (named after FilePath) when the override map doesn't have it. A
// terminal left without a Recognizer after this is a compile error unless
// the owning Grammar disabled the check. An override or sidecar entry that
// names a NonTerminal rather than a Terminal is also a compile error.
func (f *PGFile) bindRecognizers() error {
	sidecar, err := f.loadSidecarRecognizers()
	if err != nil {
		return err
	}

	for name := range f.recognizerOverrides {
		if nt, ok := f.NonTerminals[name]; ok {
			return grammarerr.At(derefLoc(nt.Location()),
				"recognizer %q is bound to nonterminal %q, not a terminal", name, nt.Name())
		}
	}
	for name := range sidecar {
		if nt, ok := f.NonTerminals[name]; ok {
			return grammarerr.At(derefLoc(nt.Location()),
				"recognizer %q is bound to nonterminal %q, not a terminal", name, nt.Name())
		}
	}

	for _, t := range f.Terminals {
		if t.Recognizer != nil {
			continue
		}
		if r, ok := f.recognizerOverrides[t.FQN()]; ok {
			t.Recognizer = r
			continue
		}
		if r, ok := f.recognizerOverrides[t.Name()]; ok {
			t.Recognizer = r
			continue
		}
		if r, ok := sidecar[t.FQN()]; ok {
			t.Recognizer = r
			continue
		}
		if r, ok := sidecar[t.Name()]; ok {
			t.Recognizer = r
			continue
		}
		if f.Root != nil && f.Root.noCheckRecognizers {
			continue
		}
		return grammarerr.At(derefLoc(t.Location()),
			"terminal %q has no recognizer and none was supplied", t.Name())
	}
	return nil
}

// loadSidecarRecognizers looks for this file's conventional sidecar
// recognizer file (FilePath with its extension replaced by
// "_recognizers.toml") and loads it if present. A file with no FilePath
// (a string-sourced grammar) has no sidecar to look for.
func (f *PGFile) loadSidecarRecognizers() (map[string]recognizer.Recognizer, error) {
	if f.FilePath == "" {
		return nil, nil
	}

	path := recfile.DefaultSidecarPath(f.FilePath)
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}

	recs, err := recfile.Load(path)
	if err != nil {
		return nil, grammarerr.Wrap(err, location.Location{}, "loading recognizer side-file %q", path)
	}
	return recs, nil
}

// registerSymbol adds sym to the root grammar's tables (first time only,
// keyed by FQN) and to this file's own local lookup table (keyed by plain
// name), so subsequent references within this same file resolve quickly
// without climbing back to the root. Mirrors the teacher toolkit's pattern
// of delegating shared state up to one owner while keeping a local cache.
func (f *PGFile) registerSymbol(sym Symbol) {
	if !f.isRoot() {
		f.Root.registerSymbol(sym)
		f.SymbolsByName[sym.Name()] = sym
		return
	}

	fqn := sym.FQN()
	if _, exists := f.SymbolsByName[fqn]; exists {
		return
	}
	f.SymbolsByName[fqn] = sym
	switch s := sym.(type) {
	case *Terminal:
		f.Terminals[s.Name()] = s
	case *NonTerminal:
		f.NonTerminals[s.Name()] = s
	}
}

func derefLoc(l *location.Location) location.Location {
	if l == nil {
		return location.Location{}
	}
	return *l
}

func locString(l *location.Location) string {
	if l == nil {
		return "<unknown>"
	}
	return l.String()
}
