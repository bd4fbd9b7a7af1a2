package grammar

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/dekarrin/gudgeon/action"
	"github.com/dekarrin/gudgeon/grammarerr"
	"github.com/dekarrin/gudgeon/location"
	"github.com/dekarrin/gudgeon/recognizer"
	"github.com/dekarrin/rosed"
)

// Grammar is a fully compiled grammar: the root PGFile plus the
// grammar-wide bookkeeping that only makes sense once every import has
// been resolved and every symbol finalized (augmentation, enumeration,
// keyword rewriting, action resolution).
type Grammar struct {
	*PGFile

	// StartSymbol is the grammar's start symbol, before augmentation.
	StartSymbol Symbol

	// Augmented is the synthesized `S' -> start STOP` production, always
	// ProdID 0.
	Augmented *Production

	registry *importRegistry
	options  CompileOptions

	noCheckRecognizers bool
}

// FromString compiles source (with no associated file, so relative imports
// are resolved against the current working directory) into a Grammar.
func FromString(source string, opts CompileOptions) (*Grammar, error) {
	return compile(source, "", opts)
}

// FromFile reads and compiles the grammar file at path.
func FromFile(path string, opts CompileOptions) (*Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading grammar file: %w", err)
	}
	return compile(string(data), path, opts)
}

func compile(source, filePath string, opts CompileOptions) (*Grammar, error) {
	if opts.Parser == nil {
		return nil, grammarerr.New("no source parser configured for grammar compilation")
	}

	g := &Grammar{
		registry:           newImportRegistry(),
		options:            opts,
		noCheckRecognizers: opts.NoCheckRecognizers,
	}

	parsed, err := opts.Parser(source, filePath)
	if err != nil {
		return nil, err
	}

	if _, err := g.loadRoot(filePath, parsed); err != nil {
		return nil, err
	}

	if err := g.finalize(parsed.StartSymbol); err != nil {
		return nil, err
	}

	return g, nil
}

// loadRoot builds the root PGFile from parsed and resolves every import it
// (transitively) declares.
func (g *Grammar) loadRoot(filePath string, parsed *ParsedSource) (*PGFile, error) {
	imports, err := g.resolveImportDecls(filePath, nil, parsed.Imports)
	if err != nil {
		return nil, err
	}
	f, err := newPGFile(g, filePath, nil, parsed.Productions, parsed.Terminals, imports, g.options.Recognizers)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// resolveImportDecls turns each ImportDecl into a resolved PGFileImport,
// reusing an already-parsed file from the shared registry when the same
// canonical path has been seen before (a diamond import) and detecting
// cycles via the registry's in-progress marker.
func (g *Grammar) resolveImportDecls(fromPath string, parent *PGFileImport, decls []ImportDecl) ([]*PGFileImport, error) {
	return g.resolveImportDeclsDepth(fromPath, parent, decls, 1)
}

func (g *Grammar) resolveImportDeclsDepth(fromPath string, parent *PGFileImport, decls []ImportDecl, depth int) ([]*PGFileImport, error) {
	if depth > MaxImportDepth {
		return nil, grammarerr.New("import chain exceeds maximum depth of %d starting from %q", MaxImportDepth, fromPath)
	}

	if fromPath == "" && len(decls) > 0 {
		return nil, grammarerr.New(
			"import %q: a string-sourced grammar has no file path to resolve relative imports against",
			decls[0].Path)
	}

	imports := make([]*PGFileImport, 0, len(decls))
	for _, d := range decls {
		path, err := canonicalPath(fromPath, d.Path)
		if err != nil {
			return nil, grammarerr.Wrap(err, location.Location{}, "resolving import path %q", d.Path)
		}

		imp := &PGFileImport{ModuleName: d.ModuleName, Path: path, ImportedWith: parent}

		if existing, ok := g.registry.byPath[path]; ok {
			imp.File = existing
			imports = append(imports, imp)
			continue
		}
		if g.registry.inProgress[path] {
			return nil, grammarerr.New("circular import detected: %q imports itself transitively", path)
		}

		g.registry.inProgress[path] = true
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, grammarerr.Wrap(err, location.Location{}, "reading imported grammar file %q", path)
		}
		childParsed, err := g.options.Parser(string(data), path)
		if err != nil {
			return nil, err
		}
		childImports, err := g.resolveImportDeclsDepth(path, imp, childParsed.Imports, depth+1)
		if err != nil {
			return nil, err
		}
		childFile, err := newPGFile(g, path, imp, childParsed.Productions, childParsed.Terminals, childImports, g.options.Recognizers)
		delete(g.registry.inProgress, path)
		if err != nil {
			return nil, err
		}

		imp.File = childFile
		g.registry.byPath[path] = childFile
		imports = append(imports, imp)
	}
	return imports, nil
}

// finalize runs the four remaining steps of grammar compilation described
// in spec §4.4, after every file has been collected, resolved, and bound:
// augmentation, the grammar-wide recognizer check, production/symbol
// enumeration, KEYWORD-boundary rewriting, and action-name resolution.
func (g *Grammar) finalize(explicitStart string) error {
	if err := g.chooseStartSymbol(explicitStart); err != nil {
		return err
	}
	g.augment()
	if err := g.checkRecognizersPresent(); err != nil {
		return err
	}
	g.enumerateProductions()
	if err := g.rewriteKeywordTerminals(); err != nil {
		return err
	}
	if err := g.resolveActions(); err != nil {
		return err
	}
	return nil
}

func (g *Grammar) chooseStartSymbol(explicit string) error {
	name := g.options.StartSymbol
	if explicit != "" {
		name = explicit
	}
	if name == "" {
		if len(g.PGFile.Productions) == 0 {
			return grammarerr.New("grammar has no productions to infer a start symbol from")
		}
		g.StartSymbol = g.PGFile.Productions[0].LHS
		return nil
	}
	sym, ok := g.SymbolsByName[name]
	if !ok {
		return grammarerr.New("start symbol %q is not defined in this grammar", name)
	}
	g.StartSymbol = sym
	return nil
}

// augment introduces the synthesized start production S' -> start STOP
// described in spec §4.4, always assigned ProdID 0.
func (g *Grammar) augment() {
	AugSymbol.setGrammarAction(action.PassSingle)
	prod := &Production{
		LHS: AugSymbol,
		RHS: ProductionRHS{g.StartSymbol, Stop},
	}
	AugSymbol.Productions = []*Production{prod}
	g.Augmented = prod
}

// checkRecognizersPresent verifies every terminal reachable from the root
// (across every import) has a bound recognizer, unless the Grammar was
// configured to skip the check.
func (g *Grammar) checkRecognizersPresent() error {
	if g.noCheckRecognizers {
		return nil
	}
	for _, t := range g.Terminals {
		if t.Recognizer == nil {
			return grammarerr.At(derefLoc(t.Location()),
				"terminal %q has no recognizer bound", t.Name())
		}
	}
	return nil
}

// enumerateProductions assigns each production a grammar-wide ProdID (0
// for the augmented production, then every other production in a
// deterministic LHS-name, then-declaration order) and, within each LHS, a
// 0-based ProdSymbolID.
func (g *Grammar) enumerateProductions() {
	names := make([]string, 0, len(g.NonTerminals))
	for name := range g.NonTerminals {
		names = append(names, name)
	}
	sort.Strings(names)

	all := []*Production{g.Augmented}
	for _, name := range names {
		nt := g.NonTerminals[name]
		for i, p := range nt.Productions {
			p.ProdSymbolID = i
			all = append(all, p)
		}
	}
	for i, p := range all {
		p.ProdID = i
	}
	g.Augmented.ProdSymbolID = 0
	g.PGFile.Productions = all
}

// rewriteKeywordTerminals implements spec §4.4 step 4: when a grammar
// defines a terminal named KEYWORD (a regex describing what an
// identifier-like token looks like), every other terminal whose Recognizer
// is a Literal fully matching that pattern is rewritten to a word-boundary
// regex so a keyword like "if" cannot match a prefix of "ifx".
func (g *Grammar) rewriteKeywordTerminals() error {
	kw, ok := g.Terminals["KEYWORD"]
	if !ok {
		return nil
	}
	pattern, ok := kw.Recognizer.(*recognizer.Regex)
	if !ok {
		return grammarerr.At(derefLoc(kw.Location()), "KEYWORD terminal must be a regex recognizer")
	}

	for name, t := range g.Terminals {
		if name == "KEYWORD" {
			continue
		}
		lit, ok := t.Recognizer.(*recognizer.Literal)
		if !ok {
			continue
		}
		if !pattern.FullMatch(lit.Value) {
			continue
		}
		bounded, err := recognizer.NewRegex(`\b`+regexp.QuoteMeta(lit.Value)+`\b`, lit.IgnoreCase, derefLoc(t.Location()))
		if err != nil {
			return err
		}
		t.Recognizer = bounded
		t.Keyword = true
	}
	return nil
}

// resolveActions binds every symbol's ActionName to a callable Action: a
// built-in from the action package, a per-rule `obj` action built from the
// NonTerminal's own recorded Attributes, or left untouched if the symbol
// already has a GrammarAction from multiplicity desugaring and declares no
// competing ActionName.
func (g *Grammar) resolveActions() error {
	for _, nt := range g.NonTerminals {
		if nt.ActionName() == "" {
			continue
		}
		if nt.ActionName() == "obj" {
			attrs := make([]action.Attribute, len(nt.Attributes))
			for i, a := range nt.Attributes {
				attrs[i] = action.Attribute{Name: a.Name, Index: i, Boolean: a.Boolean}
			}
			nt.setAction(action.NewObj(attrs))
			continue
		}
		act, ok := action.Lookup(nt.ActionName())
		if !ok {
			return grammarerr.At(derefLoc(nt.Location()), "unknown action %q for rule %q", nt.ActionName(), nt.Name())
		}
		nt.setAction(act)
	}
	return nil
}

// GetTerminal returns the terminal named name in the root grammar, or nil.
func (g *Grammar) GetTerminal(name string) *Terminal { return g.Terminals[name] }

// GetNonTerminal returns the nonterminal named name in the root grammar,
// or nil.
func (g *Grammar) GetNonTerminal(name string) *NonTerminal { return g.NonTerminals[name] }

// GetSymbol returns the symbol (terminal or nonterminal) named name in the
// root grammar, checking reserved sentinel names too.
func (g *Grammar) GetSymbol(name string) Symbol {
	switch name {
	case "EMPTY":
		return Empty
	case "EOF":
		return EOF
	case "STOP":
		return Stop
	}
	if t, ok := g.Terminals[name]; ok {
		return t
	}
	if nt, ok := g.NonTerminals[name]; ok {
		return nt
	}
	return nil
}

// GetProductionByID returns the production with the given global ProdID,
// or nil if out of range. Production 0 is always the augmented start
// production.
func (g *Grammar) GetProductionByID(id int) *Production {
	if id < 0 || id >= len(g.PGFile.Productions) {
		return nil
	}
	return g.PGFile.Productions[id]
}

// Iter calls fn for every user-declared nonterminal and terminal in the
// grammar (ProdID order for productions' LHS, insertion order for
// terminals), excluding the internal AugSymbol/EMPTY/EOF/STOP sentinels.
func (g *Grammar) Iter(fn func(Symbol)) {
	seen := map[string]bool{}
	for _, p := range g.PGFile.Productions {
		if p == g.Augmented {
			continue
		}
		if !seen[p.LHS.Name()] {
			seen[p.LHS.Name()] = true
			fn(p.LHS)
		}
	}
	names := make([]string, 0, len(g.Terminals))
	for name := range g.Terminals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fn(g.Terminals[name])
	}
}

// DebugString renders every production in the grammar as a two-column
// table of ProdID to production text.
func (g *Grammar) DebugString() string {
	data := make([][]string, 0, len(g.PGFile.Productions)+1)
	data = append(data, []string{"#", "production"})
	for _, p := range g.PGFile.Productions {
		data = append(data, []string{fmt.Sprintf("%d", p.ProdID), p.String()})
	}
	return rosed.Edit("").
		InsertTableOpts(0, data, 100, rosed.Options{TableBorders: true}).
		String()
}
