// Package bootstrap implements the grammar-of-grammars: the hand-written
// lexer and recursive-descent parser for grammar source files, plus (in
// grammar_of_grammars.go) the hard-coded Grammar describing that same
// syntax for introspection and documentation purposes. Building an actual
// LR/GLR table from the grammar-of-grammars and using it to drive parsing
// is explicitly out of scope for this frontend; Parse below is what
// grammar.FromFile/FromString call as their SourceParser.
package bootstrap

import (
	"strconv"

	"github.com/dekarrin/gudgeon/grammar"
	"github.com/dekarrin/gudgeon/grammarerr"
	"github.com/dekarrin/gudgeon/location"
	"github.com/dekarrin/gudgeon/recognizer"
)

// Parse implements grammar.SourceParser using the hand-rolled lexer and
// parser in this package.
func Parse(source, filePath string) (*grammar.ParsedSource, error) {
	p := &parser{lex: newLexer(source, filePath), filePath: filePath, src: source}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseFile()
}

type parser struct {
	lex      *lexer
	filePath string
	src      string

	cur  token
	peek token
	have bool // whether peek has been filled
}

func (p *parser) loc(pos int) location.Location {
	return location.New(p.filePath, p.src, pos)
}

func (p *parser) errorf(msg string, args ...interface{}) error {
	return grammarerr.At(p.loc(p.cur.pos), msg, args...)
}

// advance discards the current token and lexes the next one into p.cur.
func (p *parser) advance() error {
	if p.have {
		p.cur = p.peek
		p.have = false
		return nil
	}
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

// lookahead returns the token after p.cur without consuming either.
func (p *parser) lookahead() (token, error) {
	if !p.have {
		tok, err := p.lex.next()
		if err != nil {
			return token{}, err
		}
		p.peek = tok
		p.have = true
	}
	return p.peek, nil
}

func (p *parser) expect(k tokenKind) (token, error) {
	if p.cur.kind != k {
		return token{}, p.errorf("expected %s, found %s", k, p.cur.kind)
	}
	tok := p.cur
	return tok, p.advance()
}

func (p *parser) isKeyword(word string) bool {
	return p.cur.kind == tkIdent && p.cur.text == word
}

func (p *parser) parseFile() (*grammar.ParsedSource, error) {
	out := &grammar.ParsedSource{}

	for p.cur.kind != tkEOF {
		switch {
		case p.isKeyword("import"):
			decl, err := p.parseImport()
			if err != nil {
				return nil, err
			}
			out.Imports = append(out.Imports, decl)

		case p.isKeyword("terminals"):
			term, err := p.parseTerminalDecl()
			if err != nil {
				return nil, err
			}
			out.Terminals = append(out.Terminals, term)

		default:
			prods, err := p.parseRule()
			if err != nil {
				return nil, err
			}
			out.Productions = append(out.Productions, prods...)
		}
	}

	return out, nil
}

// parseImport handles `import "path" as name;`, defaulting ModuleName to
// the path's basename without extension when `as name` is omitted.
func (p *parser) parseImport() (grammar.ImportDecl, error) {
	if err := p.advance(); err != nil { // consume "import"
		return grammar.ImportDecl{}, err
	}
	pathTok, err := p.expect(tkString)
	if err != nil {
		return grammar.ImportDecl{}, err
	}
	moduleName := defaultModuleName(pathTok.text)
	if p.isKeyword("as") {
		if err := p.advance(); err != nil {
			return grammar.ImportDecl{}, err
		}
		nameTok, err := p.expect(tkIdent)
		if err != nil {
			return grammar.ImportDecl{}, err
		}
		moduleName = nameTok.text
	}
	if _, err := p.expect(tkSemi); err != nil {
		return grammar.ImportDecl{}, err
	}
	return grammar.ImportDecl{ModuleName: moduleName, Path: pathTok.text}, nil
}

func defaultModuleName(path string) string {
	start, end := 0, len(path)
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			start = i + 1
			break
		}
	}
	for i := end - 1; i > start; i-- {
		if path[i] == '.' {
			end = i
			break
		}
	}
	return path[start:end]
}

// parseTerminalDecl handles `terminals Name [: (STRING|REGEX)] [{atoms}] ;`.
func (p *parser) parseTerminalDecl() (*grammar.Terminal, error) {
	if err := p.advance(); err != nil { // consume "terminals"
		return nil, err
	}
	nameTok, err := p.expect(tkIdent)
	if err != nil {
		return nil, err
	}
	loc := p.loc(nameTok.pos)
	if err := grammar.CheckReservedName(nameTok.text); err != nil {
		return nil, grammarerr.At(loc, "%s", err.Error())
	}
	t := grammar.NewTerminal(nameTok.text, &loc)

	if p.cur.kind == tkColon {
		if err := p.advance(); err != nil {
			return nil, err
		}
		switch p.cur.kind {
		case tkString:
			t.Recognizer = recognizer.NewLiteral(p.cur.text, false)
			if err := p.advance(); err != nil {
				return nil, err
			}
		case tkRegex:
			re, err := recognizer.NewRegex(p.cur.text, p.cur.ignoreCase, loc)
			if err != nil {
				return nil, err
			}
			t.Recognizer = re
			if err := p.advance(); err != nil {
				return nil, err
			}
		default:
			return nil, p.errorf("expected a string or regex terminal body, found %s", p.cur.kind)
		}
	}

	if p.cur.kind == tkLBrace {
		if err := p.applyTerminalDisambig(t); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(tkSemi); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *parser) applyTerminalDisambig(t *grammar.Terminal) error {
	if err := p.advance(); err != nil { // consume '{'
		return err
	}
	for p.cur.kind != tkRBrace {
		switch {
		case p.cur.kind == tkInt:
			n, _ := strconv.Atoi(p.cur.text)
			t.Priority = n
		case p.isKeyword("prefer"):
			t.Prefer = true
		case p.isKeyword("finish"):
			t.Finish = grammar.TristateTrue
		case p.isKeyword("nofinish"):
			t.Finish = grammar.TristateFalse
		case p.isKeyword("dynamic"):
			t.Dynamic = true
		default:
			return p.errorf("unrecognized terminal disambiguation atom %q", p.cur.text)
		}
		if err := p.advance(); err != nil {
			return err
		}
		if p.cur.kind == tkComma {
			if err := p.advance(); err != nil {
				return err
			}
		}
	}
	return p.advance() // consume '}'
}

// parseRule handles `[@actionName] Name : alt (| alt)* ;`.
func (p *parser) parseRule() ([]*grammar.Production, error) {
	actionName := ""
	if p.cur.kind == tkAt {
		if err := p.advance(); err != nil {
			return nil, err
		}
		nameTok, err := p.expect(tkIdent)
		if err != nil {
			return nil, err
		}
		actionName = nameTok.text
	}

	nameTok, err := p.expect(tkIdent)
	if err != nil {
		return nil, err
	}
	ruleLoc := p.loc(nameTok.pos)

	if err := grammar.CheckReservedName(nameTok.text); err != nil {
		return nil, grammarerr.At(ruleLoc, "%s", err.Error())
	}

	if _, err := p.expect(tkColon); err != nil {
		return nil, err
	}

	var productions []*grammar.Production
	for {
		lhs := grammar.NewNonTerminal(nameTok.text, &ruleLoc)
		if actionName != "" {
			lhs.SetActionName(actionName)
		}
		prod, err := p.parseAlternative(lhs)
		if err != nil {
			return nil, err
		}
		productions = append(productions, prod)

		if p.cur.kind == tkPipe {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	if _, err := p.expect(tkSemi); err != nil {
		return nil, err
	}
	return productions, nil
}

// parseAlternative parses one `|`-delimited alternative's element sequence
// and optional trailing `{disambiguation}` block.
func (p *parser) parseAlternative(lhs *grammar.NonTerminal) (*grammar.Production, error) {
	prod := &grammar.Production{LHS: lhs}

	if p.cur.kind == tkSemi || p.cur.kind == tkPipe {
		// An alternative with no elements at all is not meaningful; an
		// explicitly empty alternative is written as EMPTY.
		return nil, p.errorf("empty alternative: use EMPTY to match nothing")
	}

	for p.cur.kind != tkSemi && p.cur.kind != tkPipe && p.cur.kind != tkLBrace {
		slot, ref, assignName, assignOp, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		idx := len(prod.RHS)
		prod.RHS = append(prod.RHS, slot)
		if assignName != "" {
			a := &grammar.Assignment{
				Name:         assignName,
				Op:           assignOp,
				Location:     ref.Location,
				Index:        idx,
				Symbol:       ref,
				Multiplicity: ref.Multiplicity,
			}
			assignments, err := grammar.AddAssignment(prod.Assignments, a)
			if err != nil {
				return nil, err
			}
			prod.Assignments = assignments
		}
	}

	if p.cur.kind == tkLBrace {
		if err := p.applyProductionDisambig(prod); err != nil {
			return nil, err
		}
	}

	return prod, nil
}

// parseElement parses one RHS position: an optional `name=`/`name?=`
// prefix, a (possibly dotted) symbol name, and an optional repetition
// operator with optional `[separator]` modifier. It returns both the
// Symbol placeholder for the RHS slot and the underlying *grammar.Reference
// (the same object the placeholder wraps), since an Assignment needs the
// Reference directly rather than the opaque placeholder.
func (p *parser) parseElement() (grammar.Symbol, *grammar.Reference, string, grammar.AssignOp, error) {
	assignName := ""
	var assignOp grammar.AssignOp

	if p.cur.kind == tkIdent {
		la, err := p.lookahead()
		if err != nil {
			return nil, nil, "", "", err
		}
		if la.kind == tkEquals || la.kind == tkQEquals {
			assignName = p.cur.text
			if la.kind == tkEquals {
				assignOp = grammar.AssignValue
			} else {
				assignOp = grammar.AssignBool
			}
			if err := p.advance(); err != nil { // consume name
				return nil, nil, "", "", err
			}
			if err := p.advance(); err != nil { // consume '=' / '?='
				return nil, nil, "", "", err
			}
		}
	}

	nameTok, err := p.expect(tkIdent)
	if err != nil {
		return nil, nil, "", "", err
	}
	refLoc := p.loc(nameTok.pos)
	name := nameTok.text
	for p.cur.kind == tkDot {
		if err := p.advance(); err != nil {
			return nil, nil, "", "", err
		}
		part, err := p.expect(tkIdent)
		if err != nil {
			return nil, nil, "", "", err
		}
		name += "." + part.text
	}

	ref := grammar.NewReference(name, refLoc)

	switch p.cur.kind {
	case tkQuestion:
		ref.Multiplicity = grammar.MultOptional
		if err := p.advance(); err != nil {
			return nil, nil, "", "", err
		}
		if err := p.parseSeparatorSuffix(ref); err != nil {
			return nil, nil, "", "", err
		}
	case tkPlus:
		ref.Multiplicity = grammar.MultOneOrMore
		if err := p.advance(); err != nil {
			return nil, nil, "", "", err
		}
		if err := p.parseSeparatorSuffix(ref); err != nil {
			return nil, nil, "", "", err
		}
	case tkStar:
		ref.Multiplicity = grammar.MultZeroOrMore
		if err := p.advance(); err != nil {
			return nil, nil, "", "", err
		}
		if err := p.parseSeparatorSuffix(ref); err != nil {
			return nil, nil, "", "", err
		}
	}

	return grammar.NewRefSlot(ref), ref, assignName, assignOp, nil
}

// parseSeparatorSuffix consumes an optional `[sep, ...]` modifier list
// immediately following a repetition operator. Only the first modifier (the
// separator symbol's name) is meaningful here; later modifiers are
// reserved for a future table builder and are accepted but unused.
func (p *parser) parseSeparatorSuffix(ref *grammar.Reference) error {
	if p.cur.kind != tkLBracket {
		return nil
	}
	if err := p.advance(); err != nil {
		return err
	}
	sepTok, err := p.expect(tkIdent)
	if err != nil {
		return err
	}
	ref.Separator = grammar.NewReference(sepTok.text, p.loc(sepTok.pos))

	for p.cur.kind == tkComma {
		if err := p.advance(); err != nil {
			return err
		}
		if _, err := p.expect(tkIdent); err != nil {
			return err
		}
	}
	_, err = p.expect(tkRBracket)
	return err
}

func (p *parser) applyProductionDisambig(prod *grammar.Production) error {
	if err := p.advance(); err != nil { // consume '{'
		return err
	}
	for p.cur.kind != tkRBrace {
		switch {
		case p.cur.kind == tkInt:
			n, _ := strconv.Atoi(p.cur.text)
			prod.Priority = n
		case p.isKeyword("left") || p.isKeyword("reduce"):
			prod.Assoc = grammar.AssocLeft
		case p.isKeyword("right") || p.isKeyword("shift"):
			prod.Assoc = grammar.AssocRight
		case p.isKeyword("dynamic"):
			prod.Dynamic = true
		case p.isKeyword("nops"):
			prod.Nops = true
		case p.isKeyword("nopse"):
			prod.Nopse = true
		default:
			return p.errorf("unrecognized production disambiguation atom %q", p.cur.text)
		}
		if err := p.advance(); err != nil {
			return err
		}
		if p.cur.kind == tkComma {
			if err := p.advance(); err != nil {
				return err
			}
		}
	}
	return p.advance() // consume '}'
}
