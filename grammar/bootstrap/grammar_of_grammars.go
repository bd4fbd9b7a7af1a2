package bootstrap

import (
	"sync"

	"github.com/dekarrin/gudgeon/grammar"
	"github.com/dekarrin/gudgeon/location"
	"github.com/dekarrin/gudgeon/recognizer"
)

var (
	gogOnce    sync.Once
	gogGrammar *grammar.Grammar
	gogErr     error
)

// Grammar returns the grammar-of-grammars: a compiled grammar.Grammar
// describing the syntax this package's Parse accepts, built for
// introspection and documentation (a `pgc describe-syntax` command, say)
// rather than for driving an actual parse — Parse's hand-written
// recursive-descent lexer does that job directly. Built once per process,
// mirroring the teacher toolkit's sync.Once-guarded bootstrap singleton.
func Grammar() (*grammar.Grammar, error) {
	gogOnce.Do(func() {
		gogGrammar, gogErr = grammar.FromString("", grammar.CompileOptions{
			Parser:      gogParser,
			StartSymbol: "PGFile",
		})
	})
	return gogGrammar, gogErr
}

// gogParser ignores its arguments and returns the hand-built
// grammar-of-grammars productions directly, in the style of the teacher
// toolkit's CreateBootstrapGrammarFromLexerStream: every symbol and
// production is constructed with an explicit AddTerm/AddRule-equivalent
// call rather than parsed from text, since this grammar exists to describe
// syntax, not to be compiled from it.
func gogParser(_, _ string) (*grammar.ParsedSource, error) {
	loc := location.New("<grammar-of-grammars>", "", 0)
	ref := func(name string) *grammar.Reference { return grammar.NewReference(name, loc) }
	term := func(name string) *grammar.Terminal { return grammar.NewTerminal(name, &loc) }
	rule := func(lhs *grammar.NonTerminal, names ...string) *grammar.Production {
		rhs := make(grammar.ProductionRHS, len(names))
		for i, n := range names {
			rhs[i] = grammar.NewRefSlot(ref(n))
		}
		return &grammar.Production{LHS: lhs, RHS: rhs}
	}

	pgFile := grammar.NewNonTerminal("PGFile", &loc)
	prodRules := grammar.NewNonTerminal("ProductionRules", &loc)
	prodRule := grammar.NewNonTerminal("ProductionRule", &loc)
	prodRHS := grammar.NewNonTerminal("ProductionRHS", &loc)
	sequence := grammar.NewNonTerminal("Sequence", &loc)
	symbolRef := grammar.NewNonTerminal("GrammarSymbolRef", &loc)
	termRules := grammar.NewNonTerminal("TerminalRules", &loc)
	termRule := grammar.NewNonTerminal("TerminalRule", &loc)
	recBody := grammar.NewNonTerminal("RecognizerBody", &loc)
	importStmt := grammar.NewNonTerminal("ImportStatement", &loc)

	productions := []*grammar.Production{
		rule(pgFile, "ProductionRules"),
		rule(pgFile, "TerminalRules"),
		rule(pgFile, "ImportStatement"),

		rule(prodRules, "ProductionRules", "ProductionRule"),
		rule(prodRules, "ProductionRule"),

		rule(prodRule, "NAME", "COLON", "ProductionRHS", "SEMI"),
		rule(prodRule, "AT", "NAME", "NAME", "COLON", "ProductionRHS", "SEMI"),

		rule(prodRHS, "ProductionRHS", "PIPE", "Sequence"),
		rule(prodRHS, "Sequence"),

		rule(sequence, "Sequence", "GrammarSymbolRef"),
		rule(sequence, "GrammarSymbolRef"),

		rule(symbolRef, "NAME"),
		rule(symbolRef, "NAME", "QUESTION"),
		rule(symbolRef, "NAME", "STAR"),
		rule(symbolRef, "NAME", "PLUS"),

		rule(termRules, "TerminalRules", "TerminalRule"),
		rule(termRules, "TerminalRule"),

		rule(termRule, "KW_TERMINALS", "NAME", "COLON", "RecognizerBody", "SEMI"),
		rule(termRule, "KW_TERMINALS", "NAME", "SEMI"),

		rule(recBody, "STRING"),
		rule(recBody, "REGEX"),

		rule(importStmt, "KW_IMPORT", "STRING", "SEMI"),
		rule(importStmt, "KW_IMPORT", "STRING", "KW_AS", "NAME", "SEMI"),
	}

	litTerm := func(name, value string) *grammar.Terminal {
		t := term(name)
		t.Recognizer = recognizer.NewLiteral(value, false)
		return t
	}
	reTerm := func(name, pattern string) *grammar.Terminal {
		t := term(name)
		t.Recognizer, _ = recognizer.NewRegex(pattern, false, loc)
		return t
	}

	terminals := []*grammar.Terminal{
		litTerm("COLON", ":"),
		litTerm("SEMI", ";"),
		litTerm("PIPE", "|"),
		litTerm("QUESTION", "?"),
		litTerm("STAR", "*"),
		litTerm("PLUS", "+"),
		litTerm("AT", "@"),
		litTerm("KW_TERMINALS", "terminals"),
		litTerm("KW_IMPORT", "import"),
		litTerm("KW_AS", "as"),
		reTerm("NAME", `[A-Za-z_][A-Za-z0-9_]*`),
		reTerm("STRING", `"(\\.|[^"\\])*"`),
		reTerm("REGEX", `/(\\.|[^/\\])*/`),
	}

	return &grammar.ParsedSource{Productions: productions, Terminals: terminals}, nil
}
