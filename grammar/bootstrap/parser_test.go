package bootstrap

import (
	"testing"

	"github.com/dekarrin/gudgeon/grammar"
	"github.com/stretchr/testify/assert"
)

func Test_Parse_ImportDecl(t *testing.T) {
	assert := assert.New(t)

	src := `import "common.pg" as cmn;`
	out, err := Parse(src, "g.pg")
	assert.NoError(err)
	if assert.Len(out.Imports, 1) {
		assert.Equal("cmn", out.Imports[0].ModuleName)
		assert.Equal("common.pg", out.Imports[0].Path)
	}
}

func Test_Parse_ImportDecl_DefaultModuleName(t *testing.T) {
	assert := assert.New(t)

	src := `import "dir/common.pg";`
	out, err := Parse(src, "g.pg")
	assert.NoError(err)
	if assert.Len(out.Imports, 1) {
		assert.Equal("common", out.Imports[0].ModuleName)
	}
}

func Test_Parse_TerminalDecl_Literal(t *testing.T) {
	assert := assert.New(t)

	src := `terminals PLUS: "+";`
	out, err := Parse(src, "g.pg")
	assert.NoError(err)
	if assert.Len(out.Terminals, 1) {
		assert.Equal("PLUS", out.Terminals[0].Name())
		matched, ok := out.Terminals[0].Recognizer.Match("+", 0)
		assert.True(ok)
		assert.Equal("+", matched)
	}
}

func Test_Parse_TerminalDecl_Regex(t *testing.T) {
	assert := assert.New(t)

	src := `terminals ID: /[a-z]+/;`
	out, err := Parse(src, "g.pg")
	assert.NoError(err)
	if assert.Len(out.Terminals, 1) {
		matched, ok := out.Terminals[0].Recognizer.Match("abc123", 0)
		assert.True(ok)
		assert.Equal("abc", matched)
	}
}

func Test_Parse_TerminalDecl_Bare(t *testing.T) {
	assert := assert.New(t)

	src := `terminals UNBOUND;`
	out, err := Parse(src, "g.pg")
	assert.NoError(err)
	if assert.Len(out.Terminals, 1) {
		assert.Nil(out.Terminals[0].Recognizer)
	}
}

func Test_Parse_TerminalDecl_Disambiguation(t *testing.T) {
	assert := assert.New(t)

	src := `terminals KW: "if" {prefer, finish, 20};`
	out, err := Parse(src, "g.pg")
	assert.NoError(err)
	if assert.Len(out.Terminals, 1) {
		term := out.Terminals[0]
		assert.True(term.Prefer)
		assert.Equal(grammar.TristateTrue, term.Finish)
		assert.Equal(20, term.Priority)
	}
}

func Test_Parse_TerminalDecl_ReservedNameRejected(t *testing.T) {
	assert := assert.New(t)

	_, err := Parse(`terminals EOF: "x";`, "g.pg")
	assert.Error(err)
}

func Test_Parse_Rule_ReservedNameRejected(t *testing.T) {
	assert := assert.New(t)

	_, err := Parse(`STOP: "x";`, "g.pg")
	assert.Error(err)
}

func Test_Parse_Rule_Alternatives(t *testing.T) {
	assert := assert.New(t)

	src := `terminals PLUS: "+"; terminals ID: /[a-z]+/;
E: E PLUS ID | ID;`
	out, err := Parse(src, "g.pg")
	assert.NoError(err)
	assert.Len(out.Productions, 2)
	assert.Equal("E", out.Productions[0].LHS.Name())
	assert.Equal(3, out.Productions[0].RHS.Len())
	assert.Equal(1, out.Productions[1].RHS.Len())
}

func Test_Parse_Rule_NamedMatch(t *testing.T) {
	assert := assert.New(t)

	src := `terminals ID: /[a-z]+/;
R: left=ID right?=ID;`
	out, err := Parse(src, "g.pg")
	assert.NoError(err)
	if assert.Len(out.Productions, 1) {
		prod := out.Productions[0]
		assert.Contains(prod.Assignments, "left")
		assert.Contains(prod.Assignments, "right")
		assert.Equal(grammar.AssignValue, prod.Assignments["left"].Op)
		assert.Equal(grammar.AssignBool, prod.Assignments["right"].Op)
	}
}

func Test_Parse_Rule_DuplicateNamedMatchIsError(t *testing.T) {
	assert := assert.New(t)

	src := `terminals ID: /[a-z]+/;
R: x=ID x=ID;`
	_, err := Parse(src, "g.pg")
	assert.Error(err)
}

func Test_Parse_Rule_RepetitionOperators(t *testing.T) {
	assert := assert.New(t)

	src := `terminals ID: /[a-z]+/; terminals COMMA: ",";
R: ID? ID+ ID* ID+[COMMA];`
	out, err := Parse(src, "g.pg")
	assert.NoError(err)
	if assert.Len(out.Productions, 1) {
		rhs := out.Productions[0].RHS
		assert.Equal(4, rhs.Len())
	}
}

func Test_Parse_Rule_ActionName(t *testing.T) {
	assert := assert.New(t)

	src := `terminals ID: /[a-z]+/;
@myaction R: ID;`
	out, err := Parse(src, "g.pg")
	assert.NoError(err)
	if assert.Len(out.Productions, 1) {
		assert.Equal("myaction", out.Productions[0].LHS.ActionName())
	}
}

func Test_Parse_Rule_EmptyAlternativeRequiresEMPTY(t *testing.T) {
	assert := assert.New(t)

	_, err := Parse(`R: ;`, "g.pg")
	assert.Error(err)
}

func Test_Parse_Rule_ProductionDisambiguation(t *testing.T) {
	assert := assert.New(t)

	src := `terminals ID: /[a-z]+/;
R: ID {left, 5};`
	out, err := Parse(src, "g.pg")
	assert.NoError(err)
	if assert.Len(out.Productions, 1) {
		prod := out.Productions[0]
		assert.Equal(grammar.AssocLeft, prod.Assoc)
		assert.Equal(5, prod.Priority)
	}
}

func Test_Parse_FullPipeline_CompilesThroughGrammar(t *testing.T) {
	assert := assert.New(t)

	src := `
terminals PLUS: "+";
terminals ID: /[a-zA-Z][a-zA-Z0-9]*/;

E: E PLUS T | T;
T: ID T_opt;
`
	g, err := grammar.FromString(src, grammar.CompileOptions{Parser: Parse})
	if !assert.NoError(err) {
		return
	}

	e := g.GetNonTerminal("E")
	if assert.NotNil(e) {
		assert.Len(e.Productions, 2)
	}

	optional := g.GetNonTerminal("ID_opt")
	if assert.NotNil(optional) {
		assert.Len(optional.Productions, 2)
		assert.Equal("optional", optional.ActionName())
	}

	assert.Equal(0, g.Augmented.ProdID)
	assert.Equal(e, g.StartSymbol)
}

func Test_Parse_FullPipeline_OneOrMoreWithSeparator(t *testing.T) {
	assert := assert.New(t)

	src := `
terminals ID: /[a-zA-Z]+/;
terminals COMMA: ",";

List: ID+[COMMA];
`
	g, err := grammar.FromString(src, grammar.CompileOptions{Parser: Parse})
	if !assert.NoError(err) {
		return
	}

	oneOrMore := g.GetNonTerminal("ID_1_COMMA")
	if assert.NotNil(oneOrMore) {
		assert.Equal("collect_sep", oneOrMore.ActionName())
	}
}

func Test_Parse_FullPipeline_ZeroOrMore(t *testing.T) {
	assert := assert.New(t)

	src := `
terminals ID: /[a-zA-Z]+/;

List: ID*;
`
	g, err := grammar.FromString(src, grammar.CompileOptions{Parser: Parse})
	if !assert.NoError(err) {
		return
	}

	zeroOrMore := g.GetNonTerminal("ID_0")
	if assert.NotNil(zeroOrMore) {
		assert.Empty(zeroOrMore.ActionName())
		assert.True(zeroOrMore.Productions[0].Nops)
	}
}

func Test_Parse_FullPipeline_OptionalWithSeparatorIsError(t *testing.T) {
	assert := assert.New(t)

	src := `
terminals ID: /[a-zA-Z]+/;
terminals COMMA: ",";

R: ID?[COMMA];
`
	_, err := grammar.FromString(src, grammar.CompileOptions{Parser: Parse})
	assert.Error(err)
}

func Test_Parse_NestedBlockComment(t *testing.T) {
	assert := assert.New(t)

	src := `
/* outer /* inner */ still outer */
terminals PLUS: "+";
`
	out, err := Parse(src, "g.pg")
	assert.NoError(err)
	if assert.Len(out.Terminals, 1) {
		assert.Equal("PLUS", out.Terminals[0].Name())
	}
}

func Test_GrammarOfGrammars_Compiles(t *testing.T) {
	assert := assert.New(t)

	g, err := Grammar()
	assert.NoError(err)
	assert.NotNil(g)

	pgFile := g.GetNonTerminal("PGFile")
	assert.NotNil(pgFile)
}
