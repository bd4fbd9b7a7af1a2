package gcio

import (
	"testing"

	"github.com/dekarrin/gudgeon/grammar"
	"github.com/dekarrin/gudgeon/grammar/bootstrap"
	"github.com/stretchr/testify/assert"
)

func compileSample(t *testing.T) *grammar.Grammar {
	t.Helper()
	src := `
terminals PLUS: "+";
terminals ID: /[a-zA-Z][a-zA-Z0-9]*/;
terminals COMMA: ",";

E: E PLUS T | T;
T: ID T_opt;

List: ID+[COMMA];
`
	g, err := grammar.FromString(src, grammar.CompileOptions{Parser: bootstrap.Parse, StartSymbol: "E"})
	if err != nil {
		t.Fatalf("compiling sample grammar: %v", err)
	}
	return g
}

func Test_EncodeDecode_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	g := compileSample(t)
	data, err := Encode(g)
	if !assert.NoError(err) {
		return
	}
	assert.NotEmpty(data)

	g2, err := Decode(data)
	if !assert.NoError(err) {
		return
	}

	assert.Equal(g.StartSymbol.Name(), g2.StartSymbol.Name())

	e1 := g.GetNonTerminal("E")
	e2 := g2.GetNonTerminal("E")
	if assert.NotNil(e1) && assert.NotNil(e2) {
		assert.Len(e2.Productions, len(e1.Productions))
	}

	opt1 := g.GetNonTerminal("ID_opt")
	opt2 := g2.GetNonTerminal("ID_opt")
	if assert.NotNil(opt1) && assert.NotNil(opt2) {
		assert.Equal(opt1.ActionName(), opt2.ActionName())
	}

	oneOrMore2 := g2.GetNonTerminal("ID_1_COMMA")
	if assert.NotNil(oneOrMore2) {
		assert.Equal("collect_sep", oneOrMore2.ActionName())
	}

	idTerm2 := g2.GetTerminal("ID")
	if assert.NotNil(idTerm2) {
		matched, ok := idTerm2.Recognizer.Match("abc123", 0)
		assert.True(ok)
		assert.Equal("abc123", matched)
	}
}

func Test_Decode_RejectsTrailingBytes(t *testing.T) {
	assert := assert.New(t)

	g := compileSample(t)
	data, err := Encode(g)
	if !assert.NoError(err) {
		return
	}

	_, err = Decode(append(data, 0xFF))
	assert.Error(err)
}
