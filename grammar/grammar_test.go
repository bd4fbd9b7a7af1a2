package grammar

import (
	"testing"

	"github.com/dekarrin/gudgeon/location"
	"github.com/dekarrin/gudgeon/recognizer"
	"github.com/stretchr/testify/assert"
)

// handParser builds a ParsedSource for a tiny grammar by hand:
//
//	E: E "+" T | T;
//	T: "id" T_opt;
//	T_opt is materialized by a "T?" reference inline in a real grammar
//	source, but here we build it directly as a MultOptional reference.
//
// It exists so this file's tests exercise the collect/resolve/finalize
// pipeline without depending on the bootstrap grammar-of-grammars parser.
func handParser(_, _ string) (*ParsedSource, error) {
	loc := location.New("", "", 0)

	plus := NewTerminal("PLUS", &loc)
	plus.Recognizer = recognizer.NewLiteral("+", false)
	id := NewTerminal("ID", &loc)
	id.Recognizer, _ = recognizer.NewRegex(`[a-z]+`, false, loc)

	e := NewNonTerminal("E", &loc)
	t := NewNonTerminal("T", &loc)

	prodEPlus := &Production{LHS: e, RHS: ProductionRHS{NewRefSlot(NewReference("E", loc)), NewRefSlot(plusRefSlot(plus)), NewRefSlot(NewReference("T", loc))}}
	prodET := &Production{LHS: e, RHS: ProductionRHS{NewRefSlot(NewReference("T", loc))}}

	optRef := &Reference{Name: "ID", Location: loc, Multiplicity: MultOptional}
	prodT := &Production{LHS: t, RHS: ProductionRHS{NewRefSlot(NewReference("ID", loc)), NewRefSlot(optRef)}}

	return &ParsedSource{
		Productions: []*Production{prodEPlus, prodET, prodT},
		Terminals:   []*Terminal{plus, id},
	}, nil
}

// plusRefSlot is a small helper so the PLUS terminal (already a concrete
// Symbol, not a name needing lookup) can still occupy an RHS slot via the
// same NewRefSlot path the real parser would use for every slot uniformly.
// A real SourceParser only ever has names at parse time, so it always goes
// through NewReference; this test takes the shortcut of pre-resolving a
// terminal reference to save a few lines.
func plusRefSlot(t *Terminal) *Reference {
	return &Reference{Name: t.Name(), Location: *t.Location(), Multiplicity: MultOne}
}

func Test_Grammar_Compile_UnifiesAndResolves(t *testing.T) {
	assert := assert.New(t)

	g, err := FromString("", CompileOptions{Parser: handParser, StartSymbol: "E"})
	assert.NoError(err)
	if g == nil {
		t.FailNow()
	}

	e := g.GetNonTerminal("E")
	assert.NotNil(e)
	assert.Len(e.Productions, 2, "both E alternatives unify onto one NonTerminal")

	tNT := g.GetNonTerminal("T")
	assert.NotNil(tNT)
	assert.Len(tNT.Productions, 1)

	idOpt := g.GetNonTerminal("ID_opt")
	assert.NotNil(idOpt, "multiplicity desugaring should materialize ID_opt")
	assert.Len(idOpt.Productions, 2)
}

func Test_Grammar_Compile_Augments(t *testing.T) {
	assert := assert.New(t)

	g, err := FromString("", CompileOptions{Parser: handParser, StartSymbol: "E"})
	assert.NoError(err)

	assert.Equal(0, g.Augmented.ProdID)
	assert.Equal(g.StartSymbol, g.GetNonTerminal("E"))
	assert.Equal(Stop, g.Augmented.RHS.Raw()[1])
}

func Test_Grammar_Compile_EnumeratesProductions(t *testing.T) {
	assert := assert.New(t)

	g, err := FromString("", CompileOptions{Parser: handParser, StartSymbol: "E"})
	assert.NoError(err)

	seen := map[int]bool{}
	for _, p := range g.PGFile.Productions {
		assert.False(seen[p.ProdID], "ProdID %d assigned twice", p.ProdID)
		seen[p.ProdID] = true
	}
}

func Test_Grammar_Compile_MissingRecognizerIsError(t *testing.T) {
	assert := assert.New(t)

	parser := func(_, _ string) (*ParsedSource, error) {
		loc := location.New("", "", 0)
		bare := NewTerminal("BARE", &loc)
		nt := NewNonTerminal("S", &loc)
		prod := &Production{LHS: nt, RHS: ProductionRHS{NewRefSlot(NewReference("BARE", loc))}}
		return &ParsedSource{Productions: []*Production{prod}, Terminals: []*Terminal{bare}}, nil
	}

	_, err := FromString("", CompileOptions{Parser: parser})
	assert.Error(err)
}

func Test_Grammar_Compile_NoCheckRecognizersSkipsError(t *testing.T) {
	assert := assert.New(t)

	parser := func(_, _ string) (*ParsedSource, error) {
		loc := location.New("", "", 0)
		bare := NewTerminal("BARE", &loc)
		nt := NewNonTerminal("S", &loc)
		prod := &Production{LHS: nt, RHS: ProductionRHS{NewRefSlot(NewReference("BARE", loc))}}
		return &ParsedSource{Productions: []*Production{prod}, Terminals: []*Terminal{bare}}, nil
	}

	_, err := FromString("", CompileOptions{Parser: parser, NoCheckRecognizers: true})
	assert.NoError(err)
}

func Test_Grammar_Compile_RecognizerOverrideOnNonTerminalIsError(t *testing.T) {
	assert := assert.New(t)

	parser := func(_, _ string) (*ParsedSource, error) {
		loc := location.New("", "", 0)
		bare := NewTerminal("BARE", &loc)
		nt := NewNonTerminal("S", &loc)
		prod := &Production{LHS: nt, RHS: ProductionRHS{NewRefSlot(NewReference("BARE", loc))}}
		return &ParsedSource{Productions: []*Production{prod}, Terminals: []*Terminal{bare}}, nil
	}

	overrides := map[string]recognizer.Recognizer{
		"S": recognizer.NewLiteral("nope", false),
	}

	_, err := FromString("", CompileOptions{Parser: parser, Recognizers: overrides, NoCheckRecognizers: true})
	assert.Error(err)
}

func Test_Grammar_Compile_ImportInStringSourcedGrammarIsError(t *testing.T) {
	assert := assert.New(t)

	parser := func(_, _ string) (*ParsedSource, error) {
		loc := location.New("", "", 0)
		nt := NewNonTerminal("S", &loc)
		prod := &Production{LHS: nt, RHS: ProductionRHS{}}
		return &ParsedSource{
			Productions: []*Production{prod},
			Imports:     []ImportDecl{{ModuleName: "cmn", Path: "common.pg"}},
		}, nil
	}

	_, err := FromString("", CompileOptions{Parser: parser})
	assert.Error(err)
}

func Test_Grammar_Iter_ExcludesAugmentedAndSentinels(t *testing.T) {
	assert := assert.New(t)

	g, err := FromString("", CompileOptions{Parser: handParser, StartSymbol: "E"})
	assert.NoError(err)

	var names []string
	g.Iter(func(s Symbol) { names = append(names, s.Name()) })

	for _, n := range names {
		assert.NotEqual("S'", n)
		assert.NotEqual("EMPTY", n)
		assert.NotEqual("EOF", n)
		assert.NotEqual("STOP", n)
	}
}
