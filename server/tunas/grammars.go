package tunas

import (
	"context"
	"errors"

	"github.com/dekarrin/gudgeon/gcio"
	"github.com/dekarrin/gudgeon/grammar"
	"github.com/dekarrin/gudgeon/grammar/bootstrap"
	"github.com/dekarrin/gudgeon/registry"
	"github.com/dekarrin/gudgeon/server/serr"
	"github.com/google/uuid"
)

// CompiledGrammar is a compile result: the grammar's shape summary plus the
// registry entry it was persisted under, if it compiled successfully.
type CompiledGrammar struct {
	Entry   registry.Grammar
	Grammar *grammar.Grammar
}

// CompileGrammar compiles source using the bootstrap parser, persists the
// result under a generated ID owned by userID, and returns the stored entry
// along with the live grammar.
//
// If source fails to compile, the returned error wraps the *grammarerr.Error
// describing why; nothing is persisted.
func (svc Service) CompileGrammar(ctx context.Context, userID uuid.UUID, name, source string) (CompiledGrammar, error) {
	g, err := grammar.FromString(source, grammar.CompileOptions{Parser: bootstrap.Parse})
	if err != nil {
		return CompiledGrammar{}, serr.New("grammar did not compile", err, serr.ErrBadArgument)
	}

	encoded, err := gcio.Encode(g)
	if err != nil {
		return CompiledGrammar{}, serr.New("could not encode compiled grammar", err)
	}

	var termCount, nonTermCount, prodCount int
	g.Iter(func(sym grammar.Symbol) {
		switch sym.(type) {
		case *grammar.Terminal:
			termCount++
		case *grammar.NonTerminal:
			nonTermCount++
		}
	})
	for range g.Productions {
		prodCount++
	}

	entry := registry.Grammar{
		UserID:          userID,
		Name:            name,
		Source:          source,
		Encoded:         encoded,
		StartSymbol:     g.StartSymbol.Name(),
		TerminalCount:   termCount,
		NonTermCount:    nonTermCount,
		ProductionCount: prodCount,
	}

	stored, err := svc.DB.Grammars().Create(ctx, entry)
	if err != nil {
		return CompiledGrammar{}, serr.WrapDB("could not store compiled grammar", err)
	}

	return CompiledGrammar{Entry: stored, Grammar: g}, nil
}

// GetGrammarSummary fetches the registry entry for a previously compiled
// grammar by its string-encoded UUID. It does not decode the stored
// snapshot back into a *grammar.Grammar; callers needing the live grammar
// should call gcio.Decode on the returned entry's Encoded field.
func (svc Service) GetGrammarSummary(ctx context.Context, id string) (registry.Grammar, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return registry.Grammar{}, serr.New("", err, serr.ErrBadArgument)
	}

	g, err := svc.DB.Grammars().GetByID(ctx, parsedID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return registry.Grammar{}, serr.ErrNotFound
		}
		return registry.Grammar{}, serr.WrapDB("could not retrieve grammar", err)
	}
	return g, nil
}
