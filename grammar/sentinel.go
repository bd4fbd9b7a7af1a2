package grammar

import (
	"github.com/dekarrin/gudgeon/action"
	"github.com/dekarrin/gudgeon/recognizer"
)

// Empty, EOF, and Stop are process-wide singletons: every PGFile's symbol
// table resolves their reserved names to these exact pointers, so a
// pointer comparison is enough to recognize them (see ProductionRHS.At and
// ProductionRHS.Logical).
var (
	Empty = &Terminal{
		symbolBase: symbolBase{name: "EMPTY"},
		Recognizer: recognizer.Empty,
	}

	EOF = &Terminal{
		symbolBase: symbolBase{name: "EOF"},
		Recognizer: recognizer.EOF,
	}

	Stop = &Terminal{
		symbolBase: symbolBase{name: "STOP"},
		Recognizer: recognizer.Stop,
	}

	// AugSymbol is the synthesized start symbol S' introduced by grammar
	// augmentation: S' -> start STOP.
	AugSymbol = &NonTerminal{symbolBase: symbolBase{name: "S'"}}
)

func init() {
	Empty.setGrammarAction(action.PassNone)
	EOF.setGrammarAction(action.PassNone)
	Stop.setGrammarAction(action.PassNone)
}
