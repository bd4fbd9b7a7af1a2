package grammar

import "github.com/dekarrin/gudgeon/recognizer"

// ImportDecl is what a SourceParser reports for one `import "path" as
// name;` statement; grammar.go turns it into a PGFileImport and resolves
// it against the shared import registry.
type ImportDecl struct {
	ModuleName string
	Path       string
}

// ParsedSource is what a SourceParser produces from one grammar source
// file's text: its local productions and terminal declarations (with RHS
// slots still containing unresolved *Reference values wrapped via
// NewRefSlot), and its import statements.
type ParsedSource struct {
	Productions []*Production
	Terminals   []*Terminal
	Imports     []ImportDecl
	StartSymbol string // "" if not explicitly declared in this file
}

// SourceParser turns grammar source text into a ParsedSource. filePath is
// informational (used for location messages and relative import
// resolution) and may be "" for in-memory source with no associated file.
// The grammar package depends on this function value rather than any
// particular grammar-source syntax, which is what lets the bootstrap
// grammar-of-grammars parser live in its own package without an import
// cycle back into this one.
type SourceParser func(source, filePath string) (*ParsedSource, error)

// CompileOptions configures one grammar compilation.
type CompileOptions struct {
	// Parser turns source text into productions/terminals/imports. Required.
	Parser SourceParser

	// Recognizers supplies recognizers for terminals that declare a name
	// but no literal or regex body, keyed by FQN (checked first) or plain
	// name (checked second). Typically loaded from a recfile sidecar.
	Recognizers map[string]recognizer.Recognizer

	// StartSymbol overrides the grammar's start symbol; if empty, the
	// first rule's LHS in the root file is used, per spec §4.4.
	StartSymbol string

	// NoCheckRecognizers disables the recognizer-presence compile error,
	// leaving unbound terminals with a nil Recognizer. Intended for tooling
	// that only needs the grammar's static shape (e.g. a structure linter).
	NoCheckRecognizers bool
}
