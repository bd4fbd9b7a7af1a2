package grammar

import (
	"path/filepath"

	"github.com/dekarrin/gudgeon/grammarerr"
	"github.com/dekarrin/gudgeon/location"
)

// MaxImportDepth bounds how deep a chain of imports may nest before it is
// treated as a configuration error rather than patiently followed forever.
const MaxImportDepth = 50

// PGFileImport is one `import "path" as name;` statement. Resolving it
// loads (or reuses, from the owning Grammar's shared registry) the PGFile
// at Path, recorded under ModuleName for dotted-reference lookups
// (`ModuleName.Symbol`) in the importing file.
type PGFileImport struct {
	ModuleName string
	Path       string
	Location   location.Location

	// ImportedWith chains to the PGFileImport that pulled in the file
	// containing this import statement, nil if it is the root grammar file.
	// This chain is what FQN composition walks.
	ImportedWith *PGFileImport

	// File is the resolved PGFile, populated once Resolve has run.
	File *PGFile
}

// FQN returns the fully-qualified module path reaching this import: the
// chain of ancestor module names, dot-joined, ending in ModuleName.
func (imp *PGFileImport) FQN() string {
	if imp == nil {
		return ""
	}
	if imp.ImportedWith != nil {
		return imp.ImportedWith.FQN() + "." + imp.ModuleName
	}
	return imp.ModuleName
}

// resolve looks up ref inside the imported file (ref.Name has already had
// its module prefix stripped by the caller).
func (imp *PGFileImport) resolve(ref *Reference) (Symbol, error) {
	if imp.File == nil {
		return nil, grammarerr.At(ref.Location, "import %q was never loaded", imp.ModuleName)
	}
	return imp.File.resolve(ref)
}

// importRegistry is the shared table of already-parsed files a Grammar
// consults before reparsing an import, keyed by canonical (absolute,
// symlink-resolved as far as filepath.Abs manages) path. It lets diamond
// and (eventually, guarded) circular import graphs share one PGFile object
// per file rather than one per reference to it.
type importRegistry struct {
	byPath map[string]*PGFile
	// inProgress marks paths currently being parsed, so a cycle is caught
	// as a compile error instead of infinite recursion.
	inProgress map[string]bool
}

func newImportRegistry() *importRegistry {
	return &importRegistry{
		byPath:     map[string]*PGFile{},
		inProgress: map[string]bool{},
	}
}

func canonicalPath(base, path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	return filepath.Abs(filepath.Join(filepath.Dir(base), path))
}
