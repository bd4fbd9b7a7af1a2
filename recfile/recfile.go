// Package recfile loads recognizer overrides for a grammar from a
// TOML-based sidecar format, the TOML analog of the grammar source's own
// inline recognizer bodies for terminals a grammar file declares bare
// (`terminals NAME;` with no `: "literal"` or `: /regex/`).
//
// Go has no equivalent of a host language's ability to import arbitrary
// source at compile time and bind it as a recognizer function, so instead
// of the "write a recognizer in code and reference it by name" escape
// hatch, an unbound terminal's match behavior is supplied declaratively: a
// file named after the grammar (grammar.pg -> grammar_recognizers.toml)
// listing one [[recognizer]] table per terminal, or a MANIFEST file
// listing further recognizer files to merge in, mirroring the two-type
// (MANIFEST/DATA) file convention used elsewhere in this toolkit's loaders.
package recfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/gudgeon/grammarerr"
	"github.com/dekarrin/gudgeon/location"
	"github.com/dekarrin/gudgeon/recognizer"
)

// MaxManifestRecursionDepth bounds how many MANIFEST files may be chained
// via `files` before Load gives up, guarding against runaway or
// accidentally-circular manifests that ErrManifestCircularRef doesn't
// otherwise catch (e.g. a long acyclic chain).
const MaxManifestRecursionDepth = 32

var (
	// ErrManifestStackOverflow is returned when a manifest chain is nested
	// more than MaxManifestRecursionDepth deep.
	ErrManifestStackOverflow = errors.New("too many recognizer manifests deep")

	// ErrManifestCircularRef is returned when a manifest's `files` list
	// refers back, directly or transitively, to a file already being
	// loaded in the current chain.
	ErrManifestCircularRef = errors.New("recognizer manifest inclusion chain refers back to itself")
)

// FileInfo is the common header every recfile TOML file carries, readable
// without knowing the rest of the file's shape.
type FileInfo struct {
	Format string `toml:"format"`
	Type   string `toml:"type"`
}

// ScanFileInfo reads just the top-level table of a recfile TOML document,
// stopping at the first `[[table]]` array header, so the file's Type can be
// determined before committing to a full decode.
func ScanFileInfo(data []byte) (FileInfo, error) {
	topLevelEnd := -1
	onNewLine := true
	for i, b := range data {
		if onNewLine && b == '[' {
			topLevelEnd = i
			break
		}
		if b == '\n' {
			onNewLine = true
		} else if !unicode.IsSpace(rune(b)) {
			onNewLine = false
		}
	}

	scanData := data
	if topLevelEnd != -1 {
		scanData = data[:topLevelEnd]
	}

	var info FileInfo
	err := toml.Unmarshal(scanData, &info)
	return info, err
}

type manifestFile struct {
	Format string   `toml:"format"`
	Type   string   `toml:"type"`
	Files  []string `toml:"files"`
}

type dataFile struct {
	Format     string            `toml:"format"`
	Type       string            `toml:"type"`
	Recognizer []recognizerEntry `toml:"recognizer"`
}

type recognizerEntry struct {
	Name       string `toml:"name"`
	Kind       string `toml:"kind"` // "literal" or "regex"
	Value      string `toml:"value"`
	Pattern    string `toml:"pattern"`
	IgnoreCase bool   `toml:"ignore_case"`
}

// DefaultSidecarPath returns the conventional recognizer-override file path
// for a grammar file: the grammar's path with its extension replaced by
// "_recognizers.toml".
func DefaultSidecarPath(grammarPath string) string {
	ext := filepath.Ext(grammarPath)
	base := strings.TrimSuffix(grammarPath, ext)
	return base + "_recognizers.toml"
}

// Load reads the recognizer-override file at path, following any MANIFEST
// chain it specifies, and returns the merged set of recognizers keyed by
// the terminal name (or FQN, for a qualified override) each entry names.
func Load(path string) (map[string]recognizer.Recognizer, error) {
	out := make(map[string]recognizer.Recognizer)
	err := loadInto(out, path, map[string]bool{}, 0)
	return out, err
}

func loadInto(out map[string]recognizer.Recognizer, path string, visiting map[string]bool, depth int) error {
	if depth > MaxManifestRecursionDepth {
		return ErrManifestStackOverflow
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if visiting[abs] {
		return ErrManifestCircularRef
	}
	visiting[abs] = true
	defer delete(visiting, abs)

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	info, err := ScanFileInfo(data)
	if err != nil {
		return err
	}

	switch strings.ToUpper(info.Type) {
	case "MANIFEST":
		var manif manifestFile
		if err := toml.Unmarshal(data, &manif); err != nil {
			return err
		}
		dir := filepath.Dir(path)
		for _, f := range manif.Files {
			childPath := f
			if !filepath.IsAbs(childPath) {
				childPath = filepath.Join(dir, f)
			}
			if err := loadInto(out, childPath, visiting, depth+1); err != nil {
				return err
			}
		}
		return nil

	case "DATA", "":
		var df dataFile
		if err := toml.Unmarshal(data, &df); err != nil {
			return err
		}
		for _, entry := range df.Recognizer {
			rec, err := entry.toRecognizer(path)
			if err != nil {
				return err
			}
			out[entry.Name] = rec
		}
		return nil

	default:
		return grammarerr.New("%s: unrecognized recfile type %q", path, info.Type)
	}
}

func (e recognizerEntry) toRecognizer(path string) (recognizer.Recognizer, error) {
	loc := location.New(path, "", 0)
	switch strings.ToLower(e.Kind) {
	case "literal":
		return recognizer.NewLiteral(e.Value, e.IgnoreCase), nil
	case "regex":
		return recognizer.NewRegex(e.Pattern, e.IgnoreCase, loc)
	default:
		return nil, grammarerr.At(loc, "recognizer %q: unknown kind %q (want \"literal\" or \"regex\")", e.Name, e.Kind)
	}
}
