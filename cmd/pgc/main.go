/*
Pgc compiles a grammar file and reports on the result.

Usage:

	pgc [flags] GRAMMAR_FILE

By default, pgc prints a table of every production in the compiled grammar. If
compilation fails, the full compile error (including source location, if one
is available) is printed to stderr and pgc exits with a non-zero status.

The flags are:

	-v, --version
		Give the current version of gudgeon and then exit.

	-s, --start SYMBOL
		Override the grammar's declared start symbol with SYMBOL.

	-q, --quiet
		Suppress the production table; only report whether compilation
		succeeded.

	-r, --recognizers FILE
		Load terminal recognizer overrides from the given recfile TOML file,
		in place of the grammar's conventional sidecar file (grammar.pg ->
		grammar_recognizers.toml), which is loaded automatically if present.
*/
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dekarrin/gudgeon/grammar"
	"github.com/dekarrin/gudgeon/grammar/bootstrap"
	"github.com/dekarrin/gudgeon/grammarerr"
	"github.com/dekarrin/gudgeon/internal/version"
	"github.com/dekarrin/gudgeon/recfile"
	"github.com/spf13/pflag"
)

const (
	ExitSuccess = iota
	ExitCompileError
	ExitUsageError
)

var (
	flagVersion     = pflag.BoolP("version", "v", false, "Gives the version info")
	flagStart       = pflag.StringP("start", "s", "", "Override the grammar's declared start symbol")
	flagQuiet       = pflag.BoolP("quiet", "q", false, "Suppress the production table")
	flagRecognizers = pflag.StringP("recognizers", "r", "", "Load terminal recognizer overrides from the given recfile TOML file")
)

func main() {
	os.Exit(run())
}

func run() int {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return ExitSuccess
	}

	args := pflag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: pgc [flags] GRAMMAR_FILE\nDo -h for help.\n")
		return ExitUsageError
	}

	opts := grammar.CompileOptions{
		Parser:      bootstrap.Parse,
		StartSymbol: *flagStart,
	}

	// The grammar package itself looks for the conventional sidecar file
	// (args[0] with its extension replaced by "_recognizers.toml"); this
	// flag is only needed to point at a differently-named or located file.
	if *flagRecognizers != "" {
		recs, err := recfile.Load(*flagRecognizers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: loading recognizers from %q: %s\n", *flagRecognizers, err.Error())
			return ExitCompileError
		}
		opts.Recognizers = recs
	}

	g, err := grammar.FromFile(args[0], opts)
	if err != nil {
		var gerr *grammarerr.Error
		if errors.As(err, &gerr) {
			fmt.Fprintln(os.Stderr, gerr.FullMessage())
		} else {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		}
		return ExitCompileError
	}

	fmt.Printf("grammar %q compiled successfully; start symbol %q\n", args[0], g.StartSymbol.Name())

	if !*flagQuiet {
		fmt.Println(g.DebugString())
	}

	return ExitSuccess
}
