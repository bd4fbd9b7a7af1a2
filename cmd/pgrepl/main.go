/*
Pgrepl is an interactive grammar REPL.

Usage:

	pgrepl [flags]

Each line entered is appended to a running session buffer and the whole
buffer is recompiled as a single grammar. If the new buffer compiles
successfully, pgrepl reports any symbols that were not present in the
previous successful compile. If it fails to compile, the line just entered is
dropped from the buffer, the compile error is printed, and the session
buffer is left as it was before the line was entered.

Type "QUIT" to exit, "SHOW" to print the full session buffer, or "UNDO" to
revert the last accepted line.

The flags are:

	-v, --version
		Give the current version of gudgeon and then exit.

	-d, --direct
		Force reading directly from stdin instead of going through GNU
		readline even if launched in a tty with stdin and stdout.
*/
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dekarrin/gudgeon/grammar"
	"github.com/dekarrin/gudgeon/grammar/bootstrap"
	"github.com/dekarrin/gudgeon/grammarerr"
	"github.com/dekarrin/gudgeon/internal/input"
	"github.com/dekarrin/gudgeon/internal/util"
	"github.com/dekarrin/gudgeon/internal/version"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

const (
	ExitSuccess = iota
	ExitInitError
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Gives the version info")
	flagDirect  = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of readline")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	useReadline := !*flagDirect && isatty.IsTerminal(os.Stdin.Fd())

	var reader input.LineReader
	var err error
	if useReadline {
		reader, err = input.NewInteractiveReader("pg> ")
	} else {
		reader = input.NewDirectReader(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: could not start input: %s\n", err.Error())
		os.Exit(ExitInitError)
	}
	defer reader.Close()

	reader.AllowBlank(false)

	sess := newSession()

	fmt.Println("gudgeon grammar REPL. Type QUIT to exit, SHOW to print the session buffer.")

	for {
		line, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				break
			}
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			break
		}

		switch line {
		case "QUIT":
			return
		case "SHOW":
			fmt.Println(sess.buffer.String())
			continue
		case "UNDO":
			if !sess.undo() {
				fmt.Println("(nothing to undo)")
			}
			continue
		}

		added, compileErr := sess.tryAppend(line)
		if compileErr != nil {
			var gerr *grammarerr.Error
			if errors.As(compileErr, &gerr) {
				fmt.Fprintln(os.Stderr, gerr.FullMessage())
			} else {
				fmt.Fprintf(os.Stderr, "ERROR: %s\n", compileErr.Error())
			}
			continue
		}

		if len(added) == 0 {
			fmt.Println("(no new symbols)")
		} else {
			for _, name := range added {
				fmt.Printf("+ %s\n", name)
			}
		}
	}

	os.Exit(ExitSuccess)
}

// session tracks the accumulated grammar source text across a run of the
// REPL along with the set of symbol names resolved from the last successful
// compile, so that each new line can be reported as a delta and UNDO can
// revert back to the prior state.
type session struct {
	buffer util.UndoableStringBuilder

	known        map[string]bool
	knownHistory []map[string]bool
	opHistory    []int
}

func newSession() *session {
	return &session{known: make(map[string]bool)}
}

// tryAppend appends line to the session buffer and attempts to recompile.
// On success, it commits the new buffer and returns the symbol names that
// were not present after the previous successful compile. On failure, the
// buffer is left unchanged and the compile error is returned.
func (s *session) tryAppend(line string) ([]string, error) {
	existing := s.buffer.String()
	candidate := existing
	if candidate != "" {
		candidate += "\n"
	}
	candidate += line

	g, err := grammar.FromString(candidate, grammar.CompileOptions{Parser: bootstrap.Parse})
	if err != nil {
		return nil, err
	}

	var added []string
	newKnown := make(map[string]bool)
	g.Iter(func(sym grammar.Symbol) {
		name := sym.Name()
		newKnown[name] = true
		if !s.known[name] {
			added = append(added, name)
		}
	})

	ops := 0
	if existing != "" {
		s.buffer.WriteString("\n")
		ops++
	}
	s.buffer.WriteString(line)
	ops++

	s.knownHistory = append(s.knownHistory, s.known)
	s.opHistory = append(s.opHistory, ops)
	s.known = newKnown

	return added, nil
}

// undo reverts the most recently accepted line, restoring both the session
// buffer and the known-symbol set to their state before that line was
// committed. It returns false if there is nothing to undo.
func (s *session) undo() bool {
	if len(s.opHistory) == 0 {
		return false
	}

	lastIdx := len(s.opHistory) - 1
	ops := s.opHistory[lastIdx]
	for i := 0; i < ops; i++ {
		s.buffer.Undo()
	}

	s.known = s.knownHistory[lastIdx]
	s.opHistory = s.opHistory[:lastIdx]
	s.knownHistory = s.knownHistory[:lastIdx]

	return true
}
