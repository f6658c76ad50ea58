// Command heist runs a source file or starts an interactive REPL over the
// core evaluator (spec §1 marks "REPL loop, CLI parsing" out of scope for
// the core; SPEC_FULL adds this minimal runnable driver, grounded on
// cmd/funxy/main.go's flag handling and file/stdin dispatch).
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/heist-scheme/heist/internal/analyzer"
	"github.com/heist-scheme/heist/internal/config"
	"github.com/heist-scheme/heist/internal/datum"
	"github.com/heist-scheme/heist/internal/environment"
	"github.com/heist-scheme/heist/internal/evaluator"
	"github.com/heist-scheme/heist/internal/port"
	"github.com/heist-scheme/heist/internal/reader"
)

func main() {
	trace := false
	var scriptPath string
	for _, arg := range os.Args[1:] {
		switch {
		case arg == "-trace" || arg == "--trace":
			trace = true
		case strings.HasPrefix(arg, "-"):
			// unrecognized flags are ignored rather than rejected, matching
			// cmd/funxy's permissive top-level flag handling
		default:
			if scriptPath == "" {
				scriptPath = arg
			}
		}
	}

	profile := loadProfile()
	if trace {
		profile.Trace = true
	}

	state := evaluator.NewState(profile)
	global := environment.New()
	a := analyzer.New(state, global)
	port.Install(global, state)

	if scriptPath != "" {
		runFile(a, global, profile.Trace, scriptPath)
		return
	}
	runREPL(a, global, profile.Trace)
}

// loadProfile prefers a .heistrc.yaml in the working directory, falling
// back to one in the user's home directory, and to defaults if neither
// exists (SPEC_FULL "internal/config: load .heistrc.yaml ... the same way
// builtins_yaml.go unmarshals YAML into dynamic values").
func loadProfile() config.Profile {
	path := ".heistrc.yaml"
	if _, err := os.Stat(path); err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			path = filepath.Join(home, ".heistrc.yaml")
		}
	}
	profile, err := config.LoadProfile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "heist: warning: %s\n", err)
		return config.DefaultProfile()
	}
	return profile
}

func runFile(a *analyzer.Analyzer, global datum.Environment, trace bool, path string) {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "heist: %s\n", err)
		os.Exit(1)
	}
	forms, rerr := reader.ReadAll(string(src))
	if rerr != nil {
		fmt.Fprintf(os.Stderr, "heist: %s\n", rerr)
		os.Exit(1)
	}
	for _, form := range forms {
		result := a.Analyze(form, false, false)(global)
		if e, ok := result.(*datum.Error); ok {
			reportError(e, trace)
			os.Exit(1)
		}
		if j, ok := result.(*evaluator.Jump); ok {
			reportStrayJump(j)
			os.Exit(1)
		}
	}
}

func runREPL(a *analyzer.Analyzer, global datum.Environment, trace bool) {
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var buf strings.Builder
	depth := 0
	printPrompt := func() {
		if !interactive {
			return
		}
		if depth > 0 {
			fmt.Fprint(os.Stderr, "... ")
		} else {
			fmt.Fprint(os.Stderr, "heist> ")
		}
	}

	printPrompt()
	for scanner.Scan() {
		line := scanner.Text()
		depth += parenDelta(line)
		buf.WriteString(line)
		buf.WriteByte('\n')
		if depth <= 0 {
			evalChunk(a, global, trace, buf.String(), interactive)
			buf.Reset()
			depth = 0
		}
		printPrompt()
	}
	if buf.Len() > 0 {
		evalChunk(a, global, trace, buf.String(), interactive)
	}
	if interactive {
		fmt.Fprintln(os.Stderr)
	}
}

// evalChunk reads every complete top-level form out of src and evaluates
// each in turn, printing the result of the final form at an interactive
// prompt the way a REPL does.
func evalChunk(a *analyzer.Analyzer, global datum.Environment, trace bool, src string, interactive bool) {
	forms, err := reader.ReadAll(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "heist: %s\n", err)
		return
	}
	var last datum.Datum
	for _, form := range forms {
		last = a.Analyze(form, false, false)(global)
		if e, ok := last.(*datum.Error); ok {
			reportError(e, trace)
			return
		}
		if j, ok := last.(*evaluator.Jump); ok {
			reportStrayJump(j)
			return
		}
	}
	if interactive && last != nil {
		if _, isVoid := last.(datum.VoidType); !isVoid {
			fmt.Println(last.Write())
		}
	}
}

// reportStrayJump handles a jump! that unwound all the way to the driver
// loop without a matching catch-jump (spec §7 "all errors unwind to the
// nearest catch-jump ... or to the driver loop").
func reportStrayJump(j *evaluator.Jump) {
	fmt.Fprintf(os.Stderr, "heist: jump! with no enclosing catch-jump: %s\n", j.Value.Write())
}

func reportError(e *datum.Error, trace bool) {
	fmt.Fprintln(os.Stderr, e.Write())
	if !trace {
		return
	}
	for i := len(e.StackTrace) - 1; i >= 0; i-- {
		f := e.StackTrace[i]
		fmt.Fprintf(os.Stderr, "  at %s\n", f.Name)
	}
}

// parenDelta counts the net change in open-paren depth contributed by a
// line, skipping string literals and ;-comments so a "(" inside either
// does not force another continuation line.
func parenDelta(line string) int {
	delta := 0
	inString := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inString:
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == ';':
			return delta
		case c == '(' || c == '[':
			delta++
		case c == ')' || c == ']':
			delta--
		}
	}
	return delta
}
