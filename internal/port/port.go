// Package port owns the process-global port registry (spec §5 "Port
// registry is process-global; ports are owned by the registry and closed
// explicitly or at shutdown") and the handful of I/O primitives spec.md
// marks out of scope as an external collaborator ("I/O ports, filesystem
// ... specify only their interfaces"). Grounded on the teacher's
// internal/evaluator/builtins_io.go: a shared buffered stdin reader built
// with sync.Once, os.Open/os.Create for file ports, read/write helpers
// returning R4RS-shaped results rather than Go errors.
package port

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/heist-scheme/heist/internal/datum"
	"github.com/heist-scheme/heist/internal/evaluator"
)

// Registry tracks every open port by a uuid.NewString() key (spec §5),
// so ports are tracked and closed independent of any textual name
// collision, and independent from the datum.Port value itself so a port
// can be closed by id even after its value has been discarded.
type Registry struct {
	mu    sync.Mutex
	ports map[string]*datum.Port
}

// global is the single process-wide registry (spec §5: process-global).
var global = &Registry{ports: map[string]*datum.Port{}}

func (r *Registry) register(p *datum.Port) *datum.Port {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ports[p.ID] = p
	return p
}

func (r *Registry) close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ports, id)
}

func newPort(isInput, isFile bool, name string, reader io.Reader, writer io.Writer, closer io.Closer) *datum.Port {
	p := &datum.Port{
		ID:      uuid.NewString(),
		IsInput: isInput,
		IsFile:  isFile,
		Name:    name,
		Reader:  reader,
		Writer:  writer,
		Closer:  closer,
	}
	return global.register(p)
}

var (
	stdinReader     *bufio.Reader
	stdinReaderOnce sync.Once
)

func getStdinReader() *bufio.Reader {
	stdinReaderOnce.Do(func() { stdinReader = bufio.NewReader(os.Stdin) })
	return stdinReader
}

// currentInput/currentOutput are the default ports write/display/newline
// and read-char/read-line/peek-char target when called with no explicit
// port argument (R4RS current-input-port/current-output-port).
var (
	currentInput  = newPort(true, false, "stdin", nil, nil, nil)
	currentOutput = newPort(false, false, "stdout", nil, os.Stdout, nil)
)

func init() {
	currentInput.Reader = getStdinReader()
}

// CurrentInputPort and CurrentOutputPort return the default ports
// (spec §3 Port; R4RS current-input-port/current-output-port).
func CurrentInputPort() *datum.Port  { return currentInput }
func CurrentOutputPort() *datum.Port { return currentOutput }

// OpenInputFile opens path for reading and registers the resulting port.
func OpenInputFile(path string) (*datum.Port, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return newPort(true, true, path, bufio.NewReader(f), nil, f), nil
}

// OpenOutputFile creates (or truncates) path for writing.
func OpenOutputFile(path string) (*datum.Port, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return newPort(false, true, path, nil, f, f), nil
}

// OpenInputString wraps a Go string as a readable port (R4RS
// open-input-string), buffered like file ports so read-line/peek-char
// work uniformly across port kinds.
func OpenInputString(s string) *datum.Port {
	return newPort(true, false, "", bufio.NewReader(strings.NewReader(s)), nil, nil)
}

// stringPortWriter backs open-output-string: writes accumulate in buf and
// GetOutputString reads them back without closing the port.
type stringPortWriter struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (w *stringPortWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *stringPortWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

// OpenOutputString opens a string-backed output port (R4RS
// open-output-string); its accumulated text is read with
// get-output-string.
func OpenOutputString() *datum.Port {
	return newPort(false, false, "", nil, &stringPortWriter{}, nil)
}

// Close closes p and drops it from the registry.
func Close(p *datum.Port) error {
	err := p.Close()
	global.close(p.ID)
	return err
}

// Install registers the port primitives into env (spec §1: ports are an
// external collaborator, "specify only their interfaces" — wired here
// rather than in internal/analyzer so the evaluator core stays free of
// any I/O primitive beyond what analyzer.installBuiltins needs).
func Install(env datum.Environment, state *evaluator.State) {
	def := func(name string, fn datum.PrimitiveFn) {
		env.Define(datum.Symbol(name), &datum.Primitive{Name: name, Fn: fn})
	}
	def("open-input-file", primOpenInputFile(state))
	def("open-output-file", primOpenOutputFile(state))
	def("open-input-string", primOpenInputString(state))
	def("open-output-string", primOpenOutputString(state))
	def("get-output-string", primGetOutputString(state))
	def("close-port", primClosePort(state))
	def("close-input-port", primClosePort(state))
	def("close-output-port", primClosePort(state))
	def("input-port?", primPredicate(func(p *datum.Port) bool { return p.IsInput }))
	def("output-port?", primPredicate(func(p *datum.Port) bool { return !p.IsInput }))
	def("port?", primIsPort)
	def("eof-object?", primEOFObject)
	def("eof-object", primMakeEOF)
	def("current-input-port", primCurrentPort(CurrentInputPort))
	def("current-output-port", primCurrentPort(CurrentOutputPort))
	def("read-char", primReadChar(state))
	def("peek-char", primPeekChar(state))
	def("read-line", primReadLine(state))
	def("write-char", primWriteChar(state))
	def("write-string", primWriteString(state))
	def("write", primWrite(state, true))
	def("display", primWrite(state, false))
	def("newline", primNewline(state))
}

func portArg(args []datum.Datum, i int, fallback *datum.Port) (*datum.Port, bool) {
	if i >= len(args) {
		return fallback, true
	}
	p, ok := args[i].(*datum.Port)
	return p, ok
}

func primOpenInputFile(state *evaluator.State) datum.PrimitiveFn {
	return func(args []datum.Datum, _ datum.Environment) datum.Datum {
		if len(args) != 1 {
			return state.Errorf(datum.ErrArity, "open-input-file: expected exactly one argument")
		}
		s, ok := args[0].(datum.String)
		if !ok {
			return state.Errorf(datum.ErrType, "open-input-file: expected a string path, got %s", args[0].Write())
		}
		p, err := OpenInputFile(s.Go())
		if err != nil {
			return state.Errorf(datum.ErrType, "open-input-file: %s", err)
		}
		return p
	}
}

func primOpenOutputFile(state *evaluator.State) datum.PrimitiveFn {
	return func(args []datum.Datum, _ datum.Environment) datum.Datum {
		if len(args) != 1 {
			return state.Errorf(datum.ErrArity, "open-output-file: expected exactly one argument")
		}
		s, ok := args[0].(datum.String)
		if !ok {
			return state.Errorf(datum.ErrType, "open-output-file: expected a string path, got %s", args[0].Write())
		}
		p, err := OpenOutputFile(s.Go())
		if err != nil {
			return state.Errorf(datum.ErrType, "open-output-file: %s", err)
		}
		return p
	}
}

func primOpenInputString(state *evaluator.State) datum.PrimitiveFn {
	return func(args []datum.Datum, _ datum.Environment) datum.Datum {
		if len(args) != 1 {
			return state.Errorf(datum.ErrArity, "open-input-string: expected exactly one argument")
		}
		s, ok := args[0].(datum.String)
		if !ok {
			return state.Errorf(datum.ErrType, "open-input-string: expected a string, got %s", args[0].Write())
		}
		return OpenInputString(s.Go())
	}
}

func primOpenOutputString(state *evaluator.State) datum.PrimitiveFn {
	return func(args []datum.Datum, _ datum.Environment) datum.Datum {
		if len(args) != 0 {
			return state.Errorf(datum.ErrArity, "open-output-string: expected no arguments")
		}
		return OpenOutputString()
	}
}

func primGetOutputString(state *evaluator.State) datum.PrimitiveFn {
	return func(args []datum.Datum, _ datum.Environment) datum.Datum {
		if len(args) != 1 {
			return state.Errorf(datum.ErrArity, "get-output-string: expected exactly one argument")
		}
		p, ok := args[0].(*datum.Port)
		if !ok {
			return state.Errorf(datum.ErrType, "get-output-string: expected a port, got %s", args[0].Write())
		}
		w, ok := p.Writer.(*stringPortWriter)
		if !ok {
			return state.Errorf(datum.ErrType, "get-output-string: not a string output port")
		}
		return datum.NewString(w.String())
	}
}

func primClosePort(state *evaluator.State) datum.PrimitiveFn {
	return func(args []datum.Datum, _ datum.Environment) datum.Datum {
		if len(args) != 1 {
			return state.Errorf(datum.ErrArity, "close-port: expected exactly one argument")
		}
		p, ok := args[0].(*datum.Port)
		if !ok {
			return state.Errorf(datum.ErrType, "close-port: expected a port, got %s", args[0].Write())
		}
		if err := Close(p); err != nil {
			return state.Errorf(datum.ErrType, "close-port: %s", err)
		}
		return datum.Void
	}
}

func primPredicate(test func(*datum.Port) bool) datum.PrimitiveFn {
	return func(args []datum.Datum, _ datum.Environment) datum.Datum {
		if len(args) != 1 {
			return datum.False
		}
		p, ok := args[0].(*datum.Port)
		if !ok {
			return datum.False
		}
		return datum.Boolean(test(p))
	}
}

func primIsPort(args []datum.Datum, _ datum.Environment) datum.Datum {
	if len(args) != 1 {
		return datum.False
	}
	_, ok := args[0].(*datum.Port)
	return datum.Boolean(ok)
}

func primEOFObject(args []datum.Datum, _ datum.Environment) datum.Datum {
	if len(args) != 1 {
		return datum.False
	}
	c, ok := args[0].(datum.Character)
	return datum.Boolean(ok && c.IsEOF)
}

func primMakeEOF(args []datum.Datum, _ datum.Environment) datum.Datum {
	return datum.Character{IsEOF: true}
}

func primCurrentPort(get func() *datum.Port) datum.PrimitiveFn {
	return func(args []datum.Datum, _ datum.Environment) datum.Datum {
		return get()
	}
}

func primReadChar(state *evaluator.State) datum.PrimitiveFn {
	return func(args []datum.Datum, _ datum.Environment) datum.Datum {
		p, ok := portArg(args, 0, CurrentInputPort())
		if !ok {
			return state.Errorf(datum.ErrType, "read-char: expected a port")
		}
		if p.Reader == nil {
			return state.Errorf(datum.ErrType, "read-char: not an input port")
		}
		buf := make([]byte, 1)
		if _, err := io.ReadFull(p.Reader, buf); err != nil {
			return datum.Character{IsEOF: true}
		}
		return datum.NewChar(rune(buf[0]))
	}
}

func primPeekChar(state *evaluator.State) datum.PrimitiveFn {
	return func(args []datum.Datum, _ datum.Environment) datum.Datum {
		p, ok := portArg(args, 0, CurrentInputPort())
		if !ok {
			return state.Errorf(datum.ErrType, "peek-char: expected a port")
		}
		br, ok := p.Reader.(*bufio.Reader)
		if !ok {
			return state.Errorf(datum.ErrType, "peek-char: port does not support peeking")
		}
		b, err := br.Peek(1)
		if err != nil {
			return datum.Character{IsEOF: true}
		}
		return datum.NewChar(rune(b[0]))
	}
}

func primReadLine(state *evaluator.State) datum.PrimitiveFn {
	return func(args []datum.Datum, _ datum.Environment) datum.Datum {
		p, ok := portArg(args, 0, CurrentInputPort())
		if !ok {
			return state.Errorf(datum.ErrType, "read-line: expected a port")
		}
		br, ok := p.Reader.(*bufio.Reader)
		if !ok {
			return state.Errorf(datum.ErrType, "read-line: port does not support line reading")
		}
		line, err := br.ReadString('\n')
		if err != nil && line == "" {
			return datum.Character{IsEOF: true}
		}
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		return datum.NewString(line)
	}
}

func primWriteChar(state *evaluator.State) datum.PrimitiveFn {
	return func(args []datum.Datum, _ datum.Environment) datum.Datum {
		if len(args) < 1 {
			return state.Errorf(datum.ErrArity, "write-char: expected a character argument")
		}
		c, ok := args[0].(datum.Character)
		if !ok {
			return state.Errorf(datum.ErrType, "write-char: expected a character, got %s", args[0].Write())
		}
		p, ok := portArg(args, 1, CurrentOutputPort())
		if !ok || p.Writer == nil {
			return state.Errorf(datum.ErrType, "write-char: not an output port")
		}
		io.WriteString(p.Writer, string(rune(c.Value)))
		return datum.Void
	}
}

func primWriteString(state *evaluator.State) datum.PrimitiveFn {
	return func(args []datum.Datum, _ datum.Environment) datum.Datum {
		if len(args) < 1 {
			return state.Errorf(datum.ErrArity, "write-string: expected a string argument")
		}
		s, ok := args[0].(datum.String)
		if !ok {
			return state.Errorf(datum.ErrType, "write-string: expected a string, got %s", args[0].Write())
		}
		p, ok := portArg(args, 1, CurrentOutputPort())
		if !ok || p.Writer == nil {
			return state.Errorf(datum.ErrType, "write-string: not an output port")
		}
		io.WriteString(p.Writer, s.Go())
		return datum.Void
	}
}

// primWrite builds write (readable, quote-preserving) or display
// (human-readable) depending on readable.
func primWrite(state *evaluator.State, readable bool) datum.PrimitiveFn {
	return func(args []datum.Datum, _ datum.Environment) datum.Datum {
		if len(args) < 1 {
			return state.Errorf(datum.ErrArity, "write/display: expected a value argument")
		}
		p, ok := portArg(args, 1, CurrentOutputPort())
		if !ok || p.Writer == nil {
			return state.Errorf(datum.ErrType, "write/display: not an output port")
		}
		if readable {
			io.WriteString(p.Writer, args[0].Write())
		} else {
			io.WriteString(p.Writer, args[0].Display())
		}
		return datum.Void
	}
}

func primNewline(state *evaluator.State) datum.PrimitiveFn {
	return func(args []datum.Datum, _ datum.Environment) datum.Datum {
		p, ok := portArg(args, 0, CurrentOutputPort())
		if !ok || p.Writer == nil {
			return state.Errorf(datum.ErrType, "newline: not an output port")
		}
		io.WriteString(p.Writer, "\n")
		return datum.Void
	}
}
