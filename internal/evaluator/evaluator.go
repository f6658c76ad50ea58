// Package evaluator applies Executors and Procedures to arguments,
// trampolining tail calls, dispatching primitives vs. compound procedures,
// and owning the process-global runtime state spec.md §4.4/§5 describe:
// the falsey set, the recursion-depth ceiling, and the jump!/catch-jump
// single-shot non-local return slot.
//
// Grounded on the teacher's internal/evaluator/apply.go (ApplyFunction
// dispatch-by-type, error-as-return-value propagation via isError) and
// evaluator.go (the top-level Eval/error-check idiom), generalized from
// funxy's static dispatch to Scheme's dynamic one.
package evaluator

import (
	"github.com/heist-scheme/heist/internal/config"
	"github.com/heist-scheme/heist/internal/datum"
)

// IsError reports whether d is a value that must unwind the current call
// immediately rather than be used as an ordinary result: a *datum.Error (the
// teacher's isError idiom, carried over verbatim) or a propagating *Jump
// (spec §5 jump!/catch-jump). Every Executor's early-return check uses this
// single predicate, so a jump! unwinds through the same channel an error
// does without any call site needing a separate check.
func IsError(d datum.Datum) bool {
	switch d.(type) {
	case *datum.Error, *Jump:
		return true
	default:
		return false
	}
}

// State holds the process-global runtime knobs a single evaluator instance
// owns: the configurable falsey set (spec §3 Boolean, §8 property 6), the
// max recursion depth (spec §4.4 point 3), and the jump!/catch-jump slot
// (spec §5, SPEC_FULL "jump!/catch-jump").
type State struct {
	falsey          map[string]bool
	MaxRecursion    int64
	pendingJump     *jumpSignal
	CallStack       []datum.StackFrame
}

type jumpSignal struct {
	value datum.Datum
}

// NewState builds runtime state seeded with the default falsey set {#f}
// and the configured recursion ceiling.
func NewState(profile config.Profile) *State {
	s := &State{
		falsey:       map[string]bool{},
		MaxRecursion: int64(profile.MaxRecursionDepth),
	}
	s.falsey[datum.False.Write()] = true
	for _, seed := range profile.FalseySeed {
		s.falsey[seed] = true
	}
	return s
}

// IsTruthy reports whether d counts as true under the current falsey set
// (spec §3, §4.1 if, §8 property 6).
func (s *State) IsTruthy(d datum.Datum) bool {
	return !s.falsey[d.Write()]
}

// SetFalsey adds a value to the falsey set. #t itself can never be made
// falsey (spec §8 property 6: "set-falsey! on #t errors").
func (s *State) SetFalsey(d datum.Datum) datum.Datum {
	if b, ok := d.(datum.Boolean); ok && bool(b) {
		return datum.NewError(datum.ErrType, "cannot make #t falsey")
	}
	s.falsey[d.Write()] = true
	return datum.Void
}

// SetTruthy removes a value from the falsey set.
func (s *State) SetTruthy(d datum.Datum) datum.Datum {
	delete(s.falsey, d.Write())
	return datum.Void
}

// Jump stores v in the process-global jump slot (spec §5: "jump! stores
// its argument in a process-global slot"). The caller is responsible for
// unwinding to the nearest catch-jump; this just records the payload.
func (s *State) Jump(v datum.Datum) {
	s.pendingJump = &jumpSignal{value: v}
}

// TakeJump clears and returns the pending jump payload, if any. Used by
// catch-jump to convert the innermost pending jump into a value (spec §5:
// "catch-jump converts the innermost Jump into the stored value").
func (s *State) TakeJump() (datum.Datum, bool) {
	if s.pendingJump == nil {
		return nil, false
	}
	v := s.pendingJump.value
	s.pendingJump = nil
	return v, true
}

// HasPendingJump reports whether a jump! is currently unwinding.
func (s *State) HasPendingJump() bool { return s.pendingJump != nil }

// PushFrame/PopFrame maintain the call stack used to build error traces
// (spec §7: errors print a call signature; SPEC_FULL "call-signature
// error formatting" grounded on the original's improper_call_alert).
func (s *State) PushFrame(f datum.StackFrame) { s.CallStack = append(s.CallStack, f) }
func (s *State) PopFrame() {
	if len(s.CallStack) > 0 {
		s.CallStack = s.CallStack[:len(s.CallStack)-1]
	}
}

func (s *State) trace() []datum.StackFrame {
	out := make([]datum.StackFrame, len(s.CallStack))
	copy(out, s.CallStack)
	return out
}

// errorf builds a *datum.Error stamped with the current call stack.
func (s *State) errorf(kind datum.ErrorKind, format string, args ...interface{}) *datum.Error {
	e := datum.NewError(kind, format, args...)
	e.StackTrace = s.trace()
	return e
}

// Errorf is errorf exported for other packages (analyzer, port, cmd/heist)
// that need to raise a core error stamped with the current call stack.
func (s *State) Errorf(kind datum.ErrorKind, format string, args ...interface{}) *datum.Error {
	return s.errorf(kind, format, args...)
}
