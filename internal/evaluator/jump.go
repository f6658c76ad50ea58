package evaluator

import "github.com/heist-scheme/heist/internal/datum"

// Jump is the value jump! raises (spec §5: "jump! stores its argument in a
// process-global slot and throws Jump"). It flows through the exact same
// check every Executor already uses to detect a propagating error
// (IsError), so a jump! unwinds through if/begin/let bodies and
// application argument evaluation without any of those call sites needing
// to know jump! exists; only catch-jump intercepts it.
type Jump struct {
	Value datum.Datum
}

func (j *Jump) Kind() datum.Kind { return datum.KindJump }
func (j *Jump) Hash() uint32     { return 0 }
func (j *Jump) Write() string    { return "#<jump>" }
func (j *Jump) Display() string  { return j.Write() }

// NewJump records v in the process-global pending-jump slot (spec §5
// "stores its argument in a process-global slot") and returns the
// propagating signal carrying the same value, which is what actually
// unwinds the call stack via the IsError channel.
func (s *State) NewJump(v datum.Datum) *Jump {
	s.Jump(v)
	return &Jump{Value: v}
}

// CatchJump applies proc to no arguments and, if a Jump propagates out of
// that call, converts the innermost one into its stored value (spec §5
// "catch-jump converts the innermost Jump into the stored value"). Any
// other result, including a *datum.Error, passes through unchanged so an
// outer catch-jump or the driver loop sees it.
func (s *State) CatchJump(proc datum.Datum, env datum.Environment) datum.Datum {
	result := s.Apply(proc, nil, env, false)
	if j, ok := result.(*Jump); ok {
		s.TakeJump()
		return j.Value
	}
	return result
}
