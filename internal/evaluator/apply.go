package evaluator

import (
	"strings"

	"github.com/heist-scheme/heist/internal/datum"
	"github.com/heist-scheme/heist/internal/environment"
)

// Apply dispatches to a Primitive, compound Procedure, or Continuation
// (spec §4.4: "apply(proc, args, env, tail?, cc?) → Datum"). tail reports
// whether this call occurs in tail position; when true and proc is
// compound, Apply returns a *datum.TailCall trampoline record instead of
// invoking the body directly (spec §4.4 point 4, §9 "Tail calls as
// trampoline records").
func (s *State) Apply(proc datum.Datum, args []datum.Datum, env datum.Environment, tail bool) datum.Datum {
	switch p := proc.(type) {
	case *datum.Primitive:
		return s.applyPrimitive(p, args, env)
	case *datum.Continuation:
		return p.Fn(args, env)
	case *datum.Procedure:
		if tail {
			return &datum.TailCall{Proc: p, Args: args, CallerEnv: env, Name: p.Name}
		}
		return s.invokeCompound(p, args, env)
	default:
		return s.errorf(datum.ErrType, "cannot apply non-procedure: %s", proc.Write())
	}
}

func (s *State) applyPrimitive(p *datum.Primitive, args []datum.Datum, env datum.Environment) datum.Datum {
	s.PushFrame(datum.StackFrame{Name: p.Name})
	defer s.PopFrame()
	if p.RequiresEnvironment {
		return p.Fn(args, env)
	}
	return p.Fn(args, nil)
}

// bindParams extends proc's captured environment with a fresh leaf frame
// binding params to args, applying the dot-variadic collection rule
// (spec §4.4 point 1, SPEC_FULL "variadic argument collection as a single
// list transform" grounded on transform_variadic_vals_into_a_list).
func (s *State) bindParams(proc *datum.Procedure, args []datum.Datum, caller datum.Environment) (datum.Environment, datum.Datum) {
	// A lambda analyzed inside a CPS block gains a trailing continuation
	// parameter after any dot-variadic slot (spec §4.1 lambda, §4.4 point
	// 1 "a trailing continuation parameter"). That final formal always
	// binds the call's last argument — the continuation supplied by a
	// CPS-converted call site — regardless of how many variadic args
	// precede it.
	params := proc.Params
	var contParam datum.Param
	if proc.HasContinuationParam {
		contParam = params[len(params)-1]
		params = params[:len(params)-1]
	}
	fixed := params
	if proc.Variadic {
		fixed = params[:len(params)-1]
	}
	minArgs := len(fixed)
	if proc.HasContinuationParam {
		minArgs++
	}
	if len(args) < minArgs || (!proc.Variadic && len(args) > minArgs) {
		return nil, s.arityError(proc, args)
	}
	extended := proc.Env.Extend()
	for i, param := range fixed {
		extended.Define(param.Name, args[i])
	}
	variadicEnd := len(args)
	if proc.HasContinuationParam {
		variadicEnd--
	}
	if proc.Variadic {
		rest := params[len(fixed)]
		extended.Define(rest.Name, datum.SliceToList(args[len(fixed):variadicEnd]))
	}
	if proc.HasContinuationParam {
		extended.Define(contParam.Name, args[len(args)-1])
	}
	if proc.InlinesCall {
		if callerConcrete, ok := caller.(*environment.Environment); ok {
			if leaf, ok := extended.(*environment.Environment); ok {
				if base, ok := proc.Env.(*environment.Environment); ok {
					environment.Splice(leaf, callerConcrete, base)
				}
			}
		}
	}
	return extended, nil
}

func (s *State) arityError(proc *datum.Procedure, args []datum.Datum) *datum.Error {
	return s.errorf(datum.ErrArity, "wrong number of arguments to %s: expected signature %s, got (%s %s)",
		proc.Write(), proc.Signature(), proc.Name, joinWrites(args))
}

func joinWrites(args []datum.Datum) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Write()
	}
	return strings.Join(parts, " ")
}

// invokeCompound runs a non-tail compound call to completion, trampolining
// any tail calls the body produces along the way (spec §4.4 point 5,
// §9 "outer loop unwraps iteratively until a non-tail result").
func (s *State) invokeCompound(proc *datum.Procedure, args []datum.Datum, caller datum.Environment) datum.Datum {
	extended, errd := s.bindParams(proc, args, caller)
	if IsError(errd) {
		return errd
	}
	if *proc.RecursionDepth >= s.MaxRecursion {
		*proc.RecursionDepth = 0
		return s.errorf(datum.ErrRecursionExceeded, "recursion depth exceeded in %s", proc.Write())
	}
	*proc.RecursionDepth++
	s.PushFrame(datum.StackFrame{Name: proc.Name})
	result := proc.Body(extended)
	s.PopFrame()
	*proc.RecursionDepth--
	return s.Trampoline(result)
}

// Trampoline iteratively unwraps *datum.TailCall records until a
// non-tail-call value results (spec §9 GLOSSARY "Tail-call trampoline
// record"; spec §8 property 2 "tail-call space").
func (s *State) Trampoline(result datum.Datum) datum.Datum {
	for {
		tc, ok := result.(*datum.TailCall)
		if !ok {
			return result
		}
		proc, ok := tc.Proc.(*datum.Procedure)
		if !ok {
			result = s.Apply(tc.Proc, tc.Args, tc.CallerEnv, false)
			continue
		}
		extended, errd := s.bindParams(proc, tc.Args, tc.CallerEnv)
		if IsError(errd) {
			return errd
		}
		result = proc.Body(extended)
	}
}
