package analyzer

import (
	"github.com/heist-scheme/heist/internal/cps"
	"github.com/heist-scheme/heist/internal/datum"
	"github.com/heist-scheme/heist/internal/evaluator"
)

// identityContinuation resumes by returning its single argument, the
// continuation scm->cps hands to a freshly CPS-converted program so it has
// somewhere to tail-call with its final result.
func identityContinuation() *datum.Continuation {
	return &datum.Continuation{Fn: func(args []datum.Datum, env datum.Environment) datum.Datum {
		if len(args) == 0 {
			return datum.Void
		}
		return args[0]
	}}
}

// analyzeScmToCps wraps the body in begin, CPS-transforms it once
// (applying the fixpoint optimizations since this is the topmost
// conversion), analyzes the result as CPS-block code, and applies it to a
// fresh identity continuation (spec §4.1 scm->cps: "wraps an expression
// sequence in a begin, transforms, and evaluates").
func (a *Analyzer) analyzeScmToCps(e *datum.Expression, tail bool) datum.Executor {
	body := mkExpr(append([]datum.Datum{sym("begin")}, e.Args()...)...)
	transformed := cps.Transform(body, true)
	cpsExec := a.Analyze(transformed, false, true)
	state := a.State
	return func(env datum.Environment) datum.Datum {
		proc := cpsExec(env)
		if evaluator.IsError(proc) {
			return proc
		}
		return state.Apply(proc, []datum.Datum{identityContinuation()}, env, false)
	}
}

// analyzeCpsQuote CPS-transforms the body like scm->cps but returns the
// transformed syntax as data rather than evaluating it (spec §4.1
// cps-quote).
func (a *Analyzer) analyzeCpsQuote(e *datum.Expression) datum.Executor {
	body := mkExpr(append([]datum.Datum{sym("begin")}, e.Args()...)...)
	transformed := cps.Transform(body, true)
	value, err := quoteToDatum(transformed)
	if err != nil {
		return constant(err)
	}
	return constant(value)
}
