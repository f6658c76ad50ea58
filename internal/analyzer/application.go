package analyzer

import (
	"sync"

	"github.com/heist-scheme/heist/internal/cps"
	"github.com/heist-scheme/heist/internal/datum"
	"github.com/heist-scheme/heist/internal/evaluator"
	"github.com/heist-scheme/heist/internal/macro"
)

// analyzeApplication dispatches per spec §4.6. Inside a CPS block, a form
// the transformer already tagged is stripped and applied by the CPS-aware
// applicator (point 1). An analysis-time core-syntax macro is expanded and
// re-analyzed immediately. Everything else defers the question of whether
// the head names a runtime macro to evaluation time (point 3), since
// Analyze never sees a concrete environment to check against ahead of
// time; once a call site resolves to an ordinary (non-macro) application
// it is analyzed once and cached for later calls (point 2's "ahead of
// time" intent, applied lazily rather than statically).
func (a *Analyzer) analyzeApplication(e *datum.Expression, tail, cpsBlock bool) datum.Executor {
	if cpsBlock {
		if untagged, ok := cps.IsTaggedApplication(e); ok {
			return a.analyzeCPSApplication(untagged, tail)
		}
	}
	if head, ok := e.Head(); ok {
		if rule, ok := lookupCoreSyntax(head); ok {
			expansion, err := macro.Expand(rule, e)
			if err != nil {
				return constant(a.State.Errorf(datum.ErrMacro, "%s: %s", head, err))
			}
			return a.Analyze(expansion, tail, cpsBlock)
		}
	}
	return a.analyzeDeferredApplication(e, tail, cpsBlock)
}

// analyzeCPSApplication analyzes an already CPS-tagged application: every
// item is atomic by construction (spec §4.3), so each is analyzed directly
// and the final item is the explicit continuation argument. Whether the
// callee receives that continuation as an ordinary trailing argument or is
// called normally with its result handed to the continuation depends on
// the callee's own kind (spec §4.3 "Distinction at call time", §4.5): a
// compound procedure built inside a CPS block, recognized by
// HasContinuationParam or by a last formal named as a CPS continuation
// variable, receives k as its last argument.
func (a *Analyzer) analyzeCPSApplication(e *datum.Expression, tail bool) datum.Executor {
	if len(e.Items) < 2 {
		return constant(a.State.Errorf(datum.ErrSyntax, "application: missing continuation argument in %s", e.Write()))
	}
	opExec := a.Analyze(e.Items[0], false, true)
	n := len(e.Items)
	argExecs := make([]datum.Executor, n-2)
	for i, it := range e.Items[1 : n-1] {
		argExecs[i] = a.Analyze(it, false, true)
	}
	kExec := a.Analyze(e.Items[n-1], false, true)
	state := a.State
	return func(env datum.Environment) datum.Datum {
		proc := opExec(env)
		if evaluator.IsError(proc) {
			return proc
		}
		args := make([]datum.Datum, len(argExecs))
		for i, ex := range argExecs {
			v := ex(env)
			if evaluator.IsError(v) {
				return v
			}
			args[i] = v
		}
		k := kExec(env)
		if evaluator.IsError(k) {
			return k
		}
		switch p := proc.(type) {
		case *datum.Continuation:
			// Invoking a continuation is an escape: it jumps straight to
			// its own destination, discarding the trailing k this call
			// site would otherwise have resumed to.
			return state.Apply(p, args, env, tail)
		case *datum.Procedure:
			if n := len(p.Params); p.HasContinuationParam || (n > 0 && cps.IsContinuationVar(p.Params[n-1].Name)) {
				return state.Apply(p, append(args, k), env, tail)
			}
			v := state.Apply(p, args, env, false)
			if evaluator.IsError(v) {
				return v
			}
			return state.Apply(k, []datum.Datum{v}, env, tail)
		default:
			v := state.Apply(proc, args, env, false)
			if evaluator.IsError(v) {
				return v
			}
			return state.Apply(k, []datum.Datum{v}, env, tail)
		}
	}
}

// analyzeDeferredApplication builds an executor that checks the
// environment's runtime macro tables on every call (the head symbol is not
// known to be a macro until a concrete environment exists). The macro
// lookup runs on every call; the ordinary-application analysis is built
// on the first call that finds no macro bound and is then cached, so the
// operator/operands are not re-analyzed on later calls.
func (a *Analyzer) analyzeDeferredApplication(e *datum.Expression, tail, cpsBlock bool) datum.Executor {
	head, hasHead := e.Head()
	if !hasHead {
		return a.analyzeOrdinaryApplication(e, tail, cpsBlock)
	}
	headSym := head
	var once sync.Once
	var ordinary datum.Executor
	ordinaryExec := func() datum.Executor {
		once.Do(func() { ordinary = a.analyzeOrdinaryApplication(e, tail, cpsBlock) })
		return ordinary
	}
	a2 := a
	return func(env datum.Environment) datum.Datum {
		if macroVal, ok := env.LookupMacro(headSym); ok {
			rules, ok := macroVal.(*datum.SyntaxRules)
			if !ok {
				return a2.State.Errorf(datum.ErrMacro, "%s: macro table entry is not syntax-rules", headSym)
			}
			expansion, err := macro.Expand(rules, e)
			if err != nil {
				return a2.State.Errorf(datum.ErrMacro, "%s: %s", headSym, err)
			}
			return a2.Analyze(expansion, tail, cpsBlock)(env)
		}
		return ordinaryExec()(env)
	}
}

// analyzeOrdinaryApplication analyzes the operator and every operand
// eagerly, returning a closure that evaluates them left to right and
// applies (spec §4.6 point 2, §5 "Argument evaluation order ... left to
// right").
func (a *Analyzer) analyzeOrdinaryApplication(e *datum.Expression, tail, cpsBlock bool) datum.Executor {
	opExec := a.Analyze(e.Items[0], false, cpsBlock)
	argExecs := make([]datum.Executor, len(e.Items)-1)
	for i, it := range e.Items[1:] {
		argExecs[i] = a.Analyze(it, false, cpsBlock)
	}
	state := a.State
	return func(env datum.Environment) datum.Datum {
		proc := opExec(env)
		if evaluator.IsError(proc) {
			return proc
		}
		args := make([]datum.Datum, len(argExecs))
		for i, ex := range argExecs {
			v := ex(env)
			if evaluator.IsError(v) {
				return v
			}
			args[i] = v
		}
		return state.Apply(proc, args, env, tail)
	}
}
