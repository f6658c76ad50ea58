package analyzer

import (
	"github.com/heist-scheme/heist/internal/config"
	"github.com/heist-scheme/heist/internal/datum"
	"github.com/heist-scheme/heist/internal/evaluator"
)

// desugarAnd rewrites to nested if (spec §4.1 and/or: "rewrite to nested
// if"). (and) is #t; the last operand's value (not just its truthiness) is
// returned.
func desugarAnd(args []datum.Datum) datum.Datum {
	if len(args) == 0 {
		return datum.True
	}
	if len(args) == 1 {
		return args[0]
	}
	return mkExpr(sym("if"), args[0], desugarAnd(args[1:]), datum.False)
}

// desugarOr rewrites to a self-invoking lambda so the tested value is
// returned without re-evaluating it (spec §4.1 and/or: "and to
// self-invoking lambda for or to preserve the tested value"). The
// temporary's name carries a reserved prefix no user binding may use, so
// the per-level shadowing this recursion relies on is safe.
func desugarOr(args []datum.Datum) datum.Datum {
	if len(args) == 0 {
		return datum.False
	}
	if len(args) == 1 {
		return args[0]
	}
	tmp := sym(config.ReservedPrefix + "or-tmp")
	rest := desugarOr(args[1:])
	return mkExpr(sym("let"), mkExpr(mkExpr(tmp, args[0])), mkExpr(sym("if"), tmp, tmp, rest))
}

// analyzeIf analyzes (if test conseq [alt]); a missing alternative yields
// void, and predicate truthiness goes through the configurable falsey set
// (spec §4.1 if).
func (a *Analyzer) analyzeIf(e *datum.Expression, tail, cpsBlock bool) datum.Executor {
	if len(e.Items) != 3 && len(e.Items) != 4 {
		return constant(a.State.Errorf(datum.ErrSyntax, "if: expected (if test conseq [alt]), got %s", e.Write()))
	}
	testExec := a.Analyze(e.Items[1], false, cpsBlock)
	conseqExec := a.Analyze(e.Items[2], tail, cpsBlock)
	altExec := datum.Executor(constant(datum.Void))
	if len(e.Items) == 4 {
		altExec = a.Analyze(e.Items[3], tail, cpsBlock)
	}
	state := a.State
	return func(env datum.Environment) datum.Datum {
		t := testExec(env)
		if evaluator.IsError(t) {
			return t
		}
		if state.IsTruthy(t) {
			return conseqExec(env)
		}
		return altExec(env)
	}
}

// analyzeSet analyzes (set! name value); errors if the target is not a
// symbol, and mutates the binding by walking frames outward (spec §4.1
// set!).
func (a *Analyzer) analyzeSet(e *datum.Expression, cpsBlock bool) datum.Executor {
	if len(e.Items) != 3 {
		return constant(a.State.Errorf(datum.ErrSyntax, "set!: expected (set! name value), got %s", e.Write()))
	}
	name, ok := e.Items[1].(datum.Symbol)
	if !ok {
		return constant(a.State.Errorf(datum.ErrType, "set!: target must be a symbol, got %s", e.Items[1].Write()))
	}
	valExec := a.Analyze(e.Items[2], false, cpsBlock)
	state := a.State
	return func(env datum.Environment) datum.Datum {
		v := valExec(env)
		if evaluator.IsError(v) {
			return v
		}
		nameIfAnonymous(v, name)
		if !env.SetBang(name, v) {
			return state.Errorf(datum.ErrUnbound, "set!: unbound variable: %s", name)
		}
		return datum.Void
	}
}

// analyzeDefine analyzes (define name value) and the procedure shorthand
// (define (name params...) body...), which desugars to (define name
// (lambda params body...)) (spec §4.1 define).
func (a *Analyzer) analyzeDefine(e *datum.Expression, cpsBlock bool) datum.Executor {
	if len(e.Items) < 2 {
		return constant(a.State.Errorf(datum.ErrSyntax, "define: expected at least a name, got %s", e.Write()))
	}
	if head, ok := e.Items[1].(*datum.Expression); ok {
		if len(head.Items) == 0 {
			return constant(a.State.Errorf(datum.ErrSyntax, "define: missing procedure name in %s", e.Write()))
		}
		name, ok := head.Items[0].(datum.Symbol)
		if !ok {
			return constant(a.State.Errorf(datum.ErrSyntax, "define: procedure name must be a symbol, got %s", head.Items[0].Write()))
		}
		lambdaItems := append([]datum.Datum{sym("lambda"), mkExpr(head.Items[1:]...)}, e.Items[2:]...)
		return a.analyzeDefine(mkExpr(sym("define"), name, mkExpr(lambdaItems...)), cpsBlock)
	}
	name, ok := e.Items[1].(datum.Symbol)
	if !ok {
		return constant(a.State.Errorf(datum.ErrSyntax, "define: target must be a symbol or procedure header, got %s", e.Items[1].Write()))
	}
	valExec := datum.Executor(constant(datum.Undefined))
	if len(e.Items) >= 3 {
		valExec = a.Analyze(e.Items[2], false, cpsBlock)
	}
	return func(env datum.Environment) datum.Datum {
		v := valExec(env)
		if evaluator.IsError(v) {
			return v
		}
		nameIfAnonymous(v, name)
		env.Define(name, v)
		return datum.Void
	}
}

// analyzeLambda validates the parameter list (symbols only, no duplicates,
// dot-variadic only at the penultimate position, an optional trailing
// continuation parameter after the variadic when inside a CPS block) and
// builds a closure producing a fresh *datum.Procedure, with its own
// recursion-depth counter, per evaluation (spec §4.1 lambda).
func (a *Analyzer) analyzeLambda(e *datum.Expression, cpsBlock bool) datum.Executor {
	if len(e.Items) < 2 {
		return constant(a.State.Errorf(datum.ErrSyntax, "lambda: expected (lambda params body...), got %s", e.Write()))
	}
	params, variadic, hasCont, perr := parseParams(e.Items[1], cpsBlock)
	if perr != nil {
		return constant(perr)
	}
	bodyExec := a.analyzeBody(e.Items[2:], cpsBlock)
	return func(env datum.Environment) datum.Datum {
		depth := int64(0)
		return &datum.Procedure{
			Params:               params,
			Variadic:             variadic,
			HasContinuationParam: hasCont,
			Body:                 bodyExec,
			Env:                  env,
			RecursionDepth:       &depth,
		}
	}
}

// parseParams walks a lambda's parameter syntax into a flat []datum.Param,
// enforcing: symbols only, no duplicate names, and dot-variadic collection
// only at the penultimate position. Inside a CPS block, one further
// trailing symbol beyond a dotted variadic tail is accepted as the
// continuation parameter the CPS transformer appended (spec §4.1 lambda).
func parseParams(syntax datum.Datum, cpsBlock bool) (params []datum.Param, variadic, hasCont bool, err *datum.Error) {
	switch p := syntax.(type) {
	case datum.SentinelArgType:
		return nil, false, false, nil
	case datum.Symbol:
		return []datum.Param{{Name: p}}, true, false, nil
	case *datum.Expression:
		if len(p.Items) == 1 {
			if s, ok := p.Items[0].(datum.SentinelArgType); ok {
				_ = s
				return nil, false, false, nil
			}
		}
		seen := map[datum.Symbol]bool{}
		names := make([]datum.Symbol, 0, len(p.Items))
		dotAt := -1
		for i, it := range p.Items {
			if s, ok := it.(datum.Symbol); ok && s == datum.DotSymbol {
				if dotAt != -1 {
					return nil, false, false, datum.NewError(datum.ErrSyntax, "lambda: more than one dot in parameter list")
				}
				dotAt = i
				continue
			}
			s, ok := it.(datum.Symbol)
			if !ok {
				return nil, false, false, datum.NewError(datum.ErrSyntax, "lambda: parameter must be a symbol, got %s", it.Write())
			}
			if seen[s] {
				return nil, false, false, datum.NewError(datum.ErrSyntax, "lambda: duplicate parameter name: %s", s)
			}
			seen[s] = true
			names = append(names, s)
		}
		switch {
		case dotAt == -1:
			// (a b c) — all fixed. A continuation param CPS appended
			// without a dot (appendParam's no-dot branch) stays a fixed
			// param here; analyzeCPSApplication recognizes it by name.
			for _, n := range names {
				params = append(params, datum.Param{Name: n})
			}
			return params, false, false, nil
		case dotAt == len(p.Items)-2:
			// (a b . rest) — ordinary dotted variadic.
			for _, n := range names {
				params = append(params, datum.Param{Name: n})
			}
			return params, true, false, nil
		case cpsBlock && dotAt == len(p.Items)-3:
			// (a b . rest k) — variadic plus a CPS-appended continuation
			// parameter trailing the dot (spec §4.1: "optional trailing
			// continuation parameter after the variadic if in a CPS block").
			for _, n := range names {
				params = append(params, datum.Param{Name: n})
			}
			return params, true, true, nil
		default:
			return nil, false, false, datum.NewError(datum.ErrSyntax, "lambda: dot must appear at the penultimate position")
		}
	default:
		return nil, false, false, datum.NewError(datum.ErrSyntax, "lambda: malformed parameter list: %s", syntax.Write())
	}
}

// analyzeBody analyzes a lambda body: all but the last form are analyzed
// with tail=false, the last with tail=true, since a body's last form is
// always in tail position (spec §4.1 begin, lambda body).
func (a *Analyzer) analyzeBody(forms []datum.Datum, cpsBlock bool) datum.Executor {
	return a.analyzeBegin(forms, true, cpsBlock)
}

// analyzeBegin analyzes each sub-expression in sequence, threading tail
// status only to the last (spec §4.1 begin: "returns the last's value,
// threading tail-call status through").
func (a *Analyzer) analyzeBegin(forms []datum.Datum, tail, cpsBlock bool) datum.Executor {
	if len(forms) == 0 {
		return constant(datum.Void)
	}
	execs := make([]datum.Executor, len(forms))
	for i, f := range forms {
		isLast := i == len(forms)-1
		execs[i] = a.Analyze(f, isLast && tail, cpsBlock)
	}
	if len(execs) == 1 {
		return execs[0]
	}
	return func(env datum.Environment) datum.Datum {
		var result datum.Datum = datum.Void
		for _, ex := range execs {
			result = ex(env)
			if evaluator.IsError(result) {
				return result
			}
		}
		return result
	}
}
