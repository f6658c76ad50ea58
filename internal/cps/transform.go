package cps

import "github.com/heist-scheme/heist/internal/datum"

// Transform converts expr to CPS, returning a one-argument lambda
// `(lambda (k) ...)` that evaluates expr and tail-calls k with its result
// (spec §4.3: "cps(expr, topmost?) → expr'; result is a one-arg lambda").
// When topmost is true, the five peephole optimizations are applied to
// the result to fixpoint (spec §4.3 "Optimization passes").
func Transform(expr datum.Datum, topmost bool) datum.Datum {
	result := cps(expr)
	if topmost {
		result = optimizeToFixpoint(result)
	}
	return result
}

// cps dispatches per-form, mirroring the order and reductions spec §4.3
// describes. Host-implemented special forms (and/or/cond/case/let*/do/
// etc.) are left untagged for the analyzer to expand; the analyzer's
// expansion is not passed through cps again (spec §4.3 "host-implemented
// special forms ... not tagged").
func cps(expr datum.Datum) datum.Datum {
	switch e := expr.(type) {
	case *datum.Expression:
		if len(e.Items) == 0 {
			return lambdaK0(e)
		}
		head, isHead := e.Head()
		if isHead {
			switch head {
			case "quote", "syntax-rules":
				return lambdaK0(e)
			case "set!":
				return cpsSet(e)
			case "begin":
				return cpsBegin(e)
			case "lambda":
				return cpsLambda(e)
			case "if":
				return cpsIf(e)
			case "define":
				return cpsDefine(e)
			case "call/cc", "call-with-current-continuation":
				return cpsCallCC(e)
			}
			if hostSpecialForms[head] {
				// Not yet reduced to core forms; the analyzer reduces these
				// itself and does not call back into cps on the expansion.
				return lambdaK0(e)
			}
		}
		return cpsApplication(e)
	default:
		return lambdaK0(expr)
	}
}

// lambdaK0 builds `(lambda (k) (k expr))` for atomic/self-evaluating forms
// (spec §4.3 "atomic/quote/syntax-rules -> (lambda (k) (k <atom>))").
func lambdaK0(expr datum.Datum) *datum.Expression {
	k := freshContinuationVar()
	return &datum.Expression{Items: []datum.Datum{
		datum.Symbol("lambda"),
		&datum.Expression{Items: []datum.Datum{k}},
		kApply(k, expr),
	}}
}

// cpsSet handles (set! name value): if value is atomic, set! fires
// directly; otherwise value is evaluated in CPS with a continuation that
// performs the set! then tail-calls k (spec §4.3 "set!").
func cpsSet(e *datum.Expression) *datum.Expression {
	name := e.Items[1]
	value := e.Items[2]
	k := freshContinuationVar()
	if isAtomic(value) {
		body := &datum.Expression{Items: []datum.Datum{
			datum.Symbol("begin"),
			&datum.Expression{Items: []datum.Datum{datum.Symbol("set!"), name, value}},
			kApply(k, datum.Void),
		}}
		return &datum.Expression{Items: []datum.Datum{datum.Symbol("lambda"), &datum.Expression{Items: []datum.Datum{k}}, body}}
	}
	valueK := freshContinuationVar()
	innerBody := &datum.Expression{Items: []datum.Datum{
		datum.Symbol("begin"),
		&datum.Expression{Items: []datum.Datum{datum.Symbol("set!"), name, valueK}},
		kApply(k, datum.Void),
	}}
	innerLambda := &datum.Expression{Items: []datum.Datum{datum.Symbol("lambda"), &datum.Expression{Items: []datum.Datum{valueK}}, innerBody}}
	call := &datum.Expression{Items: []datum.Datum{cps(value), innerLambda}}
	return &datum.Expression{Items: []datum.Datum{datum.Symbol("lambda"), &datum.Expression{Items: []datum.Datum{k}}, call}}
}

// cpsBegin threads continuations through a sequence: each non-final form
// is evaluated for effect before continuing to the next, the final form's
// result is what k receives (spec §4.3 "begin").
func cpsBegin(e *datum.Expression) *datum.Expression {
	forms := e.Items[1:]
	k := freshContinuationVar()
	body := cpsSequence(forms, k)
	return &datum.Expression{Items: []datum.Datum{datum.Symbol("lambda"), &datum.Expression{Items: []datum.Datum{k}}, body}}
}

func cpsSequence(forms []datum.Datum, k datum.Datum) datum.Datum {
	if len(forms) == 0 {
		return kApply(k, datum.Void)
	}
	if len(forms) == 1 {
		return &datum.Expression{Items: []datum.Datum{cps(forms[0]), k}}
	}
	ignoreK := freshContinuationVar()
	rest := cpsSequence(forms[1:], k)
	innerLambda := &datum.Expression{Items: []datum.Datum{datum.Symbol("lambda"), &datum.Expression{Items: []datum.Datum{ignoreK}}, rest}}
	return &datum.Expression{Items: []datum.Datum{cps(forms[0]), innerLambda}}
}

// cpsLambda converts (lambda params body...) into
// `(lambda (k) (k (lambda (params dynK) <cps-body>)))`, appending a fresh
// continuation parameter (spec §4.3 "lambda").
func cpsLambda(e *datum.Expression) *datum.Expression {
	params := e.Items[1]
	bodyForms := e.Items[2:]
	dynK := freshContinuationVar()
	newParams := appendParam(params, dynK)
	body := cpsSequence(bodyForms, dynK)
	innerLambda := &datum.Expression{Items: []datum.Datum{datum.Symbol("lambda"), newParams, body}}
	return lambdaK0FromBuilt(innerLambda)
}

func lambdaK0FromBuilt(value datum.Datum) *datum.Expression {
	k := freshContinuationVar()
	return &datum.Expression{Items: []datum.Datum{
		datum.Symbol("lambda"),
		&datum.Expression{Items: []datum.Datum{k}},
		kApply(k, value),
	}}
}

// appendParam adds an extra trailing parameter to a lambda's formal list,
// preserving dotted-variadic shape (spec §4.3 "fresh continuation param
// appended"; argless lambdas get the sentinel plus the continuation,
// spec §4.1 lambda "argless lambda gets sentinel+dynK").
func appendParam(params datum.Datum, extra datum.Symbol) datum.Datum {
	switch p := params.(type) {
	case datum.Symbol:
		// (lambda args body) — a single variadic symbol collects everything;
		// we still must append a continuation param after it.
		return &datum.Expression{Items: []datum.Datum{p, datum.DotSymbol, extra}}
	case *datum.Expression:
		if len(p.Items) == 0 {
			return &datum.Expression{Items: []datum.Datum{datum.SentinelArg, extra}}
		}
		items := append(append([]datum.Datum{}, p.Items...), extra)
		return &datum.Expression{Items: items, Line: p.Line, Column: p.Column}
	default:
		return params
	}
}

// cpsIf converts (if test conseq [alt]). An atomic test builds the CPS'd
// branches directly applied with k; a non-atomic test is evaluated in CPS
// with a continuation that dispatches on the result (spec §4.3 "if").
func cpsIf(e *datum.Expression) *datum.Expression {
	test := e.Items[1]
	conseq := e.Items[2]
	var alt datum.Datum = datum.Void
	if len(e.Items) > 3 {
		alt = e.Items[3]
	}
	k := freshContinuationVar()
	if isAtomic(test) {
		body := &datum.Expression{Items: []datum.Datum{
			datum.Symbol("if"), test,
			&datum.Expression{Items: []datum.Datum{cps(conseq), k}},
			&datum.Expression{Items: []datum.Datum{cps(alt), k}},
		}}
		return &datum.Expression{Items: []datum.Datum{datum.Symbol("lambda"), &datum.Expression{Items: []datum.Datum{k}}, body}}
	}
	testK := freshContinuationVar()
	branch := &datum.Expression{Items: []datum.Datum{
		datum.Symbol("if"), testK,
		&datum.Expression{Items: []datum.Datum{cps(conseq), k}},
		&datum.Expression{Items: []datum.Datum{cps(alt), k}},
	}}
	innerLambda := &datum.Expression{Items: []datum.Datum{datum.Symbol("lambda"), &datum.Expression{Items: []datum.Datum{testK}}, branch}}
	call := &datum.Expression{Items: []datum.Datum{cps(test), innerLambda}}
	return &datum.Expression{Items: []datum.Datum{datum.Symbol("lambda"), &datum.Expression{Items: []datum.Datum{k}}, call}}
}

// cpsDefine rewrites (define name value) into a two-step bind-then-set!
// so value's (possibly effectful) CPS evaluation completes before name is
// readable (spec §4.3 "define variable"). (define (name params) body...)
// first desugars to (define name (lambda params body...)) the same way
// the analyzer's direct-style define does.
func cpsDefine(e *datum.Expression) *datum.Expression {
	target := e.Items[1]
	var name datum.Symbol
	var value datum.Datum
	if nameExpr, ok := target.(*datum.Expression); ok {
		head, _ := nameExpr.Head()
		name = head
		value = &datum.Expression{Items: append([]datum.Datum{datum.Symbol("lambda"), &datum.Expression{Items: nameExpr.Items[1:]}}, e.Items[2:]...)}
	} else {
		name = target.(datum.Symbol)
		value = e.Items[2]
	}
	k := freshContinuationVar()
	defineBody := &datum.Expression{Items: []datum.Datum{
		datum.Symbol("begin"),
		&datum.Expression{Items: []datum.Datum{datum.Symbol("define"), name, datum.False}},
		&datum.Expression{Items: []datum.Datum{datum.Symbol("set!"), name, value}},
		kApply(k, datum.Void),
	}}
	body := cpsBeginInline(defineBody, k)
	return &datum.Expression{Items: []datum.Datum{datum.Symbol("lambda"), &datum.Expression{Items: []datum.Datum{k}}, body}}
}

func cpsBeginInline(begin *datum.Expression, k datum.Datum) datum.Datum {
	return cpsSequence(begin.Items[1:], k)
}

// cpsApplication transforms each non-atomic argument (including the
// operator position) through a freshly threaded continuation, in textual
// order, and finally invokes the operator with the atomic operands plus k
// (spec §4.3 "Application", §5 "CPS-transformed application argument
// continuations fire in textual order").
func cpsApplication(e *datum.Expression) *datum.Expression {
	k := freshContinuationVar()
	call := buildApplicationChain(e.Items, nil, k)
	return &datum.Expression{Items: []datum.Datum{datum.Symbol("lambda"), &datum.Expression{Items: []datum.Datum{k}}, call}}
}

// cpsCallCC gives call/cc escape-only semantics (spec §1 Non-goal: "proper
// partial-continuation call/cc primitive — continuations are realized by
// whole-program CPS conversion"). The thunk's dynamic continuation is
// reified as an ordinary callable that, when invoked, discards its own
// dynamic continuation and jumps straight to the call/cc site's
// continuation k — an escape procedure, not a re-enterable one.
func cpsCallCC(e *datum.Expression) *datum.Expression {
	thunk := e.Items[1]
	k := freshContinuationVar()
	fK := freshContinuationVar()
	escape := freshContinuationVar()
	ignoreRest := freshContinuationVar()

	escapeProc := &datum.Expression{Items: []datum.Datum{
		datum.Symbol("lambda"),
		&datum.Expression{Items: []datum.Datum{escape, datum.DotSymbol, ignoreRest}},
		kApply(k, escape),
	}}
	invokeThunk := &datum.Expression{Items: []datum.Datum{fK, escapeProc, k}}
	receiveThunk := &datum.Expression{Items: []datum.Datum{
		datum.Symbol("lambda"), &datum.Expression{Items: []datum.Datum{fK}}, invokeThunk,
	}}
	call := &datum.Expression{Items: []datum.Datum{cps(thunk), receiveThunk}}
	return &datum.Expression{Items: []datum.Datum{datum.Symbol("lambda"), &datum.Expression{Items: []datum.Datum{k}}, call}}
}

// buildApplicationChain evaluates e.Items left to right, substituting
// already-atomic positions directly and threading a continuation through
// each non-atomic one, finally emitting the tagged application of the
// fully-atomic operator+operands+k (spec §4.3's per-argument continuation
// threading).
func buildApplicationChain(remaining []datum.Datum, resolved []datum.Datum, k datum.Datum) datum.Datum {
	if len(remaining) == 0 {
		applied := tagApplication(&datum.Expression{Items: append(append([]datum.Datum{}, resolved...), k)})
		return applied
	}
	head := remaining[0]
	rest := remaining[1:]
	if isAtomic(head) {
		return buildApplicationChain(rest, append(resolved, head), k)
	}
	argK := freshContinuationVar()
	continuation := buildApplicationChain(rest, append(append([]datum.Datum{}, resolved...), argK), k)
	innerLambda := &datum.Expression{Items: []datum.Datum{datum.Symbol("lambda"), &datum.Expression{Items: []datum.Datum{argK}}, continuation}}
	return &datum.Expression{Items: []datum.Datum{cps(head), innerLambda}}
}
