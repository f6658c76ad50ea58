package cps

import "github.com/heist-scheme/heist/internal/datum"

// optimizeToFixpoint applies the five CPS peephole optimizations (spec
// §4.3 "Optimization passes") repeatedly over the whole form until none
// apply, mirroring the teacher's repeated-pass rewrite style in
// internal/vm's lowering passes.
func optimizeToFixpoint(form datum.Datum) datum.Datum {
	for {
		rewritten, changed := optimizePass(form)
		form = rewritten
		if !changed {
			return form
		}
	}
}

func optimizePass(form datum.Datum) (datum.Datum, bool) {
	expr, ok := form.(*datum.Expression)
	if !ok {
		return form, false
	}
	if simplified, ok := tryRules(expr); ok {
		return simplified, true
	}
	changed := false
	items := make([]datum.Datum, len(expr.Items))
	for i, it := range expr.Items {
		rewritten, itChanged := optimizePass(it)
		items[i] = rewritten
		changed = changed || itChanged
	}
	return &datum.Expression{Items: items, Line: expr.Line, Column: expr.Column}, changed
}

func tryRules(expr *datum.Expression) (datum.Datum, bool) {
	if e, ok := ruleEtaReduce(expr); ok {
		return e, true
	}
	if e, ok := ruleBetaRenameParam(expr); ok {
		return e, true
	}
	if e, ok := ruleInlineSingleUseK(expr); ok {
		return e, true
	}
	if e, ok := ruleDropIgnoredParam(expr); ok {
		return e, true
	}
	if e, ok := ruleSetToDefine(expr); ok {
		return e, true
	}
	return nil, false
}

func isLambda1(d datum.Datum) (param datum.Symbol, body datum.Datum, ok bool) {
	e, isExpr := d.(*datum.Expression)
	if !isExpr || len(e.Items) != 3 {
		return "", nil, false
	}
	if h, hok := e.Head(); !hok || h != "lambda" {
		return "", nil, false
	}
	params, isExpr2 := e.Items[1].(*datum.Expression)
	if !isExpr2 || len(params.Items) != 1 {
		return "", nil, false
	}
	sym, isSym := params.Items[0].(datum.Symbol)
	if !isSym {
		return "", nil, false
	}
	return sym, e.Items[2], true
}

// rule 1: (lambda (a) (E a)) -> E, when a is not otherwise free in E.
func ruleEtaReduce(expr *datum.Expression) (datum.Datum, bool) {
	a, body, ok := isLambda1(expr)
	if !ok {
		return nil, false
	}
	call, isCall := body.(*datum.Expression)
	if !isCall || len(call.Items) != 2 {
		return nil, false
	}
	arg, isArg := call.Items[1].(datum.Symbol)
	if !isArg || arg != a {
		return nil, false
	}
	if occursFree(call.Items[0], a) {
		return nil, false
	}
	return call.Items[0], true
}

// rule 2: ((lambda (b) E) a) -> E[b:=a], when b is a continuation param
// and a is an atom (so substitution is safe without duplicating effects).
// No capture check is made on a's own free names inside E.
func ruleBetaRenameParam(expr *datum.Expression) (datum.Datum, bool) {
	if len(expr.Items) != 2 {
		return nil, false
	}
	b, body, ok := isLambda1(expr.Items[0])
	if !ok {
		return nil, false
	}
	arg := expr.Items[1]
	if !isAtomic(arg) {
		return nil, false
	}
	if !IsContinuationVar(b) {
		return nil, false
	}
	return substitute(body, b, arg), true
}

// rule 3: ((lambda (k) E) obj) -> E[k:=obj] when k occurs exactly once in
// E (a strictly stronger, safer variant of rule 2 for non-atomic objects:
// single-use substitution duplicates nothing).
func ruleInlineSingleUseK(expr *datum.Expression) (datum.Datum, bool) {
	if len(expr.Items) != 2 {
		return nil, false
	}
	k, body, ok := isLambda1(expr.Items[0])
	if !ok {
		return nil, false
	}
	obj := expr.Items[1]
	if countOccurrences(body, k) != 1 {
		return nil, false
	}
	return substitute(body, k, obj), true
}

// rule 4: ((lambda (ignore) E ...) obj) -> obj E ... when ignore never
// occurs free in E. Modeled as a begin sequence so "E ..." can be more
// than one form, matching the CPS transformer's own begin threading.
func ruleDropIgnoredParam(expr *datum.Expression) (datum.Datum, bool) {
	if len(expr.Items) != 2 {
		return nil, false
	}
	ignore, body, ok := isLambda1(expr.Items[0])
	if !ok {
		return nil, false
	}
	if occursFree(body, ignore) {
		return nil, false
	}
	obj := expr.Items[1]
	return &datum.Expression{Items: []datum.Datum{datum.Symbol("begin"), obj, body}}, true
}

// rule 5: ((lambda (name) (set! name val) E ...) #f) -> (define name val) E ...
func ruleSetToDefine(expr *datum.Expression) (datum.Datum, bool) {
	if len(expr.Items) != 2 {
		return nil, false
	}
	if b, isBool := expr.Items[1].(datum.Boolean); !isBool || bool(b) {
		return nil, false
	}
	name, body, ok := isLambda1(expr.Items[0])
	if !ok {
		return nil, false
	}
	seq, isSeq := body.(*datum.Expression)
	if !isSeq || len(seq.Items) < 2 {
		return nil, false
	}
	head, hok := seq.Head()
	if !hok || head != "begin" {
		return nil, false
	}
	forms := seq.Items[1:]
	setExpr, isSet := forms[0].(*datum.Expression)
	if !isSet || len(setExpr.Items) != 3 {
		return nil, false
	}
	setHead, shok := setExpr.Head()
	if !shok || setHead != "set!" {
		return nil, false
	}
	target, isTarget := setExpr.Items[1].(datum.Symbol)
	if !isTarget || target != name {
		return nil, false
	}
	newItems := []datum.Datum{datum.Symbol("begin"),
		&datum.Expression{Items: []datum.Datum{datum.Symbol("define"), name, setExpr.Items[2]}}}
	newItems = append(newItems, forms[1:]...)
	return &datum.Expression{Items: newItems}, true
}

// occursFree reports whether sym appears anywhere in d (a conservative,
// syntactic free-variable check; CPS-generated code never shadows its own
// continuation parameters with the same name, so this is exact enough for
// the optimizer's purposes).
func occursFree(d datum.Datum, sym datum.Symbol) bool {
	return countOccurrences(d, sym) > 0
}

func countOccurrences(d datum.Datum, sym datum.Symbol) int {
	switch v := d.(type) {
	case datum.Symbol:
		if v == sym {
			return 1
		}
		return 0
	case *datum.Expression:
		n := 0
		for _, it := range v.Items {
			n += countOccurrences(it, sym)
		}
		return n
	default:
		return 0
	}
}

func substitute(d datum.Datum, sym datum.Symbol, value datum.Datum) datum.Datum {
	switch v := d.(type) {
	case datum.Symbol:
		if v == sym {
			return value
		}
		return v
	case *datum.Expression:
		items := make([]datum.Datum, len(v.Items))
		for i, it := range v.Items {
			items[i] = substitute(it, sym, value)
		}
		return &datum.Expression{Items: items, Line: v.Line, Column: v.Column}
	default:
		return d
	}
}
