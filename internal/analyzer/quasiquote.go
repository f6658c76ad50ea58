package analyzer

import (
	"github.com/heist-scheme/heist/internal/datum"
	"github.com/heist-scheme/heist/internal/evaluator"
)

// analyzeQuasiquote builds a closure that evaluates unquote forms and
// splices unquote-splicing forms at evaluation time, unlike quote which
// builds its value once at analysis time (spec §4.1 quasiquote).
func (a *Analyzer) analyzeQuasiquote(e *datum.Expression, cpsBlock bool) datum.Executor {
	if len(e.Items) != 2 {
		return constant(a.State.Errorf(datum.ErrSyntax, "quasiquote: expected exactly one datum, got %s", e.Write()))
	}
	return a.buildQuasi(e.Items[1], 1, cpsBlock)
}

func (a *Analyzer) buildQuasi(form datum.Datum, depth int, cpsBlock bool) datum.Executor {
	e, ok := form.(*datum.Expression)
	if !ok {
		return constant(form)
	}
	if len(e.Items) == 0 {
		return constant(datum.EmptyList)
	}
	if head, ok := e.Head(); ok {
		switch head {
		case "unquote":
			if depth == 1 {
				return a.Analyze(e.Items[1], false, cpsBlock)
			}
			return wrapTagged("unquote", a.buildQuasi(e.Items[1], depth-1, cpsBlock))
		case "quasiquote":
			return wrapTagged("quasiquote", a.buildQuasi(e.Items[1], depth+1, cpsBlock))
		case "vector":
			return a.buildQuasiVector(e.Items[1:], depth, cpsBlock)
		}
	}
	return a.buildQuasiList(e.Items, depth, cpsBlock)
}

// wrapTagged reconstructs `(tag inner)` as a two-element list once inner
// is evaluated, used when a nested quasiquote/unquote must be rebuilt as
// data rather than evaluated (depth > 1).
func wrapTagged(tag string, inner datum.Executor) datum.Executor {
	return func(env datum.Environment) datum.Datum {
		v := inner(env)
		if evaluator.IsError(v) {
			return v
		}
		return datum.Cons(datum.Symbol(tag), datum.Cons(v, datum.EmptyList))
	}
}

type quasiElem struct {
	exec   datum.Executor
	splice bool
}

// buildQuasiList handles a quasiquoted list's dotted tail (spec §4.1:
// "splicing a dotted list is allowed only at tail position") and
// elementwise unquote-splicing (spec §4.1: "splicing mid-list must be a
// proper list").
func (a *Analyzer) buildQuasiList(items []datum.Datum, depth int, cpsBlock bool) datum.Executor {
	var tailExec datum.Executor = constant(datum.EmptyList)
	body := items
	if n := len(items); n >= 2 {
		if sym, ok := items[n-2].(datum.Symbol); ok && sym == datum.DotSymbol {
			tailExec = a.buildQuasi(items[n-1], depth, cpsBlock)
			body = items[:n-2]
		}
	}
	elems := make([]quasiElem, 0, len(body))
	for _, it := range body {
		if ex, ok := it.(*datum.Expression); ok {
			if h, hok := ex.Head(); hok && h == "unquote-splicing" {
				if depth == 1 {
					elems = append(elems, quasiElem{exec: a.Analyze(ex.Items[1], false, cpsBlock), splice: true})
					continue
				}
				elems = append(elems, quasiElem{exec: wrapTagged("unquote-splicing", a.buildQuasi(ex.Items[1], depth-1, cpsBlock))})
				continue
			}
		}
		elems = append(elems, quasiElem{exec: a.buildQuasi(it, depth, cpsBlock)})
	}
	return func(env datum.Environment) datum.Datum {
		tail := tailExec(env)
		if evaluator.IsError(tail) {
			return tail
		}
		parts := make([]datum.Datum, len(elems))
		for i, el := range elems {
			v := el.exec(env)
			if evaluator.IsError(v) {
				return v
			}
			parts[i] = v
		}
		result := tail
		start := len(parts) - 1
		if start >= 0 && elems[start].splice {
			shape, sitems, stail := datum.ClassifyList(parts[start])
			if shape == datum.ListCyclic {
				return a.State.Errorf(datum.ErrCycle, "unquote-splicing: cannot splice a cyclic list")
			}
			result = datum.SliceToImproperList(sitems, stail)
			start--
		}
		for i := start; i >= 0; i-- {
			if elems[i].splice {
				shape, sitems, _ := datum.ClassifyList(parts[i])
				if shape != datum.ListOK {
					return a.State.Errorf(datum.ErrSyntax, "unquote-splicing: improper list may only be spliced at tail position")
				}
				for j := len(sitems) - 1; j >= 0; j-- {
					result = datum.Cons(sitems[j], result)
				}
			} else {
				result = datum.Cons(parts[i], result)
			}
		}
		return result
	}
}

// buildQuasiVector handles a quasiquoted vector literal (spec §4.1:
// "splicing into a vector requires a proper list").
func (a *Analyzer) buildQuasiVector(items []datum.Datum, depth int, cpsBlock bool) datum.Executor {
	elems := make([]quasiElem, 0, len(items))
	for _, it := range items {
		if ex, ok := it.(*datum.Expression); ok {
			if h, hok := ex.Head(); hok && h == "unquote-splicing" && depth == 1 {
				elems = append(elems, quasiElem{exec: a.Analyze(ex.Items[1], false, cpsBlock), splice: true})
				continue
			}
		}
		elems = append(elems, quasiElem{exec: a.buildQuasi(it, depth, cpsBlock)})
	}
	return func(env datum.Environment) datum.Datum {
		out := make([]datum.Datum, 0, len(elems))
		for _, el := range elems {
			v := el.exec(env)
			if evaluator.IsError(v) {
				return v
			}
			if el.splice {
				shape, items, _ := datum.ClassifyList(v)
				if shape != datum.ListOK {
					return a.State.Errorf(datum.ErrSyntax, "unquote-splicing into a vector requires a proper list")
				}
				out = append(out, items...)
			} else {
				out = append(out, v)
			}
		}
		return datum.NewVector(out)
	}
}
