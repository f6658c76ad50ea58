package macro

import "github.com/heist-scheme/heist/internal/datum"

// binding is one matched pattern variable's value. A non-variadic
// identifier has Depth 0 and a single Value. An identifier under N
// ellipses has Depth N and Groups holding one binding per matched
// repetition (spec §4.2 "macro-expansion tree ... nested tree depth = the
// number of ellipses guarding the identifier").
type binding struct {
	Depth  int
	Value  datum.Datum
	Groups []*binding
}

// matchRule attempts to match form's arguments against rule's pattern
// (skipping the leading keyword position in both), returning the bound
// pattern variables on success.
func matchRule(rule datum.SyntaxRule, literals map[datum.Symbol]bool, ellipsis datum.Symbol, args []datum.Datum) (map[datum.Symbol]*binding, bool) {
	bindings := map[datum.Symbol]*binding{}
	patternArgs := rule.Pattern.Items[1:]
	if matchSequence(patternArgs, args, literals, ellipsis, bindings) {
		return bindings, true
	}
	return nil, false
}

// matchSequence matches a pattern item list against an argument list,
// honoring a single trailing-or-mid ellipsis and optional dotted tail
// (spec §4.2 "ellipsis-after-identifier"/"ellipsis-after-subexpression").
func matchSequence(pattern []datum.Datum, args []datum.Datum, literals map[datum.Symbol]bool, ellipsis datum.Symbol, bindings map[datum.Symbol]*binding) bool {
	ellipsisIdx := -1
	for i, p := range pattern {
		if sym, ok := p.(datum.Symbol); ok && sym == ellipsis {
			ellipsisIdx = i
			break
		}
	}
	// Dotted-tail pattern: (a b . rest)
	if n := len(pattern); n >= 2 {
		if sym, ok := pattern[n-2].(datum.Symbol); ok && sym == datum.DotSymbol && ellipsisIdx == -1 {
			fixed := pattern[:n-2]
			tailVar := pattern[n-1]
			if len(args) < len(fixed) {
				return false
			}
			for i, p := range fixed {
				if !matchOne(p, args[i], literals, ellipsis, bindings) {
					return false
				}
			}
			return matchOne(tailVar, datum.SliceToList(args[len(fixed):]), literals, ellipsis, bindings)
		}
	}
	if ellipsisIdx == -1 {
		if len(pattern) != len(args) {
			return false
		}
		for i, p := range pattern {
			if !matchOne(p, args[i], literals, ellipsis, bindings) {
				return false
			}
		}
		return true
	}
	// pattern[ellipsisIdx-1] repeats zero or more times; trailing fixed
	// items after the ellipsis must also match exactly.
	repeated := pattern[ellipsisIdx-1]
	before := pattern[:ellipsisIdx-1]
	after := pattern[ellipsisIdx+1:]
	if len(args) < len(before)+len(after) {
		return false
	}
	for i, p := range before {
		if !matchOne(p, args[i], literals, ellipsis, bindings) {
			return false
		}
	}
	repeatCount := len(args) - len(before) - len(after)
	vars := map[datum.Symbol]bool{}
	collectPatternVars([]datum.Datum{repeated}, literals, ellipsis, vars)
	groups := map[datum.Symbol][]*binding{}
	for v := range vars {
		groups[v] = nil
	}
	for i := 0; i < repeatCount; i++ {
		sub := map[datum.Symbol]*binding{}
		if !matchOne(repeated, args[len(before)+i], literals, ellipsis, sub) {
			return false
		}
		for v := range vars {
			b, ok := sub[v]
			if !ok {
				b = &binding{Value: datum.Undefined}
			}
			groups[v] = append(groups[v], b)
		}
	}
	for v, g := range groups {
		depth := 1
		if len(g) > 0 {
			depth = g[0].Depth + 1
		}
		bindings[v] = &binding{Depth: depth, Groups: g}
	}
	for i, p := range after {
		if !matchOne(p, args[len(before)+repeatCount+i], literals, ellipsis, bindings) {
			return false
		}
	}
	return true
}

func matchOne(pattern datum.Datum, arg datum.Datum, literals map[datum.Symbol]bool, ellipsis datum.Symbol, bindings map[datum.Symbol]*binding) bool {
	switch p := pattern.(type) {
	case datum.Symbol:
		if p == "_" {
			return true
		}
		if literals[p] {
			sym, ok := arg.(datum.Symbol)
			return ok && sym == p
		}
		bindings[p] = &binding{Value: arg}
		return true
	case *datum.Expression:
		argExpr, ok := arg.(*datum.Expression)
		if !ok {
			return false
		}
		return matchSequence(p.Items, argExpr.Items, literals, ellipsis, bindings)
	default:
		return datum.Equal(pattern, arg)
	}
}
